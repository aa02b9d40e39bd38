package rag

// Source identifies a corpus chunk that contributed to an answer.
type Source struct {
	// FundName is the scheme the chunk describes.
	FundName string `json:"fund_name"`
	// URL is the page the chunk's facts were scraped from.
	URL string `json:"url"`
	// Type is the chunk's category, e.g. "expense_information".
	Type string `json:"type"`
}

// Outcome labels the terminal state a query reached. Every outcome is a
// successful response; the label exists for logging and tests, not for
// clients.
type Outcome string

const (
	// OutcomeAnswered means retrieval found context and an answer was generated.
	OutcomeAnswered Outcome = "answered"
	// OutcomeRefused means the question asked for investment advice.
	OutcomeRefused Outcome = "refused"
	// OutcomeGreeted means the question was a greeting.
	OutcomeGreeted Outcome = "greeted"
	// OutcomeNoMatch means no chunk scored at or above the similarity threshold.
	OutcomeNoMatch Outcome = "no_match"
)

// AskResponse is the engine's answer to one question.
type AskResponse struct {
	// Response is the answer text shown to the user.
	Response string `json:"response"`
	// Sources lists the chunks the answer was built from, in context order.
	// Refusals, greetings and no-match answers carry an empty list.
	Sources []Source `json:"sources"`
	// Outcome labels the terminal state that produced the response.
	Outcome Outcome `json:"-"`
}
