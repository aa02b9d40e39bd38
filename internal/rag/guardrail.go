package rag

import "strings"

// Canned responses. Fixed alongside the v1 phrase tables below; changing
// either is a behavior change, not a tuning knob.
const (
	refusalText = "This assistant is designed to provide factual information about UTI Mutual Funds only. It does not provide investment advice."

	welcomeText = "Hello! I'm your UTI Mutual Fund Assistant. I can help you explore and learn more about UTI's mutual fund offerings. Feel free to ask me about fund details, performance metrics, expenses, risk information, and more."

	noInformationText = "I don't have this information in my current database. Please visit Groww (https://groww.in/mutual-funds/amc/uti-mutual-funds) to know more about UTI mutual funds."
)

// adviceBlocklist holds lowercase phrases that mark a question as an advice
// request. Matching is by substring, so phrases carry intent: "best fund"
// rather than the bare "best", which would also refuse factual questions
// like "top holdings of UTI Flexi Cap".
var adviceBlocklist = []string{
	"should i invest",
	"should i buy",
	"should i sell",
	"which fund is best",
	"best fund",
	"top fund",
	"recommend",
	"suggest",
	"advice",
	"advise",
	"worth investing",
	"better than",
	"worse than",
	"outperform",
	"compare",
	"comparison",
	"rank",
	"ranking",
	"allocate",
	"allocation",
	"buy or sell",
}

// greetingWords match when the question equals the word or starts with it
// followed by a space.
var greetingWords = []string{
	"hi", "hello", "hey", "greetings", "good morning", "good afternoon",
	"good evening", "what's up", "howdy", "namaste",
}

type guardrailVerdict uint8

const (
	verdictProceed guardrailVerdict = iota
	verdictRefuse
	verdictGreet
)

// checkGuardrails classifies a lowercased question. Advice detection runs
// first: "hi, should I buy this fund" is a refusal, not a greeting.
func checkGuardrails(lowered string) guardrailVerdict {
	for _, phrase := range adviceBlocklist {
		if strings.Contains(lowered, phrase) {
			return verdictRefuse
		}
	}
	for _, word := range greetingWords {
		if lowered == word || strings.HasPrefix(lowered, word+" ") {
			return verdictGreet
		}
	}
	return verdictProceed
}
