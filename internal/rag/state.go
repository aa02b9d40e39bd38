package rag

import (
	"fmt"
	"strings"
)

// queryState tracks a single question through the answering pipeline. The
// states and the moves between them are fixed; an illegal transition is a
// programming error and surfaces as an engine failure, never as a wrong
// answer.
type queryState uint8

const (
	stateReceived queryState = iota
	stateGuardrailChecked
	stateRefused
	stateGreeted
	stateRouted
	stateRetrieved
	stateNoMatch
	stateContextBuilt
	stateAnswered
)

var stateNames = map[queryState]string{
	stateReceived:         "received",
	stateGuardrailChecked: "guardrail_checked",
	stateRefused:          "refused",
	stateGreeted:          "greeted",
	stateRouted:           "routed",
	stateRetrieved:        "retrieved",
	stateNoMatch:          "no_match",
	stateContextBuilt:     "context_built",
	stateAnswered:         "answered",
}

func (s queryState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("queryState(%d)", uint8(s))
}

// validTransitions lists, per state, the states a query may move to next.
// States missing from the map are terminal.
var validTransitions = map[queryState][]queryState{
	stateReceived:         {stateGuardrailChecked},
	stateGuardrailChecked: {stateRefused, stateGreeted, stateRouted},
	stateRouted:           {stateRetrieved},
	stateRetrieved:        {stateNoMatch, stateContextBuilt},
	stateContextBuilt:     {stateAnswered},
}

func (s queryState) isTerminal() bool {
	return len(validTransitions[s]) == 0
}

// query carries one question's pipeline state. The lowered form is computed
// once; guardrail, routing and focus matching all work on it.
type query struct {
	state    queryState
	question string
	lowered  string
}

func newQuery(question string) *query {
	return &query{
		state:    stateReceived,
		question: question,
		lowered:  strings.ToLower(question),
	}
}

func (q *query) transition(next queryState) error {
	for _, allowed := range validTransitions[q.state] {
		if next == allowed {
			q.state = next
			return nil
		}
	}
	return fmt.Errorf("illegal query state transition %s -> %s", q.state, next)
}
