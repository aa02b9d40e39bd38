package rag

import (
	"strings"

	"fundfaq-ai/internal/corpus"
)

// routeRule maps trigger keywords onto the chunk type that answers them.
type routeRule struct {
	chunkType corpus.ChunkType
	keywords  []string
}

// routingTable is evaluated in order and every matching rule contributes its
// type, so a question touching several categories searches all of them.
// "rank"/"ranking" are deliberately absent: ranking questions are refused by
// the guardrail before routing runs.
var routingTable = []routeRule{
	{
		chunkType: corpus.TypeExpenseInformation,
		keywords:  []string{"expense", "expenses", "fee", "fees", "charges", "stamp duty", "cost"},
	},
	{
		chunkType: corpus.TypeNAVSIPInformation,
		keywords:  []string{"nav", "net asset value", "current price", "sip", "exit load", "minimum investment"},
	},
	{
		chunkType: corpus.TypeFundCharacteristics,
		keywords:  []string{"fund size", "aum", "fund manager", "manager", "lock-in", "lock in", "elss", "scheme type", "category"},
	},
	{
		chunkType: corpus.TypePerformanceMetrics,
		keywords:  []string{"return", "returns", "performance", "cagr", "annualised", "annualized", "pe ratio", "p/e", "pb ratio", "p/b"},
	},
	{
		chunkType: corpus.TypeHoldingsInformation,
		keywords:  []string{"holding", "holdings", "stocks", "invested in", "companies"},
	},
	{
		chunkType: corpus.TypeRiskMetrics,
		keywords:  []string{"risk", "riskometer", "volatility", "alpha", "beta", "sharpe", "sortino", "benchmark"},
	},
}

// routeQuery selects the chunk types to search for a lowercased question.
// A question matching no rule searches all six types.
func routeQuery(lowered string) []corpus.ChunkType {
	var types []corpus.ChunkType
	for _, rule := range routingTable {
		for _, keyword := range rule.keywords {
			if strings.Contains(lowered, keyword) {
				types = append(types, rule.chunkType)
				break
			}
		}
	}
	if len(types) == 0 {
		return corpus.ChunkTypes
	}
	return types
}
