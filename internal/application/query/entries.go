package query

import (
	"fmt"
	"strings"

	"github.com/doeshing/vino-go/internal/domain"
)

// AssistantName is how the assistant introduces itself in conversation labels.
const AssistantName = "CA Wine Country Visit Assistant"

// Entries renders an answer as the four conversation entries appended after a
// successful question: context used, metrics, response, question.
func Entries(answer domain.Answer) []domain.ConversationEntry {
	return []domain.ConversationEntry{
		{Kind: domain.EntryContext, Label: "RAG Chunks/Records Used:", Message: ContextSummary(answer.ContextIDs)},
		{Kind: domain.EntryMetrics, Label: fmt.Sprintf("Token Count for '%s':", answer.Model), Message: MetricsSummary(answer)},
		{Kind: domain.EntryAnswer, Label: fmt.Sprintf("%s (%s):", AssistantName, answer.Model), Message: answer.Response},
		{Kind: domain.EntryQuestion, Label: "You:", Message: string(answer.Question)},
	}
}

// ContextSummary joins record identifiers, or returns "none".
func ContextSummary(ids []string) string {
	if len(ids) == 0 {
		return "none"
	}
	return strings.Join(ids, ", ")
}

// MetricsSummary formats token count and timings. Unknown counts and rates are
// printed as "unknown", never as the wire sentinel.
func MetricsSummary(answer domain.Answer) string {
	rate := "unknown"
	if answer.Metrics.RateKnown {
		rate = fmt.Sprintf("%.2f", answer.Metrics.TokensPerSecond)
	}
	return fmt.Sprintf("%s tokens · %s tokens/s · %.2fs to first token + %.2fs.",
		answer.TotalTokens, rate, answer.Metrics.TimeToFirstToken, answer.Metrics.TimeForRemaining)
}

// WarningMessage is the single line shown when a question fails.
func WarningMessage(err error) string {
	return fmt.Sprintf("An error occurred while processing your question: %v", err)
}
