// Package prompt builds the two prompt templates sent to the completion backend.
package prompt

import (
	"strings"

	"github.com/doeshing/vino-go/internal/domain"
)

const (
	persona = "Act as a California winery visit expert for visitors to California wine country who want an incredible visit and " +
		"tasting experience. You are a personal visit assistant named CA Wine Country Visit Assistant. Provide " +
		"the most accurate information on California wineries"

	groundingRules = " based only on the context provided. Only provide information " +
		"if there is an exact match below. Do not go outside the context provided."
)

// Compose renders the prompt for req. It is a pure function: equal inputs give
// byte-identical text.
//
// Plain mode ignores req.Context. RAG mode always uses the grounded template,
// even when no record was retrieved.
func Compose(req domain.PromptRequest) domain.Prompt {
	question := string(req.Question)
	if req.Mode != domain.PromptModeRAG {
		var sb strings.Builder
		sb.WriteString(persona)
		sb.WriteString(".\n")
		writeQuestion(&sb, question)
		return domain.Prompt{Text: sb.String(), Mode: domain.PromptModePlain, UsedIdentifiers: []string{}}
	}

	blob, used := contextBlob(req.Context)

	var sb strings.Builder
	sb.WriteString(persona)
	sb.WriteString(groundingRules)
	sb.WriteString("\nContext: ")
	sb.WriteString(blob)
	sb.WriteString("\n")
	writeQuestion(&sb, question)
	return domain.Prompt{Text: sb.String(), Mode: domain.PromptModeRAG, UsedIdentifiers: used}
}

func writeQuestion(sb *strings.Builder, question string) {
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\nAnswer: ")
}

// contextBlob joins record texts in rank order with no separator and doubles
// single quotes.
func contextBlob(records []domain.ContextRecord) (string, []string) {
	used := make([]string, 0, len(records))
	var sb strings.Builder
	for _, record := range records {
		sb.WriteString(record.Text)
		used = append(used, record.Identifier)
	}
	return EscapeQuotes(sb.String()), used
}

// EscapeQuotes doubles every single quote, as in a SQL string literal.
func EscapeQuotes(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
