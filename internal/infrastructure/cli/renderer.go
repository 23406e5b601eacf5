package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/domain"
)

// RenderAnswer prints one answer as it reads in a conversation: question,
// response, metrics, context used.
func RenderAnswer(out io.Writer, answer domain.Answer) {
	entries := query.Entries(answer)
	for i := len(entries) - 1; i >= 0; i-- {
		renderEntry(out, entries[i])
	}
}

// RenderConversation prints entries in the order given; sessions hand them
// out newest first.
func RenderConversation(out io.Writer, entries []domain.ConversationEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(out, "No conversation yet.")
		return
	}
	for _, entry := range entries {
		renderEntry(out, entry)
	}
}

// RenderJSON writes the answer with its conversation entries.
func RenderJSON(out io.Writer, answer domain.Answer) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		domain.Answer
		Entries []domain.ConversationEntry `json:"entries"`
	}{answer, query.Entries(answer)})
}

// RenderWarning prints the single line shown for a failed question.
func RenderWarning(out io.Writer, err error) {
	fmt.Fprintf(out, "Warning: %s\n", query.WarningMessage(err))
}

func renderEntry(out io.Writer, entry domain.ConversationEntry) {
	if entry.Kind == domain.EntryAnswer {
		fmt.Fprintf(out, "%s\n%s\n", entry.Label, entry.Message)
		return
	}
	fmt.Fprintf(out, "%s %s\n", entry.Label, entry.Message)
}
