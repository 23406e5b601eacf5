package prompt

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/vino-go/internal/domain"
)

func TestComposePlain(t *testing.T) {
	req := domain.PromptRequest{
		Question: "Where should I taste Zinfandel?",
		Mode:     domain.PromptModePlain,
		Context:  []domain.ContextRecord{{Identifier: "ignored", Text: "ignored"}},
	}

	got := Compose(req)

	if got.Mode != domain.PromptModePlain {
		t.Errorf("Mode = %v, want plain", got.Mode)
	}
	if len(got.UsedIdentifiers) != 0 {
		t.Errorf("UsedIdentifiers = %v, want empty", got.UsedIdentifiers)
	}
	if strings.Contains(got.Text, "Context:") || strings.Contains(got.Text, "ignored") {
		t.Errorf("plain prompt leaked context: %q", got.Text)
	}
	if !strings.Contains(got.Text, "Question: Where should I taste Zinfandel?\nAnswer: ") {
		t.Errorf("question not rendered: %q", got.Text)
	}
	if strings.Contains(got.Text, "exact match") {
		t.Errorf("plain prompt carries grounding rules: %q", got.Text)
	}
}

func TestComposeRAG(t *testing.T) {
	records := []domain.ContextRecord{
		{Identifier: "Stag's Leap", Text: "Stag's Leap is in Napa. ", Similarity: 0.9},
		{Identifier: "Opus One", Text: "Opus One offers tastings. ", Similarity: 0.8},
		{Identifier: "Frog's Leap", Text: "Frog's Leap is organic.", Similarity: 0.7},
	}

	got := Compose(domain.PromptRequest{
		Question: "Tell me about wineries in Napa",
		Mode:     domain.PromptModeRAG,
		Context:  records,
	})

	wantBlob := "Context: Stag''s Leap is in Napa. Opus One offers tastings. Frog''s Leap is organic.\n"
	if !strings.Contains(got.Text, wantBlob) {
		t.Errorf("context blob missing or wrong in %q", got.Text)
	}
	if !strings.Contains(got.Text, "Only provide information if there is an exact match below.") {
		t.Errorf("grounding rules missing in %q", got.Text)
	}
	if diff := cmp.Diff([]string{"Stag's Leap", "Opus One", "Frog's Leap"}, got.UsedIdentifiers); diff != "" {
		t.Errorf("UsedIdentifiers mismatch (-want +got):\n%s", diff)
	}
}

func TestComposeRAGWithoutContextKeepsTemplate(t *testing.T) {
	got := Compose(domain.PromptRequest{Question: "Napa?", Mode: domain.PromptModeRAG})

	if got.Mode != domain.PromptModeRAG {
		t.Fatalf("Mode = %v, want rag", got.Mode)
	}
	if !strings.Contains(got.Text, "Context: \nQuestion: Napa?") {
		t.Errorf("expected empty context blob, got %q", got.Text)
	}
	if plain := Compose(domain.PromptRequest{Question: "Napa?"}); plain.Text == got.Text {
		t.Error("empty RAG prompt must differ from plain prompt")
	}
	if got.UsedIdentifiers == nil || len(got.UsedIdentifiers) != 0 {
		t.Errorf("UsedIdentifiers = %#v, want empty slice", got.UsedIdentifiers)
	}
}

func TestComposeIsDeterministic(t *testing.T) {
	reqs := []domain.PromptRequest{
		{Question: "What's open on Sunday?", Mode: domain.PromptModePlain},
		{Question: "What's open on Sunday?", Mode: domain.PromptModeRAG, Context: []domain.ContextRecord{
			{Identifier: "A", Text: "Al's 'tasting' room"},
			{Identifier: "B", Text: "B''s cellar"},
		}},
	}
	for _, req := range reqs {
		first := Compose(req)
		second := Compose(req)
		if diff := cmp.Diff(first, second); diff != "" {
			t.Errorf("%s prompt not deterministic (-first +second):\n%s", req.Mode, diff)
		}
	}
}

func TestEscapeQuotes(t *testing.T) {
	tests := map[string]string{
		"":            "",
		"no quotes":   "no quotes",
		"it's":        "it''s",
		"''":          "''''",
		`"double" ok`: `"double" ok`,
		"a'b'c":       "a''b''c",
	}
	for in, want := range tests {
		if got := EscapeQuotes(in); got != want {
			t.Errorf("EscapeQuotes(%q) = %q, want %q", in, got, want)
		}
	}
}
