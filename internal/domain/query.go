package domain

import "strings"

// Question is the user's free-text input. Empty questions are never processed.
type Question string

// Normalize trims surrounding whitespace.
func (q Question) Normalize() Question {
	return Question(strings.TrimSpace(string(q)))
}

// IsEmpty reports whether there is nothing to ask.
func (q Question) IsEmpty() bool {
	return strings.TrimSpace(string(q)) == ""
}

// ContextRecord is one retrieved corpus entry with its similarity to the question.
type ContextRecord struct {
	Identifier string  `json:"identifier"`
	Text       string  `json:"text"`
	Similarity float64 `json:"similarity"`
}

// CorpusRecord is a stored corpus entry together with its embedding.
type CorpusRecord struct {
	Identifier string
	Text       string
	Embedding  []float32
}

// PromptMode selects one of the two prompt templates.
type PromptMode int

const (
	PromptModePlain PromptMode = iota
	PromptModeRAG
)

// String implements fmt.Stringer.
func (m PromptMode) String() string {
	if m == PromptModeRAG {
		return "rag"
	}
	return "plain"
}

// ModeFor maps the RAG toggle to a prompt mode.
func ModeFor(useRAG bool) PromptMode {
	if useRAG {
		return PromptModeRAG
	}
	return PromptModePlain
}

// PromptRequest is the input to prompt composition. Context is empty in plain mode.
type PromptRequest struct {
	Question Question
	Mode     PromptMode
	Context  []ContextRecord
}

// Prompt is the composed prompt text plus the identifiers of the records it used.
type Prompt struct {
	Text            string
	Mode            PromptMode
	UsedIdentifiers []string
}

// Answer is what the core hands back to a presentation layer for one question.
type Answer struct {
	Question     Question   `json:"question"`
	Model        string     `json:"model"`
	Response     string     `json:"response"`
	ContextIDs   []string   `json:"context_ids"`
	PromptTokens TokenCount `json:"prompt_tokens"`
	TotalTokens  TokenCount `json:"token_count"`
	Metrics      Metrics    `json:"metrics"`
}
