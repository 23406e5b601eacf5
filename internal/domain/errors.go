package domain

import "errors"

// Failure classes surfaced by the question-answering core. Backend errors are
// wrapped so callers can match the class with errors.Is and still print the
// backend's own message.
var (
	ErrEmptyQuestion         = errors.New("question is empty")
	ErrUnsupportedModel      = errors.New("unsupported model")
	ErrInvalidChunkLimit     = errors.New("invalid chunk limit")
	ErrRetrieval             = errors.New("retrieval failed")
	ErrGeneration            = errors.New("generation failed")
	ErrTokenCount            = errors.New("token count failed")
	ErrTokenCountUnsupported = errors.New("token counting not supported for this model")
	ErrSessionNotFound       = errors.New("session not found")
)
