package query

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/doeshing/vino-go/internal/domain"
)

// Answerer is the part of Service a session needs.
type Answerer interface {
	Process(ctx context.Context, req Request) (domain.Answer, error)
	ValidateSelection(ctx context.Context, sel domain.ModelSelection) error
	DefaultSelection(ctx context.Context) (domain.ModelSelection, error)
}

// Session owns one user's selection and conversation. Questions within a
// session run one at a time; sessions share nothing.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	answerer     Answerer
	conversation domain.Conversation

	// selMu guards selection and timeout so they can change while a question runs.
	selMu     sync.Mutex
	selection domain.ModelSelection
	timeout   time.Duration
}

// NewSession creates a session starting from sel.
func NewSession(id string, answerer Answerer, sel domain.ModelSelection) *Session {
	return &Session{ID: id, CreatedAt: time.Now(), answerer: answerer, selection: sel}
}

// SetTimeout sets the per-question timeout; zero uses the configured default.
func (s *Session) SetTimeout(d time.Duration) {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	s.timeout = d
}

// Ask processes question under the current selection. An empty question is
// rejected with domain.ErrEmptyQuestion and changes nothing. Conversation
// entries are appended only after a successful, non-empty response.
func (s *Session) Ask(ctx context.Context, question string) (domain.Answer, error) {
	q := domain.Question(question).Normalize()
	if q.IsEmpty() {
		return domain.Answer{}, domain.ErrEmptyQuestion
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.selMu.Lock()
	req := Request{Question: q, Selection: s.selection, Timeout: s.timeout}
	s.selMu.Unlock()

	answer, err := s.answerer.Process(ctx, req)
	if err != nil {
		return domain.Answer{}, err
	}
	if answer.Response != "" {
		s.conversation.Append(Entries(answer)...)
	}
	return answer, nil
}

// Selection returns the current selection.
func (s *Session) Selection() domain.ModelSelection {
	s.selMu.Lock()
	defer s.selMu.Unlock()
	return s.selection
}

// Select replaces the selection after validating it.
func (s *Session) Select(ctx context.Context, sel domain.ModelSelection) error {
	return s.Update(ctx, func(domain.ModelSelection) domain.ModelSelection { return sel })
}

// Update applies change to the current selection and stores the result if it
// validates. Concurrent updates are serialized, so none is lost.
func (s *Session) Update(ctx context.Context, change func(domain.ModelSelection) domain.ModelSelection) error {
	s.selMu.Lock()
	defer s.selMu.Unlock()

	next := change(s.selection)
	if err := s.answerer.ValidateSelection(ctx, next); err != nil {
		return err
	}
	s.selection = next
	return nil
}

// SetModel switches the model, keeping the other options.
func (s *Session) SetModel(ctx context.Context, name string) error {
	return s.Update(ctx, func(sel domain.ModelSelection) domain.ModelSelection {
		sel.ModelName = name
		return sel
	})
}

// SetRAG toggles retrieval.
func (s *Session) SetRAG(ctx context.Context, on bool) error {
	return s.Update(ctx, func(sel domain.ModelSelection) domain.ModelSelection {
		sel.UseRAG = on
		return sel
	})
}

// SetChunkLimit changes how many records retrieval may return.
func (s *Session) SetChunkLimit(ctx context.Context, n int) error {
	if !domain.IsAllowedChunkLimit(n) {
		return fmt.Errorf("%w: %d (allowed %v)", domain.ErrInvalidChunkLimit, n, domain.ChunkLimits)
	}
	return s.Update(ctx, func(sel domain.ModelSelection) domain.ModelSelection {
		sel.ChunkLimit = n
		return sel
	})
}

// Conversation returns the history, newest first.
func (s *Session) Conversation() []domain.ConversationEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conversation.Newest()
}

// Reset clears the conversation. The selection is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation.Reset()
}
