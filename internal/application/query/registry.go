package query

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/doeshing/vino-go/internal/domain"
)

// Registry keeps the live sessions of a long-running process.
type Registry struct {
	answerer Answerer
	newID    func() string

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry(answerer Answerer) *Registry {
	return &Registry{
		answerer: answerer,
		newID:    func() string { return uuid.NewString() },
		sessions: make(map[string]*Session),
	}
}

// Create starts a session. A nil sel uses the configured defaults.
func (r *Registry) Create(ctx context.Context, sel *domain.ModelSelection) (*Session, error) {
	var selection domain.ModelSelection
	if sel == nil {
		def, err := r.answerer.DefaultSelection(ctx)
		if err != nil {
			return nil, err
		}
		selection = def
	} else {
		if err := r.answerer.ValidateSelection(ctx, *sel); err != nil {
			return nil, err
		}
		selection = *sel
	}

	session := NewSession(r.newID(), r.answerer, selection)
	r.mu.Lock()
	r.sessions[session.ID] = session
	r.mu.Unlock()
	return session, nil
}

// Get looks up a session by id.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	return session, nil
}

// Delete drops a session and its conversation.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", domain.ErrSessionNotFound, id)
	}
	delete(r.sessions, id)
	return nil
}

// IDs lists session ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.sessions))
	for id := range r.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
