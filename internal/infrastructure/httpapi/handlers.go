package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

// Handler serves the session API over a Registry.
type Handler struct {
	registry *query.Registry
	config   ports.ConfigProvider
	logger   ports.Logger
}

func NewHandler(registry *query.Registry, config ports.ConfigProvider, logger ports.Logger) *Handler {
	return &Handler{registry: registry, config: config, logger: logger}
}

type modelResponse struct {
	Name     string              `json:"name"`
	Provider domain.ProviderKind `json:"provider"`
	ModelID  string              `json:"model_id"`
	Default  bool                `json:"default"`
}

type modelsResponse struct {
	Models            []modelResponse `json:"models"`
	ChunkLimits       []int           `json:"chunk_limits"`
	DefaultChunkLimit int             `json:"default_chunk_limit"`
	UseRAG            bool            `json:"use_rag"`
}

// SelectionRequest changes any subset of the selection.
type SelectionRequest struct {
	Model      *string `json:"model,omitempty"`
	UseRAG     *bool   `json:"use_rag,omitempty"`
	ChunkLimit *int    `json:"chunk_limit,omitempty"`
}

type sessionResponse struct {
	ID         string `json:"id"`
	Model      string `json:"model"`
	UseRAG     bool   `json:"use_rag"`
	ChunkLimit int    `json:"chunk_limit"`
}

// QuestionRequest is the body of POST /sessions/{id}/questions.
type QuestionRequest struct {
	Question string `json:"question"`
}

type answerResponse struct {
	domain.Answer
	Entries []domain.ConversationEntry `json:"entries"`
}

type conversationResponse struct {
	Entries []domain.ConversationEntry `json:"entries"`
}

func (h *Handler) ListModels(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.config.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}
	out := modelsResponse{
		Models:            make([]modelResponse, 0, len(cfg.Models)),
		ChunkLimits:       domain.ChunkLimits,
		DefaultChunkLimit: cfg.GetChunkLimit(),
		UseRAG:            cfg.Preferences.UseRAG,
	}
	for _, m := range cfg.Models {
		out.Models = append(out.Models, modelResponse{
			Name:     m.Name,
			Provider: m.Kind(),
			ModelID:  m.ModelID,
			Default:  m.Name == cfg.Preferences.DefaultModel,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req SelectionRequest
	if err := decodeOptional(r.Body, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg, err := h.config.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load configuration")
		return
	}
	sel := req.apply(cfg.DefaultSelection())
	session, err := h.registry.Create(r.Context(), &sel)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(session))
}

func (h *Handler) UpdateSelection(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req SelectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := session.Update(r.Context(), req.apply); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toSessionResponse(session))
}

func (h *Handler) AskQuestion(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	var req QuestionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	answer, err := session.Ask(r.Context(), req.Question)
	if err != nil {
		h.logger.Warn("question failed", map[string]interface{}{
			"session": session.ID,
			"error":   err.Error(),
		})
		writeServiceError(w, err)
		return
	}
	out := answerResponse{Answer: answer, Entries: []domain.ConversationEntry{}}
	if answer.Response != "" {
		out.Entries = query.Entries(answer)
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *Handler) GetConversation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, conversationResponse{Entries: session.Conversation()})
}

func (h *Handler) ResetConversation(w http.ResponseWriter, r *http.Request) {
	session, ok := h.session(w, r)
	if !ok {
		return
	}
	session.Reset()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.Delete(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) (*query.Session, bool) {
	session, err := h.registry.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, err)
		return nil, false
	}
	return session, true
}

func (req SelectionRequest) apply(base domain.ModelSelection) domain.ModelSelection {
	if req.Model != nil {
		base.ModelName = *req.Model
	}
	if req.UseRAG != nil {
		base.UseRAG = *req.UseRAG
	}
	if req.ChunkLimit != nil {
		base.ChunkLimit = *req.ChunkLimit
	}
	return base
}

func toSessionResponse(s *query.Session) sessionResponse {
	sel := s.Selection()
	return sessionResponse{
		ID:         s.ID,
		Model:      sel.ModelName,
		UseRAG:     sel.UseRAG,
		ChunkLimit: sel.ChunkLimit,
	}
}

// decodeOptional accepts an empty body.
func decodeOptional(body io.Reader, v interface{}) error {
	err := json.NewDecoder(body).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// statusFor maps the core's failure classes onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmptyQuestion),
		errors.Is(err, domain.ErrUnsupportedModel),
		errors.Is(err, domain.ErrInvalidChunkLimit):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrRetrieval),
		errors.Is(err, domain.ErrGeneration):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeServiceError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusBadGateway || status == http.StatusGatewayTimeout {
		message = query.WarningMessage(err)
	}
	writeError(w, status, message)
}

func writeJSON(w http.ResponseWriter, statusCode int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, `{"error":"failed to encode response"}`, http.StatusInternalServerError)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, map[string]string{"error": message})
}
