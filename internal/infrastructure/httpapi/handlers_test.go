package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/vino-go/internal/application/query"
	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/pkg/logger"
)

func testConfig() domain.Config {
	return domain.Config{
		Preferences: domain.Preferences{DefaultModel: "claude-3-haiku", UseRAG: true, ChunkLimit: 6},
		Models: []domain.ModelDefinition{
			{Name: "claude-3-haiku", Provider: domain.ProviderKindAnthropic, ModelID: "claude-3-haiku-20240307"},
			{Name: "gemini-2.0-flash", Provider: domain.ProviderKindGemini, ModelID: "gemini-2.0-flash"},
		},
	}
}

type stubConfigProvider struct{ cfg domain.Config }

func (s stubConfigProvider) Load(context.Context) (domain.Config, error) { return s.cfg, nil }

type stubAnswerer struct {
	cfg      domain.Config
	response string
	err      error
}

func (s *stubAnswerer) Process(_ context.Context, req query.Request) (domain.Answer, error) {
	if s.err != nil {
		return domain.Answer{}, s.err
	}
	return domain.Answer{
		Question:     req.Question,
		Model:        req.Selection.ModelName,
		Response:     s.response,
		ContextIDs:   []string{"Opus One Winery"},
		PromptTokens: domain.Tokens(10),
		TotalTokens:  domain.Tokens(14),
	}, nil
}

func (s *stubAnswerer) ValidateSelection(_ context.Context, sel domain.ModelSelection) error {
	return sel.Validate(s.cfg)
}

func (s *stubAnswerer) DefaultSelection(context.Context) (domain.ModelSelection, error) {
	return s.cfg.DefaultSelection(), nil
}

type fixture struct {
	router   http.Handler
	answerer *stubAnswerer
}

func newFixture() fixture {
	cfg := testConfig()
	answerer := &stubAnswerer{cfg: cfg, response: "Book a tasting at Opus One."}
	h := NewHandler(query.NewRegistry(answerer), stubConfigProvider{cfg: cfg}, logger.Nop())
	return fixture{router: NewRouter(h), answerer: answerer}
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	f.router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.NewDecoder(rr.Body).Decode(&out); err != nil {
		t.Fatalf("decode %q: %v", rr.Body.String(), err)
	}
	return out
}

func (f fixture) createSession(t *testing.T) sessionResponse {
	t.Helper()
	rr := f.do(t, http.MethodPost, "/api/v1/sessions", "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("create session: expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	return decode[sessionResponse](t, rr)
}

func TestListModels(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/api/v1/models", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	got := decode[modelsResponse](t, rr)
	want := modelsResponse{
		Models: []modelResponse{
			{Name: "claude-3-haiku", Provider: domain.ProviderKindAnthropic, ModelID: "claude-3-haiku-20240307", Default: true},
			{Name: "gemini-2.0-flash", Provider: domain.ProviderKindGemini, ModelID: "gemini-2.0-flash"},
		},
		ChunkLimits:       []int{4, 6, 8, 10, 12, 14, 16},
		DefaultChunkLimit: 6,
		UseRAG:            true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("models mismatch (-want +got):\n%s", diff)
	}
}

func TestCreateSessionUsesDefaults(t *testing.T) {
	t.Parallel()
	f := newFixture()

	got := f.createSession(t)
	if got.ID == "" {
		t.Fatal("expected a session id")
	}
	if got.Model != "claude-3-haiku" || !got.UseRAG || got.ChunkLimit != 6 {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestCreateSessionWithSelection(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/api/v1/sessions", `{"model":"gemini-2.0-flash","use_rag":false,"chunk_limit":12}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[sessionResponse](t, rr)
	if got.Model != "gemini-2.0-flash" || got.UseRAG || got.ChunkLimit != 12 {
		t.Fatalf("unexpected session %+v", got)
	}
}

func TestCreateSessionRejectsUnknownModel(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/api/v1/sessions", `{"model":"gpt-2"}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	body := decode[map[string]string](t, rr)
	if !strings.Contains(body["error"], "unsupported model") {
		t.Fatalf("unexpected error body %v", body)
	}
}

func TestUpdateSelection(t *testing.T) {
	t.Parallel()
	f := newFixture()
	s := f.createSession(t)
	path := fmt.Sprintf("/api/v1/sessions/%s/selection", s.ID)

	rr := f.do(t, http.MethodPut, path, `{"chunk_limit":5}`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("chunk 5: expected 400, got %d", rr.Code)
	}

	rr = f.do(t, http.MethodPut, path, `{"chunk_limit":8,"use_rag":false}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	got := decode[sessionResponse](t, rr)
	want := sessionResponse{ID: s.ID, Model: "claude-3-haiku", UseRAG: false, ChunkLimit: 8}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestConcurrentSelectionUpdatesKeepEveryField(t *testing.T) {
	t.Parallel()
	f := newFixture()
	s := f.createSession(t)
	path := fmt.Sprintf("/api/v1/sessions/%s/selection", s.ID)

	bodies := []string{
		`{"model":"gemini-2.0-flash"}`,
		`{"use_rag":false}`,
		`{"chunk_limit":12}`,
	}
	var wg sync.WaitGroup
	for _, body := range bodies {
		wg.Add(1)
		go func(body string) {
			defer wg.Done()
			if rr := f.do(t, http.MethodPut, path, body); rr.Code != http.StatusOK {
				t.Errorf("PUT %s: expected 200, got %d", body, rr.Code)
			}
		}(body)
	}
	wg.Wait()

	got := decode[sessionResponse](t, f.do(t, http.MethodPut, path, `{}`))
	want := sessionResponse{ID: s.ID, Model: "gemini-2.0-flash", UseRAG: false, ChunkLimit: 12}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("selection mismatch (-want +got):\n%s", diff)
	}
}

func TestAskQuestionAppendsConversation(t *testing.T) {
	t.Parallel()
	f := newFixture()
	s := f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/questions", `{"question":"Where should I taste in Napa?"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var answer struct {
		Response   string                     `json:"response"`
		Model      string                     `json:"model"`
		TokenCount int                        `json:"token_count"`
		Entries    []domain.ConversationEntry `json:"entries"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&answer); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if answer.Response != "Book a tasting at Opus One." || answer.TokenCount != 14 || len(answer.Entries) != 4 {
		t.Fatalf("unexpected answer %+v", answer)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/sessions/"+s.ID+"/conversation", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	conv := decode[conversationResponse](t, rr)
	kinds := make([]domain.EntryKind, 0, len(conv.Entries))
	for _, e := range conv.Entries {
		kinds = append(kinds, e.Kind)
	}
	wantKinds := []domain.EntryKind{domain.EntryQuestion, domain.EntryAnswer, domain.EntryMetrics, domain.EntryContext}
	if diff := cmp.Diff(wantKinds, kinds); diff != "" {
		t.Fatalf("conversation order mismatch (-want +got):\n%s", diff)
	}
}

func TestAskQuestionErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		err      error
		question string
		want     int
		contains string
	}{
		{name: "empty question", question: "   ", want: http.StatusBadRequest, contains: "question is empty"},
		{name: "generation", question: "hi", err: fmt.Errorf("%w: anthropic: overloaded", domain.ErrGeneration), want: http.StatusBadGateway, contains: "An error occurred while processing your question"},
		{name: "retrieval", question: "hi", err: fmt.Errorf("%w: corpus offline", domain.ErrRetrieval), want: http.StatusBadGateway, contains: "corpus offline"},
		{name: "other", question: "hi", err: errors.New("boom"), want: http.StatusInternalServerError, contains: "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			f := newFixture()
			f.answerer.err = tt.err
			s := f.createSession(t)

			body, _ := json.Marshal(QuestionRequest{Question: tt.question})
			rr := f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/questions", string(body))
			if rr.Code != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, rr.Code)
			}
			got := decode[map[string]string](t, rr)
			if !strings.Contains(got["error"], tt.contains) {
				t.Fatalf("error %q does not contain %q", got["error"], tt.contains)
			}

			rr = f.do(t, http.MethodGet, "/api/v1/sessions/"+s.ID+"/conversation", "")
			if conv := decode[conversationResponse](t, rr); len(conv.Entries) != 0 {
				t.Fatalf("failed question left entries: %+v", conv.Entries)
			}
		})
	}
}

func TestEmptyResponseLeavesConversationUntouched(t *testing.T) {
	t.Parallel()
	f := newFixture()
	f.answerer.response = ""
	s := f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/questions", `{"question":"hi"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if got := decode[answerResponse](t, rr); len(got.Entries) != 0 {
		t.Fatalf("expected no entries, got %+v", got.Entries)
	}

	rr = f.do(t, http.MethodGet, "/api/v1/sessions/"+s.ID+"/conversation", "")
	if conv := decode[conversationResponse](t, rr); len(conv.Entries) != 0 {
		t.Fatalf("expected empty conversation, got %+v", conv.Entries)
	}
}

func TestResetAndDeleteSession(t *testing.T) {
	t.Parallel()
	f := newFixture()
	s := f.createSession(t)
	base := "/api/v1/sessions/" + s.ID

	f.do(t, http.MethodPost, base+"/questions", `{"question":"hi"}`)

	if rr := f.do(t, http.MethodDelete, base+"/conversation", ""); rr.Code != http.StatusNoContent {
		t.Fatalf("reset: expected 204, got %d", rr.Code)
	}
	rr := f.do(t, http.MethodGet, base+"/conversation", "")
	if conv := decode[conversationResponse](t, rr); len(conv.Entries) != 0 {
		t.Fatalf("expected empty conversation after reset, got %d entries", len(conv.Entries))
	}

	if rr := f.do(t, http.MethodDelete, base, ""); rr.Code != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", rr.Code)
	}
	if rr := f.do(t, http.MethodGet, base+"/conversation", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rr.Code)
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	t.Parallel()
	f := newFixture()
	a := f.createSession(t)
	b := f.createSession(t)

	f.do(t, http.MethodPost, "/api/v1/sessions/"+a.ID+"/questions", `{"question":"hi"}`)
	f.do(t, http.MethodPut, "/api/v1/sessions/"+a.ID+"/selection", `{"model":"gemini-2.0-flash"}`)

	rr := f.do(t, http.MethodGet, "/api/v1/sessions/"+b.ID+"/conversation", "")
	if conv := decode[conversationResponse](t, rr); len(conv.Entries) != 0 {
		t.Fatalf("session b sees session a's entries: %+v", conv.Entries)
	}
	rr = f.do(t, http.MethodPut, "/api/v1/sessions/"+b.ID+"/selection", `{}`)
	if got := decode[sessionResponse](t, rr); got.Model != "claude-3-haiku" {
		t.Fatalf("session b model = %q, want claude-3-haiku", got.Model)
	}
}

func TestUnknownSessionReturns404(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rr := f.do(t, http.MethodPost, "/api/v1/sessions/missing/questions", `{"question":"hi"}`)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestInvalidBodyReturns400(t *testing.T) {
	t.Parallel()
	f := newFixture()
	s := f.createSession(t)

	rr := f.do(t, http.MethodPost, "/api/v1/sessions/"+s.ID+"/questions", `{"question":`)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()
	f := newFixture()

	rr := f.do(t, http.MethodGet, "/health", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}
