package embedding

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/pkg/logger"
)

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		var req ollamaEmbedRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "test-model" || req.Prompt != "hello" {
			t.Errorf("unexpected request %+v", req)
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"embedding": []float32{0.1, 0.2, 0.3},
		})
	}))
	defer server.Close()

	embedder := NewOllamaEmbedder(server.URL+"/", "test-model", server.Client(), logger.Nop())
	emb, err := embedder.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if diff := cmp.Diff([]float32{0.1, 0.2, 0.3}, emb); diff != "" {
		t.Errorf("embedding mismatch (-want +got):\n%s", diff)
	}
	if embedder.Name() != "ollama/test-model" {
		t.Errorf("Name() = %s", embedder.Name())
	}
}

func TestOllamaEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	_, err := NewOllamaEmbedder(server.URL, "", server.Client(), nil).Embed(context.Background(), "hello")
	if err == nil || !strings.Contains(err.Error(), "500") {
		t.Fatalf("Embed() error = %v", err)
	}
}

func TestOllamaEmbedder_EmptyVector(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"embedding": []}`)
	}))
	defer server.Close()

	if _, err := NewOllamaEmbedder(server.URL, "", server.Client(), nil).Embed(context.Background(), "x"); err == nil {
		t.Fatal("expected error for empty embedding")
	}
}

func TestGeminiEmbedder(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "test-key")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "text-embedding-004") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("content-type", "application/json")
		_, _ = io.WriteString(w, `{"embeddings":[{"values":[0.5,0.25,0.125]}]}`)
	}))
	defer server.Close()

	embedder, err := New(context.Background(), domain.EmbeddingSettings{
		Provider:  domain.ProviderKindGemini,
		Endpoint:  server.URL,
		Dimension: 3,
	}, server.Client(), logger.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	emb, err := embedder.Embed(context.Background(), "Napa")
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if diff := cmp.Diff([]float32{0.5, 0.25, 0.125}, emb); diff != "" {
		t.Errorf("embedding mismatch (-want +got):\n%s", diff)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), domain.EmbeddingSettings{Provider: "word2vec"}, http.DefaultClient, nil); err == nil {
		t.Fatal("expected error")
	}
}
