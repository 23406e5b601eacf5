package tokens

import (
	"context"
	"errors"
	"testing"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/pkg/logger"
)

type stubTokenizer struct {
	n     int
	err   error
	panic bool
}

func (s stubTokenizer) CountTokens(context.Context, string) (int, error) {
	if s.panic {
		panic("tokenizer exploded")
	}
	return s.n, s.err
}

func TestCounterCount(t *testing.T) {
	tests := []struct {
		name string
		tok  stubTokenizer
		want domain.TokenCount
	}{
		{name: "known count", tok: stubTokenizer{n: 128}, want: domain.Tokens(128)},
		{name: "zero", tok: stubTokenizer{n: 0}, want: domain.Tokens(0)},
		{name: "backend error", tok: stubTokenizer{err: errors.New("unsupported model")}, want: domain.UnknownTokens},
		{name: "unsupported", tok: stubTokenizer{err: domain.ErrTokenCountUnsupported}, want: domain.UnknownTokens},
		{name: "negative count", tok: stubTokenizer{n: -3}, want: domain.UnknownTokens},
		{name: "panic", tok: stubTokenizer{panic: true}, want: domain.UnknownTokens},
	}

	counter := Counter{Logger: logger.Nop()}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := counter.Count(context.Background(), tt.tok, "hello")
			if got != tt.want {
				t.Fatalf("Count() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCounterFailureSentinel(t *testing.T) {
	got := Counter{}.Count(context.Background(), stubTokenizer{err: errors.New("fault")}, "x")
	if got.Sentinel() != -9999 {
		t.Fatalf("Sentinel() = %d, want -9999", got.Sentinel())
	}
}

func TestCounterNilTokenizer(t *testing.T) {
	if got := (Counter{}).Count(context.Background(), nil, "x"); got.Known() {
		t.Fatalf("Count(nil) = %v, want unknown", got)
	}
}
