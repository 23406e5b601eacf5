package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/doeshing/vino-go/internal/domain"
)

func TestTokenCount(t *testing.T) {
	tests := []struct {
		name         string
		count        domain.TokenCount
		wantKnown    bool
		wantSentinel int
		wantString   string
	}{
		{name: "zero value is unknown", count: domain.TokenCount{}, wantKnown: false, wantSentinel: -9999, wantString: "unknown"},
		{name: "known count", count: domain.Tokens(42), wantKnown: true, wantSentinel: 42, wantString: "42"},
		{name: "known zero", count: domain.Tokens(0), wantKnown: true, wantSentinel: 0, wantString: "0"},
		{name: "negative becomes unknown", count: domain.Tokens(-9999), wantKnown: false, wantSentinel: -9999, wantString: "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.count.Known(); got != tt.wantKnown {
				t.Errorf("Known() = %v, want %v", got, tt.wantKnown)
			}
			if got := tt.count.Sentinel(); got != tt.wantSentinel {
				t.Errorf("Sentinel() = %d, want %d", got, tt.wantSentinel)
			}
			if got := tt.count.String(); got != tt.wantString {
				t.Errorf("String() = %q, want %q", got, tt.wantString)
			}
		})
	}
}

func TestTokenCountAdd(t *testing.T) {
	if got := domain.Tokens(10).Add(domain.Tokens(5)); got != domain.Tokens(15) {
		t.Errorf("10+5 = %v, want 15", got)
	}
	if got := domain.Tokens(10).Add(domain.UnknownTokens); got.Known() {
		t.Errorf("10+unknown = %v, want unknown", got)
	}
	if got := domain.UnknownTokens.Add(domain.Tokens(3)); got.Known() {
		t.Errorf("unknown+3 = %v, want unknown", got)
	}
}

func TestTokenCountJSON(t *testing.T) {
	raw, err := json.Marshal(struct {
		A domain.TokenCount `json:"a"`
		B domain.TokenCount `json:"b"`
	}{A: domain.Tokens(7), B: domain.UnknownTokens})
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(raw) != `{"a":7,"b":-9999}` {
		t.Fatalf("Marshal() = %s", raw)
	}

	var decoded domain.TokenCount
	if err := json.Unmarshal([]byte("-9999"), &decoded); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if decoded.Known() {
		t.Fatal("sentinel should decode as unknown")
	}
}
