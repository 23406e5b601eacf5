package domain

import (
	"encoding/json"
	"strconv"
)

// UnknownTokenSentinel is how an unknown count is written on the wire.
const UnknownTokenSentinel = -9999

// TokenCount is a token tally that may be unknown. The zero value is unknown,
// so a count that was never measured can't be mistaken for zero tokens.
type TokenCount struct {
	n     int
	known bool
}

// UnknownTokens is the count reported when a tokenizer could not produce one.
var UnknownTokens = TokenCount{}

// Tokens returns a known count. Negative inputs are treated as unknown.
func Tokens(n int) TokenCount {
	if n < 0 {
		return UnknownTokens
	}
	return TokenCount{n: n, known: true}
}

// Known reports whether the count was measured.
func (t TokenCount) Known() bool {
	return t.known
}

// Value returns the count and whether it is known.
func (t TokenCount) Value() (int, bool) {
	return t.n, t.known
}

// Add sums two counts; the result is unknown if either side is.
func (t TokenCount) Add(other TokenCount) TokenCount {
	if !t.known || !other.known {
		return UnknownTokens
	}
	return Tokens(t.n + other.n)
}

// Sentinel returns the count, or UnknownTokenSentinel when unknown.
func (t TokenCount) Sentinel() int {
	if !t.known {
		return UnknownTokenSentinel
	}
	return t.n
}

// String renders "unknown" instead of a negative number.
func (t TokenCount) String() string {
	if !t.known {
		return "unknown"
	}
	return strconv.Itoa(t.n)
}

// MarshalJSON writes the count as an integer, using the sentinel when unknown.
func (t TokenCount) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Sentinel())
}

// UnmarshalJSON accepts an integer; negative values decode as unknown.
func (t *TokenCount) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*t = Tokens(n)
	return nil
}
