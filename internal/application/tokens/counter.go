// Package tokens counts prompt and response tokens without ever failing the
// surrounding request.
package tokens

import (
	"context"
	"fmt"

	"github.com/doeshing/vino-go/internal/domain"
	"github.com/doeshing/vino-go/internal/ports"
)

// Counter wraps a model tokenizer. Any failure becomes domain.UnknownTokens.
type Counter struct {
	Logger ports.Logger
}

// Count returns the token count of text under tok, or UnknownTokens.
func (c Counter) Count(ctx context.Context, tok ports.Tokenizer, text string) (count domain.TokenCount) {
	defer func() {
		if r := recover(); r != nil {
			c.warn(fmt.Errorf("%w: tokenizer panic: %v", domain.ErrTokenCount, r))
			count = domain.UnknownTokens
		}
	}()

	if tok == nil {
		return domain.UnknownTokens
	}
	n, err := tok.CountTokens(ctx, text)
	if err != nil {
		c.warn(fmt.Errorf("%w: %w", domain.ErrTokenCount, err))
		return domain.UnknownTokens
	}
	if n < 0 {
		c.warn(fmt.Errorf("%w: negative count %d", domain.ErrTokenCount, n))
		return domain.UnknownTokens
	}
	return domain.Tokens(n)
}

func (c Counter) warn(err error) {
	if c.Logger == nil {
		return
	}
	c.Logger.Warn("token count unavailable", map[string]interface{}{"error": err.Error()})
}
