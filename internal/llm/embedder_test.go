package llm

import (
	"context"
	"strings"
	"testing"

	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

type countingEmbedder struct{ calls int }

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	return []float32{float32(len(text)), 1}, nil
}

func TestCachedEmbedderReusesNormalizedKey(t *testing.T) {
	raw := &countingEmbedder{}
	e := NewCachedEmbedder(logger.Nop(), raw, testRetrier(nil))

	if _, err := e.Embed(context.Background(), "  Pet Care  "); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if _, err := e.Embed(context.Background(), "pet care"); err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if raw.calls != 1 {
		t.Fatalf("calls=%d want 1", raw.calls)
	}

	long := strings.Repeat("a", 250)
	_, _ = e.Embed(context.Background(), long)
	_, _ = e.Embed(context.Background(), long+"different tail")
	if raw.calls != 2 {
		t.Fatalf("texts sharing a 200 char prefix should share a key, calls=%d", raw.calls)
	}
}

func TestCachedEmbedderWithoutClient(t *testing.T) {
	e := NewCachedEmbedder(logger.Nop(), nil, testRetrier(nil))
	_, err := e.Embed(context.Background(), "x")
	if KindOf(err) != KindNotConfigured {
		t.Fatalf("kind=%q want not_configured", KindOf(err))
	}
}
