package llm

import (
	"context"
	"strings"
	"time"

	"github.com/ideavault/ideavault-backend/internal/cache"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const (
	EmbeddingCacheTTL  = 30 * time.Minute
	embeddingKeyLength = 200
	embeddingCacheSize = 2048
)

// EmbeddingClient is the raw embedding call.
type EmbeddingClient interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CachedEmbedder memoizes embeddings by a normalized, truncated text key.
type CachedEmbedder struct {
	log    *logger.Logger
	client EmbeddingClient
	retry  *Retrier
	cache  *cache.TTLCache[[]float32]
}

func NewCachedEmbedder(log *logger.Logger, client EmbeddingClient, retry *Retrier) *CachedEmbedder {
	if retry == nil {
		retry = NewRetrier(log)
	}
	return &CachedEmbedder{
		log:    log.With("service", "CachedEmbedder"),
		client: client,
		retry:  retry,
		cache:  cache.NewTTLCache[[]float32](EmbeddingCacheTTL, embeddingCacheSize),
	}
}

func embeddingKey(text string) string {
	k := []rune(strings.ToLower(strings.TrimSpace(text)))
	if len(k) > embeddingKeyLength {
		k = k[:embeddingKeyLength]
	}
	return string(k)
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if e.client == nil {
		return nil, &Error{Kind: KindNotConfigured, Op: "embed"}
	}
	return e.cache.GetOrLoad(ctx, embeddingKey(text), func(ctx context.Context) ([]float32, error) {
		var vec []float32
		err := e.retry.Do(ctx, "embed", func(ctx context.Context) error {
			v, err := e.client.Embed(ctx, text)
			if err != nil {
				return err
			}
			vec = v
			return nil
		})
		if err != nil {
			return nil, err
		}
		return vec, nil
	})
}

// Sweep drops expired embeddings and returns how many were removed.
func (e *CachedEmbedder) Sweep() int { return e.cache.Sweep() }
