package search

import (
	"context"
	"errors"
	"math/rand"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/ideavault/ideavault-backend/internal/data/repos/ideastore"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// RandomSimilarity marks random samples so they rank below real matches.
const RandomSimilarity = 0.3

var (
	errNoStore    = errors.New("ideas store not configured")
	errNoEmbedder = errors.New("embedding provider not configured")
)

var tracer = otel.Tracer("ideavault/search")

// Embedder turns query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type query struct {
	text      string
	limit     int
	threshold float64

	embedOnce sync.Once
	embedding []float32
	embedErr  error
}

// strategy is one tier of the cascade. A tier is only tried when the one
// before it returned an error.
type strategy struct {
	name string
	run  func(ctx context.Context, q *query) ([]*types.ProductIdea, error)
}

type Searcher struct {
	log        *logger.Logger
	store      ideastore.ProductIdeaRepo
	embedder   Embedder
	strategies []strategy

	mu  sync.Mutex
	rng *rand.Rand
}

// NewSearcher builds the cascade: primary vector procedure, alternate
// vector procedure, keyword match. store or embedder may be nil.
func NewSearcher(log *logger.Logger, store ideastore.ProductIdeaRepo, embedder Embedder) *Searcher {
	s := &Searcher{
		log:      log.With("service", "IdeaSearch"),
		store:    store,
		embedder: embedder,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	s.strategies = []strategy{
		{name: "vector", run: s.vector(ideastore.MatchIdeasProc)},
		{name: "vector_alternate", run: s.vector(ideastore.MatchProductIdeasProc)},
		{name: "keyword", run: s.keyword},
	}
	return s
}

// SetRand replaces the shuffle source.
func (s *Searcher) SetRand(r *rand.Rand) {
	s.mu.Lock()
	s.rng = r
	s.mu.Unlock()
}

func (q *query) embed(ctx context.Context, e Embedder) ([]float32, error) {
	q.embedOnce.Do(func() {
		if e == nil {
			q.embedErr = errNoEmbedder
			return
		}
		q.embedding, q.embedErr = e.Embed(ctx, q.text)
	})
	return q.embedding, q.embedErr
}

func (s *Searcher) vector(proc string) func(ctx context.Context, q *query) ([]*types.ProductIdea, error) {
	return func(ctx context.Context, q *query) ([]*types.ProductIdea, error) {
		if s.store == nil {
			return nil, errNoStore
		}
		vec, err := q.embed(ctx, s.embedder)
		if err != nil {
			return nil, err
		}
		return s.store.MatchByEmbedding(ctx, nil, proc, vec, q.threshold, q.limit)
	}
}

func (s *Searcher) keyword(ctx context.Context, q *query) ([]*types.ProductIdea, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	return s.store.SearchKeyword(ctx, nil, FirstTerm(q.text), q.limit)
}

// Search returns up to limit ideas for text, best match first. It never
// fails; when every tier errors the result is empty.
func (s *Searcher) Search(ctx context.Context, text string, limit int, threshold float64) []types.Idea {
	ctx, span := tracer.Start(ctx, "search.ideas")
	defer span.End()

	text = strings.TrimSpace(text)
	if text == "" || limit <= 0 {
		return []types.Idea{}
	}
	q := &query{text: text, limit: limit, threshold: threshold}

	for _, st := range s.strategies {
		rows, err := st.run(ctx, q)
		if err != nil {
			s.log.Warn("Idea search tier failed", "strategy", st.name, "error", err)
			continue
		}
		span.SetAttributes(attribute.String("search.strategy", st.name), attribute.Int("search.results", len(rows)))
		return rank(toIdeas(rows, nil), limit)
	}
	span.SetAttributes(attribute.String("search.strategy", "none"))
	return []types.Idea{}
}

// ByCategory lists ideas in category; errors yield an empty list.
func (s *Searcher) ByCategory(ctx context.Context, category string, limit int) []types.Idea {
	if s.store == nil || limit <= 0 {
		return []types.Idea{}
	}
	rows, err := s.store.ListByCategory(ctx, nil, category, limit)
	if err != nil {
		s.log.Warn("Category lookup failed", "category", category, "error", err)
		return []types.Idea{}
	}
	return rank(toIdeas(rows, nil), limit)
}

// RandomSample fetches a sample and shuffles it client side. Every result
// carries RandomSimilarity.
func (s *Searcher) RandomSample(ctx context.Context, limit int) []types.Idea {
	if s.store == nil || limit <= 0 {
		return []types.Idea{}
	}
	rows, err := s.store.Sample(ctx, nil, limit)
	if err != nil {
		s.log.Warn("Random sample failed", "error", err)
		return []types.Idea{}
	}
	sim := RandomSimilarity
	out := toIdeas(rows, &sim)

	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	s.mu.Unlock()

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func toIdeas(rows []*types.ProductIdea, similarity *float64) []types.Idea {
	out := make([]types.Idea, 0, len(rows))
	for _, row := range rows {
		if row == nil {
			continue
		}
		idea := row.Idea()
		if similarity != nil {
			idea.Similarity = *similarity
		}
		out = append(out, idea)
	}
	return out
}

// rank sorts by similarity descending; ties keep store order.
func rank(ideas []types.Idea, limit int) []types.Idea {
	sort.SliceStable(ideas, func(i, j int) bool {
		return ideas[i].Similarity > ideas[j].Similarity
	})
	if len(ideas) > limit {
		ideas = ideas[:limit]
	}
	return ideas
}

// FirstTerm picks the keyword used by the ILIKE fallback: the first word of
// three or more letters, else the first word.
func FirstTerm(text string) string {
	words := strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		if len([]rune(w)) >= 3 {
			return w
		}
	}
	if len(words) > 0 {
		return words[0]
	}
	return strings.TrimSpace(text)
}
