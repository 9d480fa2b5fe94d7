package ideastore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm"

	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// Vector match procedures exposed by the ideas store. Both take
// (query_embedding vector, match_threshold float, match_count int).
const (
	MatchIdeasProc        = "match_ideas"
	MatchProductIdeasProc = "match_product_ideas"
)

var allowedProcs = map[string]bool{
	MatchIdeasProc:        true,
	MatchProductIdeasProc: true,
}

type ProductIdeaRepo interface {
	MatchByEmbedding(ctx context.Context, tx *gorm.DB, proc string, embedding []float32, threshold float64, limit int) ([]*types.ProductIdea, error)
	SearchKeyword(ctx context.Context, tx *gorm.DB, term string, limit int) ([]*types.ProductIdea, error)
	ListByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.ProductIdea, error)
	Sample(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ProductIdea, error)
}

type productIdeaRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProductIdeaRepo(db *gorm.DB, baseLog *logger.Logger) ProductIdeaRepo {
	repoLog := baseLog.With("repo", "ProductIdeaRepo")
	return &productIdeaRepo{db: db, log: repoLog}
}

// VectorLiteral renders an embedding in pgvector text form.
func VectorLiteral(v []float32) string {
	var b strings.Builder
	b.Grow(len(v)*8 + 2)
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'f', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

func (r *productIdeaRepo) MatchByEmbedding(ctx context.Context, tx *gorm.DB, proc string, embedding []float32, threshold float64, limit int) ([]*types.ProductIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if !allowedProcs[proc] {
		return nil, fmt.Errorf("unknown match procedure %q", proc)
	}
	if len(embedding) == 0 {
		return nil, fmt.Errorf("empty query embedding")
	}

	var results []*types.ProductIdea
	sql := fmt.Sprintf(`SELECT * FROM %s(?::vector, ?, ?)`, proc)
	if err := transaction.WithContext(ctx).
		Raw(sql, VectorLiteral(embedding), threshold, limit).
		Scan(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productIdeaRepo) SearchKeyword(ctx context.Context, tx *gorm.DB, term string, limit int) ([]*types.ProductIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProductIdea
	term = strings.TrimSpace(term)
	if term == "" {
		return results, nil
	}

	op := "LIKE"
	if transaction.Dialector.Name() == "postgres" {
		op = "ILIKE"
	}
	pattern := "%" + escapeLike(term) + "%"
	where := fmt.Sprintf(`name %[1]s ? ESCAPE '\' OR description %[1]s ? ESCAPE '\' OR category %[1]s ? ESCAPE '\'`, op)

	if err := transaction.WithContext(ctx).
		Where(where, pattern, pattern, pattern).
		Order("upvotes DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productIdeaRepo) ListByCategory(ctx context.Context, tx *gorm.DB, category string, limit int) ([]*types.ProductIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProductIdea
	category = strings.TrimSpace(category)
	if category == "" {
		return results, nil
	}
	if err := transaction.WithContext(ctx).
		Where("LOWER(category) = LOWER(?)", category).
		Order("upvotes DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *productIdeaRepo) Sample(ctx context.Context, tx *gorm.DB, limit int) ([]*types.ProductIdea, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ProductIdea
	if err := transaction.WithContext(ctx).
		Order("RANDOM()").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }
