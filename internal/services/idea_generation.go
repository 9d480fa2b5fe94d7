package services

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode"

	"golang.org/x/sync/errgroup"

	"github.com/ideavault/ideavault-backend/internal/data/repos"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/llm"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/ctxutil"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
	"github.com/ideavault/ideavault-backend/internal/search"
)

const (
	GenerationStructured = "structured"
	GenerationFreeform   = "freeform"

	MinIdeaCount     = 1
	MaxIdeaCount     = 10
	DefaultIdeaCount = 3

	structuredThreshold = 0.6
	freeformThreshold   = 0.5
	singleRetrieveLimit = 10
	maxSynthesized      = 3
	synthContextSize    = 5
	persistConcurrency  = 4
	defaultSimilarity   = 0.5
)

type StructuredInput struct {
	Category       string `json:"category"`
	Difficulty     string `json:"difficulty"`
	TargetAudience string `json:"targetAudience"`
}

type GenerateIdeasRequest struct {
	Type     string           `json:"type"`
	Data     *StructuredInput `json:"data,omitempty"`
	Prompt   string           `json:"prompt,omitempty"`
	Multiple bool             `json:"multiple,omitempty"`
	Count    *int             `json:"count,omitempty"`
}

type GenerateIdeasResult struct {
	Ideas           []types.Idea `json:"ideas"`
	Total           int          `json:"total"`
	Source          string       `json:"source"`
	AIGenerated     int          `json:"ai_generated"`
	DatabaseMatched int          `json:"database_matched"`
	Model           string       `json:"model"`
}

// IdeaSearcher is the cascading idea search.
type IdeaSearcher interface {
	Search(ctx context.Context, text string, limit int, threshold float64) []types.Idea
	ByCategory(ctx context.Context, category string, limit int) []types.Idea
	RandomSample(ctx context.Context, limit int) []types.Idea
}

// IdeaSynthesizer produces new ideas; it returns an empty list on failure.
type IdeaSynthesizer interface {
	SynthesizeIdeas(ctx context.Context, req llm.IdeaSynthesisRequest) []types.Idea
}

type IdeaGenerationService interface {
	Generate(ctx context.Context, req GenerateIdeasRequest) (*GenerateIdeasResult, error)
}

type ideaGenerationService struct {
	log         *logger.Logger
	searcher    IdeaSearcher
	synthesizer IdeaSynthesizer
	ideaRepo    repos.UserIdeaRepo
	model       string
	now         func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

func NewIdeaGenerationService(log *logger.Logger, searcher IdeaSearcher, synthesizer IdeaSynthesizer, ideaRepo repos.UserIdeaRepo, model string) IdeaGenerationService {
	serviceLog := log.With("service", "IdeaGenerationService")
	if model == "" {
		model = "fallback"
	}
	return &ideaGenerationService{
		log:         serviceLog,
		searcher:    searcher,
		synthesizer: synthesizer,
		ideaRepo:    ideaRepo,
		model:       model,
		now:         time.Now,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

type generationPlan struct {
	mode      string
	input     StructuredInput
	prompt    string
	keywords  []string
	count     int
	multiple  bool
	query     string
	threshold float64
}

// ValidateGenerateRequest checks the request and resolves the idea count.
// It has no side effects.
func ValidateGenerateRequest(req GenerateIdeasRequest) (*generationPlan, error) {
	plan := &generationPlan{mode: strings.ToLower(strings.TrimSpace(req.Type)), multiple: req.Multiple}

	switch plan.mode {
	case GenerationStructured:
		if req.Data == nil {
			return nil, apierr.BadRequest("Missing required fields: category, difficulty, targetAudience")
		}
		in := StructuredInput{
			Category:       strings.TrimSpace(req.Data.Category),
			Difficulty:     strings.TrimSpace(req.Data.Difficulty),
			TargetAudience: strings.TrimSpace(req.Data.TargetAudience),
		}
		var missing []string
		if in.Category == "" {
			missing = append(missing, "category")
		}
		if in.Difficulty == "" {
			missing = append(missing, "difficulty")
		}
		if in.TargetAudience == "" {
			missing = append(missing, "targetAudience")
		}
		if len(missing) > 0 {
			return nil, apierr.BadRequest("Missing required fields: " + strings.Join(missing, ", "))
		}
		plan.input = in
		plan.query = fmt.Sprintf("%s %s %s", in.Category, in.Difficulty, in.TargetAudience)
		plan.threshold = structuredThreshold
	case GenerationFreeform:
		prompt := strings.TrimSpace(req.Prompt)
		if prompt == "" {
			return nil, apierr.BadRequest("Prompt is required for freeform generation")
		}
		plan.prompt = prompt
		plan.keywords = promptKeywords(prompt)
		plan.query = prompt + " startup business idea"
		plan.threshold = freeformThreshold
	default:
		return nil, apierr.BadRequest("Invalid type. Must be 'structured' or 'freeform'")
	}

	plan.count = 1
	if req.Multiple {
		plan.count = DefaultIdeaCount
		if req.Count != nil {
			plan.count = *req.Count
		}
		if plan.count < MinIdeaCount || plan.count > MaxIdeaCount {
			return nil, apierr.BadRequest(fmt.Sprintf("Count must be between %d and %d", MinIdeaCount, MaxIdeaCount))
		}
	}
	return plan, nil
}

func (s *ideaGenerationService) Generate(ctx context.Context, req GenerateIdeasRequest) (*GenerateIdeasResult, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, apierr.Unauthorized()
	}
	plan, err := ValidateGenerateRequest(req)
	if err != nil {
		return nil, err
	}

	candidates := s.retrieve(ctx, plan)
	candidates = types.DedupeByTitle(candidates)
	if plan.mode == GenerationStructured {
		rankStructured(candidates, plan.input)
	} else {
		rankFreeform(candidates, plan.prompt, plan.keywords)
	}

	synthCount := int(math.Ceil(float64(plan.count) / 2))
	if synthCount > maxSynthesized {
		synthCount = maxSynthesized
	}
	top := candidates
	if len(top) > synthContextSize {
		top = top[:synthContextSize]
	}
	var synthesized []types.Idea
	if s.synthesizer != nil {
		synthesized = s.synthesizer.SynthesizeIdeas(ctx, llm.IdeaSynthesisRequest{
			Context:        top,
			Count:          synthCount,
			Prompt:         plan.prompt,
			Category:       plan.input.Category,
			Difficulty:     plan.input.Difficulty,
			TargetAudience: plan.input.TargetAudience,
		})
	}
	if plan.mode == GenerationStructured {
		for i := range synthesized {
			attachStructured(&synthesized[i], plan.input)
		}
	}

	merged := make([]types.Idea, 0, len(synthesized)+len(candidates))
	merged = append(merged, synthesized...)
	merged = append(merged, candidates...)
	merged = types.DedupeByTitle(merged)

	if len(merged) < plan.count {
		merged = append(merged, fallbackIdeas(plan, merged, plan.count-len(merged))...)
	}
	if len(merged) > plan.count {
		merged = merged[:plan.count]
	}

	s.stamp(merged, userID)
	s.persist(ctx, userID, merged)

	res := &GenerateIdeasResult{Ideas: merged, Total: len(merged), Model: s.model}
	for _, idea := range merged {
		switch idea.Source {
		case types.SourceSynthesis:
			res.AIGenerated++
		case types.SourceProductHunt:
			res.DatabaseMatched++
		}
	}
	res.Source = sourceLabel(res.AIGenerated, res.DatabaseMatched)
	observability.Current().IncIdeaGeneration(plan.mode, res.Source)

	s.log.Info("Ideas generated",
		"user_id", userID,
		"mode", plan.mode,
		"count", plan.count,
		"candidates", len(candidates),
		"ai_generated", res.AIGenerated,
		"database_matched", res.DatabaseMatched,
	)
	return res, nil
}

func (s *ideaGenerationService) retrieve(ctx context.Context, plan *generationPlan) []types.Idea {
	if s.searcher == nil {
		return []types.Idea{}
	}
	limit := singleRetrieveLimit
	if plan.multiple {
		limit = plan.count * 2
	}
	out := s.searcher.Search(ctx, plan.query, limit, plan.threshold)

	if len(out) < plan.count {
		category := plan.input.Category
		if category == "" {
			category = search.FirstTerm(plan.prompt)
		}
		out = append(out, s.searcher.ByCategory(ctx, category, plan.count-len(out))...)
	}
	if len(out) < plan.count {
		out = append(out, s.searcher.RandomSample(ctx, plan.count-len(out))...)
	}
	return out
}

func attachStructured(idea *types.Idea, in StructuredInput) {
	idea.Category = in.Category
	idea.Difficulty = types.ParseDifficulty(in.Difficulty)
	idea.TargetAudience = in.TargetAudience
}

// rankStructured scores each candidate against the requested fields (as
// retrieved, before the requested values are attached) and sorts by score.
func rankStructured(ideas []types.Idea, in StructuredInput) {
	for i := range ideas {
		score := structuredRelevance(ideas[i], in)
		ideas[i].RelevanceScore = &score
		attachStructured(&ideas[i], in)
	}
	sort.SliceStable(ideas, func(i, j int) bool {
		return *ideas[i].RelevanceScore > *ideas[j].RelevanceScore
	})
}

func structuredRelevance(idea types.Idea, in StructuredInput) float64 {
	score := idea.Similarity
	if score == 0 {
		score = defaultSimilarity
	}
	if substringMatch(idea.Category, in.Category) {
		score += 0.2
	}
	if substringMatch(idea.TargetAudience, in.TargetAudience) {
		score += 0.1
	}
	if idea.Upvotes > 100 {
		score += 0.1
	}
	return math.Min(score, 1.0)
}

func substringMatch(a, b string) bool {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

func rankFreeform(ideas []types.Idea, prompt string, keywords []string) {
	for i := range ideas {
		rel := promptRelevance(ideas[i], keywords)
		ideas[i].PromptRelevance = &rel
		ideas[i].Description = strings.TrimSpace(ideas[i].Description) + fmt.Sprintf(" Tailored to: %q.", prompt)
	}
	sort.SliceStable(ideas, func(i, j int) bool {
		return *ideas[i].PromptRelevance > *ideas[j].PromptRelevance
	})
}

func promptRelevance(idea types.Idea, keywords []string) float64 {
	if len(keywords) == 0 {
		return 0
	}
	hay := strings.ToLower(strings.Join(append([]string{idea.Title, idea.Description, idea.Category}, idea.Tags...), " "))
	matched := 0
	for _, k := range keywords {
		if strings.Contains(hay, k) {
			matched++
		}
	}
	return float64(matched) / float64(len(keywords))
}

// promptKeywords returns the lowercased prompt words longer than three
// characters, in order. Repeats are kept so relevance is weighted by the
// total keyword count.
func promptKeywords(prompt string) []string {
	words := strings.FieldsFunc(strings.ToLower(prompt), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) > 3 {
			out = append(out, w)
		}
	}
	return out
}

func sourceLabel(ai, db int) string {
	switch {
	case ai > 0 && db > 0:
		return "hybrid"
	case ai > 0:
		return "ai"
	case db > 0:
		return "database"
	}
	return "fallback"
}

func (s *ideaGenerationService) stamp(ideas []types.Idea, userID string) {
	now := s.now().UTC()
	used := make(map[string]bool, len(ideas))
	for _, idea := range ideas {
		if idea.ID != "" {
			used[idea.ID] = true
		}
	}
	for i := range ideas {
		if ideas[i].ID == "" {
			ideas[i].ID = s.newNumericID(used)
		}
		ideas[i].UserID = userID
		if ideas[i].CreatedAt.IsZero() {
			ideas[i].CreatedAt = now
		}
		if ideas[i].Tags == nil {
			ideas[i].Tags = []string{}
		}
	}
}

func (s *ideaGenerationService) newNumericID(used map[string]bool) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for {
		id := strconv.FormatInt(1_000_000_000_000+s.rng.Int63n(9_000_000_000_000), 10)
		if !used[id] {
			used[id] = true
			return id
		}
	}
}

// persist stores every idea concurrently. Failures are logged and the
// in-memory ideas are returned to the caller regardless.
func (s *ideaGenerationService) persist(ctx context.Context, userID string, ideas []types.Idea) {
	if s.ideaRepo == nil {
		return
	}
	var g errgroup.Group
	g.SetLimit(persistConcurrency)
	for _, idea := range ideas {
		row := types.NewUserIdea(userID, idea, types.IdeaStatusGenerated)
		g.Go(func() error {
			if _, err := s.ideaRepo.CreateIgnoreDuplicates(ctx, nil, []*types.UserIdea{row}); err != nil {
				s.log.Warn("Failed to persist generated idea", "idea_id", row.IdeaID, "error", err)
			}
			return nil
		})
	}
	_ = g.Wait()
}
