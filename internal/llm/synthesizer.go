package llm

import (
	"context"
	"strings"

	"github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

// TextGenerator is the model call the synthesizer depends on.
type TextGenerator interface {
	GenerateText(ctx context.Context, system, prompt string) (string, error)
}

// IdeaSynthesisRequest describes what to synthesize. Only the first five
// context ideas are used.
type IdeaSynthesisRequest struct {
	Context        []domain.Idea
	Count          int
	Prompt         string
	Category       string
	Difficulty     string
	TargetAudience string
}

const (
	maxContextIdeas       = 5
	synthesizedSimilarity = 0.8
)

type Synthesizer struct {
	log    *logger.Logger
	gen    TextGenerator
	retry  *Retrier
	tables *FallbackTables
}

// NewSynthesizer returns a synthesizer. gen may be nil, in which case idea
// synthesis yields nothing and report synthesis reports a missing API key.
func NewSynthesizer(log *logger.Logger, gen TextGenerator, retry *Retrier, tables *FallbackTables) *Synthesizer {
	if retry == nil {
		retry = NewRetrier(log)
	}
	if tables == nil {
		tables = MustLoadFallbackTables()
	}
	return &Synthesizer{
		log:    log.With("service", "Synthesizer"),
		gen:    gen,
		retry:  retry,
		tables: tables,
	}
}

func (s *Synthesizer) Tables() *FallbackTables { return s.tables }

func (s *Synthesizer) Available() bool { return s.gen != nil }

func (s *Synthesizer) generate(ctx context.Context, op, system, prompt string) (string, error) {
	if s.gen == nil {
		return "", &Error{Kind: KindNotConfigured, Op: op}
	}
	var out string
	err := s.retry.Do(ctx, op, func(ctx context.Context) error {
		text, err := s.gen.GenerateText(ctx, system, prompt)
		if err != nil {
			return err
		}
		out = text
		return nil
	})
	return out, err
}

// SynthesizeIdeas asks the model for new ideas. It never fails: JSON is
// tried first, then a line-based parser, then an empty result.
func (s *Synthesizer) SynthesizeIdeas(ctx context.Context, req IdeaSynthesisRequest) []domain.Idea {
	if req.Count <= 0 || s.gen == nil {
		return []domain.Idea{}
	}
	if len(req.Context) > maxContextIdeas {
		req.Context = req.Context[:maxContextIdeas]
	}
	text, err := s.generate(ctx, "synthesize_ideas", ideaSystemPrompt, ideaSynthesisPrompt(req))
	if err != nil {
		s.log.Warn("Idea synthesis failed", "kind", string(KindOf(err)), "error", err)
		return []domain.Idea{}
	}

	ideas, perr := parseIdeasJSON(text)
	if perr != nil {
		ideas = parseIdeasLines(text)
		s.log.Debug("Idea synthesis JSON parse failed, used line parser", "error", perr, "parsed", len(ideas))
	}
	for i := range ideas {
		ideas[i].Source = domain.SourceSynthesis
		ideas[i].Similarity = synthesizedSimilarity
		if ideas[i].Tags == nil {
			ideas[i].Tags = []string{}
		}
		if ideas[i].Category == "" {
			ideas[i].Category = req.Category
		}
		if ideas[i].TargetAudience == "" {
			ideas[i].TargetAudience = req.TargetAudience
		}
		if !ideas[i].Difficulty.Valid() {
			ideas[i].Difficulty = domain.ParseDifficulty(req.Difficulty)
		}
	}
	if len(ideas) > req.Count {
		ideas = ideas[:req.Count]
	}
	return ideas
}

// SynthesizeReport produces a complete report for idea. Parse failures and
// upstream errors, including 5xx responses that outlive the retries, yield
// the deterministic fallback report. A missing client or exhausted timeouts
// are returned as errors.
func (s *Synthesizer) SynthesizeReport(ctx context.Context, idea domain.Idea) (*domain.Report, error) {
	ref := s.tables.FallbackReport(idea)

	text, err := s.generate(ctx, "synthesize_report", reportSystemPrompt, reportPrompt(idea))
	if err != nil {
		kind := KindOf(err)
		if kind.fallbackEligible() {
			s.log.Warn("Report synthesis unavailable, using fallback report", "kind", string(kind), "error", err)
			return ref, nil
		}
		return nil, err
	}

	report, perr := parseReport(text)
	if perr != nil {
		s.log.Warn("Report JSON parse failed, using fallback report", "error", perr)
		return ref, nil
	}

	if len(report.MarketIntelligence.KeyPlayers) == 0 {
		if players, cerr := s.DiscoverCompetitors(ctx, idea); cerr == nil {
			report.MarketIntelligence.KeyPlayers = players
		} else {
			s.log.Debug("Competitor discovery failed", "error", cerr)
		}
	}

	if strings.TrimSpace(report.MVPPrompt) == "" || isPlaceholder(report.MVPPrompt) {
		report.MVPPrompt = s.SynthesizeMVPPrompt(ctx, idea)
	}

	SanitizeReport(report, ref)
	ensureVisualization(report)
	report.Fallback = false
	return report, nil
}

// SynthesizeMVPPrompt returns a build prompt for idea, falling back to a
// fixed template on any failure.
func (s *Synthesizer) SynthesizeMVPPrompt(ctx context.Context, idea domain.Idea) string {
	text, err := s.generate(ctx, "mvp_prompt", "", mvpPrompt(idea))
	if err != nil || strings.TrimSpace(text) == "" || isPlaceholder(text) {
		if err != nil {
			s.log.Debug("MVP prompt synthesis failed, using template", "error", err)
		}
		return FallbackMVPPrompt(idea)
	}
	return strings.TrimSpace(text)
}

// DiscoverCompetitors is a narrow call for competitors only.
func (s *Synthesizer) DiscoverCompetitors(ctx context.Context, idea domain.Idea) ([]domain.Competitor, error) {
	text, err := s.generate(ctx, "discover_competitors", "", competitorPrompt(idea))
	if err != nil {
		return nil, err
	}
	return parseCompetitors(text)
}
