package services

import (
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/ideavault/ideavault-backend/internal/cache"
	"github.com/ideavault/ideavault-backend/internal/data/repos"
	types "github.com/ideavault/ideavault-backend/internal/domain"
	"github.com/ideavault/ideavault-backend/internal/observability"
	"github.com/ideavault/ideavault-backend/internal/platform/apierr"
	"github.com/ideavault/ideavault-backend/internal/platform/ctxutil"
	"github.com/ideavault/ideavault-backend/internal/platform/logger"
)

const (
	ChecksumTimestamped = "timestamped"
	ChecksumContent     = "content"

	ReportCacheTTL = time.Hour
	ReportLockTTL  = 5 * time.Minute

	checksumLength = 16
)

type GenerateReportRequest struct {
	Idea   *types.Idea `json:"idea"`
	IdeaID string      `json:"ideaId,omitempty"`
}

type GenerateReportResult struct {
	Success          bool            `json:"success"`
	Report           json.RawMessage `json:"report"`
	IdeaID           string          `json:"idea_id"`
	ReportID         string          `json:"report_id,omitempty"`
	GeneratedAt      time.Time       `json:"generated_at"`
	GenerationTimeMS int64           `json:"generation_time_ms"`
	Checksum         string          `json:"checksum"`
	Cached           bool            `json:"cached,omitempty"`
}

// cachedReport is the value stored under a checksum.
type cachedReport struct {
	Report           json.RawMessage `json:"data"`
	Timestamp        time.Time       `json:"timestamp"`
	IdeaID           string          `json:"idea_id"`
	ReportID         string          `json:"report_id,omitempty"`
	GenerationTimeMS int64           `json:"generation_time_ms"`
	// Fingerprint guards against checksum collisions between ideas.
	Fingerprint string `json:"fingerprint"`
}

// ideaFingerprint is the normalized title, description and category.
func ideaFingerprint(idea types.Idea) string {
	return strings.Join([]string{
		types.NormalizeTitle(idea.Title),
		strings.ToLower(strings.Join(strings.Fields(idea.Description), " ")),
		strings.ToLower(strings.TrimSpace(idea.Category)),
	}, "\x1f")
}

type ReportSynthesizer interface {
	SynthesizeReport(ctx context.Context, idea types.Idea) (*types.Report, error)
}

type ReportService interface {
	Generate(ctx context.Context, req GenerateReportRequest) (*GenerateReportResult, error)
	GetStored(ctx context.Context, id string) (*types.StoredReport, error)
	ListStored(ctx context.Context, limit int) ([]*types.StoredReport, error)
}

type ReportServiceConfig struct {
	ChecksumMode string
	CacheTTL     time.Duration
	LockTTL      time.Duration
}

type reportService struct {
	log         *logger.Logger
	store       cache.Store
	synthesizer ReportSynthesizer
	ideaRepo    repos.UserIdeaRepo
	reportRepo  repos.ReportRepo
	cfg         ReportServiceConfig
	now         func() time.Time
}

func NewReportService(log *logger.Logger, store cache.Store, synthesizer ReportSynthesizer, ideaRepo repos.UserIdeaRepo, reportRepo repos.ReportRepo, cfg ReportServiceConfig) ReportService {
	serviceLog := log.With("service", "ReportService")
	if cfg.ChecksumMode != ChecksumContent {
		cfg.ChecksumMode = ChecksumTimestamped
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = ReportCacheTTL
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = ReportLockTTL
	}
	return &reportService{
		log:         serviceLog,
		store:       store,
		synthesizer: synthesizer,
		ideaRepo:    ideaRepo,
		reportRepo:  reportRepo,
		cfg:         cfg,
		now:         time.Now,
	}
}

// ReportChecksum derives the cache key for an idea. The timestamped mode
// base64-encodes title_description_category_unixMillis and keeps the first
// 16 characters, so in practice only the leading bytes of the title
// contribute. The content mode hashes the three fields instead.
func ReportChecksum(mode string, idea types.Idea, now time.Time) string {
	base := fmt.Sprintf("%s_%s_%s", idea.Title, idea.Description, idea.Category)
	var encoded string
	if mode == ChecksumContent {
		sum := sha256.Sum256([]byte(base))
		encoded = base64.StdEncoding.EncodeToString(sum[:])
	} else {
		encoded = base64.StdEncoding.EncodeToString([]byte(fmt.Sprintf("%s_%d", base, now.UnixMilli())))
	}
	if len(encoded) > checksumLength {
		encoded = encoded[:checksumLength]
	}
	return encoded
}

// QueueKey identifies one (user, idea) generation.
func QueueKey(userID, requestIdeaID string, idea types.Idea, checksum string) string {
	ideaKey := strings.TrimSpace(requestIdeaID)
	if ideaKey == "" {
		ideaKey = strings.TrimSpace(idea.ID)
	}
	if ideaKey == "" {
		ideaKey = checksum
	}
	return userID + "_" + ideaKey
}

func (s *reportService) Generate(ctx context.Context, req GenerateReportRequest) (*GenerateReportResult, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, apierr.Unauthorized()
	}
	if req.Idea == nil || strings.TrimSpace(req.Idea.Title) == "" {
		return nil, apierr.BadRequest("Idea data is required")
	}
	idea := *req.Idea
	fingerprint := ideaFingerprint(idea)
	started := s.now()

	checksum := ReportChecksum(s.cfg.ChecksumMode, idea, started)
	key := QueueKey(userID, req.IdeaID, idea, checksum)
	ideaID := strings.TrimPrefix(key, userID+"_")

	inFlight, err := s.store.InFlight(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("check report queue: %w", err)
	}
	if inFlight {
		observability.Current().IncReport("busy")
		return nil, apierr.New(http.StatusTooManyRequests, "Report generation already in progress for this idea", nil)
	}

	if res, ok := s.fromCache(ctx, checksum, ideaID, fingerprint); ok {
		observability.Current().IncReport("cached")
		return res, nil
	}

	acquired, err := s.store.TryAcquire(ctx, key, cache.QueueEntry{StartTime: started, Checksum: checksum}, s.cfg.LockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire report queue: %w", err)
	}
	if !acquired {
		observability.Current().IncReport("busy")
		return nil, apierr.New(http.StatusTooManyRequests, "Report generation already in progress for this idea", nil)
	}
	defer func() {
		if err := s.store.Release(context.WithoutCancel(ctx), key); err != nil {
			s.log.Warn("Failed to release report queue entry", "key", key, "error", err)
		}
	}()

	idea = s.resolveIdea(ctx, userID, req.IdeaID, idea)

	report, err := s.synthesizer.SynthesizeReport(ctx, idea)
	if err != nil {
		s.log.Error("Report synthesis failed", "user_id", userID, "idea_id", ideaID, "error", err)
		observability.Current().IncReport("failed")
		return nil, MapGenerationError(err)
	}

	body, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}
	elapsed := s.now().Sub(started).Milliseconds()

	reportID := s.persist(ctx, userID, ideaID, idea.Title, checksum, body, elapsed)

	entry, err := json.Marshal(cachedReport{
		Report:           body,
		Timestamp:        s.now().UTC(),
		IdeaID:           ideaID,
		ReportID:         reportID,
		GenerationTimeMS: elapsed,
		Fingerprint:      fingerprint,
	})
	if err == nil {
		if perr := s.store.Put(ctx, checksum, entry, s.cfg.CacheTTL); perr != nil {
			s.log.Warn("Failed to cache report", "checksum", checksum, "error", perr)
		}
	}

	observability.Current().IncReport("generated")
	s.log.Info("Report generated",
		"user_id", userID,
		"idea_id", ideaID,
		"fallback", report.Fallback,
		"generation_time_ms", elapsed,
	)
	return &GenerateReportResult{
		Success:          true,
		Report:           body,
		IdeaID:           ideaID,
		ReportID:         reportID,
		GeneratedAt:      s.now().UTC(),
		GenerationTimeMS: elapsed,
		Checksum:         checksum,
	}, nil
}

func (s *reportService) fromCache(ctx context.Context, checksum, ideaID, fingerprint string) (*GenerateReportResult, bool) {
	raw, ok, err := s.store.Get(ctx, checksum)
	if err != nil {
		s.log.Warn("Report cache lookup failed", "checksum", checksum, "error", err)
		return nil, false
	}
	if !ok {
		return nil, false
	}
	var entry cachedReport
	if err := json.Unmarshal(raw, &entry); err != nil {
		s.log.Warn("Discarding unreadable cached report", "checksum", checksum, "error", err)
		return nil, false
	}
	if s.now().Sub(entry.Timestamp) >= s.cfg.CacheTTL {
		return nil, false
	}
	if entry.Fingerprint != fingerprint {
		s.log.Debug("Cached report belongs to a different idea", "checksum", checksum)
		return nil, false
	}
	return &GenerateReportResult{
		Success:          true,
		Report:           entry.Report,
		IdeaID:           ideaID,
		ReportID:         entry.ReportID,
		GeneratedAt:      entry.Timestamp,
		GenerationTimeMS: entry.GenerationTimeMS,
		Checksum:         checksum,
		Cached:           true,
	}, true
}

// resolveIdea prefers the stored copy of the idea when it matches the
// client payload. Lookup failures and mismatches fall back to the payload.
func (s *reportService) resolveIdea(ctx context.Context, userID, ideaID string, payload types.Idea) types.Idea {
	if ideaID == "" || s.ideaRepo == nil {
		return payload
	}
	stored, err := s.ideaRepo.GetByIdeaID(ctx, nil, userID, ideaID)
	if err != nil {
		s.log.Warn("Stored idea lookup failed, using request payload", "idea_id", ideaID, "error", err)
		return payload
	}
	if stored == nil {
		return payload
	}
	if types.NormalizeTitle(stored.Title) != types.NormalizeTitle(payload.Title) {
		s.log.Warn("Stored idea does not match request payload", "idea_id", ideaID)
		return payload
	}
	return stored.Idea()
}

func (s *reportService) persist(ctx context.Context, userID, ideaID, title, checksum string, body []byte, elapsed int64) string {
	if s.reportRepo == nil {
		return ""
	}
	row, err := s.reportRepo.Create(ctx, nil, &types.StoredReport{
		UserID:           userID,
		IdeaID:           ideaID,
		IdeaTitle:        title,
		Checksum:         checksum,
		Body:             datatypes.JSON(body),
		GenerationTimeMS: elapsed,
	})
	if err != nil {
		s.log.Warn("Failed to persist report", "idea_id", ideaID, "error", err)
		return ""
	}
	return row.ID.String()
}

func (s *reportService) GetStored(ctx context.Context, id string) (*types.StoredReport, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, apierr.Unauthorized()
	}
	reportID, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, apierr.BadRequest("Invalid report id")
	}
	row, err := s.reportRepo.GetForUser(ctx, nil, userID, reportID)
	if err != nil {
		return nil, fmt.Errorf("load report: %w", err)
	}
	if row == nil {
		return nil, apierr.NotFound("Report not found")
	}
	return row, nil
}

func (s *reportService) ListStored(ctx context.Context, limit int) ([]*types.StoredReport, error) {
	userID := ctxutil.UserID(ctx)
	if userID == "" {
		return nil, apierr.Unauthorized()
	}
	rows, err := s.reportRepo.ListByUser(ctx, nil, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	return rows, nil
}

// MapGenerationError turns a synthesis failure into an HTTP error by its
// message: "API key" is 503, quota or rate limits are 429, timeouts are
// 408 and everything else is a 500 carrying the raw message.
func MapGenerationError(err error) *apierr.Error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "API key"):
		return apierr.New(http.StatusServiceUnavailable, "AI service is not configured: "+msg, err)
	case strings.Contains(lower, "quota"), strings.Contains(lower, "rate limit"), strings.Contains(lower, "429"):
		return apierr.New(http.StatusTooManyRequests, "AI quota exceeded, please try again later", err)
	case strings.Contains(lower, "timeout"):
		return apierr.New(http.StatusRequestTimeout, "Report generation timed out, please try again", err)
	}
	return apierr.New(http.StatusInternalServerError, "Failed to generate report: "+msg, err)
}
