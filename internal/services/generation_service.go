package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/llm"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/repo"
	"github.com/tbourn/tenx-cards/internal/search"
)

// Source text bounds, in runes.
const (
	SourceTextMin = 1000
	SourceTextMax = 10000
)

// IdempotencyScope namespaces generation replays.
const IdempotencyScope = "generations"

// ProposalGenerator asks a model for flashcard proposals. *llm.Generator
// implements it.
type ProposalGenerator interface {
	Generate(ctx context.Context, sourceText string) ([]llm.Proposal, string, error)
	Model() string
}

// Proposal is a generated card offered to the user for review.
type Proposal struct {
	Front     string `json:"front"`
	Back      string `json:"back"`
	Source    string `json:"source"`
	Duplicate bool   `json:"duplicate"`
}

// GenerationResult is the outcome of a successful generation.
type GenerationResult struct {
	Generation *domain.Generation `json:"generation"`
	Proposals  []Proposal         `json:"proposals"`
}

// GenerationService runs AI generations and records their outcome: a
// generations row on success, a generation_error_logs row on failure.
type GenerationService struct {
	DB *gorm.DB
	AI ProposalGenerator

	// Timeout bounds the model call. Zero means no extra deadline.
	Timeout time.Duration
	// DuplicateThreshold is the Jaccard score from which a proposal is
	// flagged as a duplicate of an existing front.
	DuplicateThreshold float64
	// MaxExistingFronts caps how many recent fronts are compared.
	MaxExistingFronts int
	// IdempotencyTTL is how long replays are served.
	IdempotencyTTL time.Duration

	Now func() time.Time
}

func (s *GenerationService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

// Generate validates sourceText, asks the model for proposals, flags likely
// duplicates and stores the generation.
func (s *GenerationService) Generate(ctx context.Context, userID, sourceText string) (*GenerationResult, error) {
	tr := otel.Tracer("services/GenerationService")
	ctx, span := tr.Start(ctx, "Generate",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("source.length", utf8.RuneCountInString(sourceText)),
		),
	)
	defer span.End()

	text := normalizeText(sourceText)
	n := utf8.RuneCountInString(text)
	switch {
	case n < SourceTextMin:
		return nil, apperr.FieldError(apperr.GenerationValidationFailed, "sourceText", "must be at least 1000 characters")
	case n > SourceTextMax:
		return nil, apperr.FieldError(apperr.GenerationValidationFailed, "sourceText", "must be at most 10000 characters")
	}
	if s.AI == nil {
		return nil, apperr.GenerationModelUnavailable.New("AI generation is not configured.")
	}

	sum := sha256.Sum256([]byte(text))
	hash := hex.EncodeToString(sum[:])

	start := s.now()
	proposals, model, err := s.callModel(ctx, text)
	elapsed := s.now().Sub(start)
	if model == "" {
		model = s.AI.Model()
	}
	if err != nil {
		mapped := apperr.FromGenerationAIError(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, mapped.Code())
		s.logFailure(ctx, span, userID, model, hash, n, mapped, err)
		return nil, mapped
	}

	out, err := s.flagDuplicates(ctx, userID, proposals)
	if err != nil {
		return nil, err
	}

	g := &domain.Generation{
		UserID:               userID,
		Model:                model,
		GeneratedCount:       len(out),
		SourceTextHash:       hash,
		SourceTextLength:     n,
		GenerationDurationMs: elapsed.Milliseconds(),
	}
	if err := repo.CreateGeneration(ctx, s.DB, g); err != nil {
		return nil, apperr.FromGenerationDBError(err)
	}
	span.SetAttributes(
		attribute.String("generation.id", g.ID),
		attribute.Int("generation.proposals", len(out)),
	)
	return &GenerationResult{Generation: g, Proposals: out}, nil
}

func (s *GenerationService) callModel(ctx context.Context, text string) ([]llm.Proposal, string, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}
	return s.AI.Generate(ctx, search.PrepareSource(text))
}

// flagDuplicates marks proposals whose front is close to one of the user's
// recent fronts or to an earlier proposal of the same batch.
func (s *GenerationService) flagDuplicates(ctx context.Context, userID string, ps []llm.Proposal) ([]Proposal, error) {
	thr := s.DuplicateThreshold
	if thr <= 0 {
		thr = 0.8
	}
	fronts, err := repo.ListFronts(ctx, s.DB, userID, s.MaxExistingFronts)
	if err != nil {
		return nil, apperr.FromGenerationDBError(err)
	}
	idx := search.NewIndex(fronts)

	out := make([]Proposal, len(ps))
	for i, p := range ps {
		out[i] = Proposal{Front: p.Front, Back: p.Back, Source: domain.SourceAIFull}
		if best := idx.TopK(p.Front, 1); len(best) == 1 && best[0].Score >= thr {
			out[i].Duplicate = true
			continue
		}
		for j := 0; j < i; j++ {
			if search.Similarity(p.Front, ps[j].Front) >= thr {
				out[i].Duplicate = true
				break
			}
		}
	}
	return out, nil
}

// logFailure records a failed generation. The row is written on a context
// detached from the request deadline so timeouts are still recorded.
func (s *GenerationService) logFailure(ctx context.Context, span trace.Span, userID, model, hash string, n int, mapped *problem.Error, cause error) {
	msg := cause.Error()
	if r := []rune(msg); len(r) > 1000 {
		msg = string(r[:1000])
	}
	wctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()
	err := repo.CreateGenerationError(wctx, s.DB, &domain.GenerationErrorLog{
		UserID:           userID,
		Model:            model,
		SourceTextHash:   hash,
		SourceTextLength: n,
		ErrorCode:        mapped.Code(),
		ErrorMessage:     msg,
	})
	if err != nil {
		span.RecordError(err, trace.WithAttributes(attribute.String("op", "log_generation_error")))
	}
}

// Get returns one of the user's generations.
func (s *GenerationService) Get(ctx context.Context, userID, id string) (*domain.Generation, error) {
	g, err := repo.GetGeneration(ctx, s.DB, id, userID)
	if err != nil {
		return nil, genDBError(err, "Generation not found.")
	}
	return g, nil
}

// ListPage returns a page of the user's generations, newest first.
func (s *GenerationService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Generation, int64, error) {
	offset, limit := pageBounds(page, pageSize)
	total, err := repo.CountGenerations(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, apperr.FromGenerationDBError(err)
	}
	if total == 0 {
		return []domain.Generation{}, 0, nil
	}
	items, err := repo.ListGenerationsPage(ctx, s.DB, userID, offset, limit)
	if err != nil {
		return nil, 0, apperr.FromGenerationDBError(err)
	}
	return items, total, nil
}

// ListErrorsPage returns a page of the user's failed generations.
func (s *GenerationService) ListErrorsPage(ctx context.Context, userID string, page, pageSize int) ([]domain.GenerationErrorLog, int64, error) {
	offset, limit := pageBounds(page, pageSize)
	total, err := repo.CountGenerationErrors(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, apperr.FromGenerationDBError(err)
	}
	if total == 0 {
		return []domain.GenerationErrorLog{}, 0, nil
	}
	items, err := repo.ListGenerationErrorsPage(ctx, s.DB, userID, offset, limit)
	if err != nil {
		return nil, 0, apperr.FromGenerationDBError(err)
	}
	return items, total, nil
}

// Replay is a stored response for an idempotency key.
type Replay struct {
	ResourceID string
	Status     int
	Body       []byte
}

// FindReplay returns the stored response for (userID, key), if any. A blank
// key never matches.
func (s *GenerationService) FindReplay(ctx context.Context, userID, key string) (*Replay, bool, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, userID, IdempotencyScope, key, s.now().UTC())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, false, nil
		}
		return nil, false, apperr.FromGenerationDBError(err)
	}
	return &Replay{ResourceID: rec.ResourceID, Status: rec.Status, Body: rec.Response}, true, nil
}

// Remember stores the response of a generation under key. A concurrent
// request that stored the same key first wins; that is not an error.
func (s *GenerationService) Remember(ctx context.Context, userID, key, resourceID string, status int, body []byte) error {
	if key == "" {
		return nil
	}
	ttl := s.IdempotencyTTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	_, err := repo.CreateIdempotency(ctx, s.DB, userID, IdempotencyScope, key, resourceID, status, body, ttl)
	if err != nil && !errors.Is(err, repo.ErrDuplicate) {
		return apperr.FromGenerationDBError(err)
	}
	return nil
}
