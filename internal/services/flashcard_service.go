package services

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/repo"
)

// Flashcard limits.
const (
	FrontMax = 200
	BackMax  = 500
	BatchMax = 100
)

// FlashcardInput is one card of a create batch.
type FlashcardInput struct {
	Front        string
	Back         string
	Source       string
	GenerationID *string
	CollectionID *string
}

// FlashcardPatch lists the fields to change; nil means unchanged. An empty
// CollectionID detaches the card from its collection.
type FlashcardPatch struct {
	Front        *string
	Back         *string
	CollectionID *string
}

// FlashcardFilter narrows listings.
type FlashcardFilter = repo.FlashcardFilter

// FlashcardService owns flashcard validation and persistence. Accepting AI
// proposals feeds the acceptance counters of their generation.
type FlashcardService struct {
	DB *gorm.DB
}

// CreateBatch validates and stores 1..BatchMax cards in one transaction.
// Referenced generations and collections must belong to userID.
func (s *FlashcardService) CreateBatch(ctx context.Context, userID string, in []FlashcardInput) ([]domain.Flashcard, error) {
	tr := otel.Tracer("services/FlashcardService")
	ctx, span := tr.Start(ctx, "CreateBatch",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("flashcards.count", len(in)),
		),
	)
	defer span.End()

	cards, err := buildCards(userID, in)
	if err != nil {
		return nil, err
	}

	type counters struct{ unedited, edited int }
	perGen := map[string]*counters{}
	collections := map[string]struct{}{}
	for _, c := range cards {
		if c.GenerationID != nil {
			cnt := perGen[*c.GenerationID]
			if cnt == nil {
				cnt = &counters{}
				perGen[*c.GenerationID] = cnt
			}
			if c.Source == domain.SourceAIFull {
				cnt.unedited++
			} else {
				cnt.edited++
			}
		}
		if c.CollectionID != nil {
			collections[*c.CollectionID] = struct{}{}
		}
	}

	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for id := range collections {
			if err := s.ownCollection(ctx, tx, userID, id); err != nil {
				return err
			}
		}
		for id := range perGen {
			if _, err := repo.GetGeneration(ctx, tx, id, userID); err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					return apperr.FlashcardForbidden.New("The referenced generation does not belong to you.", problem.WithCause(err))
				}
				return apperr.FromDBError(err)
			}
		}
		if err := repo.CreateFlashcards(ctx, tx, cards); err != nil {
			return apperr.FromDBError(err)
		}
		for id, cnt := range perGen {
			if err := repo.IncrementAccepted(ctx, tx, id, userID, cnt.unedited, cnt.edited); err != nil {
				return dbError(err, apperr.FlashcardForbidden, "The referenced generation does not belong to you.")
			}
		}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create flashcards")
		return nil, err
	}
	return cards, nil
}

// Get returns one of the user's cards.
func (s *FlashcardService) Get(ctx context.Context, userID, id string) (*domain.Flashcard, error) {
	f, err := repo.GetFlashcard(ctx, s.DB, id, userID)
	if err != nil {
		return nil, dbError(err, apperr.FlashcardNotFound, "Flashcard not found.")
	}
	return f, nil
}

// ListPage returns a page of the user's cards, newest first, and the total.
func (s *FlashcardService) ListPage(ctx context.Context, userID string, f FlashcardFilter, page, pageSize int) ([]domain.Flashcard, int64, error) {
	tr := otel.Tracer("services/FlashcardService")
	ctx, span := tr.Start(ctx, "ListPage",
		trace.WithAttributes(
			attribute.String("user.id", userID),
			attribute.Int("page", page),
			attribute.Int("page_size", pageSize),
		),
	)
	defer span.End()

	if err := validateFilter(f); err != nil {
		return nil, 0, err
	}
	offset, limit := pageBounds(page, pageSize)

	total, err := repo.CountFlashcards(ctx, s.DB, userID, f)
	if err != nil {
		return nil, 0, apperr.FromDBError(err)
	}
	if total == 0 {
		return []domain.Flashcard{}, 0, nil
	}
	items, err := repo.ListFlashcardsPage(ctx, s.DB, userID, f, offset, limit)
	if err != nil {
		return nil, 0, apperr.FromDBError(err)
	}
	return items, total, nil
}

// Stats returns the count and latest update time of the filtered set; the
// list handler builds its ETag from them.
func (s *FlashcardService) Stats(ctx context.Context, userID string, f FlashcardFilter) (int64, *time.Time, error) {
	if err := validateFilter(f); err != nil {
		return 0, nil, err
	}
	n, ts, err := repo.FlashcardsStats(ctx, s.DB, userID, f)
	if err != nil {
		return 0, nil, apperr.FromDBError(err)
	}
	return n, ts, nil
}

// Update applies p. Changing the text of an ai-full card turns it into
// ai-edited.
func (s *FlashcardService) Update(ctx context.Context, userID, id string, p FlashcardPatch) (*domain.Flashcard, error) {
	var fe apperr.FieldErrors
	updates := map[string]any{}
	if p.Front != nil {
		v := normalizeText(*p.Front)
		checkLen(&fe, "front", v, FrontMax)
		updates["front"] = v
	}
	if p.Back != nil {
		v := normalizeText(*p.Back)
		checkLen(&fe, "back", v, BackMax)
		updates["back"] = v
	}
	if !fe.Empty() {
		return nil, apperr.Invalid(apperr.FlashcardValidationFailed, fe)
	}

	var out *domain.Flashcard
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cur, err := repo.GetFlashcard(ctx, tx, id, userID)
		if err != nil {
			return dbError(err, apperr.FlashcardNotFound, "Flashcard not found.")
		}
		if p.CollectionID != nil {
			if *p.CollectionID == "" {
				updates["collection_id"] = nil
			} else {
				if err := s.ownCollection(ctx, tx, userID, *p.CollectionID); err != nil {
					return err
				}
				updates["collection_id"] = *p.CollectionID
			}
		}
		if cur.Source == domain.SourceAIFull && textChanged(cur, updates) {
			updates["source"] = domain.SourceAIEdited
		}
		if len(updates) == 0 {
			out = cur
			return nil
		}
		if err := repo.UpdateFlashcard(ctx, tx, id, userID, updates); err != nil {
			return dbError(err, apperr.FlashcardNotFound, "Flashcard not found.")
		}
		out, err = repo.GetFlashcard(ctx, tx, id, userID)
		return dbError(err, apperr.FlashcardNotFound, "Flashcard not found.")
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete removes one of the user's cards.
func (s *FlashcardService) Delete(ctx context.Context, userID, id string) error {
	return dbError(repo.DeleteFlashcard(ctx, s.DB, id, userID), apperr.FlashcardNotFound, "Flashcard not found.")
}

func (s *FlashcardService) ownCollection(ctx context.Context, db *gorm.DB, userID, id string) error {
	_, err := repo.GetCollection(ctx, db, id, userID)
	return dbError(err, apperr.FlashcardCollectionNotFound, "Collection not found.")
}

// buildCards normalizes and validates a batch. Field paths in the error
// meta are "flashcards.<i>.<field>".
func buildCards(userID string, in []FlashcardInput) ([]domain.Flashcard, error) {
	var fe apperr.FieldErrors
	switch {
	case len(in) == 0:
		fe.Add("flashcards", "must contain at least 1 item")
	case len(in) > BatchMax:
		fe.Add("flashcards", fmt.Sprintf("must contain at most %d items", BatchMax))
	}
	if !fe.Empty() {
		return nil, apperr.Invalid(apperr.FlashcardValidationFailed, fe)
	}

	now := time.Now().UTC()
	cards := make([]domain.Flashcard, len(in))
	for i, c := range in {
		path := fmt.Sprintf("flashcards.%d.", i)
		front, back := normalizeText(c.Front), normalizeText(c.Back)
		checkLen(&fe, path+"front", front, FrontMax)
		checkLen(&fe, path+"back", back, BackMax)

		genID := trimmed(c.GenerationID)
		switch {
		case c.Source == domain.SourceManual:
			if genID != nil {
				fe.Add(path+"generationId", "must be empty for manual flashcards")
			}
		case domain.IsAISource(c.Source):
			if genID == nil {
				fe.Add(path+"generationId", "is required for AI flashcards")
			}
		default:
			fe.Add(path+"source", "must be one of: manual, ai-full, ai-edited")
		}

		cards[i] = domain.Flashcard{
			ID:           uuid.NewString(),
			UserID:       userID,
			Front:        front,
			Back:         back,
			Source:       c.Source,
			GenerationID: genID,
			CollectionID: trimmed(c.CollectionID),
			CreatedAt:    now,
			UpdatedAt:    now,
		}
	}
	if !fe.Empty() {
		return nil, apperr.Invalid(apperr.FlashcardValidationFailed, fe)
	}
	return cards, nil
}

func validateFilter(f FlashcardFilter) error {
	if f.Source == "" || f.Source == domain.SourceManual || domain.IsAISource(f.Source) {
		return nil
	}
	return apperr.FieldError(apperr.FlashcardValidationFailed, "source", "must be one of: manual, ai-full, ai-edited")
}

func checkLen(fe *apperr.FieldErrors, field, v string, max int) {
	switch n := utf8.RuneCountInString(v); {
	case n == 0:
		fe.Add(field, "is required")
	case n > max:
		fe.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func textChanged(cur *domain.Flashcard, updates map[string]any) bool {
	if v, ok := updates["front"]; ok && v != cur.Front {
		return true
	}
	if v, ok := updates["back"]; ok && v != cur.Back {
		return true
	}
	return false
}

func trimmed(s *string) *string {
	if s == nil {
		return nil
	}
	v := normalizeText(*s)
	if v == "" {
		return nil
	}
	return &v
}
