package services

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/repo"
)

// Collection field limits.
const (
	CollectionNameMax        = 100
	CollectionDescriptionMax = 1000
)

// CollectionRepo is the persistence contract of CollectionService.
type CollectionRepo interface {
	CreateCollection(ctx context.Context, db *gorm.DB, userID, name string, description *string) (*domain.Collection, error)
	GetCollection(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Collection, error)
	CountCollections(ctx context.Context, db *gorm.DB, userID string) (int64, error)
	ListCollectionsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Collection, error)
	UpdateCollection(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error
	DeleteCollection(ctx context.Context, db *gorm.DB, id, userID string) error
	CollectionsStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error)
}

// CollectionService manages named groups of flashcards. Names are unique per
// user; deleting a collection keeps its cards and only detaches them.
type CollectionService struct {
	DB   *gorm.DB
	Repo CollectionRepo
}

// NewCollectionService wires a CollectionService.
func NewCollectionService(db *gorm.DB, r CollectionRepo) *CollectionService {
	return &CollectionService{DB: db, Repo: r}
}

// CollectionPatch lists the fields to change. Nil means "leave as is"; an
// empty Description clears it.
type CollectionPatch struct {
	Name        *string
	Description *string
}

// Create stores a new collection for userID.
func (s *CollectionService) Create(ctx context.Context, userID, name string, description *string) (*domain.Collection, error) {
	np, description, err := validateCollection(&name, description)
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.CreateCollection(ctx, s.DB, userID, *np, description)
	if err != nil {
		return nil, collectionWriteError(err)
	}
	return c, nil
}

// Get returns one of the user's collections.
func (s *CollectionService) Get(ctx context.Context, userID, id string) (*domain.Collection, error) {
	c, err := s.Repo.GetCollection(ctx, s.DB, id, userID)
	if err != nil {
		return nil, dbError(err, apperr.FlashcardCollectionNotFound, "Collection not found.")
	}
	return c, nil
}

// ListPage returns a page of the user's collections ordered by name and the
// total count.
func (s *CollectionService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Collection, int64, error) {
	offset, limit := pageBounds(page, pageSize)

	total, err := s.Repo.CountCollections(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, apperr.FromDBError(err)
	}
	if total == 0 {
		return []domain.Collection{}, 0, nil
	}
	items, err := s.Repo.ListCollectionsPage(ctx, s.DB, userID, offset, limit)
	if err != nil {
		return nil, 0, apperr.FromDBError(err)
	}
	return items, total, nil
}

// Update applies p and returns the stored collection.
func (s *CollectionService) Update(ctx context.Context, userID, id string, p CollectionPatch) (*domain.Collection, error) {
	name, description, err := validateCollection(p.Name, p.Description)
	if err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if name != nil {
		updates["name"] = *name
	}
	if p.Description != nil {
		if description == nil {
			updates["description"] = nil
		} else {
			updates["description"] = *description
		}
	}
	if err := s.Repo.UpdateCollection(ctx, s.DB, id, userID, updates); err != nil {
		return nil, collectionWriteError(err)
	}
	return s.Get(ctx, userID, id)
}

// Delete removes the collection; its flashcards stay, unassigned.
func (s *CollectionService) Delete(ctx context.Context, userID, id string) error {
	err := s.Repo.DeleteCollection(ctx, s.DB, id, userID)
	return dbError(err, apperr.FlashcardCollectionNotFound, "Collection not found.")
}

// validateCollection normalizes the optional name and description. A blank
// description becomes nil.
func validateCollection(name, description *string) (*string, *string, error) {
	var fe apperr.FieldErrors
	if name != nil {
		n := normalizeName(*name)
		switch l := utf8.RuneCountInString(n); {
		case l == 0:
			fe.Add("name", "is required")
		case l > CollectionNameMax:
			fe.Add("name", "must be at most 100 characters")
		}
		name = &n
	}
	if description != nil {
		d := normalizeText(*description)
		if utf8.RuneCountInString(d) > CollectionDescriptionMax {
			fe.Add("description", "must be at most 1000 characters")
		}
		if d == "" {
			description = nil
		} else {
			description = &d
		}
	}
	if !fe.Empty() {
		return nil, nil, apperr.Invalid(apperr.FlashcardValidationFailed, fe)
	}
	return name, description, nil
}

func collectionWriteError(err error) error {
	if errors.Is(err, repo.ErrDuplicate) {
		pe := apperr.FieldError(apperr.FlashcardValidationFailed, "name", "already exists")
		return apperr.FlashcardValidationFailed.New(pe.Detail(), problem.WithMeta(pe.Meta()), problem.WithCause(err))
	}
	return dbError(err, apperr.FlashcardCollectionNotFound, "Collection not found.")
}

// Stats returns how many collections userID has and when the newest change
// happened. List endpoints derive their ETag from it.
func (s *CollectionService) Stats(ctx context.Context, userID string) (int64, *time.Time, error) {
	n, ts, err := s.Repo.CollectionsStats(ctx, s.DB, userID)
	if err != nil {
		return 0, nil, apperr.FromDBError(err)
	}
	return n, ts, nil
}
