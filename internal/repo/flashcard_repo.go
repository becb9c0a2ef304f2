package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/domain"
)

// FlashcardFilter narrows flashcard listings. Empty fields are ignored.
type FlashcardFilter struct {
	CollectionID string
	Source       string
}

func (f FlashcardFilter) apply(q *gorm.DB) *gorm.DB {
	if f.CollectionID != "" {
		q = q.Where("collection_id = ?", f.CollectionID)
	}
	if f.Source != "" {
		q = q.Where("source = ?", f.Source)
	}
	return q
}

// CreateFlashcards inserts cards in a single batch. Callers assign IDs and
// ownership; timestamps default to now.
func CreateFlashcards(ctx context.Context, db *gorm.DB, cards []domain.Flashcard) error {
	if len(cards) == 0 {
		return nil
	}
	now := time.Now().UTC()
	for i := range cards {
		if cards[i].CreatedAt.IsZero() {
			cards[i].CreatedAt = now
		}
		if cards[i].UpdatedAt.IsZero() {
			cards[i].UpdatedAt = now
		}
	}
	return db.WithContext(ctx).Create(&cards).Error
}

// GetFlashcard fetches a flashcard by ID and owner.
func GetFlashcard(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Flashcard, error) {
	var f domain.Flashcard
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&f).Error
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// CountFlashcards returns the number of flashcards matching the filter.
func CountFlashcards(ctx context.Context, db *gorm.DB, userID string, f FlashcardFilter) (int64, error) {
	var total int64
	q := db.WithContext(ctx).Model(&domain.Flashcard{}).Where("user_id = ?", userID)
	err := f.apply(q).Count(&total).Error
	return total, err
}

// ListFlashcardsPage returns a page of flashcards, newest first.
func ListFlashcardsPage(ctx context.Context, db *gorm.DB, userID string, f FlashcardFilter, offset, limit int) ([]domain.Flashcard, error) {
	var out []domain.Flashcard
	q := db.WithContext(ctx).Where("user_id = ?", userID)
	err := f.apply(q).
		Order("created_at desc").
		Order("id asc").
		Scopes(paginate(offset, limit)).
		Find(&out).Error
	return out, err
}

// UpdateFlashcard applies column updates to a flashcard owned by userID and
// returns ErrNotFound when no row matched.
func UpdateFlashcard(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Flashcard{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteFlashcard removes a flashcard owned by userID.
func DeleteFlashcard(ctx context.Context, db *gorm.DB, id, userID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&domain.Flashcard{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ListFronts returns the front text of the user's most recent cards, used to
// flag near-duplicate proposals. limit <= 0 means no limit.
func ListFronts(ctx context.Context, db *gorm.DB, userID string, limit int) ([]string, error) {
	var fronts []string
	q := db.WithContext(ctx).
		Model(&domain.Flashcard{}).
		Where("user_id = ?", userID).
		Order("created_at desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Pluck("front", &fronts).Error
	return fronts, err
}
