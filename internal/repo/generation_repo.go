package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/domain"
)

// CreateGeneration persists a generation session. ID and timestamps are
// filled in when empty.
func CreateGeneration(ctx context.Context, db *gorm.DB, g *domain.Generation) error {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if g.CreatedAt.IsZero() {
		g.CreatedAt = now
	}
	g.UpdatedAt = now
	return db.WithContext(ctx).Create(g).Error
}

// GetGeneration fetches a generation by ID and owner.
func GetGeneration(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Generation, error) {
	var g domain.Generation
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&g).Error
	if err != nil {
		return nil, err
	}
	return &g, nil
}

// CountGenerations returns the number of generations owned by userID.
func CountGenerations(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Generation{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListGenerationsPage returns a page of generations, newest first.
func ListGenerationsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Generation, error) {
	var out []domain.Generation
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Scopes(paginate(offset, limit)).
		Find(&out).Error
	return out, err
}

// IncrementAccepted adds to the accepted counters of a generation in a single
// UPDATE so concurrent batches do not lose writes.
func IncrementAccepted(ctx context.Context, db *gorm.DB, id, userID string, unedited, edited int) error {
	if unedited == 0 && edited == 0 {
		return nil
	}
	res := db.WithContext(ctx).
		Model(&domain.Generation{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]any{
			"accepted_unedited_count": gorm.Expr("accepted_unedited_count + ?", unedited),
			"accepted_edited_count":   gorm.Expr("accepted_edited_count + ?", edited),
			"updated_at":              time.Now().UTC(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// CreateGenerationError records a failed generation attempt.
func CreateGenerationError(ctx context.Context, db *gorm.DB, e *domain.GenerationErrorLog) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	return db.WithContext(ctx).Create(e).Error
}

// CountGenerationErrors returns the number of failures recorded for userID.
func CountGenerationErrors(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.GenerationErrorLog{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListGenerationErrorsPage returns a page of failures, newest first.
func ListGenerationErrorsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.GenerationErrorLog, error) {
	var out []domain.GenerationErrorLog
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc").
		Scopes(paginate(offset, limit)).
		Find(&out).Error
	return out, err
}
