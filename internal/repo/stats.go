// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides small aggregate queries used for
// conditional responses (weak ETags) in the HTTP layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/domain"
)

// FlashcardsStats returns the number of flashcards matching the filter and
// the greatest UpdatedAt among them. When nothing matches, count is 0 and
// maxUpdatedAt is nil.
func FlashcardsStats(ctx context.Context, db *gorm.DB, userID string, f FlashcardFilter) (count int64, maxUpdatedAt *time.Time, err error) {
	base := func() *gorm.DB {
		return f.apply(db.WithContext(ctx).Model(&domain.Flashcard{}).Where("user_id = ?", userID))
	}
	return latest(base)
}

// CollectionsStats is FlashcardsStats for the user's collections.
func CollectionsStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	base := func() *gorm.DB {
		return db.WithContext(ctx).Model(&domain.Collection{}).Where("user_id = ?", userID)
	}
	return latest(base)
}

// latest runs the count and the newest-updated_at lookup on fresh copies of
// the same base query.
func latest(base func() *gorm.DB) (int64, *time.Time, error) {
	var count int64
	if err := base().Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest updated_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		UpdatedAt time.Time
	}
	if err := base().Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
