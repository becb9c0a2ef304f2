// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Collection
// model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a collection is not found (or owned by another user), functions
//     return ErrNotFound.
//   - A name already used by the same user yields ErrDuplicate.
//   - Any other DB error is propagated unchanged so services can map it.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/domain"
)

// CreateCollection inserts a new Collection owned by userID.
func CreateCollection(ctx context.Context, db *gorm.DB, userID, name string, description *string) (*domain.Collection, error) {
	now := time.Now().UTC()
	c := &domain.Collection{
		ID:          uuid.NewString(),
		UserID:      userID,
		Name:        name,
		Description: description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := db.WithContext(ctx).Create(c).Error; err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicate
		}
		return nil, err
	}
	return c, nil
}

// GetCollection fetches a collection by ID and owner.
func GetCollection(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Collection, error) {
	var c domain.Collection
	err := db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CountCollections returns the number of collections owned by userID.
func CountCollections(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Collection{}).
		Where("user_id = ?", userID).
		Count(&total).Error
	return total, err
}

// ListCollectionsPage returns a page of collections ordered by name.
func ListCollectionsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Collection, error) {
	var out []domain.Collection
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name asc").
		Scopes(paginate(offset, limit)).
		Find(&out).Error
	return out, err
}

// UpdateCollection applies the given column updates to a collection owned by
// userID. It returns ErrNotFound when no row matched and ErrDuplicate when the
// new name clashes with another collection of the same user.
func UpdateCollection(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	if len(updates) == 0 {
		_, err := GetCollection(ctx, db, id, userID)
		return err
	}
	updates["updated_at"] = time.Now().UTC()
	res := db.WithContext(ctx).
		Model(&domain.Collection{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(updates)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return ErrDuplicate
		}
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteCollection removes a collection and detaches its flashcards in one
// transaction. The FK is declared ON DELETE SET NULL as well; the explicit
// update keeps SQLite connections without foreign_keys=ON consistent.
func DeleteCollection(ctx context.Context, db *gorm.DB, id, userID string) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&domain.Flashcard{}).
			Where("collection_id = ? AND user_id = ?", id, userID).
			Update("collection_id", nil).Error; err != nil {
			return err
		}
		res := tx.Where("id = ? AND user_id = ?", id, userID).Delete(&domain.Collection{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}
