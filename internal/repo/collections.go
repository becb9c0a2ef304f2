package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/domain"
)

// Collections exposes the collection functions as a value, for services
// that take their repository as an interface.
type Collections struct{}

func (Collections) CreateCollection(ctx context.Context, db *gorm.DB, userID, name string, description *string) (*domain.Collection, error) {
	return CreateCollection(ctx, db, userID, name, description)
}

func (Collections) GetCollection(ctx context.Context, db *gorm.DB, id, userID string) (*domain.Collection, error) {
	return GetCollection(ctx, db, id, userID)
}

func (Collections) CountCollections(ctx context.Context, db *gorm.DB, userID string) (int64, error) {
	return CountCollections(ctx, db, userID)
}

func (Collections) ListCollectionsPage(ctx context.Context, db *gorm.DB, userID string, offset, limit int) ([]domain.Collection, error) {
	return ListCollectionsPage(ctx, db, userID, offset, limit)
}

func (Collections) UpdateCollection(ctx context.Context, db *gorm.DB, id, userID string, updates map[string]any) error {
	return UpdateCollection(ctx, db, id, userID, updates)
}

func (Collections) DeleteCollection(ctx context.Context, db *gorm.DB, id, userID string) error {
	return DeleteCollection(ctx, db, id, userID)
}

func (Collections) CollectionsStats(ctx context.Context, db *gorm.DB, userID string) (int64, *time.Time, error) {
	return CollectionsStats(ctx, db, userID)
}
