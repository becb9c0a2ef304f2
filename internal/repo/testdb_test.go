package repo

import (
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/tenx-cards/internal/domain"
)

// newTestDB opens a unique in-memory database per test. With migrate set the
// full domain schema is created.
func newTestDB(t *testing.T, migrate bool) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:repo_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if migrate {
		if err := db.AutoMigrate(domain.All()...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func seedGeneration(t *testing.T, db *gorm.DB, id, userID string) *domain.Generation {
	t.Helper()
	now := time.Now().UTC()
	g := &domain.Generation{
		ID: id, UserID: userID, Model: "openai/gpt-4o-mini", GeneratedCount: 5,
		SourceTextHash: "h", SourceTextLength: 1200, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("seed generation: %v", err)
	}
	return g
}

func strptr(s string) *string { return &s }
