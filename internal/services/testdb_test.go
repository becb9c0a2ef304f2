package services

import (
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/problem"
)

// ---------- test helpers ----------

func newSvcDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared&_pragma=foreign_keys(1)", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(domain.All()...); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

func seedGen(t *testing.T, db *gorm.DB, id, userID string) {
	t.Helper()
	now := time.Now().UTC()
	g := &domain.Generation{
		ID: id, UserID: userID, Model: "m", GeneratedCount: 5,
		SourceTextHash: "h", SourceTextLength: 1500, CreatedAt: now, UpdatedAt: now,
	}
	if err := db.Create(g).Error; err != nil {
		t.Fatalf("seed generation: %v", err)
	}
}

// wantProblem fails unless err is a problem of kind k.
func wantProblem(t *testing.T, err error, k *problem.Kind) *problem.Error {
	t.Helper()
	pe, ok := problem.As(err)
	if !ok {
		t.Fatalf("expected %s, got %T %v", k.Code(), err, err)
	}
	if pe.Code() != k.Code() {
		t.Fatalf("expected %s, got %s (%s)", k.Code(), pe.Code(), pe.Detail())
	}
	return pe
}

// fieldErrors extracts meta.fieldErrors from a validation problem.
func fieldErrors(t *testing.T, pe *problem.Error) map[string][]string {
	t.Helper()
	fe, ok := pe.Meta()["fieldErrors"].(map[string][]string)
	if !ok {
		t.Fatalf("meta has no fieldErrors: %#v", pe.Meta())
	}
	return fe
}

func strptr(s string) *string { return &s }

var errBoom = errors.New("boom")

func longText(n int) string { return strings.Repeat("a", n) }
