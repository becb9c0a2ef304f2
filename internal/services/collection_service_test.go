package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/domain"
	"github.com/tbourn/tenx-cards/internal/repo"
)

// ----- Fake repo -----

type fakeCollectionRepo struct {
	createName string
	createDesc *string
	createErr  error

	getItem *domain.Collection
	getErr  error

	countTotal int64
	countErr   error

	pageOffset, pageLimit int
	pageItems             []domain.Collection

	updates   map[string]any
	updateErr error

	deleteErr error

	statsTS *time.Time
}

func (r *fakeCollectionRepo) CreateCollection(_ context.Context, _ *gorm.DB, userID, name string, description *string) (*domain.Collection, error) {
	r.createName, r.createDesc = name, description
	if r.createErr != nil {
		return nil, r.createErr
	}
	return &domain.Collection{ID: "c1", UserID: userID, Name: name, Description: description}, nil
}

func (r *fakeCollectionRepo) GetCollection(_ context.Context, _ *gorm.DB, id, userID string) (*domain.Collection, error) {
	return r.getItem, r.getErr
}

func (r *fakeCollectionRepo) CountCollections(context.Context, *gorm.DB, string) (int64, error) {
	return r.countTotal, r.countErr
}

func (r *fakeCollectionRepo) ListCollectionsPage(_ context.Context, _ *gorm.DB, _ string, offset, limit int) ([]domain.Collection, error) {
	r.pageOffset, r.pageLimit = offset, limit
	return r.pageItems, nil
}

func (r *fakeCollectionRepo) UpdateCollection(_ context.Context, _ *gorm.DB, _, _ string, updates map[string]any) error {
	r.updates = updates
	return r.updateErr
}

func (r *fakeCollectionRepo) DeleteCollection(context.Context, *gorm.DB, string, string) error {
	return r.deleteErr
}

func (r *fakeCollectionRepo) CollectionsStats(context.Context, *gorm.DB, string) (int64, *time.Time, error) {
	return r.countTotal, r.statsTS, r.countErr
}

// ----- Tests -----

func TestCollectionService_Create_NormalizesName(t *testing.T) {
	r := &fakeCollectionRepo{}
	s := NewCollectionService(nil, r)

	c, err := s.Create(context.Background(), "u1", "  Spanish \t  verbs ", strptr("   "))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if r.createName != "Spanish verbs" || c.Name != "Spanish verbs" {
		t.Fatalf("name not normalized: %q", r.createName)
	}
	if r.createDesc != nil {
		t.Fatalf("blank description should be stored as nil, got %q", *r.createDesc)
	}
}

func TestCollectionService_Create_Validation(t *testing.T) {
	s := NewCollectionService(nil, &fakeCollectionRepo{})

	_, err := s.Create(context.Background(), "u1", "   ", nil)
	pe := wantProblem(t, err, apperr.FlashcardValidationFailed)
	if got := fieldErrors(t, pe)["name"]; len(got) != 1 || got[0] != "is required" {
		t.Fatalf("unexpected name errors: %v", got)
	}

	_, err = s.Create(context.Background(), "u1", strings.Repeat("x", CollectionNameMax+1), strptr(strings.Repeat("d", CollectionDescriptionMax+1)))
	pe = wantProblem(t, err, apperr.FlashcardValidationFailed)
	fe := fieldErrors(t, pe)
	if len(fe["name"]) != 1 || len(fe["description"]) != 1 {
		t.Fatalf("expected name and description errors, got %v", fe)
	}
}

func TestCollectionService_Create_DuplicateName(t *testing.T) {
	s := NewCollectionService(nil, &fakeCollectionRepo{createErr: repo.ErrDuplicate})

	_, err := s.Create(context.Background(), "u1", "Langs", nil)
	pe := wantProblem(t, err, apperr.FlashcardValidationFailed)
	if got := fieldErrors(t, pe)["name"]; len(got) != 1 || got[0] != "already exists" {
		t.Fatalf("expected name already exists, got %v", got)
	}
	if pe.Cause() != repo.ErrDuplicate {
		t.Fatalf("cause should be kept, got %v", pe.Cause())
	}
}

func TestCollectionService_GetAndDelete_NotFound(t *testing.T) {
	r := &fakeCollectionRepo{getErr: repo.ErrNotFound, deleteErr: repo.ErrNotFound}
	s := NewCollectionService(nil, r)

	_, err := s.Get(context.Background(), "u1", "missing")
	wantProblem(t, err, apperr.FlashcardCollectionNotFound)

	err = s.Delete(context.Background(), "u1", "missing")
	wantProblem(t, err, apperr.FlashcardCollectionNotFound)

	r.deleteErr = errBoom
	err = s.Delete(context.Background(), "u1", "c1")
	wantProblem(t, err, apperr.FlashcardDatabaseError)
}

func TestCollectionService_ListPage(t *testing.T) {
	r := &fakeCollectionRepo{countTotal: 0}
	s := NewCollectionService(nil, r)

	items, total, err := s.ListPage(context.Background(), "u1", 1, 10)
	if err != nil || total != 0 || items == nil || len(items) != 0 {
		t.Fatalf("empty list = %v, %d, %v", items, total, err)
	}

	r.countTotal = 45
	r.pageItems = []domain.Collection{{ID: "c1"}}
	_, total, err = s.ListPage(context.Background(), "u1", 3, 500)
	if err != nil || total != 45 {
		t.Fatalf("ListPage total=%d err=%v", total, err)
	}
	if r.pageLimit != maxPageSize || r.pageOffset != 2*maxPageSize {
		t.Fatalf("page bounds = offset %d limit %d", r.pageOffset, r.pageLimit)
	}

	r.countErr = errBoom
	_, _, err = s.ListPage(context.Background(), "u1", 1, 10)
	wantProblem(t, err, apperr.FlashcardDatabaseError)
}

func TestCollectionService_Update(t *testing.T) {
	r := &fakeCollectionRepo{getItem: &domain.Collection{ID: "c1", Name: "New"}}
	s := NewCollectionService(nil, r)

	got, err := s.Update(context.Background(), "u1", "c1", CollectionPatch{Name: strptr(" New "), Description: strptr("")})
	if err != nil || got.Name != "New" {
		t.Fatalf("Update = %+v, %v", got, err)
	}
	if r.updates["name"] != "New" {
		t.Fatalf("name update missing: %v", r.updates)
	}
	if v, ok := r.updates["description"]; !ok || v != nil {
		t.Fatalf("empty description should clear the column: %v", r.updates)
	}

	r.updateErr = repo.ErrDuplicate
	_, err = s.Update(context.Background(), "u1", "c1", CollectionPatch{Name: strptr("Taken")})
	wantProblem(t, err, apperr.FlashcardValidationFailed)

	r.updateErr = repo.ErrNotFound
	_, err = s.Update(context.Background(), "u1", "c1", CollectionPatch{})
	wantProblem(t, err, apperr.FlashcardCollectionNotFound)
}

func TestCollectionService_Stats(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	r := &fakeCollectionRepo{countTotal: 3, statsTS: &ts}
	s := NewCollectionService(nil, r)

	n, got, err := s.Stats(context.Background(), "u1")
	if err != nil || n != 3 || got == nil || !got.Equal(ts) {
		t.Fatalf("Stats = %d, %v, %v", n, got, err)
	}

	r.countErr = errBoom
	_, _, err = s.Stats(context.Background(), "u1")
	wantProblem(t, err, apperr.FlashcardDatabaseError)
}
