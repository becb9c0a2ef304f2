// Package services holds the business rules of the flashcard API: auth
// delegation, collections, flashcards and AI generations.
//
// Services never return raw infrastructure errors. Every failure is a
// *problem.Error built from the apperr catalogue, so handlers can hand it to
// the problem responder unchanged. Repository sentinels (repo.ErrNotFound,
// repo.ErrDuplicate) are translated here, anything else goes through the
// database mappers.
package services

import (
	"errors"
	"regexp"
	"strings"

	"golang.org/x/text/unicode/norm"

	"github.com/tbourn/tenx-cards/internal/apperr"
	"github.com/tbourn/tenx-cards/internal/problem"
	"github.com/tbourn/tenx-cards/internal/repo"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// dbError maps a flashcard-side repository error. repo.ErrNotFound becomes
// notFound with the given detail.
func dbError(err error, notFound *problem.Kind, detail string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return notFound.New(detail, problem.WithCause(err))
	}
	return apperr.FromDBError(err)
}

// genDBError is dbError for the generation domain.
func genDBError(err error, detail string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, repo.ErrNotFound) {
		return apperr.GenerationNotFound.New(detail, problem.WithCause(err))
	}
	return apperr.FromGenerationDBError(err)
}

// pageBounds converts a 1-based page into offset/limit.
func pageBounds(page, pageSize int) (offset, limit int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return (page - 1) * pageSize, pageSize
}

// normalizeText applies NFC and trims surrounding whitespace.
func normalizeText(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

// normalizeName is normalizeText that also collapses inner whitespace runs.
func normalizeName(s string) string {
	return whitespaceRE.ReplaceAllString(normalizeText(s), " ")
}

var whitespaceRE = regexp.MustCompile(`\s+`)
