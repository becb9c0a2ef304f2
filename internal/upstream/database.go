package upstream

import (
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Codes synthesized for driver-agnostic database conditions. They follow the
// PostgREST/SQLSTATE vocabulary so the same mapping table serves both.
const (
	CodeNoRows          = "PGRST116"
	CodeUniqueViolation = "23505"
	CodeFKViolation     = "23503"
	CodeTooManyConns    = "53300"
	CodeQueryCanceled   = "57014"
)

// FromDatabaseError describes a database failure coming from GORM, pgx or
// lib/pq. Unknown errors fall back to FromError.
func FromDatabaseError(err error) Error {
	if err == nil {
		return Error{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return Error{
			Name:    "PostgresError",
			Code:    pgErr.Code,
			Message: pgErr.Message,
			Details: pgErr.Detail,
			Hint:    pgErr.Hint,
			Cause:   err,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return Error{
			Name:    "PostgresError",
			Code:    string(pqErr.Code),
			Message: pqErr.Message,
			Details: pqErr.Detail,
			Hint:    pqErr.Hint,
			Cause:   err,
		}
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return Error{Code: CodeNoRows, Status: http.StatusNotFound, Message: err.Error(), Cause: err}
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return Error{Code: CodeUniqueViolation, Status: http.StatusConflict, Message: err.Error(), Cause: err}
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return Error{Code: CodeFKViolation, Message: err.Error(), Cause: err}
	}

	out := FromError(err)
	if out.Name == NameTimeout && out.Code == "" {
		out.Code = CodeQueryCanceled
	}
	return out
}
