package errors

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// FromPg maps a pgx error to a coded error. Nil stays nil so call sites can
// wrap unconditionally: return errors.FromPg(err, "upsert lead")
func FromPg(err error, msg string) error {
	if err == nil {
		return nil
	}
	switch {
	case errors.Is(err, pgx.ErrNoRows):
		return Wrap(err, CodeNotFound, msg)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return Wrap(err, CodeTimeout, msg)
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return Wrap(err, codeForSQLState(pgErr.Code), msg)
	}
	if pgconn.Timeout(err) {
		return Wrap(err, CodeTimeout, msg)
	}
	return Wrap(err, CodeDB, msg)
}

// codeForSQLState maps SQLSTATE classes onto the app taxonomy
func codeForSQLState(state string) ErrorCode {
	switch state {
	case "23505": // unique_violation
		return CodeDuplicateKey
	case "23503", "23502", "23514": // fk, not_null, check
		return CodeValidation
	case "40001", "40P01": // serialization failure, deadlock
		return CodeConflict
	case "57014": // query_canceled
		return CodeTimeout
	case "53300", "57P01", "57P02", "57P03": // too many conns, shutdown
		return CodeUnavailable
	}
	if len(state) >= 2 {
		switch state[:2] {
		case "08": // connection exception
			return CodeUnavailable
		case "22": // data exception
			return CodeValidation
		case "42": // syntax / access rule
			return CodeSyntax
		}
	}
	return CodeDB
}
