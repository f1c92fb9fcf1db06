package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrDuplicate signals a unique-constraint violation. The database constraint
// is the authority for uniqueness; any application-level pre-check only exists
// for friendlier error messages.
var ErrDuplicate = errors.New("duplicate value")

const uniqueViolationCode = "23505"

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode
}

// Owner is the reduced user projection attached to owned rows.
type Owner struct {
	ID   int64
	Name string
}
