package dao

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// isUniqueViolation reports whether err was caused by the named unique
// constraint. Drivers that only expose translated errors match on
// gorm.ErrDuplicatedKey; every table here carries a single unique key.
func isUniqueViolation(err error, constraint string) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.UniqueViolation && pgErr.ConstraintName == constraint
	}

	return errors.Is(err, gorm.ErrDuplicatedKey)
}
