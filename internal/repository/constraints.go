package repository

import (
	"errors"

	"github.com/lib/pq"
)

// Postgres error codes surfaced by lib/pq. The store's constraints are the
// authoritative guard for uniqueness and referential integrity; pre-checks
// in the services are advisory, so these must be recognized even after a
// passing pre-check.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqUniqueViolation
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == pqForeignKeyViolation
}
