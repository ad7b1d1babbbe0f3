// Package repository holds one gateway per remote table. Every gateway follows
// the same contract: List returns the full collection ordered by ascending
// primary id, Insert fills in the generated id, and Update/Delete surface
// sql.ErrNoRows when no row was affected so callers can map it to not-found.
// A failed call never leaves partial state behind; retries are the caller's
// decision (and nothing here retries).
package repository

import (
	"database/sql"
	"fmt"
)

func ensureAffected(res sql.Result, op string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
