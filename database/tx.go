package database

import (
	"github.com/edstack/institute-api/utils/apperror"
	"gorm.io/gorm"
)

// TxFunc is a unit of work executed within a database transaction. Every read
// and write inside the unit must go through the supplied tx handle; using any
// other handle voids the rollback guarantee.
type TxFunc[T any] func(tx *gorm.DB) (T, error)

// ExecuteInTransaction runs fn inside a transaction: commit on success,
// rollback on error or panic. The original error is propagated untouched after
// rollback. GORM returns the borrowed connection to the pool exactly once,
// on Commit or Rollback, whichever path is taken.
func ExecuteInTransaction[T any](db *gorm.DB, fn TxFunc[T]) (T, error) {
	var zero T

	tx := db.Begin()
	if tx.Error != nil {
		return zero, apperror.NewDatabaseError("Failed to start transaction")
	}

	defer func() {
		if r := recover(); r != nil {
			tx.Rollback()
			panic(r)
		}
	}()

	result, err := fn(tx)
	if err != nil {
		tx.Rollback()
		return zero, err
	}

	if err := tx.Commit().Error; err != nil {
		return zero, apperror.NewDatabaseError("Failed to commit transaction")
	}

	return result, nil
}
