package repository

import (
	"context"

	"gorm.io/gorm"
)

// pick returns tx when the caller runs inside a transaction, db otherwise.
func pick(ctx context.Context, db, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return db.WithContext(ctx)
}
