package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Transaction runs fn inside a transaction bounded by timeout
// (DefaultQueryTimeout when zero). Begin and commit failures are classified
// the same way as single store calls.
func Transaction(ctx context.Context, db *gorm.DB, timeout time.Duration, fn func(tx *gorm.DB) error) error {
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	return Classify(db.WithContext(ctx).Transaction(fn))
}
