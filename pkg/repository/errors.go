package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"

	"community-recycle-tracker/pkg/errutil"
)

// Classify maps connectivity failures to StoreUnavailable and leaves every
// other error untouched so callers can still match gorm sentinels.
func Classify(err error) error {
	if err == nil {
		return nil
	}

	var be errutil.BaseError
	if errors.As(err, &be) {
		return err
	}

	if IsUnavailable(err) {
		return errutil.StoreUnavailable(err)
	}

	return err
}

func IsUnavailable(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.Is(err, sql.ErrConnDone) {
		return true
	}

	if err.Error() == "sql: database is closed" {
		return true
	}

	var netErr net.Error
	return errors.As(err, &netErr)
}
