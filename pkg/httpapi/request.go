package httpapi

import (
	"time"

	"community-recycle-tracker/pkg/auth"
	"community-recycle-tracker/pkg/errutil"

	"github.com/gin-gonic/gin"
)

const DateLayout = "2006-01-02"

func Session(c *gin.Context) (*auth.Session, error) {
	s, ok := auth.FromContext(c.Request.Context())
	if !ok {
		return nil, errutil.Unauthorized("missing session", nil)
	}
	return s, nil
}

// ResolveRecycler returns the recycler a request acts on. An empty value
// means the caller. Acting on someone else requires one of the extra roles
// (admin is always allowed).
func ResolveRecycler(c *gin.Context, requested string, roles ...string) (string, error) {
	s, err := Session(c)
	if err != nil {
		return "", err
	}

	if requested == "" || requested == s.Subject {
		return s.Subject, nil
	}

	if s.IsAdmin() {
		return requested, nil
	}
	for _, r := range roles {
		if s.Role == r {
			return requested, nil
		}
	}

	return "", errutil.Forbidden("cannot act on another recycler", nil)
}

// ParseDate parses a YYYY-MM-DD query value as midnight UTC.
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, value, time.UTC)
	if err != nil {
		return time.Time{}, errutil.BadRequest("invalid date", err, errutil.WithDetails(errutil.Detail{
			Field:   field,
			Message: "expected YYYY-MM-DD",
		}))
	}
	return t, nil
}

// DateRange reads from/to query parameters. Missing bounds default to the
// last seven days ending today (UTC).
func DateRange(c *gin.Context, now time.Time) (time.Time, time.Time, error) {
	today := now.UTC().Truncate(24 * time.Hour)
	from, to := today.AddDate(0, 0, -7), today

	if v := c.Query("from"); v != "" {
		t, err := ParseDate("from", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		from = t
	}

	if v := c.Query("to"); v != "" {
		t, err := ParseDate("to", v)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		to = t
	}

	return from, to, nil
}
