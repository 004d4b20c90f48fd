package validators

import (
	"net/http"
	"strings"
	"time"

	pkgerrors "github.com/washtrack/washtrack-backend/pkg/errors"
)

const queryDateLayout = "2006-01-02"

// ParseQueryDate reads a YYYY-MM-DD query parameter as local midnight.
// Returns nil when the parameter is absent and not required.
func ParseQueryDate(r *http.Request, key string, required bool) (*time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		if required {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter is required").
				WithDetails(map[string]any{"field": key})
		}
		return nil, nil
	}
	value, err := time.ParseInLocation(queryDateLayout, raw, time.Local)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "query parameter must be a YYYY-MM-DD date").
			WithDetails(map[string]any{"field": key})
	}
	return &value, nil
}

// EndOfDay returns the last representable millisecond of t's calendar day.
func EndOfDay(t time.Time) time.Time {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start.AddDate(0, 0, 1).Add(-time.Millisecond)
}
