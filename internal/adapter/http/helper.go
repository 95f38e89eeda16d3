package http

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

const dateLayout = "2006-01-02"

func unauthorized(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "missing session", Code: "unauthorized"})
}

// parseDate reads an optional YYYY-MM-DD or RFC3339 value. Bare dates are UTC midnight.
func parseDate(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		if t, err = time.Parse(time.RFC3339, raw); err != nil {
			return nil, err
		}
	}
	t = t.UTC()
	return &t, nil
}

// parseUntil reads an inclusive upper bound. A bare date covers the whole
// day; an RFC3339 value is taken as the exact instant.
func parseUntil(raw string) (*time.Time, error) {
	t, err := parseDate(raw)
	if err != nil || t == nil {
		return t, err
	}
	if _, bare := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), time.UTC); bare == nil {
		return endOfDay(t), nil
	}
	return t, nil
}

// endOfDay turns an inclusive date bound into the last instant of that day.
func endOfDay(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	e := t.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return &e
}

// ---- helpers ----

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}
