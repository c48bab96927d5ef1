// Package impl contains the implementation of the application's business logic.
package impl

import (
	"strconv"
	"strings"
	"time"

	domainerrors "librarian/internal/domain/errors"

	"github.com/google/uuid"
)

func parseID(raw string) (uint64, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, domainerrors.ErrInvalidID.WithDetails(raw)
	}

	return id, nil
}

func parseUserID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return uuid.Nil, domainerrors.ErrInvalidID.WithDetails(raw)
	}

	return id, nil
}

// parseDate accepts a calendar date or a full RFC3339 timestamp.
func parseDate(field, raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}

	return time.Time{}, domainerrors.ErrInvalidDate.
		WithDetails(field + ": " + raw).
		WithSuggestion("use the format 2024-01-31 or 2024-01-31T10:00:00Z")
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}
