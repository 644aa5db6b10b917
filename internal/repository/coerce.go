package repository

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	apperrors "quietseed/internal/errors"
)

// Layouts accepted for date-like strings, most specific first. Strings
// without a zone are read as UTC.
var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// CoerceBool normalizes a boolean-like value: real booleans, "true"/"false"
// (any case, also "1"/"0", "yes"/"no", "on"/"off"), and the numbers 0 and 1.
// nil reads as false.
func CoerceBool(v any) (bool, error) {
	switch b := v.(type) {
	case nil:
		return false, nil
	case bool:
		return b, nil
	case *bool:
		return b != nil && *b, nil
	case string:
		switch strings.ToLower(strings.TrimSpace(b)) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off", "":
			return false, nil
		}
	case float64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	case int:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	}
	return false, fmt.Errorf("%w: %v is not a boolean", apperrors.ErrInvalidInput, v)
}

// CoerceTime normalizes a date-like value into a UTC timestamp. It accepts
// time.Time, ISO-8601 strings (date only or date-time) and JavaScript epoch
// milliseconds.
func CoerceTime(v any) (time.Time, error) {
	switch t := v.(type) {
	case time.Time:
		if !t.IsZero() {
			return t.UTC(), nil
		}
	case *time.Time:
		if t != nil && !t.IsZero() {
			return t.UTC(), nil
		}
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed.UTC(), nil
			}
		}
		if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
			return time.UnixMilli(ms).UTC(), nil
		}
	case float64:
		if !math.IsNaN(t) && !math.IsInf(t, 0) {
			return time.UnixMilli(int64(t)).UTC(), nil
		}
	case int64:
		return time.UnixMilli(t).UTC(), nil
	case int:
		return time.UnixMilli(int64(t)).UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: %v is not a date", apperrors.ErrInvalidInput, v)
}

// coerceRef reads an id reference that may arrive as a number or a numeric
// string. ok is false for anything that is not a positive integer.
func coerceRef(v any) (id uint, ok bool) {
	switch r := v.(type) {
	case uint:
		return r, r > 0
	case *uint:
		if r != nil {
			return *r, *r > 0
		}
	case int:
		return uint(r), r > 0
	case float64:
		if r > 0 && r == math.Trunc(r) && r <= math.MaxUint32 {
			return uint(r), true
		}
	case string:
		if n, err := strconv.ParseUint(strings.TrimSpace(r), 10, 64); err == nil && n > 0 {
			return uint(n), true
		}
	}
	return 0, false
}
