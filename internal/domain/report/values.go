package report

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DisplayDateLayout is the on-screen and export rendering of date columns (DD-MM-YYYY)
const DisplayDateLayout = "02-01-2006"

// Layouts accepted for date values, tried in order.
// Go's parser accepts fractional seconds after the seconds field without them being in the layout.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05Z07:00",
	DisplayDateLayout,
	"02/01/2006",
}

var bareYear = regexp.MustCompile(`^\d{4}$`)

// sentinelStrings are raw values that mean "no data"
var sentinelStrings = map[string]struct{}{
	"":    {},
	"N/A": {},
	"nil": {},
	"0":   {},
}

// ParseDay parses a raw value into its calendar day (UTC midnight).
// The day is the one written in the value; offsets are not applied.
func ParseDay(v any) (time.Time, bool) {
	var s string
	switch t := v.(type) {
	case string:
		s = strings.TrimSpace(t)
	case time.Time:
		return truncateDay(t), !t.IsZero()
	default:
		return time.Time{}, false
	}
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return truncateDay(t), true
		}
	}
	return time.Time{}, false
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// ParseYear extracts a 4-digit year from a bare year (text or number) or from a full date
func ParseYear(v any) (int, bool) {
	switch t := v.(type) {
	case json.Number:
		return yearFromString(t.String())
	case string:
		s := strings.TrimSpace(t)
		if y, ok := yearFromString(s); ok {
			return y, true
		}
		if d, ok := ParseDay(s); ok {
			return d.Year(), true
		}
		return 0, false
	case time.Time:
		if t.IsZero() {
			return 0, false
		}
		return t.Year(), true
	case int, int32, int64, float64, float32:
		return yearFromString(stringify(t))
	default:
		return 0, false
	}
}

func yearFromString(s string) (int, bool) {
	if !bareYear.MatchString(s) {
		return 0, false
	}
	y, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return y, true
}

// numeric returns the decimal value of a number-typed raw value.
// Text is never numeric here, so "1" and 1 stay distinct.
func numeric(v any) (decimal.Decimal, bool) {
	switch t := v.(type) {
	case json.Number:
		d, err := decimal.NewFromString(t.String())
		return d, err == nil
	case int:
		return decimal.NewFromInt(int64(t)), true
	case int32:
		return decimal.NewFromInt32(t), true
	case int64:
		return decimal.NewFromInt(t), true
	case float32:
		return decimal.NewFromFloat32(t), true
	case float64:
		return decimal.NewFromFloat(t), true
	default:
		return decimal.Decimal{}, false
	}
}

// IsSentinel reports whether a raw value stands for "no data".
// Strings must match a sentinel exactly; " 0" or "N/A " are data.
// Numeric zero is a sentinel as well: a genuine 0 renders the same as a missing value.
func IsSentinel(v any) bool {
	if v == nil {
		return true
	}
	if s, ok := v.(string); ok {
		_, hit := sentinelStrings[s]
		return hit
	}
	if d, ok := numeric(v); ok {
		return d.IsZero()
	}
	return false
}

// isTruthy reports whether v is numerically exactly 1
func isTruthy(v any) bool {
	d, ok := numeric(v)
	return ok && d.Equal(decimal.NewFromInt(1))
}

// stringify renders a raw value as plain text
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int32:
		return strconv.FormatInt(int64(t), 10)
	case int64:
		return strconv.FormatInt(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return fmt.Sprint(t)
	}
}
