package format

import (
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/jrsteele09/go-car-rental/pricing"
)

const (
	DateLayout     = "Jan 02, 2006"
	DateTimeLayout = "Jan 02, 2006 15:04"
	apiLayout      = "2006-01-02T15:04:05.000Z"

	DefaultTruncateLength = 100
)

// Date renders an API date or date-time as "Jan 02, 2006". Empty input
// gives "" and unparseable input is returned unchanged.
func Date(s string) string {
	return render(s, DateLayout)
}

// DateTime renders as "Jan 02, 2006 15:04"
func DateTime(s string) string {
	return render(s, DateTimeLayout)
}

func render(s, layout string) string {
	if s == "" {
		return ""
	}
	t, ok := pricing.ParseDate(s)
	if !ok {
		return s
	}
	return t.Format(layout)
}

// ForAPI renders t in the form the API expects for booking dates:
// UTC with millisecond precision, e.g. 2025-01-04T10:00:00.000Z.
func ForAPI(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(apiLayout)
}

// Truncate shortens text to n runes followed by "...". n <= 0 uses the default.
func Truncate(text string, n int) string {
	if n <= 0 {
		n = DefaultTruncateLength
	}
	if utf8.RuneCountInString(text) <= n {
		return text
	}
	return string([]rune(text)[:n]) + "..."
}

// StatusLabel turns a status value such as "pending" into "Pending"
func StatusLabel(status string) string {
	if status == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(status)
	return string(unicode.ToUpper(r)) + strings.ReplaceAll(status[size:], "_", " ")
}
