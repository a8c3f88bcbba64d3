package pricing_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRentalDurationDays(t *testing.T) {
	tests := []struct {
		name       string
		start, end string
		want       int
	}{
		{"same day", "2025-01-01T10:00", "2025-01-01T22:00", 1},
		{"three days", "2025-01-01", "2025-01-04", 3},
		{"partial day truncates", "2025-01-01T10:00", "2025-01-03T09:00", 1},
		{"exact days with seconds", "2025-01-01T10:00:00", "2025-01-03T10:00:00", 2},
		{"inverted range bills one day", "2025-01-04", "2025-01-01", 1},
		{"identical", "2025-01-01", "2025-01-01", 1},
		{"rfc3339 with zones", "2025-01-01T00:00:00Z", "2025-01-02T01:00:00+01:00", 1},
		{"rfc3339 fractional", "2025-01-01T00:00:00.000Z", "2025-01-08T00:00:00.000Z", 7},
		{"across month end", "2025-01-30", "2025-02-02", 3},
		{"missing start", "", "2025-01-04", 0},
		{"missing end", "2025-01-01", "", 0},
		{"unparseable", "tomorrow", "2025-01-04", 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, pricing.RentalDurationDays(tc.start, tc.end))
		})
	}
}

func TestRentalDays(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	require.Equal(t, 0, pricing.RentalDays(time.Time{}, start))
	require.Equal(t, 0, pricing.RentalDays(start, time.Time{}))
	require.Equal(t, 1, pricing.RentalDays(start, start.Add(time.Hour)))
	require.Equal(t, 5, pricing.RentalDays(start, start.AddDate(0, 0, 5)))
}

func TestTotalPrice(t *testing.T) {
	tests := []struct {
		price string
		days  int
		want  string
	}{
		{"49.99", 3, "149.97"},
		{"50", 1, "50"},
		{"33.333", 3, "100"},
		{"0.125", 1, "0.12"}, // half to even
		{"0.135", 1, "0.14"},
		{"49.99", 0, "0"},
		{"49.99", -2, "0"},
	}
	for _, tc := range tests {
		got := pricing.TotalPrice(decimal.RequireFromString(tc.price), tc.days)
		require.True(t, decimal.RequireFromString(tc.want).Equal(got), "%s x %d = %s", tc.price, tc.days, got)
	}
}

func TestNewQuote(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	draft := pricing.BookingDraft{CarID: 4, Start: start, End: start.AddDate(0, 0, 3)}

	q, err := pricing.NewQuote(draft, decimal.RequireFromString("49.99"))
	require.NoError(t, err)
	require.Equal(t, 3, q.Days)
	require.Equal(t, "149.97", q.Total.StringFixed(2))
}

func TestNewQuote_Invalid(t *testing.T) {
	start := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	price := decimal.NewFromInt(10)

	tests := []struct {
		name      string
		draft     pricing.BookingDraft
		field     string
		dateRange bool
	}{
		{"no car", pricing.BookingDraft{Start: start, End: start.AddDate(0, 0, 1)}, "car", false},
		{"no start", pricing.BookingDraft{CarID: 1, End: start}, "start", false},
		{"no end", pricing.BookingDraft{CarID: 1, Start: start}, "end", false},
		{"end before start", pricing.BookingDraft{CarID: 1, Start: start, End: start.Add(-time.Hour)}, "end", true},
		{"end equals start", pricing.BookingDraft{CarID: 1, Start: start, End: start}, "end", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := pricing.NewQuote(tc.draft, price)
			var verr *apiclient.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
			require.ErrorIs(t, err, errors.ErrInvalidRequest)
			if tc.dateRange {
				require.ErrorIs(t, err, errors.ErrInvalidDateRange)
			} else {
				require.NotErrorIs(t, err, errors.ErrInvalidDateRange)
			}
		})
	}

	_, err := pricing.NewQuote(pricing.BookingDraft{CarID: 1, Start: start, End: start.AddDate(0, 0, 1)}, decimal.NewFromInt(-1))
	require.Error(t, err)
}
