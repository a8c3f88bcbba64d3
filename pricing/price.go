package pricing

import (
	"time"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/internal/errors"
	"github.com/shopspring/decimal"
)

// CentsPlaces is the precision totals are rounded to
const CentsPlaces = 2

// TotalPrice is pricePerDay * days rounded half-to-even to cents, the rule
// the API applies to total_price. Zero or negative days cost nothing.
func TotalPrice(pricePerDay decimal.Decimal, days int) decimal.Decimal {
	if days <= 0 {
		return decimal.Zero
	}
	return pricePerDay.Mul(decimal.NewFromInt(int64(days))).RoundBank(CentsPlaces)
}

// BookingDraft is a booking being composed, before it is sent
type BookingDraft struct {
	CarID int       `json:"car" validate:"required,gt=0"`
	Start time.Time `json:"start" validate:"required"`
	End   time.Time `json:"end" validate:"required,gtfield=Start"`
}

// Validate checks the draft is complete and the range is ordered
func (d BookingDraft) Validate() error {
	err := apiclient.Validate(d)
	var verr *apiclient.ValidationError
	if errors.As(err, &verr) && verr.Field == "end" && !d.End.IsZero() {
		verr.Cause = errors.ErrInvalidDateRange
	}
	return err
}

// Days is the billable length of the draft
func (d BookingDraft) Days() int {
	return RentalDays(d.Start, d.End)
}

// Quote is the price of a draft
type Quote struct {
	Days        int             `json:"days"`
	PricePerDay decimal.Decimal `json:"price_per_day"`
	Total       decimal.Decimal `json:"total"`
}

// NewQuote validates the draft and prices it at pricePerDay
func NewQuote(draft BookingDraft, pricePerDay decimal.Decimal) (Quote, error) {
	if err := draft.Validate(); err != nil {
		return Quote{}, err
	}
	if pricePerDay.IsNegative() {
		return Quote{}, apiclient.NewValidationError("price_per_day", "Ensure this value is greater than or equal to 0.")
	}
	days := draft.Days()
	return Quote{
		Days:        days,
		PricePerDay: pricePerDay,
		Total:       TotalPrice(pricePerDay, days),
	}, nil
}
