// Package bookings is the client for /bookings/ and payment intents.
package bookings

import (
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
)

// Booking as returned by the API. Car is the car id; CarDetail is embedded
// by list and detail views.
type Booking struct {
	ID         int             `json:"id"`
	Car        int             `json:"car"`
	CarDetail  *cars.Car       `json:"car_detail,omitempty"`
	Start      time.Time       `json:"start"`
	End        time.Time       `json:"end"`
	Status     Status          `json:"status"`
	TotalPrice decimal.Decimal `json:"total_price"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Days is the billable length of the booking
func (b *Booking) Days() int {
	return pricing.RentalDays(b.Start, b.End)
}

// CarName is the car's name when embedded, else its id
func (b *Booking) CarName() string {
	if b.CarDetail != nil && b.CarDetail.Name != "" {
		return b.CarDetail.Name
	}
	return "#" + strconv.Itoa(b.Car)
}

// Cancellable reports whether the user may cancel b. Only pending bookings
// are offered for cancellation; the API has the final say.
func Cancellable(b *Booking) bool {
	return b != nil && b.Status == StatusPending
}

// Filters narrows a booking listing
type Filters struct {
	Status Status
	Page   int
}

func (f Filters) Values() url.Values {
	v := url.Values{}
	if f.Status != "" {
		v.Set("status", string(f.Status))
	}
	if f.Page > 0 {
		v.Set("page", strconv.Itoa(f.Page))
	}
	return v
}

// createRequest is the wire form of a new booking
type createRequest struct {
	Car   int    `json:"car"`
	Start string `json:"start"`
	End   string `json:"end"`
}

type paymentIntentRequest struct {
	BookingID int `json:"booking_id"`
}

// PaymentIntent is the handle a payment provider needs to collect payment
type PaymentIntent struct {
	ClientSecret    string          `json:"client_secret"`
	PaymentIntentID string          `json:"payment_intent_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
}
