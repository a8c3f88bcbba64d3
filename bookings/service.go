package bookings

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/format"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/jrsteele09/go-car-rental/querycache"
)

const (
	cacheBookings = "bookings"
	cacheBooking  = "booking"
)

// Service maps the /bookings/ endpoints to typed calls
type Service struct {
	client *apiclient.Client
	cache  *querycache.Cache
}

type ServiceOption func(*Service)

// WithCache serves reads from cache and invalidates it on writes. The cache
// is cleared whenever the client's session begins or ends.
func WithCache(cache *querycache.Cache) ServiceOption {
	return func(s *Service) {
		s.cache = cache
	}
}

func New(client *apiclient.Client, options ...ServiceOption) (*Service, error) {
	if client == nil {
		return nil, errors.New("[bookings.New] client is required")
	}
	s := &Service{client: client}
	for _, opt := range options {
		opt(s)
	}
	// cached reads belong to the signed-in user
	if s.cache != nil && client.Session() != nil {
		client.Session().OnReset(s.cache.Clear)
	}
	return s, nil
}

func bookingPath(id int) string {
	return fmt.Sprintf("/bookings/%d/", id)
}

func bookingKey(id int) string {
	return cacheBooking + "/" + strconv.Itoa(id)
}

// List returns the caller's bookings; fleet managers see all of them
func (s *Service) List(ctx context.Context, f Filters) (*apiclient.Page[Booking], error) {
	q := f.Values()
	return querycache.Fetch(s.cache, querycache.Key(cacheBookings, q), func() (*apiclient.Page[Booking], error) {
		var page apiclient.Page[Booking]
		if err := s.client.Do(ctx, apiclient.Get("/bookings/", q), &page); err != nil {
			return nil, err
		}
		return &page, nil
	})
}

func (s *Service) Get(ctx context.Context, id int) (*Booking, error) {
	return querycache.Fetch(s.cache, bookingKey(id), func() (*Booking, error) {
		var b Booking
		if err := s.client.Do(ctx, apiclient.Get(bookingPath(id), nil), &b); err != nil {
			return nil, err
		}
		return &b, nil
	})
}

// Create books draft.CarID for the draft's range. The API prices it.
func (s *Service) Create(ctx context.Context, draft pricing.BookingDraft) (*Booking, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	body := createRequest{
		Car:   draft.CarID,
		Start: format.ForAPI(draft.Start),
		End:   format.ForAPI(draft.End),
	}
	var b Booking
	if err := s.client.Do(ctx, apiclient.Post("/bookings/", body), &b); err != nil {
		return nil, err
	}
	s.cache.Invalidate(cacheBookings)
	return &b, nil
}

// Cancel asks the API to cancel booking id and returns the booking as the
// API reports it afterwards.
func (s *Service) Cancel(ctx context.Context, id int) (*Booking, error) {
	var b Booking
	if err := s.client.Do(ctx, apiclient.Post(bookingPath(id)+"cancel/", nil), &b); err != nil {
		return nil, err
	}
	s.cache.Invalidate(cacheBookings, bookingKey(id))
	return &b, nil
}

// CreatePaymentIntent starts payment for booking id
func (s *Service) CreatePaymentIntent(ctx context.Context, bookingID int) (*PaymentIntent, error) {
	if bookingID <= 0 {
		return nil, apiclient.NewValidationError("booking_id", "This field is required.")
	}
	var pi PaymentIntent
	if err := s.client.Do(ctx, apiclient.Post("/payment/create-intent/", paymentIntentRequest{BookingID: bookingID}), &pi); err != nil {
		return nil, err
	}
	return &pi, nil
}
