package bookings_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/internal/fakeapi"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/jrsteele09/go-car-rental/querycache"
	"github.com/jrsteele09/go-car-rental/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var day1 = time.Date(2030, 3, 1, 10, 0, 0, 0, time.UTC)

type testFixture struct {
	*fakeapi.Fixture
	service  *bookings.Service
	customer users.Profile
	other    users.Profile
	car      cars.Car
}

func setupTest(t *testing.T, opts ...bookings.ServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{Fixture: fakeapi.NewFixture(t)}
	f.customer = f.API.AddUser("customer", "Password123", users.RoleCustomer)
	f.other = f.API.AddUser("other", "Password123", users.RoleCustomer)
	f.car = f.API.AddCar(cars.Car{Name: "Honda Civic", Make: "Honda", Model: "Civic", Year: 2022,
		FuelType: cars.FuelGasoline, Transmission: cars.TransmissionAutomatic, Seats: 5, Doors: 4,
		PricePerDay: decimal.RequireFromString("49.99"), Location: "Downtown"})
	f.SignIn(t, f.customer)

	service, err := bookings.New(f.Client, opts...)
	require.NoError(t, err)
	f.service = service
	return f
}

func (f *testFixture) draft(days int) pricing.BookingDraft {
	return pricing.BookingDraft{CarID: f.car.ID, Start: day1, End: day1.AddDate(0, 0, days)}
}

func TestNew(t *testing.T) {
	_, err := bookings.New(nil)
	require.Error(t, err)
}

func TestCreate(t *testing.T) {
	f := setupTest(t)

	b, err := f.service.Create(context.Background(), f.draft(3))
	require.NoError(t, err)
	require.Equal(t, bookings.StatusPending, b.Status)
	require.Equal(t, f.car.ID, b.Car)
	require.True(t, b.TotalPrice.Equal(decimal.RequireFromString("149.97")), b.TotalPrice.String())
	require.Equal(t, 3, b.Days())
	require.Equal(t, "Honda Civic", b.CarName())
	require.True(t, b.Start.Equal(day1))

	// the client-side quote agrees with the API's total
	quote, err := pricing.NewQuote(f.draft(3), f.car.PricePerDay)
	require.NoError(t, err)
	require.True(t, quote.Total.Equal(b.TotalPrice))
}

func TestCreate_Validation(t *testing.T) {
	f := setupTest(t)

	tests := []struct {
		name  string
		draft pricing.BookingDraft
		field string
	}{
		{"no car", pricing.BookingDraft{Start: day1, End: day1.AddDate(0, 0, 1)}, "car"},
		{"no start", pricing.BookingDraft{CarID: f.car.ID, End: day1}, "start"},
		{"end before start", pricing.BookingDraft{CarID: f.car.ID, Start: day1, End: day1.Add(-time.Hour)}, "end"},
		{"same instant", pricing.BookingDraft{CarID: f.car.ID, Start: day1, End: day1}, "end"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.service.Create(context.Background(), tc.draft)
			var verr *apiclient.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
	require.Zero(t, f.API.Calls("POST", "/bookings/"))
}

func TestCreate_Overlap(t *testing.T) {
	f := setupTest(t)
	f.API.AddBooking(f.other.ID, f.car.ID, day1.AddDate(0, 0, 1), day1.AddDate(0, 0, 2), bookings.StatusConfirmed)

	_, err := f.service.Create(context.Background(), f.draft(3))
	require.ErrorIs(t, err, apiclient.ErrBadRequest)
	require.Equal(t, "non_field_errors: Car is not available for selected dates", apiclient.ErrorMessage(err))

	// a cancelled booking frees the dates
	f.API.AddBooking(f.other.ID, f.car.ID, day1.AddDate(0, 1, 0), day1.AddDate(0, 1, 2), bookings.StatusCancelled)
	_, err = f.service.Create(context.Background(), pricing.BookingDraft{CarID: f.car.ID, Start: day1.AddDate(0, 1, 0), End: day1.AddDate(0, 1, 1)})
	require.NoError(t, err)
}

func TestListAndGet(t *testing.T) {
	f := setupTest(t)
	mine := f.API.AddBooking(f.customer.ID, f.car.ID, day1, day1.AddDate(0, 0, 1), bookings.StatusCompleted)
	theirs := f.API.AddBooking(f.other.ID, f.car.ID, day1.AddDate(0, 0, 5), day1.AddDate(0, 0, 6), bookings.StatusPending)
	latest, err := f.service.Create(context.Background(), pricing.BookingDraft{CarID: f.car.ID, Start: day1.AddDate(0, 0, 10), End: day1.AddDate(0, 0, 12)})
	require.NoError(t, err)

	page, err := f.service.List(context.Background(), bookings.Filters{})
	require.NoError(t, err)
	require.Equal(t, 2, page.Count)
	require.Equal(t, latest.ID, page.Results[0].ID)
	require.Equal(t, mine.ID, page.Results[1].ID)

	page, err = f.service.List(context.Background(), bookings.Filters{Status: bookings.StatusCompleted})
	require.NoError(t, err)
	require.Len(t, page.Results, 1)
	require.Equal(t, mine.ID, page.Results[0].ID)

	got, err := f.service.Get(context.Background(), mine.ID)
	require.NoError(t, err)
	require.Equal(t, bookings.StatusCompleted, got.Status)
	require.NotNil(t, got.CarDetail)

	_, err = f.service.Get(context.Background(), theirs.ID)
	require.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestFilters_Values(t *testing.T) {
	require.Equal(t, "page=2&status=pending", bookings.Filters{Status: bookings.StatusPending, Page: 2}.Values().Encode())
	require.Empty(t, bookings.Filters{}.Values())
}

func TestCancel(t *testing.T) {
	f := setupTest(t)
	b, err := f.service.Create(context.Background(), f.draft(2))
	require.NoError(t, err)
	require.True(t, bookings.Cancellable(b))

	cancelled, err := f.service.Cancel(context.Background(), b.ID)
	require.NoError(t, err)
	require.Equal(t, bookings.StatusCancelled, cancelled.Status)
	require.False(t, bookings.Cancellable(cancelled))

	stored, ok := f.API.Booking(b.ID)
	require.True(t, ok)
	require.Equal(t, bookings.StatusCancelled, stored.Status)

	// the API decides; the client does not pre-check the status
	_, err = f.service.Cancel(context.Background(), b.ID)
	require.ErrorIs(t, err, apiclient.ErrBadRequest)
	require.Equal(t, "Cannot cancel a cancelled booking", apiclient.ErrorMessage(err))
	require.Equal(t, 2, f.API.Calls("POST", "/bookings/:id/cancel/"))
}

func TestCancellable(t *testing.T) {
	require.False(t, bookings.Cancellable(nil))
	for status, want := range map[bookings.Status]bool{
		bookings.StatusPending:   true,
		bookings.StatusConfirmed: false,
		bookings.StatusCompleted: false,
		bookings.StatusCancelled: false,
		bookings.StatusRefunded:  false,
	} {
		require.Equal(t, want, bookings.Cancellable(&bookings.Booking{Status: status}), status)
	}
}

func TestCreatePaymentIntent(t *testing.T) {
	f := setupTest(t)
	b, err := f.service.Create(context.Background(), f.draft(1))
	require.NoError(t, err)

	pi, err := f.service.CreatePaymentIntent(context.Background(), b.ID)
	require.NoError(t, err)
	require.NotEmpty(t, pi.ClientSecret)
	require.True(t, pi.Amount.Equal(b.TotalPrice))

	_, err = f.service.CreatePaymentIntent(context.Background(), 0)
	var verr *apiclient.ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = f.service.Cancel(context.Background(), b.ID)
	require.NoError(t, err)
	_, err = f.service.CreatePaymentIntent(context.Background(), b.ID)
	require.Equal(t, "Booking is not awaiting payment", apiclient.ErrorMessage(err))
}

func TestCache(t *testing.T) {
	f := setupTest(t, bookings.WithCache(querycache.New(time.Minute)))
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := f.service.List(ctx, bookings.Filters{})
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.API.Calls("GET", "/bookings/"))

	b, err := f.service.Create(ctx, f.draft(1))
	require.NoError(t, err)
	page, err := f.service.List(ctx, bookings.Filters{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	require.Equal(t, 2, f.API.Calls("GET", "/bookings/"))

	_, err = f.service.Get(ctx, b.ID)
	require.NoError(t, err)
	_, err = f.service.Cancel(ctx, b.ID)
	require.NoError(t, err)
	got, err := f.service.Get(ctx, b.ID)
	require.NoError(t, err)
	require.Equal(t, bookings.StatusCancelled, got.Status)
	require.Equal(t, 2, f.API.Calls("GET", "/bookings/:id/"))
}

func TestCache_ClearedWhenUserChanges(t *testing.T) {
	f := setupTest(t, bookings.WithCache(querycache.New(time.Minute)))
	ctx := context.Background()

	b, err := f.service.Create(ctx, f.draft(2))
	require.NoError(t, err)
	page, err := f.service.List(ctx, bookings.Filters{})
	require.NoError(t, err)
	require.Equal(t, 1, page.Count)
	_, err = f.service.Get(ctx, b.ID)
	require.NoError(t, err)

	require.NoError(t, f.Session.Clear(ctx))
	f.SignIn(t, f.other)

	page, err = f.service.List(ctx, bookings.Filters{})
	require.NoError(t, err)
	require.Zero(t, page.Count)
	require.Equal(t, 2, f.API.Calls("GET", "/bookings/"))

	_, err = f.service.Get(ctx, b.ID)
	require.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestExpiredAccessTokenIsRefreshed(t *testing.T) {
	f := setupTest(t)
	before := f.Session.AccessToken()
	f.API.ExpireAccessTokens()

	b, err := f.service.Create(context.Background(), f.draft(2))
	require.NoError(t, err)
	require.NotZero(t, b.ID)
	require.NotEqual(t, before, f.Session.AccessToken())
	require.Equal(t, 1, f.API.Calls("POST", "/token/refresh/"))
	require.Equal(t, 2, f.API.Calls("POST", "/bookings/"))
	require.Zero(t, f.Navigator.SignedOutCount())
}

func TestRevokedSessionSignsOut(t *testing.T) {
	f := setupTest(t)
	f.API.ExpireAccessTokens()
	f.API.RevokeRefreshTokens()

	_, err := f.service.List(context.Background(), bookings.Filters{})
	require.ErrorIs(t, err, apiclient.ErrUnauthorized)
	require.False(t, f.Session.Exists())
	require.Equal(t, 1, f.Navigator.SignedOutCount())
	require.Zero(t, f.Store.Len())
}
