package cars_test

import (
	"context"
	"testing"
	"time"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/internal/fakeapi"
	"github.com/jrsteele09/go-car-rental/querycache"
	"github.com/jrsteele09/go-car-rental/users"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type testFixture struct {
	*fakeapi.Fixture
	service  *cars.Service
	customer users.Profile
	fleet    users.Profile
	civic    cars.Car
	tesla    cars.Car
	golf     cars.Car
}

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func setupTest(t *testing.T, opts ...cars.ServiceOption) *testFixture {
	t.Helper()

	f := &testFixture{Fixture: fakeapi.NewFixture(t)}
	f.customer = f.API.AddUser("customer", "Password123", users.RoleCustomer)
	f.fleet = f.API.AddUser("manager", "Password123", users.RoleFleet)

	f.civic = f.API.AddCar(cars.Car{Name: "Honda Civic", Make: "Honda", Model: "Civic", Year: 2022,
		FuelType: cars.FuelGasoline, Transmission: cars.TransmissionAutomatic, Seats: 5, Doors: 4,
		PricePerDay: price("49.99"), Location: "Downtown", Features: "GPS, Bluetooth"})
	f.tesla = f.API.AddCar(cars.Car{Name: "Tesla Model 3", Make: "Tesla", Model: "Model 3", Year: 2023,
		FuelType: cars.FuelElectric, Transmission: cars.TransmissionAutomatic, Seats: 5, Doors: 4,
		PricePerDay: price("120.00"), Location: "Airport"})
	f.golf = f.API.AddCar(cars.Car{Name: "VW Golf", Make: "Volkswagen", Model: "Golf", Year: 2019,
		FuelType: cars.FuelDiesel, Transmission: cars.TransmissionManual, Seats: 5, Doors: 5,
		PricePerDay: price("35.50"), Location: "Downtown"})

	service, err := cars.New(f.Client, opts...)
	require.NoError(t, err)
	f.service = service
	return f
}

func validInput() cars.Input {
	return cars.Input{
		Name: "Toyota Prius", Make: "Toyota", Model: "Prius", Year: 2021,
		FuelType: cars.FuelHybrid, Transmission: cars.TransmissionCVT,
		Seats: 5, Doors: 4, PricePerDay: price("55.00"), Location: "Airport",
		Features: "Backup camera",
	}
}

func names(list []cars.Car) []string {
	out := make([]string, len(list))
	for i, c := range list {
		out[i] = c.Name
	}
	return out
}

func TestNew(t *testing.T) {
	_, err := cars.New(nil)
	require.Error(t, err)
}

func TestList(t *testing.T) {
	f := setupTest(t)
	ctx := context.Background()

	page, err := f.service.List(ctx, cars.Filters{})
	require.NoError(t, err)
	require.Equal(t, 3, page.Count)
	require.Equal(t, []string{"Honda Civic", "Tesla Model 3", "VW Golf"}, names(page.Results))
	require.True(t, page.Results[0].PricePerDay.Equal(price("49.99")))
	require.Equal(t, []string{"GPS", "Bluetooth"}, page.Results[0].FeatureNames())

	minPrice := price("40")
	page, err = f.service.List(ctx, cars.Filters{Location: "downtown", MinPrice: &minPrice})
	require.NoError(t, err)
	require.Equal(t, []string{"Honda Civic"}, names(page.Results))

	page, err = f.service.List(ctx, cars.Filters{Search: "tesla"})
	require.NoError(t, err)
	require.Equal(t, []string{"Tesla Model 3"}, names(page.Results))

	page, err = f.service.List(ctx, cars.Filters{Ordering: "-" + cars.OrderByPrice})
	require.NoError(t, err)
	require.Equal(t, []string{"Tesla Model 3", "Honda Civic", "VW Golf"}, names(page.Results))

	page, err = f.service.List(ctx, cars.Filters{FuelType: cars.FuelDiesel, Transmission: cars.TransmissionManual})
	require.NoError(t, err)
	require.Equal(t, []string{"VW Golf"}, names(page.Results))
}

func TestList_Pagination(t *testing.T) {
	f := setupTest(t)
	f.API.PageSize = 2

	first, err := f.service.List(context.Background(), cars.Filters{})
	require.NoError(t, err)
	require.Equal(t, 3, first.Count)
	require.Len(t, first.Results, 2)
	require.True(t, first.HasNext())

	second, err := f.service.List(context.Background(), cars.Filters{Page: 2})
	require.NoError(t, err)
	require.Len(t, second.Results, 1)
	require.False(t, second.HasNext())
	require.NotNil(t, second.Previous)
}

func TestFilters_Values(t *testing.T) {
	maxPrice := price("99.5")
	v := cars.Filters{Search: "bmw", MaxPrice: &maxPrice, Page: 3}.Values()
	require.Equal(t, "max_price=99.5&page=3&search=bmw", v.Encode())
	require.Empty(t, cars.Filters{}.Values())

	start := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	av := cars.Availability{Start: start, End: start.AddDate(0, 0, 2)}.Values()
	require.Equal(t, "2025-01-01T10:00:00.000Z", av.Get("start"))
	require.Equal(t, "2025-01-03T10:00:00.000Z", av.Get("end"))
}

func TestGet(t *testing.T) {
	f := setupTest(t)

	car, err := f.service.Get(context.Background(), f.tesla.ID)
	require.NoError(t, err)
	require.Equal(t, "Tesla Model 3", car.Name)
	require.True(t, car.Available())

	_, err = f.service.Get(context.Background(), 9999)
	require.ErrorIs(t, err, apiclient.ErrNotFound)
	require.Equal(t, "Not found.", apiclient.ErrorMessage(err))
}

func TestAvailableAndPopular(t *testing.T) {
	f := setupTest(t)
	start := time.Date(2030, 6, 1, 10, 0, 0, 0, time.UTC)
	f.API.AddBooking(f.customer.ID, f.civic.ID, start, start.AddDate(0, 0, 3), bookings.StatusConfirmed)
	f.API.AddBooking(f.customer.ID, f.civic.ID, start.AddDate(0, 1, 0), start.AddDate(0, 1, 2), bookings.StatusPending)
	f.API.AddBooking(f.customer.ID, f.golf.ID, start.AddDate(0, 2, 0), start.AddDate(0, 2, 1), bookings.StatusCancelled)

	free, err := f.service.Available(context.Background(), cars.Availability{Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 2)})
	require.NoError(t, err)
	require.Equal(t, []string{"Tesla Model 3", "VW Golf"}, names(free.Results))
	require.Equal(t, 2, free.Count)

	popular, err := f.service.Popular(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Honda Civic", popular[0].Name)
}

func TestReviews(t *testing.T) {
	f := setupTest(t)
	f.SignIn(t, f.customer)
	ctx := context.Background()

	_, err := f.service.CreateReview(ctx, f.civic.ID, cars.ReviewInput{Rating: 6})
	var verr *apiclient.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "rating", verr.Field)

	review, err := f.service.CreateReview(ctx, f.civic.ID, cars.ReviewInput{Rating: 4, Title: "Solid", Comment: "Clean and cheap"})
	require.NoError(t, err)
	require.Equal(t, "customer", review.UserName)

	_, err = f.service.CreateReview(ctx, f.civic.ID, cars.ReviewInput{Rating: 5})
	require.Equal(t, "non_field_errors: You have already reviewed this car.", apiclient.ErrorMessage(err))

	reviews, err := f.service.Reviews(ctx, f.civic.ID, 0)
	require.NoError(t, err)
	require.Equal(t, 1, reviews.Count)
	require.Equal(t, "Solid", reviews.Results[0].Title)

	car, err := f.service.Get(ctx, f.civic.ID)
	require.NoError(t, err)
	require.Equal(t, 1, car.ReviewCount)
	require.InDelta(t, 4.0, car.AverageRating, 0.001)
}

func TestInventory_FleetManager(t *testing.T) {
	f := setupTest(t)
	f.SignIn(t, f.fleet)
	ctx := context.Background()

	car, err := f.service.Create(ctx, validInput())
	require.NoError(t, err)
	require.Equal(t, "Toyota Prius", car.Name)
	require.Equal(t, cars.StatusAvailable, car.Status)

	in := validInput()
	in.PricePerDay = price("60.00")
	updated, err := f.service.Update(ctx, car.ID, in)
	require.NoError(t, err)
	require.True(t, updated.PricePerDay.Equal(price("60")))

	maintenance := cars.StatusMaintenance
	patched, err := f.service.Patch(ctx, car.ID, cars.Patch{Status: &maintenance})
	require.NoError(t, err)
	require.Equal(t, cars.StatusMaintenance, patched.Status)
	require.Equal(t, "Toyota Prius", patched.Name)

	require.NoError(t, f.service.Delete(ctx, car.ID))
	_, err = f.service.Get(ctx, car.ID)
	require.ErrorIs(t, err, apiclient.ErrNotFound)
}

func TestInventory_CustomerForbidden(t *testing.T) {
	f := setupTest(t)
	f.SignIn(t, f.customer)

	_, err := f.service.Create(context.Background(), validInput())
	require.ErrorIs(t, err, apiclient.ErrForbidden)
	require.Equal(t, "You do not have permission to perform this action.", apiclient.ErrorMessage(err))
	require.True(t, f.Session.Exists())

	err = f.service.Delete(context.Background(), f.civic.ID)
	require.ErrorIs(t, err, apiclient.ErrForbidden)
}

func TestInventory_Validation(t *testing.T) {
	f := setupTest(t)
	f.SignIn(t, f.fleet)

	tests := []struct {
		name   string
		modify func(in *cars.Input)
		field  string
	}{
		{"name", func(in *cars.Input) { in.Name = "" }, "name"},
		{"fuel", func(in *cars.Input) { in.FuelType = "steam" }, "fuel_type"},
		{"seats", func(in *cars.Input) { in.Seats = 0 }, "seats"},
		{"zero price", func(in *cars.Input) { in.PricePerDay = decimal.Zero }, "price_per_day"},
		{"fractional cents", func(in *cars.Input) { in.PricePerDay = price("10.005") }, "price_per_day"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput()
			tc.modify(&in)
			_, err := f.service.Create(context.Background(), in)
			var verr *apiclient.ValidationError
			require.ErrorAs(t, err, &verr)
			require.Equal(t, tc.field, verr.Field)
		})
	}
	require.Zero(t, f.API.Calls("POST", "/cars/"))

	bad := cars.Status("gone")
	_, err := f.service.Patch(context.Background(), f.civic.ID, cars.Patch{Status: &bad})
	require.Error(t, err)
}

func TestCache(t *testing.T) {
	f := setupTest(t, cars.WithCache(querycache.New(time.Minute)))
	f.SignIn(t, f.fleet)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := f.service.List(ctx, cars.Filters{})
		require.NoError(t, err)
		_, err = f.service.Get(ctx, f.civic.ID)
		require.NoError(t, err)
	}
	require.Equal(t, 1, f.API.Calls("GET", "/cars/"))
	require.Equal(t, 1, f.API.Calls("GET", "/cars/:id/"))

	// different filters are a different entry
	_, err := f.service.List(ctx, cars.Filters{Search: "golf"})
	require.NoError(t, err)
	require.Equal(t, 2, f.API.Calls("GET", "/cars/"))

	rented := cars.StatusRented
	_, err = f.service.Patch(ctx, f.civic.ID, cars.Patch{Status: &rented})
	require.NoError(t, err)

	list, err := f.service.List(ctx, cars.Filters{})
	require.NoError(t, err)
	require.Equal(t, cars.StatusRented, list.Results[0].Status)
	car, err := f.service.Get(ctx, f.civic.ID)
	require.NoError(t, err)
	require.Equal(t, cars.StatusRented, car.Status)
	require.Equal(t, 3, f.API.Calls("GET", "/cars/"))
	require.Equal(t, 2, f.API.Calls("GET", "/cars/:id/"))
}
