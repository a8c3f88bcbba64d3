package cars

import (
	"net/url"
	"strconv"
	"time"

	"github.com/jrsteele09/go-car-rental/format"
	"github.com/shopspring/decimal"
)

// Orderings accepted by the list endpoint; prefix with "-" for descending
const (
	OrderByPrice     = "price_per_day"
	OrderByYear      = "year"
	OrderByCreatedAt = "created_at"
	OrderByRating    = "average_rating"
)

// Filters narrows a car listing. Zero values are left out of the query.
type Filters struct {
	Search       string
	Location     string
	FuelType     FuelType
	Transmission Transmission
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	Ordering     string
	Page         int
}

// Values encodes the filters as query parameters
func (f Filters) Values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("search", f.Search)
	set("location", f.Location)
	set("fuel_type", string(f.FuelType))
	set("transmission", string(f.Transmission))
	if f.MinPrice != nil {
		set("min_price", f.MinPrice.String())
	}
	if f.MaxPrice != nil {
		set("max_price", f.MaxPrice.String())
	}
	set("ordering", f.Ordering)
	if f.Page > 0 {
		set("page", strconv.Itoa(f.Page))
	}
	return v
}

// Availability asks for cars free over a date range
type Availability struct {
	Start time.Time
	End   time.Time
	Filters
}

func (a Availability) Values() url.Values {
	v := a.Filters.Values()
	if !a.Start.IsZero() {
		v.Set("start", format.ForAPI(a.Start))
	}
	if !a.End.IsZero() {
		v.Set("end", format.ForAPI(a.End))
	}
	return v
}
