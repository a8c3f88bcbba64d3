// Package cars is the client for the /cars/ resource: browsing and filtering
// the fleet, reviews, and inventory management for fleet managers.
package cars

import (
	"strings"
	"time"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/shopspring/decimal"
)

type FuelType string

const (
	FuelGasoline FuelType = "gasoline"
	FuelDiesel   FuelType = "diesel"
	FuelHybrid   FuelType = "hybrid"
	FuelElectric FuelType = "electric"
)

type Transmission string

const (
	TransmissionManual    Transmission = "manual"
	TransmissionAutomatic Transmission = "automatic"
	TransmissionCVT       Transmission = "cvt"
)

// Status is the availability of a car in the fleet
type Status string

const (
	StatusAvailable   Status = "available"
	StatusRented      Status = "rented"
	StatusMaintenance Status = "maintenance"
	StatusUnavailable Status = "unavailable"
)

type Image struct {
	ID   int    `json:"id,omitempty"`
	File string `json:"file"`
	Alt  string `json:"alt,omitempty"`
}

type Review struct {
	ID        int       `json:"id"`
	Rating    int       `json:"rating"`
	Title     string    `json:"title,omitempty"`
	Comment   string    `json:"comment,omitempty"`
	UserName  string    `json:"user_name,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Car as returned by the API. Prices are decimals sent as strings.
type Car struct {
	ID            int             `json:"id"`
	Name          string          `json:"name"`
	Description   string          `json:"description,omitempty"`
	Make          string          `json:"make"`
	Model         string          `json:"model"`
	Year          int             `json:"year"`
	FuelType      FuelType        `json:"fuel_type"`
	Transmission  Transmission    `json:"transmission"`
	Seats         int             `json:"seats"`
	Doors         int             `json:"doors"`
	PricePerDay   decimal.Decimal `json:"price_per_day"`
	Location      string          `json:"location"`
	Status        Status          `json:"status"`
	Features      string          `json:"features,omitempty"`
	FeatureList   []string        `json:"feature_list,omitempty"`
	Images        []Image         `json:"images,omitempty"`
	PrimaryImage  string          `json:"primary_image,omitempty"`
	AverageRating float64         `json:"average_rating"`
	ReviewCount   int             `json:"review_count"`
	Reviews       []Review        `json:"reviews,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// Available reports whether the car can be booked
func (c *Car) Available() bool {
	return c != nil && c.Status == StatusAvailable
}

// FeatureNames returns feature_list, or the comma-separated features split
func (c *Car) FeatureNames() []string {
	if len(c.FeatureList) > 0 {
		return c.FeatureList
	}
	return SplitFeatures(c.Features)
}

// SplitFeatures splits a comma-separated feature string, dropping blanks
func SplitFeatures(features string) []string {
	var out []string
	for _, f := range strings.Split(features, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// Input is the body of a create or full update
type Input struct {
	Name         string          `json:"name" validate:"required,max=100"`
	Description  string          `json:"description,omitempty"`
	Make         string          `json:"make" validate:"required,max=50"`
	Model        string          `json:"model" validate:"required,max=50"`
	Year         int             `json:"year" validate:"gte=1900,lte=2100"`
	FuelType     FuelType        `json:"fuel_type" validate:"required,oneof=gasoline diesel hybrid electric"`
	Transmission Transmission    `json:"transmission" validate:"required,oneof=manual automatic cvt"`
	Seats        int             `json:"seats" validate:"gte=1,lte=20"`
	Doors        int             `json:"doors" validate:"gte=1,lte=10"`
	PricePerDay  decimal.Decimal `json:"price_per_day"`
	Location     string          `json:"location" validate:"required,max=100"`
	Status       Status          `json:"status,omitempty" validate:"omitempty,oneof=available rented maintenance unavailable"`
	Features     string          `json:"features,omitempty"`
}

func (in Input) Validate() error {
	if err := apiclient.Validate(in); err != nil {
		return err
	}
	return validatePrice(&in.PricePerDay)
}

// Patch is a partial update. Nil fields are left unchanged.
type Patch struct {
	Name         *string          `json:"name,omitempty" validate:"omitempty,min=1,max=100"`
	Description  *string          `json:"description,omitempty"`
	Location     *string          `json:"location,omitempty" validate:"omitempty,min=1,max=100"`
	Status       *Status          `json:"status,omitempty" validate:"omitempty,oneof=available rented maintenance unavailable"`
	PricePerDay  *decimal.Decimal `json:"price_per_day,omitempty"`
	Features     *string          `json:"features,omitempty"`
	Seats        *int             `json:"seats,omitempty" validate:"omitempty,gte=1,lte=20"`
	FuelType     *FuelType        `json:"fuel_type,omitempty" validate:"omitempty,oneof=gasoline diesel hybrid electric"`
	Transmission *Transmission    `json:"transmission,omitempty" validate:"omitempty,oneof=manual automatic cvt"`
}

func (p Patch) Validate() error {
	if err := apiclient.Validate(p); err != nil {
		return err
	}
	if p.PricePerDay != nil {
		return validatePrice(p.PricePerDay)
	}
	return nil
}

func validatePrice(price *decimal.Decimal) error {
	if !price.IsPositive() {
		return apiclient.NewValidationError("price_per_day", "Ensure this value is greater than 0.")
	}
	if !price.Equal(price.Truncate(2)) {
		return apiclient.NewValidationError("price_per_day", "Ensure that there are no more than 2 decimal places.")
	}
	return nil
}

// ReviewInput is the body of a new review
type ReviewInput struct {
	Rating  int    `json:"rating" validate:"gte=1,lte=5"`
	Title   string `json:"title,omitempty" validate:"max=200"`
	Comment string `json:"comment,omitempty"`
}

func (r ReviewInput) Validate() error {
	return apiclient.Validate(r)
}
