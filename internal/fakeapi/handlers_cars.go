package fakeapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/pricing"
	"github.com/shopspring/decimal"
)

const popularLimit = 6

func pathID(c *gin.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, errNotFound)
		return 0, false
	}
	return id, true
}

// page writes items as a pagination envelope
func page[T any](c *gin.Context, size int, items []T) {
	n := 1
	if p, err := strconv.Atoi(c.Query("page")); err == nil && p > 0 {
		n = p
	}
	start := (n - 1) * size
	if start > len(items) && len(items) > 0 {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Invalid page."})
		return
	}
	end := min(start+size, len(items))
	start = min(start, end)

	link := func(p int) *string {
		if p < 1 || (p-1)*size >= len(items) {
			return nil
		}
		q := c.Request.URL.Query()
		q.Set("page", strconv.Itoa(p))
		u := fmt.Sprintf("http://%s%s?%s", c.Request.Host, c.Request.URL.Path, q.Encode())
		return &u
	}

	c.JSON(http.StatusOK, gin.H{
		"count":    len(items),
		"next":     link(n + 1),
		"previous": link(n - 1),
		"results":  items,
	})
}

func (s *Server) carsMatching(c *gin.Context) ([]cars.Car, bool) {
	var minPrice, maxPrice *decimal.Decimal
	for key, dst := range map[string]**decimal.Decimal{"min_price": &minPrice, "max_price": &maxPrice} {
		if raw := c.Query(key); raw != "" {
			d, err := decimal.NewFromString(raw)
			if err != nil {
				fieldError(c, key, "Enter a number.")
				return nil, false
			}
			*dst = &d
		}
	}
	search := strings.ToLower(c.Query("search"))
	location := strings.ToLower(c.Query("location"))
	fuel := cars.FuelType(c.Query("fuel_type"))
	transmission := cars.Transmission(c.Query("transmission"))

	var out []cars.Car
	for _, car := range s.cars {
		switch {
		case search != "" && !strings.Contains(strings.ToLower(car.Name+" "+car.Make+" "+car.Model), search):
		case location != "" && !strings.Contains(strings.ToLower(car.Location), location):
		case fuel != "" && car.FuelType != fuel:
		case transmission != "" && car.Transmission != transmission:
		case minPrice != nil && car.PricePerDay.LessThan(*minPrice):
		case maxPrice != nil && car.PricePerDay.GreaterThan(*maxPrice):
		default:
			out = append(out, *car)
		}
	}
	orderCars(out, c.Query("ordering"))
	return out, true
}

func orderCars(list []cars.Car, ordering string) {
	desc := strings.HasPrefix(ordering, "-")
	less := func(a, b cars.Car) bool { return a.ID < b.ID }
	switch strings.TrimPrefix(ordering, "-") {
	case cars.OrderByPrice:
		less = func(a, b cars.Car) bool { return a.PricePerDay.LessThan(b.PricePerDay) }
	case cars.OrderByYear:
		less = func(a, b cars.Car) bool { return a.Year < b.Year }
	case cars.OrderByCreatedAt:
		less = func(a, b cars.Car) bool { return a.CreatedAt.Before(b.CreatedAt) }
	case cars.OrderByRating:
		less = func(a, b cars.Car) bool { return a.AverageRating < b.AverageRating }
	}
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return less(list[j], list[i])
		}
		return less(list[i], list[j])
	})
}

func (s *Server) listCars(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if list, ok := s.carsMatching(c); ok {
		page(c, s.PageSize, list)
	}
}

// availableCars answers with a bare list, like the unpaginated views
func (s *Server) availableCars(c *gin.Context) {
	start, okStart := pricing.ParseDate(c.Query("start"))
	end, okEnd := pricing.ParseDate(c.Query("end"))
	if !okStart || !okEnd {
		c.JSON(http.StatusBadRequest, gin.H{"error": "start and end dates are required"})
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	list, ok := s.carsMatching(c)
	if !ok {
		return
	}
	out := []cars.Car{}
	for _, car := range list {
		if car.Status == cars.StatusAvailable && !s.overlapsLocked(car.ID, start, end, 0) {
			out = append(out, car)
		}
	}
	c.JSON(http.StatusOK, out)
}

func (s *Server) popularCars(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counts := map[int]int{}
	for _, b := range s.bookings {
		counts[b.Car]++
	}
	list := make([]cars.Car, 0, len(s.cars))
	for _, car := range s.cars {
		list = append(list, *car)
	}
	sort.SliceStable(list, func(i, j int) bool {
		if counts[list[i].ID] != counts[list[j].ID] {
			return counts[list[i].ID] > counts[list[j].ID]
		}
		return list[i].ID < list[j].ID
	})
	if len(list) > popularLimit {
		list = list[:popularLimit]
	}
	c.JSON(http.StatusOK, list)
}

func (s *Server) getCar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[id]
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	detail := *car
	for _, r := range s.reviews[id] {
		detail.Reviews = append(detail.Reviews, r.Review)
	}
	c.JSON(http.StatusOK, detail)
}

func (s *Server) listReviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cars[id]; !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	list := []cars.Review{}
	for _, r := range s.reviews[id] {
		list = append(list, r.Review)
	}
	page(c, s.PageSize, list)
}

func (s *Server) createReview(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in cars.ReviewInput
	if err := c.ShouldBindJSON(&in); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	if in.Rating < 1 || in.Rating > 5 {
		fieldError(c, "rating", "Ensure this value is less than or equal to 5.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[id]
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	userID := c.GetInt(ctxUserID)
	for _, r := range s.reviews[id] {
		if r.userID == userID {
			fieldError(c, "non_field_errors", "You have already reviewed this car.")
			return
		}
	}

	review := cars.Review{
		ID:        s.id(),
		Rating:    in.Rating,
		Title:     in.Title,
		Comment:   in.Comment,
		UserName:  s.accounts[userID].profile.Username,
		CreatedAt: s.nowTime().UTC(),
	}
	s.reviews[id] = append(s.reviews[id], reviewRecord{Review: review, userID: userID})

	total := 0
	for _, r := range s.reviews[id] {
		total += r.Rating
	}
	car.ReviewCount = len(s.reviews[id])
	car.AverageRating = float64(total) / float64(car.ReviewCount)
	c.JSON(http.StatusCreated, review)
}

func validCarInput(c *gin.Context, in cars.Input) bool {
	switch {
	case in.Name == "":
		fieldError(c, "name", "This field is required.")
	case !in.PricePerDay.IsPositive():
		fieldError(c, "price_per_day", "Ensure this value is greater than 0.")
	default:
		return true
	}
	return false
}

func (s *Server) createCar(c *gin.Context) {
	var in cars.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	if !validCarInput(c, in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	car := &cars.Car{ID: s.id(), CreatedAt: s.nowTime().UTC()}
	applyInput(car, in)
	s.cars[car.ID] = car
	c.JSON(http.StatusCreated, car)
}

func applyInput(car *cars.Car, in cars.Input) {
	car.Name, car.Description = in.Name, in.Description
	car.Make, car.Model, car.Year = in.Make, in.Model, in.Year
	car.FuelType, car.Transmission = in.FuelType, in.Transmission
	car.Seats, car.Doors = in.Seats, in.Doors
	car.PricePerDay, car.Location = in.PricePerDay, in.Location
	car.Status = in.Status
	if car.Status == "" {
		car.Status = cars.StatusAvailable
	}
	car.Features = in.Features
	car.FeatureList = cars.SplitFeatures(in.Features)
}

func (s *Server) updateCar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var in cars.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	if !validCarInput(c, in) {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[id]
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	applyInput(car, in)
	c.JSON(http.StatusOK, car)
}

// patchCar applies the request body over the stored car's JSON form
func (s *Server) patchCar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	body, err := c.GetRawData()
	if err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[id]
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	patched := *car
	if err := json.Unmarshal(body, &patched); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	if !patched.PricePerDay.IsPositive() {
		fieldError(c, "price_per_day", "Ensure this value is greater than 0.")
		return
	}
	patched.ID = id
	patched.FeatureList = cars.SplitFeatures(patched.Features)
	*car = patched
	c.JSON(http.StatusOK, car)
}

func (s *Server) deleteCar(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.cars[id]; !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	for _, b := range s.bookings {
		if b.Car == id && (b.Status == bookings.StatusPending || b.Status == bookings.StatusConfirmed) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Car has active bookings"})
			return
		}
	}
	delete(s.cars, id)
	delete(s.reviews, id)
	c.Status(http.StatusNoContent)
}
