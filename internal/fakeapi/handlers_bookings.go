package fakeapi

import (
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/pricing"
)

func (s *Server) addBookingLocked(userID int, car *cars.Car, start, end time.Time, status bookings.Status) bookings.Booking {
	detail := *car
	b := &bookingRecord{
		Booking: bookings.Booking{
			ID:         s.id(),
			Car:        car.ID,
			CarDetail:  &detail,
			Start:      start.UTC(),
			End:        end.UTC(),
			Status:     status,
			TotalPrice: pricing.TotalPrice(car.PricePerDay, pricing.RentalDays(start, end)),
			CreatedAt:  s.nowTime().UTC(),
		},
		userID: userID,
	}
	s.bookings[b.ID] = b
	return b.Booking
}

// overlapsLocked reports whether carID has a live booking intersecting
// [start, end), ignoring booking skip.
func (s *Server) overlapsLocked(carID int, start, end time.Time, skip int) bool {
	for _, b := range s.bookings {
		if b.Car != carID || b.ID == skip {
			continue
		}
		if b.Status == bookings.StatusCancelled || b.Status == bookings.StatusRefunded {
			continue
		}
		if start.Before(b.End) && b.Start.Before(end) {
			return true
		}
	}
	return false
}

// visibleLocked returns the booking if the caller may see it
func (s *Server) visibleLocked(c *gin.Context, id int) (*bookingRecord, bool) {
	b, ok := s.bookings[id]
	if !ok {
		return nil, false
	}
	userID := c.GetInt(ctxUserID)
	if b.userID != userID && !s.accounts[userID].profile.IsFleetManager() {
		return nil, false
	}
	return b, true
}

func (s *Server) listBookings(c *gin.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID := c.GetInt(ctxUserID)
	fleet := s.accounts[userID].profile.IsFleetManager()
	status := bookings.Status(c.Query("status"))

	list := []bookings.Booking{}
	for _, b := range s.bookings {
		if (fleet || b.userID == userID) && (status == "" || b.Status == status) {
			list = append(list, b.Booking)
		}
	}
	// newest first
	sort.Slice(list, func(i, j int) bool { return list[i].ID > list[j].ID })
	page(c, s.PageSize, list)
}

func (s *Server) getBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.visibleLocked(c, id)
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	c.JSON(http.StatusOK, b.Booking)
}

func (s *Server) createBooking(c *gin.Context) {
	var body struct {
		Car   int    `json:"car"`
		Start string `json:"start"`
		End   string `json:"end"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		fieldError(c, "non_field_errors", "Invalid data.")
		return
	}
	start, ok := pricing.ParseDate(body.Start)
	if !ok {
		fieldError(c, "start", "Datetime has wrong format.")
		return
	}
	end, ok := pricing.ParseDate(body.End)
	if !ok {
		fieldError(c, "end", "Datetime has wrong format.")
		return
	}
	if !end.After(start) {
		fieldError(c, "end", "End date must be after start date.")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	car, ok := s.cars[body.Car]
	if !ok {
		fieldError(c, "car", fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", body.Car))
		return
	}
	if car.Status != cars.StatusAvailable || s.overlapsLocked(car.ID, start, end, 0) {
		fieldError(c, "non_field_errors", "Car is not available for selected dates")
		return
	}
	b := s.addBookingLocked(c.GetInt(ctxUserID), car, start, end, bookings.StatusPending)
	c.JSON(http.StatusCreated, b)
}

func (s *Server) cancelBooking(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.visibleLocked(c, id)
	if !ok {
		c.JSON(http.StatusNotFound, errNotFound)
		return
	}
	if b.Status != bookings.StatusPending && b.Status != bookings.StatusConfirmed {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Cannot cancel a %s booking", b.Status)})
		return
	}
	b.Status = bookings.StatusCancelled
	c.JSON(http.StatusOK, b.Booking)
}

func (s *Server) createPaymentIntent(c *gin.Context) {
	var body struct {
		BookingID int `json:"booking_id"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.BookingID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "booking_id is required"})
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.visibleLocked(c, body.BookingID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
		return
	}
	if b.Status != bookings.StatusPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Booking is not awaiting payment"})
		return
	}
	intentID := fmt.Sprintf("pi_fake_%d", b.ID)
	c.JSON(http.StatusOK, bookings.PaymentIntent{
		ClientSecret:    intentID + "_secret",
		PaymentIntentID: intentID,
		Amount:          b.TotalPrice,
		Currency:        "usd",
	})
}
