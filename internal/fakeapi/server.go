// Package fakeapi is an in-memory stand-in for the car rental REST API, used
// by tests. It issues real HS256 tokens and answers with the same payload and
// error shapes as the service.
package fakeapi

import (
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/go-car-rental/bookings"
	"github.com/jrsteele09/go-car-rental/cars"
	"github.com/jrsteele09/go-car-rental/token"
	"github.com/jrsteele09/go-car-rental/users"
)

const (
	APIPrefix       = "/api/v1"
	DefaultPageSize = 10

	tokenSecret = "fakeapi-secret"
)

type account struct {
	profile      users.Profile
	passwordHash string
}

type bookingRecord struct {
	bookings.Booking
	userID int
}

// Server holds the fake's state. All handlers take mu.
type Server struct {
	PageSize int

	mu       sync.Mutex
	engine   *gin.Engine
	issuer   *token.Issuer
	nowTime  func() time.Time
	nextID   int
	accounts map[int]*account
	cars     map[int]*cars.Car
	reviews  map[int][]reviewRecord
	bookings map[int]*bookingRecord
	calls    map[string]int

	// live token ids; expiring a token removes it here
	liveAccess  map[string]int
	liveRefresh map[string]int
}

type reviewRecord struct {
	cars.Review
	userID int
}

func New() *Server {
	gin.SetMode(gin.TestMode)

	s := &Server{
		PageSize:    DefaultPageSize,
		issuer:      token.NewIssuer(tokenSecret, 15*time.Minute, 24*time.Hour),
		nowTime:     time.Now,
		nextID:      1,
		accounts:    make(map[int]*account),
		cars:        make(map[int]*cars.Car),
		reviews:     make(map[int][]reviewRecord),
		bookings:    make(map[int]*bookingRecord),
		calls:       make(map[string]int),
		liveAccess:  make(map[string]int),
		liveRefresh: make(map[string]int),
	}
	s.engine = s.routes()
	return s
}

// Start serves the fake on a local port until the test ends and returns the
// API base URL, e.g. http://127.0.0.1:1234/api/v1
func Start(t testing.TB) (*Server, string) {
	t.Helper()
	s := New()
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)
	return s, srv.URL + APIPrefix
}

func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.countCalls, logRoutes)

	r.GET("/health/", s.health)

	api := r.Group(APIPrefix)
	api.POST("/register/", s.register)
	api.POST("/login/", s.login)
	api.POST("/token/refresh/", s.refresh)

	api.GET("/cars/", s.listCars)
	api.GET("/cars/available/", s.availableCars)
	api.GET("/cars/popular/", s.popularCars)
	api.GET("/cars/:id/", s.getCar)
	api.GET("/cars/:id/reviews/", s.listReviews)

	authed := api.Group("/", s.requireAuth)
	authed.POST("/logout/", s.logout)
	authed.GET("/me/", s.me)
	authed.PATCH("/me/", s.updateMe)
	authed.POST("/change-password/", s.changePassword)

	authed.POST("/cars/", s.requireFleet, s.createCar)
	authed.PUT("/cars/:id/", s.requireFleet, s.updateCar)
	authed.PATCH("/cars/:id/", s.requireFleet, s.patchCar)
	authed.DELETE("/cars/:id/", s.requireFleet, s.deleteCar)
	authed.POST("/cars/:id/review/", s.createReview)

	authed.GET("/bookings/", s.listBookings)
	authed.POST("/bookings/", s.createBooking)
	authed.GET("/bookings/:id/", s.getBooking)
	authed.POST("/bookings/:id/cancel/", s.cancelBooking)
	authed.POST("/payment/create-intent/", s.createPaymentIntent)

	return r
}

func (s *Server) countCalls(c *gin.Context) {
	route := strings.TrimPrefix(c.FullPath(), APIPrefix)
	s.mu.Lock()
	s.calls[c.Request.Method+" "+route]++
	s.mu.Unlock()
	c.Next()
}

// Calls reports how often a route was hit, e.g. Calls("GET", "/cars/:id/")
func (s *Server) Calls(method, route string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[method+" "+route]
}

func (s *Server) id() int {
	id := s.nextID
	s.nextID++
	return id
}

// AddUser registers an account directly
func (s *Server) AddUser(username, password string, role users.RoleType) users.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addUserLocked(users.Profile{
		Username:  username,
		FirstName: strings.ToUpper(username[:1]) + username[1:],
		Email:     username + "@example.com",
		Role:      role,
	}, password)
}

func (s *Server) addUserLocked(p users.Profile, password string) users.Profile {
	hash, err := users.HashPassword(password)
	if err != nil {
		panic(err)
	}
	p.ID = s.id()
	s.accounts[p.ID] = &account{profile: p, passwordHash: hash}
	return p
}

// AddCar stores c under a new id and returns it
func (s *Server) AddCar(c cars.Car) cars.Car {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	if c.Status == "" {
		c.Status = cars.StatusAvailable
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.nowTime().UTC()
	}
	c.FeatureList = cars.SplitFeatures(c.Features)
	s.cars[c.ID] = &c
	return c
}

// AddBooking stores a booking for userID directly
func (s *Server) AddBooking(userID, carID int, start, end time.Time, status bookings.Status) bookings.Booking {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addBookingLocked(userID, s.cars[carID], start, end, status)
}

// Booking returns the stored booking with id
func (s *Server) Booking(id int) (bookings.Booking, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.bookings[id]
	if !ok {
		return bookings.Booking{}, false
	}
	return b.Booking, true
}

// CarIDs returns the stored car ids in ascending order
func (s *Server) CarIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.cars)
}

// BookingIDs returns the stored booking ids in ascending order
func (s *Server) BookingIDs() []int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.bookings)
}

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// ExpireAccessTokens invalidates every access token issued so far, as if
// they had all reached their expiry.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveAccess = make(map[string]int)
}

// RevokeRefreshTokens invalidates every refresh token issued so far
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveRefresh = make(map[string]int)
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy", "database": "connected", "debug": true})
}
