package cars

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"

	"github.com/jrsteele09/go-car-rental/apiclient"
	"github.com/jrsteele09/go-car-rental/querycache"
)

// Cache key prefixes. A mutation of a car invalidates "cars" and "car/<id>".
const (
	cacheCars = "cars"
	cacheCar  = "car"
)

// Service maps the /cars/ endpoints to typed calls
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
		return nil, errors.New("[cars.New] client is required")
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

func carPath(id int) string {
	return fmt.Sprintf("/cars/%d/", id)
}

func carKey(id int) string {
	return cacheCar + "/" + strconv.Itoa(id)
}

// List returns one page of cars matching f
func (s *Service) List(ctx context.Context, f Filters) (*apiclient.Page[Car], error) {
	q := f.Values()
	return querycache.Fetch(s.cache, querycache.Key(cacheCars, q), func() (*apiclient.Page[Car], error) {
		var page apiclient.Page[Car]
		if err := s.client.Do(ctx, apiclient.Get("/cars/", q), &page); err != nil {
			return nil, err
		}
		return &page, nil
	})
}

func (s *Service) Get(ctx context.Context, id int) (*Car, error) {
	return querycache.Fetch(s.cache, carKey(id), func() (*Car, error) {
		var car Car
		if err := s.client.Do(ctx, apiclient.Get(carPath(id), nil), &car); err != nil {
			return nil, err
		}
		return &car, nil
	})
}

// Available lists cars free between a.Start and a.End
func (s *Service) Available(ctx context.Context, a Availability) (*apiclient.Page[Car], error) {
	q := a.Values()
	return querycache.Fetch(s.cache, querycache.Key(cacheCars+"/available", q), func() (*apiclient.Page[Car], error) {
		var page apiclient.Page[Car]
		if err := s.client.Do(ctx, apiclient.Get("/cars/available/", q), &page); err != nil {
			return nil, err
		}
		return &page, nil
	})
}

// Popular returns the most booked cars
func (s *Service) Popular(ctx context.Context) ([]Car, error) {
	return querycache.Fetch(s.cache, cacheCars+"/popular", func() ([]Car, error) {
		var page apiclient.Page[Car]
		if err := s.client.Do(ctx, apiclient.Get("/cars/popular/", nil), &page); err != nil {
			return nil, err
		}
		return page.Results, nil
	})
}

func (s *Service) Reviews(ctx context.Context, carID, page int) (*apiclient.Page[Review], error) {
	q := url.Values{}
	if page > 0 {
		q.Set("page", strconv.Itoa(page))
	}
	return querycache.Fetch(s.cache, querycache.Key(carKey(carID)+"/reviews", q), func() (*apiclient.Page[Review], error) {
		var reviews apiclient.Page[Review]
		if err := s.client.Do(ctx, apiclient.Get(carPath(carID)+"reviews/", q), &reviews); err != nil {
			return nil, err
		}
		return &reviews, nil
	})
}

func (s *Service) CreateReview(ctx context.Context, carID int, in ReviewInput) (*Review, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var review Review
	if err := s.client.Do(ctx, apiclient.Post(carPath(carID)+"review/", in), &review); err != nil {
		return nil, err
	}
	s.cache.Invalidate(carKey(carID))
	return &review, nil
}

// Create adds a car to the fleet (fleet managers only)
func (s *Service) Create(ctx context.Context, in Input) (*Car, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var car Car
	if err := s.client.Do(ctx, apiclient.Post("/cars/", in), &car); err != nil {
		return nil, err
	}
	s.cache.Invalidate(cacheCars)
	return &car, nil
}

// Update replaces a car (fleet managers only)
func (s *Service) Update(ctx context.Context, id int, in Input) (*Car, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	return s.write(ctx, id, apiclient.Put(carPath(id), in))
}

// Patch changes only the fields set in p (fleet managers only)
func (s *Service) Patch(ctx context.Context, id int, p Patch) (*Car, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return s.write(ctx, id, apiclient.Patch(carPath(id), p))
}

func (s *Service) write(ctx context.Context, id int, req apiclient.Request) (*Car, error) {
	var car Car
	if err := s.client.Do(ctx, req, &car); err != nil {
		return nil, err
	}
	s.cache.Invalidate(cacheCars, carKey(id))
	return &car, nil
}

// Delete removes a car (fleet managers only)
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.client.Do(ctx, apiclient.Delete(carPath(id)), nil); err != nil {
		return err
	}
	s.cache.Invalidate(cacheCars, carKey(id))
	return nil
}
