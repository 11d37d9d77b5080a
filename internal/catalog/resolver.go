// Package catalog resolves the service and doctor lists backing the booking
// selectors.
package catalog

import (
	"context"
	"slices"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"appointment-booking-client/internal/models"
)

// Source is the backend surface the resolver reads from.
type Source interface {
	Services(ctx context.Context) ([]models.Service, error)
	Doctors(ctx context.Context) ([]models.Doctor, error)
	DoctorsByService(ctx context.Context, serviceID int64) ([]models.Doctor, error)
}

// Resolver caches each catalog query after its first successful fetch.
// Concurrent identical queries share one request. Callers get their own copy
// of every list.
type Resolver struct {
	src   Source
	log   *zap.Logger
	group singleflight.Group

	mu       sync.Mutex
	services []models.Service
	doctors  map[string][]models.Doctor
}

func NewResolver(src Source, log *zap.Logger) *Resolver {
	return &Resolver{src: src, log: log, doctors: make(map[string][]models.Doctor)}
}

// Services returns every service. Failures are not cached.
func (r *Resolver) Services(ctx context.Context) ([]models.Service, error) {
	r.mu.Lock()
	cached := r.services
	r.mu.Unlock()
	if cached != nil {
		return slices.Clone(cached), nil
	}

	v, err, _ := r.group.Do("services", func() (any, error) {
		r.mu.Lock()
		cached := r.services
		r.mu.Unlock()
		if cached != nil {
			return cached, nil
		}
		list, err := r.src.Services(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []models.Service{}
		}
		r.mu.Lock()
		r.services = list
		r.mu.Unlock()
		r.log.Debug("services loaded", zap.Int("count", len(list)))
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.Service)), nil
}

// Doctors returns every doctor across all services.
func (r *Resolver) Doctors(ctx context.Context) ([]models.Doctor, error) {
	return r.doctorsFor(ctx, "all", r.src.Doctors)
}

// DoctorsByService returns the doctors attached to one service.
func (r *Resolver) DoctorsByService(ctx context.Context, serviceID int64) ([]models.Doctor, error) {
	key := "service:" + strconv.FormatInt(serviceID, 10)
	return r.doctorsFor(ctx, key, func(ctx context.Context) ([]models.Doctor, error) {
		return r.src.DoctorsByService(ctx, serviceID)
	})
}

func (r *Resolver) doctorsFor(ctx context.Context, key string, fetch func(context.Context) ([]models.Doctor, error)) ([]models.Doctor, error) {
	r.mu.Lock()
	cached, ok := r.doctors[key]
	r.mu.Unlock()
	if ok {
		return slices.Clone(cached), nil
	}

	v, err, _ := r.group.Do(key, func() (any, error) {
		r.mu.Lock()
		cached, ok := r.doctors[key]
		r.mu.Unlock()
		if ok {
			return cached, nil
		}
		list, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if list == nil {
			list = []models.Doctor{}
		}
		r.mu.Lock()
		r.doctors[key] = list
		r.mu.Unlock()
		r.log.Debug("doctors loaded", zap.String("query", key), zap.Int("count", len(list)))
		return list, nil
	})
	if err != nil {
		return nil, err
	}
	return slices.Clone(v.([]models.Doctor)), nil
}

// DoctorIDs extracts ids in list order.
func DoctorIDs(doctors []models.Doctor) []int64 {
	ids := make([]int64, 0, len(doctors))
	for _, d := range doctors {
		ids = append(ids, d.ID)
	}
	return ids
}
