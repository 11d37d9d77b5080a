// Package slots resolves the slot list for a doctor and date and classifies
// each slot for selection.
package slots

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"appointment-booking-client/internal/models"
)

// Fetcher returns every slot of a doctor on a date, booked ones included.
type Fetcher interface {
	SlotsByDate(ctx context.Context, doctorID int64, date string) ([]models.Slot, error)
}

// State is the resolver's applied result.
type State struct {
	DoctorID   int64
	Date       string
	Slots      []models.Slot
	Loading    bool
	Err        error
	Generation uint64
}

// Resolver keeps the slot list of the most recent doctor/date request. Each
// request takes a new generation; a response is applied only while its
// generation is still the latest, so out-of-order responses never overwrite
// newer state.
type Resolver struct {
	fetch Fetcher
	now   func() time.Time
	log   *zap.Logger

	mu    sync.Mutex
	gen   uint64
	state State
}

func NewResolver(fetch Fetcher, now func() time.Time, log *zap.Logger) *Resolver {
	if now == nil {
		now = time.Now
	}
	return &Resolver{fetch: fetch, now: now, log: log}
}

// Resolve fetches the slots for doctorID on date. applied is false when a
// later Resolve or Clear superseded this one; the response is then dropped
// and err is nil. An applied failure leaves an empty list and the error in
// State.
func (r *Resolver) Resolve(ctx context.Context, doctorID int64, date string) (applied bool, err error) {
	r.mu.Lock()
	r.gen++
	gen := r.gen
	r.state = State{DoctorID: doctorID, Date: date, Loading: true, Generation: gen}
	r.mu.Unlock()

	list, fetchErr := r.fetch.SlotsByDate(ctx, doctorID, date)

	r.mu.Lock()
	defer r.mu.Unlock()
	if gen != r.gen {
		r.log.Debug("discarding stale slot response",
			zap.Uint64("generation", gen), zap.Uint64("current", r.gen),
			zap.Int64("doctor_id", doctorID), zap.String("date", date))
		return false, nil
	}

	r.state.Loading = false
	if fetchErr != nil {
		r.state.Slots = nil
		r.state.Err = fetchErr
		r.log.Warn("slot fetch failed", zap.Int64("doctor_id", doctorID), zap.String("date", date), zap.Error(fetchErr))
		return true, fetchErr
	}
	r.state.Slots = list
	return true, nil
}

// Clear empties the state and invalidates any request in flight.
func (r *Resolver) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	r.state = State{Generation: r.gen}
}

// State returns a copy of the applied state.
func (r *Resolver) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.state
	s.Slots = append([]models.Slot(nil), r.state.Slots...)
	return s
}

// Views classifies the applied slots against the current clock.
func (r *Resolver) Views() []View {
	s := r.State()
	return Classify(s.Slots, s.Date, r.now())
}

// Lookup returns the classified view of slotID in the applied state.
func (r *Resolver) Lookup(slotID int64) (View, bool) {
	for _, v := range r.Views() {
		if v.Slot.ID == slotID {
			return v, true
		}
	}
	return View{}, false
}
