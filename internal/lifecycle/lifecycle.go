package lifecycle

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"appointment-booking-client/internal/api"
	"appointment-booking-client/internal/calendar"
	"appointment-booking-client/internal/models"
)

var (
	ErrNotFound           = errors.New("appointment not found")
	ErrNotCancellable     = errors.New("only pending or approved appointments can be changed")
	ErrCancelInFlight     = errors.New("cancellation already in progress")
	ErrTransitionDenied   = errors.New("status change not allowed")
	ErrTransitionInFlight = errors.New("status update already in progress")
)

// OpError is a rejected cancel or status update. Message is the server text
// or a generic fallback.
type OpError struct {
	Op      string
	ID      int64
	Message string
	Err     error
}

func (e *OpError) Error() string { return e.Message }
func (e *OpError) Unwrap() error { return e.Err }

// PatientAPI is the backend surface for a patient's own appointments.
type PatientAPI interface {
	MyAppointments(ctx context.Context) ([]models.Appointment, error)
	Cancel(ctx context.Context, appointmentID int64) error
}

// Lifecycle caches the signed-in patient's appointments.
type Lifecycle struct {
	api PatientAPI
	now func() time.Time
	log *zap.Logger

	mu         sync.Mutex
	list       []models.Appointment
	stale      bool
	cancelling map[int64]bool
}

func New(a PatientAPI, now func() time.Time, log *zap.Logger) *Lifecycle {
	if now == nil {
		now = time.Now
	}
	return &Lifecycle{api: a, now: now, log: log, stale: true, cancelling: make(map[int64]bool)}
}

// Refresh replaces the cached list with the server's. On failure the cached
// list is kept and stays stale.
func (l *Lifecycle) Refresh(ctx context.Context) ([]models.Appointment, error) {
	list, err := l.api.MyAppointments(ctx)
	if err != nil {
		l.log.Warn("appointments refresh failed", zap.Error(err))
		return nil, &OpError{Op: "load", Message: api.Message(err, "Failed to load appointments"), Err: err}
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.list = append([]models.Appointment(nil), list...)
	l.stale = false
	return l.copyLocked(), nil
}

// Invalidate marks the cache stale so the next EnsureFresh refetches.
func (l *Lifecycle) Invalidate() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.stale = true
}

// EnsureFresh returns the cached list, refetching it first when stale.
func (l *Lifecycle) EnsureFresh(ctx context.Context) ([]models.Appointment, error) {
	l.mu.Lock()
	stale := l.stale
	l.mu.Unlock()
	if stale {
		return l.Refresh(ctx)
	}
	return l.Appointments(), nil
}

// Appointments returns the cached list.
func (l *Lifecycle) Appointments() []models.Appointment {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.copyLocked()
}

func (l *Lifecycle) copyLocked() []models.Appointment {
	return append([]models.Appointment(nil), l.list...)
}

// Views derives the dashboard lists from the cached appointments.
func (l *Lifecycle) Views() Views {
	return Derive(l.Appointments(), calendar.DateString(l.now()))
}

func (l *Lifecycle) findLocked(id int64) (int, bool) {
	for i, a := range l.list {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Cancelling reports whether a cancel for id is in flight.
func (l *Lifecycle) Cancelling(id int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.cancelling[id]
}

// Cancel asks the server to cancel id and, once it agrees, drops the row
// from the list. Appointments outside PENDING and APPROVED are refused
// without a request.
func (l *Lifecycle) Cancel(ctx context.Context, id int64) error {
	l.mu.Lock()
	i, ok := l.findLocked(id)
	if !ok {
		l.mu.Unlock()
		return ErrNotFound
	}
	if !l.list[i].Status.Cancellable() {
		l.mu.Unlock()
		return ErrNotCancellable
	}
	if l.cancelling[id] {
		l.mu.Unlock()
		return ErrCancelInFlight
	}
	l.cancelling[id] = true
	l.mu.Unlock()

	err := l.api.Cancel(ctx, id)

	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cancelling, id)
	if err != nil {
		return &OpError{Op: "cancel", ID: id, Message: api.Message(err, "Cancel failed"), Err: err}
	}
	if i, ok := l.findLocked(id); ok {
		l.list = append(l.list[:i], l.list[i+1:]...)
	}
	l.log.Info("appointment cancelled", zap.Int64("appointment_id", id))
	return nil
}

// RescheduleSource returns the appointment to hand to a reschedule, under
// the same status rule as Cancel.
func (l *Lifecycle) RescheduleSource(id int64) (*models.Appointment, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	i, ok := l.findLocked(id)
	if !ok {
		return nil, ErrNotFound
	}
	if !l.list[i].Status.Cancellable() {
		return nil, ErrNotCancellable
	}
	a := l.list[i]
	return &a, nil
}
