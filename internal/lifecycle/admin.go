package lifecycle

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"appointment-booking-client/internal/api"
	"appointment-booking-client/internal/models"
)

// AdminAPI is the backend surface for the approval board.
type AdminAPI interface {
	AllAppointments(ctx context.Context) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, appointmentID int64, status models.AppointmentStatus) (*models.Appointment, error)
}

// AdminBoard lists every appointment and approves or rejects pending ones.
type AdminBoard struct {
	api AdminAPI
	log *zap.Logger

	mu       sync.Mutex
	list     []models.Appointment
	updating map[int64]bool
}

func NewAdminBoard(a AdminAPI, log *zap.Logger) *AdminBoard {
	return &AdminBoard{api: a, log: log, updating: make(map[int64]bool)}
}

func (b *AdminBoard) Load(ctx context.Context) ([]models.Appointment, error) {
	list, err := b.api.AllAppointments(ctx)
	if err != nil {
		return nil, &OpError{Op: "load", Message: api.Message(err, "Failed to load appointments"), Err: err}
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.list = append([]models.Appointment(nil), list...)
	return append([]models.Appointment(nil), b.list...), nil
}

// Appointments returns the loaded rows.
func (b *AdminBoard) Appointments() []models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]models.Appointment(nil), b.list...)
}

// Updating reports whether a status update for id is in flight.
func (b *AdminBoard) Updating(id int64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updating[id]
}

// Transition moves a PENDING appointment to APPROVED or REJECTED. While a
// request for a row is in flight, further requests for that row are refused
// without reaching the server. The row is replaced with the server's value.
func (b *AdminBoard) Transition(ctx context.Context, id int64, to models.AppointmentStatus) (*models.Appointment, error) {
	b.mu.Lock()
	i, ok := b.find(id)
	if !ok {
		b.mu.Unlock()
		return nil, ErrNotFound
	}
	from := b.list[i].Status
	if from != models.StatusPending || !models.CanTransition(from, to) {
		b.mu.Unlock()
		return nil, ErrTransitionDenied
	}
	if b.updating[id] {
		b.mu.Unlock()
		return nil, ErrTransitionInFlight
	}
	b.updating[id] = true
	b.mu.Unlock()

	updated, err := b.api.UpdateStatus(ctx, id, to)

	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.updating, id)
	if err != nil {
		return nil, &OpError{Op: "update", ID: id, Message: api.Message(err, "Update failed"), Err: err}
	}
	if i, ok := b.find(id); ok && updated != nil {
		b.list[i] = *updated
	}
	b.log.Info("appointment status updated", zap.Int64("appointment_id", id), zap.String("status", string(to)))
	return updated, nil
}

func (b *AdminBoard) find(id int64) (int, bool) {
	for i, a := range b.list {
		if a.ID == id {
			return i, true
		}
	}
	return -1, false
}
