package lifecycle

import (
	"context"
	"time"

	"go.uber.org/zap"

	"appointment-booking-client/internal/calendar"
	"appointment-booking-client/internal/catalog"
	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/slots"
)

// DoctorLister lists every doctor.
type DoctorLister interface {
	Doctors(ctx context.Context) ([]models.Doctor, error)
}

// Summary is the patient dashboard.
type Summary struct {
	Views
	AvailableToday int
}

// Dashboard combines the appointment views with today's open slot count.
type Dashboard struct {
	appts   *Lifecycle
	doctors DoctorLister
	avail   slots.AvailableFetcher
	now     func() time.Time
	log     *zap.Logger
}

func NewDashboard(appts *Lifecycle, doctors DoctorLister, avail slots.AvailableFetcher, now func() time.Time, log *zap.Logger) *Dashboard {
	if now == nil {
		now = time.Now
	}
	return &Dashboard{appts: appts, doctors: doctors, avail: avail, now: now, log: log}
}

// Summary never fails: an appointment load failure yields empty views and a
// slot count failure yields zero.
func (d *Dashboard) Summary(ctx context.Context) Summary {
	now := d.now()
	today := calendar.DateString(now)

	list, err := d.appts.EnsureFresh(ctx)
	if err != nil {
		d.log.Warn("appointment load failed, reporting empty views", zap.Error(err))
		list = nil
	}

	return Summary{
		Views:          Derive(list, today),
		AvailableToday: d.availableToday(ctx, today, now),
	}
}

func (d *Dashboard) availableToday(ctx context.Context, today string, now time.Time) int {
	docs, err := d.doctors.Doctors(ctx)
	if err != nil {
		d.log.Warn("doctor list failed, reporting no open slots", zap.Error(err))
		return 0
	}
	n, err := slots.CountAvailable(ctx, d.avail, catalog.DoctorIDs(docs), today, now)
	if err != nil {
		d.log.Warn("open slot count failed", zap.Error(err))
		return 0
	}
	return n
}
