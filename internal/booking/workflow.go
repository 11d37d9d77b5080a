// Package booking drives the select-and-submit flow shared by new bookings
// and reschedules.
package booking

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"appointment-booking-client/internal/api"
	"appointment-booking-client/internal/calendar"
	"appointment-booking-client/internal/models"
	"appointment-booking-client/internal/navigation"
	"appointment-booking-client/internal/slots"
)

var (
	ErrNoSlotSelected  = errors.New("no slot selected")
	ErrSubmitInFlight  = errors.New("submission already in progress")
	ErrUnknownSlot     = errors.New("slot is not in the current list")
	ErrSlotUnavailable = errors.New("slot is booked or has already started")
	ErrNoDoctor        = errors.New("select a doctor first")
)

// Mode distinguishes a new booking from a reschedule.
type Mode int

const (
	ModeBook Mode = iota
	ModeReschedule
)

func (m Mode) String() string {
	if m == ModeReschedule {
		return "reschedule"
	}
	return "book"
}

func (m Mode) fallback() string {
	if m == ModeReschedule {
		return "Reschedule failed"
	}
	return "Booking failed"
}

// SubmitError is a rejected submission. Message is what the user sees.
type SubmitError struct {
	Mode    Mode
	Message string
	Err     error
}

func (e *SubmitError) Error() string { return e.Message }
func (e *SubmitError) Unwrap() error { return e.Err }

// Submitter performs the two submission calls.
type Submitter interface {
	Book(ctx context.Context, slotID int64) (*models.Appointment, error)
	Reschedule(ctx context.Context, appointmentID, newSlotID int64) (*models.Appointment, error)
}

// Catalog supplies the selector lists.
type Catalog interface {
	Services(ctx context.Context) ([]models.Service, error)
	DoctorsByService(ctx context.Context, serviceID int64) ([]models.Doctor, error)
}

// State is a snapshot of the current selection.
type State struct {
	Mode      Mode
	Source    *models.Appointment
	Services  []models.Service
	Doctors   []models.Doctor
	ServiceID int64
	DoctorID  int64
	Date      string
	SlotID    int64
}

// Workflow holds one booking or reschedule in progress.
type Workflow struct {
	submit   Submitter
	catalog  Catalog
	slots    *slots.Resolver
	calendar *calendar.Engine
	nav      navigation.Navigator
	log      *zap.Logger
	onDone   func()

	mu          sync.Mutex
	source      *models.Appointment
	seedService bool
	seedDoctor  bool
	services    []models.Service
	doctors     []models.Doctor
	doctorGen   uint64
	serviceID   int64
	doctorID    int64
	slotID      int64
	submitting  bool
}

func NewWorkflow(submit Submitter, cat Catalog, res *slots.Resolver, cal *calendar.Engine, nav navigation.Navigator, log *zap.Logger) *Workflow {
	return &Workflow{
		submit:   submit,
		catalog:  cat,
		slots:    res,
		calendar: cal,
		nav:      nav,
		log:      log,
		onDone:   func() {},
	}
}

// OnSubmitted registers fn to run after every successful submission.
func (w *Workflow) OnSubmitted(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	w.onDone = fn
}

// Start resets the selection and loads the services. A non-nil source puts
// the workflow in reschedule mode; its service and doctor become one-shot
// defaults applied when the matching list first loads.
func (w *Workflow) Start(ctx context.Context, source *models.Appointment) error {
	w.mu.Lock()
	w.source = nil
	if source != nil {
		cp := *source
		w.source = &cp
	}
	w.seedService = source != nil && source.ServiceID > 0
	w.seedDoctor = source != nil && source.DoctorID > 0
	w.services = nil
	w.doctors = nil
	w.doctorGen++
	w.serviceID, w.doctorID, w.slotID = 0, 0, 0
	w.mu.Unlock()

	w.calendar.ClearSelection()
	if source != nil && source.SlotDate != "" {
		if err := w.calendar.Seed(source.SlotDate); err != nil {
			w.log.Debug("reschedule source has no usable date", zap.String("date", source.SlotDate), zap.Error(err))
		}
	}
	w.slots.Clear()

	list, err := w.catalog.Services(ctx)
	if err != nil {
		return err
	}

	w.mu.Lock()
	w.services = list
	seed := int64(0)
	if w.seedService && len(list) > 0 && w.serviceID == 0 {
		seed = w.source.ServiceID
		w.serviceID = seed
		w.seedService = false
	}
	w.mu.Unlock()

	if seed == 0 {
		return nil
	}
	w.log.Debug("seeded service from appointment", zap.Int64("service_id", seed))
	return w.loadDoctors(ctx, seed)
}

// Mode reports whether submit will book or reschedule.
func (w *Workflow) Mode() Mode {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.modeLocked()
}

func (w *Workflow) modeLocked() Mode {
	if w.source != nil {
		return ModeReschedule
	}
	return ModeBook
}

// SelectService changes the service. The doctor is cleared unless the
// reschedule doctor default is still waiting for this service's list.
func (w *Workflow) SelectService(ctx context.Context, serviceID int64) error {
	w.mu.Lock()
	w.seedService = false
	w.serviceID = serviceID
	keepSeed := w.seedDoctor && w.source != nil && w.source.ServiceID == serviceID
	if !keepSeed {
		w.seedDoctor = false
	}
	w.doctorID = 0
	w.slotID = 0
	if serviceID == 0 {
		w.doctors = nil
		w.doctorGen++
	}
	w.mu.Unlock()

	w.slots.Clear()
	if serviceID == 0 {
		return nil
	}
	return w.loadDoctors(ctx, serviceID)
}

// loadDoctors fetches the doctor list for serviceID. Only the latest load is
// applied.
func (w *Workflow) loadDoctors(ctx context.Context, serviceID int64) error {
	w.mu.Lock()
	w.doctorGen++
	gen := w.doctorGen
	w.mu.Unlock()

	list, err := w.catalog.DoctorsByService(ctx, serviceID)

	w.mu.Lock()
	if gen != w.doctorGen {
		w.mu.Unlock()
		return nil
	}
	if err != nil {
		w.doctors = nil
		w.mu.Unlock()
		w.log.Warn("doctor list failed", zap.Int64("service_id", serviceID), zap.Error(err))
		return err
	}
	w.doctors = list
	seeded := false
	if w.seedDoctor && len(list) > 0 && w.doctorID == 0 {
		w.doctorID = w.source.DoctorID
		w.seedDoctor = false
		seeded = true
	}
	w.mu.Unlock()

	if seeded {
		return w.refreshSlots(ctx)
	}
	return nil
}

// SelectDoctor changes the doctor and clears the slot.
func (w *Workflow) SelectDoctor(ctx context.Context, doctorID int64) error {
	w.mu.Lock()
	w.seedDoctor = false
	w.doctorID = doctorID
	w.slotID = 0
	w.mu.Unlock()
	return w.refreshSlots(ctx)
}

// SelectDate changes the date and clears the slot. Past dates are refused
// and leave the selection unchanged.
func (w *Workflow) SelectDate(ctx context.Context, date string) error {
	if err := w.calendar.SelectDate(date); err != nil {
		return err
	}
	w.mu.Lock()
	w.slotID = 0
	w.mu.Unlock()
	return w.refreshSlots(ctx)
}

// PrevMonth moves the calendar back, clearing the date and slot.
func (w *Workflow) PrevMonth() calendar.Month {
	m := w.calendar.PrevMonth()
	w.clearSlot()
	return m
}

// NextMonth moves the calendar forward, clearing the date and slot.
func (w *Workflow) NextMonth() calendar.Month {
	m := w.calendar.NextMonth()
	w.clearSlot()
	return m
}

func (w *Workflow) clearSlot() {
	w.mu.Lock()
	w.slotID = 0
	w.mu.Unlock()
	w.slots.Clear()
}

// refreshSlots resolves the slot list when both a doctor and a date are
// selected, and empties it otherwise.
func (w *Workflow) refreshSlots(ctx context.Context) error {
	w.mu.Lock()
	doctorID := w.doctorID
	w.mu.Unlock()
	date := w.calendar.Selected()

	if doctorID == 0 || date == "" {
		w.slots.Clear()
		return nil
	}
	_, err := w.slots.Resolve(ctx, doctorID, date)
	return err
}

// SelectSlot picks a selectable slot from the current list.
func (w *Workflow) SelectSlot(slotID int64) error {
	v, ok := w.slots.Lookup(slotID)
	if !ok {
		return ErrUnknownSlot
	}
	if !v.Selectable {
		return ErrSlotUnavailable
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.doctorID == 0 {
		return ErrNoDoctor
	}
	w.slotID = slotID
	return nil
}

// Submit books the selected slot, or moves the source appointment onto it.
// Without a selected slot nothing is sent. A booking clears the slot so the
// user can book again; a reschedule drops its source and slot, returning the
// workflow to book mode, and navigates to the appointment list.
func (w *Workflow) Submit(ctx context.Context) (*models.Appointment, error) {
	w.mu.Lock()
	if w.slotID == 0 {
		w.mu.Unlock()
		return nil, ErrNoSlotSelected
	}
	if w.submitting {
		w.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	w.submitting = true
	mode := w.modeLocked()
	slotID := w.slotID
	var sourceID int64
	if w.source != nil {
		sourceID = w.source.ID
	}
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.submitting = false
		w.mu.Unlock()
	}()

	var (
		appt *models.Appointment
		err  error
	)
	if mode == ModeReschedule {
		appt, err = w.submit.Reschedule(ctx, sourceID, slotID)
	} else {
		appt, err = w.submit.Book(ctx, slotID)
	}
	if err != nil {
		w.log.Info("submission rejected", zap.Stringer("mode", mode), zap.Int64("slot_id", slotID), zap.Error(err))
		return nil, &SubmitError{Mode: mode, Message: api.Message(err, mode.fallback()), Err: err}
	}

	w.onDone()
	if mode == ModeReschedule {
		// the appointment has moved; a later Submit must not move it again
		w.mu.Lock()
		w.source = nil
		w.seedService, w.seedDoctor = false, false
		w.slotID = 0
		w.mu.Unlock()
		w.log.Info("appointment rescheduled", zap.Int64("appointment_id", sourceID), zap.Int64("slot_id", slotID))
		w.nav.Navigate(navigation.RouteMyAppointments)
		return appt, nil
	}

	w.mu.Lock()
	if w.slotID == slotID {
		w.slotID = 0
	}
	w.mu.Unlock()
	w.log.Info("appointment booked", zap.Int64("slot_id", slotID))
	return appt, nil
}

// State returns a snapshot of the selection.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	s := State{
		Mode:      w.modeLocked(),
		Services:  append([]models.Service(nil), w.services...),
		Doctors:   append([]models.Doctor(nil), w.doctors...),
		ServiceID: w.serviceID,
		DoctorID:  w.doctorID,
		Date:      w.calendar.Selected(),
		SlotID:    w.slotID,
	}
	if w.source != nil {
		cp := *w.source
		s.Source = &cp
	}
	return s
}
