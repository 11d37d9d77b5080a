package models

import (
	"time"
)

// AppointmentStatus represents the status of an appointment
type AppointmentStatus string

const (
	StatusPending   AppointmentStatus = "PENDING"
	StatusApproved  AppointmentStatus = "APPROVED"
	StatusRejected  AppointmentStatus = "REJECTED"
	StatusCompleted AppointmentStatus = "COMPLETED"
)

// transitions is the status workflow; anything absent is refused before a
// request is issued.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:  {StatusApproved, StatusRejected},
	StatusApproved: {StatusCompleted},
}

// CanTransition reports whether from -> to is an edge of the status workflow.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Cancellable reports whether an appointment in this status may be cancelled
// or rescheduled by its owner.
func (s AppointmentStatus) Cancellable() bool {
	return s == StatusPending || s == StatusApproved
}

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected, StatusCompleted:
		return true
	}
	return false
}

// Appointment is the server-owned view of a booking.
type Appointment struct {
	ID          int64             `json:"id"`
	UserID      int64             `json:"userId"`
	UserName    string            `json:"userName,omitempty"`
	UserEmail   string            `json:"userEmail,omitempty"`
	SlotID      int64             `json:"slotId"`
	ServiceID   int64             `json:"serviceId"`
	DoctorID    int64             `json:"doctorId"`
	ServiceName string            `json:"serviceName,omitempty"`
	DoctorName  string            `json:"doctorName,omitempty"`
	SlotDate    string            `json:"slotDate"`
	StartTime   string            `json:"startTime"`
	EndTime     string            `json:"endTime"`
	Status      AppointmentStatus `json:"status"`
	CreatedAt   *time.Time        `json:"createdAt,omitempty"`
}

// StartsAt combines the slot date and start time in loc. ok is false when
// either part does not parse.
func (a Appointment) StartsAt(loc *time.Location) (t time.Time, ok bool) {
	t, err := time.ParseInLocation("2006-01-02 15:04", a.SlotDate+" "+HHMM(a.StartTime), loc)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// BookRequest is the body of POST /appointments/book.
type BookRequest struct {
	SlotID int64  `json:"slotId" binding:"required,gt=0"`
	Notes  string `json:"notes,omitempty"`
}

// RescheduleRequest is the body of PUT /appointments/reschedule/{id}.
type RescheduleRequest struct {
	NewSlotID int64  `json:"newSlotId" binding:"required,gt=0"`
	Notes     string `json:"notes,omitempty"`
}

// StatusRequest is the body of PUT /admin/appointments/{id}/status.
type StatusRequest struct {
	Status AppointmentStatus `json:"status" binding:"required"`
}

// AppointmentRecord is a stub backend appointment row.
type AppointmentRecord struct {
	BaseModel
	UserID int64             `gorm:"index;not null"`
	SlotID int64             `gorm:"index;not null"`
	Notes  string            `gorm:"type:text"`
	Status AppointmentStatus `gorm:"size:20;default:'PENDING'"`
}
