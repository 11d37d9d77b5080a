package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"appointment-booking-client/internal/models"
)

func (c *Client) Register(ctx context.Context, reg models.Registration) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, reg, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (*models.AuthResponse, error) {
	var out models.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, creds, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Services(ctx context.Context) ([]models.Service, error) {
	var out []models.Service
	err := c.do(ctx, http.MethodGet, "/services", nil, nil, &out)
	return out, err
}

func (c *Client) Doctors(ctx context.Context) ([]models.Doctor, error) {
	var out []models.Doctor
	err := c.do(ctx, http.MethodGet, "/doctors", nil, nil, &out)
	return out, err
}

func (c *Client) DoctorsByService(ctx context.Context, serviceID int64) ([]models.Doctor, error) {
	var out []models.Doctor
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/doctors/by-service/%d", serviceID), nil, nil, &out)
	return out, err
}

func slotQuery(doctorID int64, date string) url.Values {
	return url.Values{
		"doctorId": {strconv.FormatInt(doctorID, 10)},
		"date":     {date},
	}
}

// AvailableSlots returns only the unbooked slots of a doctor on a date.
func (c *Client) AvailableSlots(ctx context.Context, doctorID int64, date string) ([]models.Slot, error) {
	var out []models.Slot
	err := c.do(ctx, http.MethodGet, "/slots/available", slotQuery(doctorID, date), nil, &out)
	return out, err
}

// SlotsByDate returns every slot of a doctor on a date, booked ones included.
func (c *Client) SlotsByDate(ctx context.Context, doctorID int64, date string) ([]models.Slot, error) {
	var out []models.Slot
	err := c.do(ctx, http.MethodGet, "/slots/by-date", slotQuery(doctorID, date), nil, &out)
	return out, err
}

func (c *Client) Book(ctx context.Context, slotID int64) (*models.Appointment, error) {
	var out models.Appointment
	if err := c.do(ctx, http.MethodPost, "/appointments/book", nil, models.BookRequest{SlotID: slotID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/appointments/my", nil, nil, &out)
	return out, err
}

func (c *Client) Cancel(ctx context.Context, appointmentID int64) error {
	return c.do(ctx, http.MethodPut, fmt.Sprintf("/appointments/cancel/%d", appointmentID), nil, nil, nil)
}

func (c *Client) Reschedule(ctx context.Context, appointmentID, newSlotID int64) (*models.Appointment, error) {
	var out models.Appointment
	path := fmt.Sprintf("/appointments/reschedule/%d", appointmentID)
	if err := c.do(ctx, http.MethodPut, path, nil, models.RescheduleRequest{NewSlotID: newSlotID}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) CreateSlot(ctx context.Context, req models.SlotRequest) (*models.Slot, error) {
	var out models.Slot
	if err := c.do(ctx, http.MethodPost, "/admin/slots", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) AllAppointments(ctx context.Context) ([]models.Appointment, error) {
	var out []models.Appointment
	err := c.do(ctx, http.MethodGet, "/admin/appointments", nil, nil, &out)
	return out, err
}

func (c *Client) UpdateStatus(ctx context.Context, appointmentID int64, status models.AppointmentStatus) (*models.Appointment, error) {
	var out models.Appointment
	path := fmt.Sprintf("/admin/appointments/%d/status", appointmentID)
	if err := c.do(ctx, http.MethodPut, path, nil, models.StatusRequest{Status: status}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
