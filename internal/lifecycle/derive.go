// Package lifecycle derives appointment views and runs the cancel and
// approval transitions against the backend.
package lifecycle

import (
	"slices"
	"strings"
	"time"

	"appointment-booking-client/internal/models"
)

// DefaultTop is the number of upcoming appointments shown on the dashboard.
const DefaultTop = 5

func isUpcoming(a models.Appointment, today string) bool {
	return a.SlotDate >= today && a.Status != models.StatusRejected
}

// Upcoming returns the appointments dated today or later that were not rejected.
func Upcoming(list []models.Appointment, today string) []models.Appointment {
	out := make([]models.Appointment, 0, len(list))
	for _, a := range list {
		if isUpcoming(a, today) {
			out = append(out, a)
		}
	}
	return out
}

func countStatus(list []models.Appointment, s models.AppointmentStatus) int {
	n := 0
	for _, a := range list {
		if a.Status == s {
			n++
		}
	}
	return n
}

func PendingCount(list []models.Appointment) int {
	return countStatus(list, models.StatusPending)
}

func CompletedCount(list []models.Appointment) int {
	return countStatus(list, models.StatusCompleted)
}

// compareStart orders by the combined slot date and start time. Rows whose
// timestamp does not parse sort after every row that does.
func compareStart(a, b models.Appointment) int {
	ta, okA := a.StartsAt(time.Local)
	tb, okB := b.StartsAt(time.Local)
	switch {
	case okA && okB:
		return ta.Compare(tb)
	case okA:
		return -1
	case okB:
		return 1
	default:
		return strings.Compare(a.SlotDate+"T"+a.StartTime, b.SlotDate+"T"+b.StartTime)
	}
}

// UpcomingTop returns the first n upcoming appointments, soonest first.
func UpcomingTop(list []models.Appointment, today string, n int) []models.Appointment {
	up := Upcoming(list, today)
	slices.SortStableFunc(up, compareStart)
	if len(up) > n {
		up = up[:n]
	}
	return up
}

// Views bundles the derived lists for one snapshot.
type Views struct {
	Total     int
	Upcoming  []models.Appointment
	Pending   int
	Completed int
	Top       []models.Appointment
}

// Derive computes every view of list relative to today.
func Derive(list []models.Appointment, today string) Views {
	return Views{
		Total:     len(list),
		Upcoming:  Upcoming(list, today),
		Pending:   PendingCount(list),
		Completed: CompletedCount(list),
		Top:       UpcomingTop(list, today, DefaultTop),
	}
}
