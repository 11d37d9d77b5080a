package slots

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"appointment-booking-client/internal/calendar"
	"appointment-booking-client/internal/models"
)

const (
	LabelBooked = "booked"
	LabelPast   = "past"
)

// View is a slot with its selection state.
type View struct {
	Slot       models.Slot
	Booked     bool
	Past       bool
	Selectable bool
	Label      string
}

// IsPast reports whether a slot starting at start on date has already begun
// at now. Times compare on their HH:MM prefix, so a slot starting this very
// minute is past.
func IsPast(date, start string, now time.Time) bool {
	today := calendar.DateString(now)
	switch {
	case date < today:
		return true
	case date > today:
		return false
	}
	return models.HHMM(start) <= now.Format("15:04")
}

// Classify marks each slot booked and/or past. A booked slot is labelled
// booked even when it is also past.
func Classify(list []models.Slot, date string, now time.Time) []View {
	views := make([]View, 0, len(list))
	for _, s := range list {
		d := s.SlotDate
		if d == "" {
			d = date
		}
		v := View{
			Slot:   s,
			Booked: !s.Available,
			Past:   IsPast(d, s.StartTime, now),
		}
		v.Selectable = !v.Booked && !v.Past
		switch {
		case v.Booked:
			v.Label = LabelBooked
		case v.Past:
			v.Label = LabelPast
		}
		views = append(views, v)
	}
	return views
}

// AvailableFetcher returns the unbooked slots of a doctor on a date.
type AvailableFetcher interface {
	AvailableSlots(ctx context.Context, doctorID int64, date string) ([]models.Slot, error)
}

// CountAvailable sums the unbooked, not yet started slots of every doctor on
// date. Any single failure fails the whole count.
func CountAvailable(ctx context.Context, fetch AvailableFetcher, doctorIDs []int64, date string, now time.Time) (int, error) {
	counts := make([]int, len(doctorIDs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range doctorIDs {
		g.Go(func() error {
			list, err := fetch.AvailableSlots(ctx, id, date)
			if err != nil {
				return err
			}
			for _, s := range list {
				if s.Available && !IsPast(date, s.StartTime, now) {
					counts[i]++
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range counts {
		total += c
	}
	return total, nil
}
