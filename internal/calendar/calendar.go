// Package calendar builds the month grid used to pick an appointment date.
package calendar

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrPastDate    = errors.New("date is in the past")
	ErrInvalidDate = errors.New("invalid date")
)

// Month identifies a calendar month.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// Prev returns the previous month, wrapping January to December of the prior year.
func (m Month) Prev() Month {
	if m.Month == time.January {
		return Month{Year: m.Year - 1, Month: time.December}
	}
	return Month{Year: m.Year, Month: m.Month - 1}
}

// Next returns the following month, wrapping December to January.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

func (m Month) String() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// First returns midnight of day 1 in loc.
func (m Month) First(loc *time.Location) time.Time {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, loc)
}

// Days returns the number of days in the month.
func (m Month) Days() int {
	return time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Day is a grid cell.
type Day struct {
	Date string
	Day  int
	Time time.Time
}

// Grid lays the month out Sunday-first: one nil cell per weekday before day 1,
// then every day of the month. The last week is not padded.
func (m Month) Grid(loc *time.Location) []*Day {
	first := m.First(loc)
	lead := int(first.Weekday())
	n := m.Days()

	cells := make([]*Day, lead, lead+n)
	for d := 1; d <= n; d++ {
		t := time.Date(m.Year, m.Month, d, 0, 0, 0, 0, loc)
		cells = append(cells, &Day{Date: DateString(t), Day: d, Time: t})
	}
	return cells
}

// DateString formats t's local calendar date. UTC conversion is never
// applied, so the string names the day the user sees.
func DateString(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a YYYY-MM-DD string at local midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// Engine tracks the visible month and the selected date.
type Engine struct {
	now func() time.Time

	mu       sync.Mutex
	visible  Month
	selected string
}

// NewEngine starts on the current month with nothing selected. A nil now uses
// time.Now.
func NewEngine(now func() time.Time) *Engine {
	if now == nil {
		now = time.Now
	}
	return &Engine{now: now, visible: MonthOf(now())}
}

func (e *Engine) Today() string {
	return DateString(e.now())
}

func (e *Engine) Now() time.Time {
	return e.now()
}

func (e *Engine) Visible() Month {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.visible
}

// Selected returns the selected date, empty when none.
func (e *Engine) Selected() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.selected
}

// Grid returns the visible month's grid.
func (e *Engine) Grid() []*Day {
	return e.Visible().Grid(e.now().Location())
}

// PrevMonth moves the view back one month and clears the selection.
func (e *Engine) PrevMonth() Month {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = e.visible.Prev()
	e.selected = ""
	return e.visible
}

// NextMonth moves the view forward one month and clears the selection.
func (e *Engine) NextMonth() Month {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.visible = e.visible.Next()
	e.selected = ""
	return e.visible
}

// Selectable reports whether date is today or later.
func (e *Engine) Selectable(date string) bool {
	if _, err := ParseDate(date, e.now().Location()); err != nil {
		return false
	}
	return date >= e.Today()
}

// SelectDate selects date and moves the view to its month.
func (e *Engine) SelectDate(date string) error {
	t, err := ParseDate(date, e.now().Location())
	if err != nil {
		return err
	}
	if date < e.Today() {
		return ErrPastDate
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = date
	e.visible = MonthOf(t)
	return nil
}

// Seed opens the view on date's month with nothing selected. Unlike
// SelectDate it accepts past dates, so a reschedule can start from the month
// of the appointment being moved.
func (e *Engine) Seed(date string) error {
	t, err := ParseDate(date, e.now().Location())
	if err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
	e.visible = MonthOf(t)
	return nil
}

// ClearSelection drops the selected date, keeping the view.
func (e *Engine) ClearSelection() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.selected = ""
}
