package slots

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"appointment-booking-client/internal/models"
)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

// query identifies one slot fetch.
type query struct {
	doctorID int64
	date     string
}

// gatedFetcher blocks each (doctor, date) fetch until its gate is released.
type gatedFetcher struct {
	mu      sync.Mutex
	started chan query
	gates   map[query]chan struct{}
	data    map[query][]models.Slot
	errs    map[query]error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{
		started: make(chan query, 8),
		gates:   make(map[query]chan struct{}),
		data:    make(map[query][]models.Slot),
		errs:    make(map[query]error),
	}
}

func (f *gatedFetcher) gate(q query) chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	g, ok := f.gates[q]
	if !ok {
		g = make(chan struct{})
		f.gates[q] = g
	}
	return g
}

func (f *gatedFetcher) SlotsByDate(ctx context.Context, doctorID int64, date string) ([]models.Slot, error) {
	q := query{doctorID, date}
	f.started <- q
	select {
	case <-f.gate(q):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.data[q], f.errs[q]
}

type resolveResult struct {
	applied bool
	err     error
}

func resolveAsync(r *Resolver, q query) <-chan resolveResult {
	out := make(chan resolveResult, 1)
	go func() {
		applied, err := r.Resolve(context.Background(), q.doctorID, q.date)
		out <- resolveResult{applied, err}
	}()
	return out
}

func TestStaleResponseDiscarded(t *testing.T) {
	older := query{7, "2024-06-11"}
	newer := query{7, "2024-06-12"}
	otherDoctor := query{8, "2024-06-12"}

	tests := []struct {
		name   string
		first  query
		second query
	}{
		{"same doctor, later date", older, newer},
		{"different doctor, same date", newer, otherDoctor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newGatedFetcher()
			f.data[tt.first] = []models.Slot{{ID: 10, DoctorID: tt.first.doctorID, SlotDate: tt.first.date, Available: true}}
			f.data[tt.second] = []models.Slot{
				{ID: 20, DoctorID: tt.second.doctorID, SlotDate: tt.second.date, Available: true},
				{ID: 21, DoctorID: tt.second.doctorID, SlotDate: tt.second.date},
			}
			r := NewResolver(f, func() time.Time { return at("2024-06-10 08:00") }, zap.NewNop())

			first := resolveAsync(r, tt.first)
			require.Equal(t, tt.first, <-f.started)
			second := resolveAsync(r, tt.second)
			require.Equal(t, tt.second, <-f.started)

			// the newer request completes first, then the older one arrives late
			close(f.gate(tt.second))
			res := <-second
			assert.True(t, res.applied)
			require.NoError(t, res.err)

			close(f.gate(tt.first))
			res = <-first
			assert.False(t, res.applied)
			assert.NoError(t, res.err)

			s := r.State()
			assert.Equal(t, tt.second.doctorID, s.DoctorID)
			assert.Equal(t, tt.second.date, s.Date)
			assert.False(t, s.Loading)
			require.Len(t, s.Slots, 2)
			assert.Equal(t, int64(20), s.Slots[0].ID)
		})
	}
}

func TestClearInvalidatesInFlight(t *testing.T) {
	f := newGatedFetcher()
	q := query{1, "2024-06-11"}
	f.data[q] = []models.Slot{{ID: 10, Available: true}}
	r := NewResolver(f, nil, zap.NewNop())

	done := resolveAsync(r, q)
	<-f.started
	r.Clear()
	close(f.gate(q))

	assert.False(t, (<-done).applied)
	assert.Empty(t, r.State().Slots)
	assert.Zero(t, r.State().DoctorID)
}

func TestAppliedFailureEmptiesSlots(t *testing.T) {
	f := newGatedFetcher()
	q := query{3, "2024-06-11"}
	f.errs[q] = errors.New("boom")
	close(f.gate(q))
	r := NewResolver(f, nil, zap.NewNop())

	applied, err := r.Resolve(context.Background(), 3, "2024-06-11")
	<-f.started
	assert.True(t, applied)
	assert.EqualError(t, err, "boom")
	s := r.State()
	assert.Empty(t, s.Slots)
	assert.EqualError(t, s.Err, "boom")
}

func TestClassifyToday(t *testing.T) {
	now := at("2024-06-10 14:00")
	list := []models.Slot{
		{ID: 1, SlotDate: "2024-06-10", StartTime: "13:30:00", Available: true},
		{ID: 2, SlotDate: "2024-06-10", StartTime: "14:00:00", Available: true},
		{ID: 3, SlotDate: "2024-06-10", StartTime: "14:30:00", Available: true},
		{ID: 4, SlotDate: "2024-06-10", StartTime: "09:00:00", Available: false},
		{ID: 5, SlotDate: "2024-06-10", StartTime: "16:00:00", Available: false},
	}

	views := Classify(list, "2024-06-10", now)
	require.Len(t, views, 5)

	assert.True(t, views[0].Past)
	assert.False(t, views[0].Selectable)
	assert.Equal(t, LabelPast, views[0].Label)

	assert.True(t, views[1].Past, "a slot starting this minute is past")

	assert.True(t, views[2].Selectable)
	assert.Empty(t, views[2].Label)

	assert.True(t, views[3].Past)
	assert.Equal(t, LabelBooked, views[3].Label, "booked wins over past")

	assert.False(t, views[4].Past)
	assert.Equal(t, LabelBooked, views[4].Label)
	assert.False(t, views[4].Selectable)
}

func TestClassifyOtherDays(t *testing.T) {
	now := at("2024-06-10 14:00")
	list := []models.Slot{{ID: 1, StartTime: "09:00", Available: true}}

	assert.True(t, Classify(list, "2024-06-11", now)[0].Selectable)
	assert.True(t, Classify(list, "2024-06-09", now)[0].Past)
}

func TestLookup(t *testing.T) {
	f := newGatedFetcher()
	q := query{1, "2024-06-10"}
	f.data[q] = []models.Slot{
		{ID: 41, SlotDate: "2024-06-10", StartTime: "13:30", Available: true},
		{ID: 42, SlotDate: "2024-06-10", StartTime: "14:30", Available: true},
	}
	close(f.gate(q))
	r := NewResolver(f, func() time.Time { return at("2024-06-10 14:00") }, zap.NewNop())

	_, err := r.Resolve(context.Background(), 1, "2024-06-10")
	require.NoError(t, err)

	v, ok := r.Lookup(42)
	require.True(t, ok)
	assert.True(t, v.Selectable)

	v, ok = r.Lookup(41)
	require.True(t, ok)
	assert.False(t, v.Selectable)

	_, ok = r.Lookup(99)
	assert.False(t, ok)
}

type availableFake map[int64][]models.Slot

func (a availableFake) AvailableSlots(_ context.Context, doctorID int64, _ string) ([]models.Slot, error) {
	if doctorID < 0 {
		return nil, errors.New("unreachable")
	}
	return a[doctorID], nil
}

func TestCountAvailable(t *testing.T) {
	now := at("2024-06-10 14:00")
	fake := availableFake{
		1: {{StartTime: "09:00", Available: true}, {StartTime: "15:00", Available: true}},
		2: {{StartTime: "14:00", Available: true}, {StartTime: "14:30", Available: true}, {StartTime: "16:00", Available: true}},
		3: nil,
	}

	n, err := CountAvailable(context.Background(), fake, []int64{1, 2, 3}, "2024-06-10", now)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = CountAvailable(context.Background(), fake, []int64{1, -1}, "2024-06-10", now)
	assert.Error(t, err)
}

type creatorFake struct {
	calls int
}

func (c *creatorFake) CreateSlot(_ context.Context, req models.SlotRequest) (*models.Slot, error) {
	c.calls++
	return &models.Slot{ID: 7, DoctorID: req.DoctorID, SlotDate: req.SlotDate, StartTime: req.StartTime, EndTime: req.EndTime, Available: true}, nil
}

func TestSupplyCreate(t *testing.T) {
	c := &creatorFake{}
	s := NewSupply(c, zap.NewNop())
	ctx := context.Background()

	slot, err := s.Create(ctx, models.SlotRequest{DoctorID: 1, SlotDate: "2024-06-10", StartTime: "09:00", EndTime: "09:30"})
	require.NoError(t, err)
	assert.Equal(t, int64(7), slot.ID)

	bad := []models.SlotRequest{
		{DoctorID: 0, SlotDate: "2024-06-10", StartTime: "09:00", EndTime: "09:30"},
		{DoctorID: 1, SlotDate: "10-06-2024", StartTime: "09:00", EndTime: "09:30"},
		{DoctorID: 1, SlotDate: "2024-06-10", StartTime: "25:00", EndTime: "09:30"},
	}
	for _, req := range bad {
		_, err := s.Create(ctx, req)
		assert.Error(t, err)
	}

	_, err = s.Create(ctx, models.SlotRequest{DoctorID: 1, SlotDate: "2024-06-10", StartTime: "10:00", EndTime: "09:30"})
	assert.ErrorIs(t, err, ErrInvalidRange)

	assert.Equal(t, 1, c.calls)
}
