package calendar

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClock(s string) func() time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return func() time.Time { return t }
}

func TestGridShape(t *testing.T) {
	m := Month{Year: 2000, Month: time.January}
	for i := 0; i < 12*30; i++ {
		grid := m.Grid(time.UTC)
		first := m.First(time.UTC)
		lead := int(first.Weekday())

		require.Len(t, grid, lead+m.Days(), m.String())
		for j := 0; j < lead; j++ {
			assert.Nil(t, grid[j])
		}
		for d := 1; d <= m.Days(); d++ {
			cell := grid[lead+d-1]
			require.NotNil(t, cell)
			assert.Equal(t, d, cell.Day)
		}
		m = m.Next()
	}
}

func TestGridJune2024(t *testing.T) {
	grid := Month{Year: 2024, Month: time.June}.Grid(time.UTC)
	// 1 June 2024 is a Saturday
	assert.Len(t, grid, 6+30)
	assert.Equal(t, "2024-06-01", grid[6].Date)
	assert.Equal(t, "2024-06-30", grid[len(grid)-1].Date)
}

func TestMonthWrap(t *testing.T) {
	assert.Equal(t, Month{Year: 2025, Month: time.January}, Month{Year: 2024, Month: time.December}.Next())
	assert.Equal(t, Month{Year: 2023, Month: time.December}, Month{Year: 2024, Month: time.January}.Prev())
	assert.Equal(t, Month{Year: 2024, Month: time.July}, Month{Year: 2024, Month: time.June}.Next())

	m := Month{Year: 2024, Month: time.March}
	for i := 0; i < 30; i++ {
		m = m.Next()
	}
	for i := 0; i < 30; i++ {
		m = m.Prev()
	}
	assert.Equal(t, Month{Year: 2024, Month: time.March}, m)
}

func TestDateStringUsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+10", 10*3600)
	late := time.Date(2024, time.June, 10, 1, 30, 0, 0, loc)
	// the UTC instant is still 9 June
	assert.Equal(t, "2024-06-10", DateString(late))
}

func TestSelectDate(t *testing.T) {
	e := NewEngine(fixedClock("2024-06-10 14:00"))

	assert.ErrorIs(t, e.SelectDate("2024-06-09"), ErrPastDate)
	assert.Empty(t, e.Selected())

	require.NoError(t, e.SelectDate("2024-06-10"))
	assert.Equal(t, "2024-06-10", e.Selected())

	require.NoError(t, e.SelectDate("2024-07-02"))
	assert.Equal(t, Month{Year: 2024, Month: time.July}, e.Visible())

	assert.ErrorIs(t, e.SelectDate("10/06/2024"), ErrInvalidDate)
}

func TestSelectable(t *testing.T) {
	e := NewEngine(fixedClock("2024-06-10 14:00"))
	assert.False(t, e.Selectable("2024-06-09"))
	assert.True(t, e.Selectable("2024-06-10"))
	assert.True(t, e.Selectable("2025-01-01"))
	assert.False(t, e.Selectable("junk"))
}

func TestNavigationClearsSelection(t *testing.T) {
	e := NewEngine(fixedClock("2024-12-20 09:00"))
	require.NoError(t, e.SelectDate("2024-12-24"))

	assert.Equal(t, Month{Year: 2025, Month: time.January}, e.NextMonth())
	assert.Empty(t, e.Selected())

	require.NoError(t, e.SelectDate("2025-01-03"))
	assert.Equal(t, Month{Year: 2024, Month: time.December}, e.PrevMonth())
	assert.Empty(t, e.Selected())
}

func TestSeedOpensMonthWithoutSelecting(t *testing.T) {
	e := NewEngine(fixedClock("2024-06-10 14:00"))
	require.NoError(t, e.SelectDate("2024-06-12"))
	require.NoError(t, e.Seed("2024-05-01"))
	assert.Empty(t, e.Selected())
	assert.Equal(t, Month{Year: 2024, Month: time.May}, e.Visible())
	assert.ErrorIs(t, e.Seed("May 1st"), ErrInvalidDate)
}
