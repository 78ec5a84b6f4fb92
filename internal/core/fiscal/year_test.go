package fiscal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestYearOf_AprilBoundary(t *testing.T) {
	cal := Default()

	tests := []struct {
		name string
		at   time.Time
		tag  string
	}{
		{"mid year", date(2024, time.September, 15), "2024-25"},
		{"first day", date(2024, time.April, 1), "2024-25"},
		{"day before boundary", date(2024, time.March, 31), "2023-24"},
		{"january belongs to previous fy", date(2025, time.January, 10), "2024-25"},
		{"next fy", date(2025, time.April, 1), "2025-26"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.tag, cal.YearOf(tt.at).Tag())
		})
	}
}

func TestYear_Short(t *testing.T) {
	cal := Default()
	assert.Equal(t, "24", cal.YearOf(date(2024, time.June, 1)).Short())
	assert.Equal(t, "09", cal.YearOf(date(2009, time.June, 1)).Short())
}

func TestYearOf_JanuaryStart(t *testing.T) {
	cal := NewCalendar(time.January)
	y := cal.YearOf(date(2024, time.December, 31))
	assert.Equal(t, "2024", y.Tag())
	assert.Equal(t, 2024, y.StartYear())
}

func TestYear_Contains(t *testing.T) {
	y := Default().YearOf(date(2024, time.July, 1))
	assert.True(t, y.Contains(date(2024, time.April, 1)))
	assert.True(t, y.Contains(date(2025, time.March, 31)))
	assert.False(t, y.Contains(date(2025, time.April, 1)))
	assert.False(t, y.Contains(date(2024, time.March, 31)))
}

func TestNewCalendar_InvalidMonthFallsBack(t *testing.T) {
	cal := NewCalendar(time.Month(0))
	assert.Equal(t, DefaultStartMonth, cal.StartMonth())
}
