package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mia/internal/core"
)

// 2024-03-20 is a Wednesday.
func wednesday(t *testing.T) Clock {
	t.Helper()
	return FixedClock(time.Date(2024, 3, 20, 15, 0, 0, 0, DefaultLocation), DefaultLocation)
}

func TestClockBounds(t *testing.T) {
	c := wednesday(t)
	assert.Equal(t, DateKey("2024-03-20"), c.Today())
	assert.Equal(t, DateKey("2024-03-17"), c.StartOfWeek())
	assert.Equal(t, DateKey("2024-03-01"), c.StartOfMonth())
	assert.Equal(t, DateKey("2024-01-01"), c.StartOfYear())
}

func TestStartOfWeekCrossesMonth(t *testing.T) {
	c := FixedClock(time.Date(2024, 3, 2, 12, 0, 0, 0, DefaultLocation), DefaultLocation)
	assert.Equal(t, DateKey("2024-02-25"), c.StartOfWeek())
}

func TestStartOfWeekOnSunday(t *testing.T) {
	c := FixedClock(time.Date(2024, 3, 17, 9, 0, 0, 0, DefaultLocation), DefaultLocation)
	assert.Equal(t, c.Today(), c.StartOfWeek())
}

func TestTodayUsesClockLocation(t *testing.T) {
	// 02:00 UTC on the 21st is still the 20th at UTC-3.
	c := FixedClock(time.Date(2024, 3, 21, 2, 0, 0, 0, time.UTC), DefaultLocation)
	assert.Equal(t, DateKey("2024-03-20"), c.Today())

	utc := FixedClock(time.Date(2024, 3, 21, 2, 0, 0, 0, time.UTC), time.UTC)
	assert.Equal(t, DateKey("2024-03-21"), utc.Today())
}

func TestDateOnly(t *testing.T) {
	cases := map[string]DateKey{
		"2024-03-20":           "2024-03-20",
		"2024-03-20T10:00:00Z": "2024-03-20",
		"2024-03-20 10:00:00":  "2024-03-20",
		"":                     "",
		"garbage":              "garbage",
		"20/03/2024T00:00":     "20/03/2024",
	}
	for in, want := range cases {
		assert.Equal(t, want, DateOnly(in), in)
	}
}

func TestFormat(t *testing.T) {
	cases := map[string]string{
		"2024-03-05":           "05/03/2024",
		"2024-03-05T23:59:59":  "05/03/2024",
		"":                     "",
		"2024-03":              "2024-03",
		"not a date":           "not",
		"2024/03/05T00:00:00Z": "2024/03/05",
	}
	for in, want := range cases {
		assert.Equal(t, want, Format(in), in)
	}
}

func TestDateKeysCompareChronologically(t *testing.T) {
	assert.True(t, DateKey("2024-02-01") > DateKey("2024-01-31"))
	assert.True(t, DateKey("2024-12-31") < DateKey("2025-01-01"))
}

func TestPeriodLabel(t *testing.T) {
	c := wednesday(t)
	cases := map[core.Period]string{
		core.PeriodDay:   "20/03/2024",
		core.PeriodWeek:  "Semana de 17/03/2024",
		core.PeriodMonth: "Março de 2024",
		core.PeriodYear:  "2024",
		"decada":         "Período atual",
	}
	for p, want := range cases {
		assert.Equal(t, want, c.PeriodLabel(p), string(p))
	}
}

func TestMonthLabelAllMonths(t *testing.T) {
	assert.Equal(t, "Janeiro de 2025", MonthLabel(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, "Dezembro de 2025", MonthLabel(time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)))
}

func TestLoadLocation(t *testing.T) {
	loc, err := LoadLocation("", -3)
	require.NoError(t, err)
	_, off := time.Date(2024, 1, 1, 0, 0, 0, 0, loc).Zone()
	assert.Equal(t, -3*3600, off)

	utc, err := LoadLocation("UTC", -3)
	require.NoError(t, err)
	assert.Equal(t, time.UTC.String(), utc.String())

	_, err = LoadLocation("Nowhere/Invalid", 0)
	assert.Error(t, err)
}

func TestZeroClockFallsBackToDefaults(t *testing.T) {
	var c Clock
	assert.Equal(t, DefaultLocation, c.Location())
	assert.NotEmpty(t, c.Today())
}

func TestFreeze(t *testing.T) {
	calls := 0
	c := Clock{loc: time.UTC, now: func() time.Time {
		calls++
		return time.Date(2024, 3, 20, 23, 59, 59, 0, time.UTC).Add(time.Duration(calls) * time.Second)
	}}
	f := c.Freeze()
	assert.Equal(t, f.Today(), f.Today())
	assert.Equal(t, DateKey("2024-03-21"), f.Today())
	assert.Equal(t, 1, calls)
}
