// Package dates provides the calendar helpers used to bucket transactions into
// dashboard periods. All "today" computations happen in a single location so
// that the period bounds and the comparisons against them agree.
package dates

import (
	"fmt"
	"strings"
	"time"

	"mia/internal/core"
)

// DefaultOffsetHours is the fixed offset of the default location (UTC-3).
const DefaultOffsetHours = -3

// DefaultLocation is a fixed UTC-3 zone. It does not follow DST rules.
var DefaultLocation = FixedLocation(DefaultOffsetHours)

var monthNames = [...]string{
	"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
	"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
}

// DateKey is a calendar date rendered as YYYY-MM-DD. Keys compare
// lexicographically in chronological order.
type DateKey string

// FixedLocation returns a zone with a fixed offset from UTC.
func FixedLocation(offsetHours int) *time.Location {
	return time.FixedZone(fmt.Sprintf("UTC%+d", offsetHours), offsetHours*3600)
}

// Clock yields "now" in a given location.
type Clock struct {
	loc *time.Location
	now func() time.Time
}

// NewClock returns a wall clock in loc. A nil loc means DefaultLocation.
func NewClock(loc *time.Location) Clock {
	if loc == nil {
		loc = DefaultLocation
	}
	return Clock{loc: loc, now: time.Now}
}

// FixedClock always reports t, converted to loc.
func FixedClock(t time.Time, loc *time.Location) Clock {
	if loc == nil {
		loc = DefaultLocation
	}
	return Clock{loc: loc, now: func() time.Time { return t }}
}

func (c Clock) Location() *time.Location {
	if c.loc == nil {
		return DefaultLocation
	}
	return c.loc
}

// Now returns the current instant in the clock's location.
func (c Clock) Now() time.Time {
	now := c.now
	if now == nil {
		now = time.Now
	}
	return now().In(c.Location())
}

// Freeze pins the clock to the current instant, so several bounds derived from
// it agree on what "today" is.
func (c Clock) Freeze() Clock {
	return FixedClock(c.Now(), c.Location())
}

func (c Clock) Today() DateKey { return Key(c.Now()) }

// StartOfWeek is today minus its weekday index (Sunday = 0).
func (c Clock) StartOfWeek() DateKey {
	now := c.Now()
	return Key(now.AddDate(0, 0, -int(now.Weekday())))
}

func (c Clock) StartOfMonth() DateKey {
	now := c.Now()
	return Key(time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()))
}

func (c Clock) StartOfYear() DateKey {
	now := c.Now()
	return Key(time.Date(now.Year(), time.January, 1, 0, 0, 0, 0, now.Location()))
}

// Key renders t's calendar date in t's own location.
func Key(t time.Time) DateKey {
	return DateKey(t.Format("2006-01-02"))
}

// DateOnly returns the part of raw before the first 'T' or space. The input
// is not validated: malformed values come back unchanged (up to the cut).
func DateOnly(raw string) DateKey {
	if i := strings.IndexAny(raw, "T "); i >= 0 {
		return DateKey(raw[:i])
	}
	return DateKey(raw)
}

// Format renders a raw date as DD/MM/YYYY. Empty input gives an empty string;
// anything that is not three dash-separated parts is returned as its date-only
// prefix.
func Format(raw string) string {
	if raw == "" {
		return ""
	}
	d := string(DateOnly(raw))
	parts := strings.Split(d, "-")
	if len(parts) != 3 {
		return d
	}
	return parts[2] + "/" + parts[1] + "/" + parts[0]
}

// FormatTime renders t as DD/MM/YYYY.
func FormatTime(t time.Time) string {
	return t.Format("02/01/2006")
}

// MonthLabel renders "<Mês> de <YYYY>" in Portuguese.
func MonthLabel(t time.Time) string {
	return fmt.Sprintf("%s de %d", monthNames[t.Month()-1], t.Year())
}

// PeriodLabel is the human caption of the period containing today.
func (c Clock) PeriodLabel(p core.Period) string {
	now := c.Now()
	switch p {
	case core.PeriodDay:
		return FormatTime(now)
	case core.PeriodWeek:
		return "Semana de " + FormatTime(now.AddDate(0, 0, -int(now.Weekday())))
	case core.PeriodMonth:
		return MonthLabel(now)
	case core.PeriodYear:
		return fmt.Sprintf("%d", now.Year())
	}
	return "Período atual"
}

// LoadLocation resolves the configured zone: an IANA name wins over the
// fixed offset.
func LoadLocation(name string, offsetHours int) (*time.Location, error) {
	if name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("load location %q: %w", name, err)
		}
		return loc, nil
	}
	return FixedLocation(offsetHours), nil
}
