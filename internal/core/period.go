package core

import "strings"

// Period is the aggregation window selected on the dashboard.
type Period string

const (
	PeriodDay   Period = "dia"
	PeriodWeek  Period = "semana"
	PeriodMonth Period = "mes"
	PeriodYear  Period = "ano"
)

// DefaultPeriod is used when no period is selected.
const DefaultPeriod = PeriodMonth

// ParsePeriod maps a selector value to a Period. "mês" is accepted as an alias
// of "mes". Unknown values are returned as-is; the aggregator treats them as
// "no filter".
func ParsePeriod(s string) Period {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case "":
		return DefaultPeriod
	case "mês":
		return PeriodMonth
	}
	return Period(s)
}

// Periods lists the selectable periods in tab order.
func Periods() []Period {
	return []Period{PeriodDay, PeriodWeek, PeriodMonth, PeriodYear}
}

func (p Period) Known() bool {
	switch p {
	case PeriodDay, PeriodWeek, PeriodMonth, PeriodYear:
		return true
	}
	return false
}

// Title is the tab caption.
func (p Period) Title() string {
	switch p {
	case PeriodDay:
		return "Dia"
	case PeriodWeek:
		return "Semana"
	case PeriodMonth:
		return "Mês"
	case PeriodYear:
		return "Ano"
	}
	return string(p)
}
