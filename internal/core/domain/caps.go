package domain

import "time"

// CapPolicy bounds how many items a category contributes to one digest.
type CapPolicy struct {
	// Weekday is the cap Monday to Friday.
	Weekday int

	// Weekend is the cap on Saturday and Sunday.
	Weekend int

	// Location is the calendar used to decide whether it is the weekend.
	// Nil means UTC.
	Location *time.Location
}

// FixedCap returns a policy with the same cap every day.
func FixedCap(n int) CapPolicy {
	return CapPolicy{Weekday: n, Weekend: n}
}

// Limit returns the cap applicable at now.
func (p CapPolicy) Limit(now time.Time) int {
	loc := p.Location
	if loc == nil {
		loc = time.UTC
	}
	switch now.In(loc).Weekday() {
	case time.Saturday, time.Sunday:
		return p.Weekend
	default:
		return p.Weekday
	}
}
