// Package leadtime interprets the unit attached to a forecast lead dimension
// and converts integer lead offsets into concrete calendar deltas.
package leadtime

import (
	"errors"
	"fmt"
	"time"
)

// Unit is the calendar unit of a lead dimension.
type Unit string

const (
	// Days advances the valid time by N calendar days per lead step.
	Days Unit = "days"

	// Weeks advances the valid time by 7N calendar days per lead step.
	Weeks Unit = "weeks"

	// Pentads advances the valid time by 5N calendar days per lead step.
	// A pentad is the 5-day aggregation period common in climate datasets.
	Pentads Unit = "pentads"

	// Months advances the valid time by N calendar months. Month arithmetic
	// is calendar-aware: month-start initializations stay month-start.
	Months Unit = "months"

	// Years advances the valid time by N calendar years.
	Years Unit = "years"
)

// ErrUnsupportedUnit is returned when a lead dimension carries a unit tag
// outside the supported set.
var ErrUnsupportedUnit = errors.New("unsupported lead unit")

// Parse validates a lead unit tag. It is called once per computation so that
// an unrecognized unit fails before any alignment work begins.
func Parse(s string) (Unit, error) {
	switch Unit(s) {
	case Days, Weeks, Pentads, Months, Years:
		return Unit(s), nil
	}
	return "", fmt.Errorf("%w: %q (supported: days, weeks, pentads, months, years)", ErrUnsupportedUnit, s)
}

// Offset applies n lead steps of this unit to t and returns the valid time.
func (u Unit) Offset(t time.Time, n int) time.Time {
	switch u {
	case Days:
		return t.AddDate(0, 0, n)
	case Weeks:
		return t.AddDate(0, 0, 7*n)
	case Pentads:
		return t.AddDate(0, 0, 5*n)
	case Months:
		return t.AddDate(0, n, 0)
	case Years:
		return t.AddDate(n, 0, 0)
	}
	// Unreachable for units produced by Parse.
	panic(fmt.Sprintf("leadtime: offset on unvalidated unit %q", string(u)))
}

// Units lists the supported lead units in their conventional fine-to-coarse
// order.
func Units() []Unit {
	return []Unit{Days, Weeks, Pentads, Months, Years}
}
