// Package timeseries provides the labeled array types consumed by the
// verification engine: a 1-D time-indexed reference series and a 3-D
// initialized ensemble indexed by (initialization, lead, member), plus
// fixed-frequency resampling over the time axes.
package timeseries

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"gonum.org/v1/gonum/stat"
)

// ErrDimensionMismatch is returned when array shapes or coordinates are
// structurally incompatible. It is fatal and surfaced before any computation.
var ErrDimensionMismatch = errors.New("dimension mismatch")

// Series is a 1-D array of values indexed by strictly increasing timestamps.
type Series struct {
	Times  []time.Time
	Values []float64
}

// NewSeries validates coordinates and wraps them in a Series. The slices are
// retained, not copied; callers must treat them as read-only afterwards.
func NewSeries(times []time.Time, values []float64) (*Series, error) {
	s := &Series{Times: times, Values: values}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks the structural invariants: equal coordinate/value lengths,
// at least one sample, strictly increasing times.
func (s *Series) Validate() error {
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("%w: %d timestamps for %d values", ErrDimensionMismatch, len(s.Times), len(s.Values))
	}
	if len(s.Times) == 0 {
		return fmt.Errorf("%w: empty series", ErrDimensionMismatch)
	}
	for i := 1; i < len(s.Times); i++ {
		if !s.Times[i].After(s.Times[i-1]) {
			return fmt.Errorf("%w: time coordinate not strictly increasing at index %d (%s then %s)",
				ErrDimensionMismatch, i, s.Times[i-1].Format(time.RFC3339), s.Times[i].Format(time.RFC3339))
		}
	}
	return nil
}

// Len returns the number of samples.
func (s *Series) Len() int {
	return len(s.Times)
}

// At looks up the value at exactly t. The second return is false when t is
// not a coordinate of the series.
func (s *Series) At(t time.Time) (float64, bool) {
	i, ok := slices.BinarySearchFunc(s.Times, t, func(a, b time.Time) int {
		return a.Compare(b)
	})
	if !ok {
		return 0, false
	}
	return s.Values[i], true
}

// Covers reports whether t falls within the closed interval spanned by the
// series coordinates.
func (s *Series) Covers(t time.Time) bool {
	return !t.Before(s.Times[0]) && !t.After(s.Times[len(s.Times)-1])
}

// Resample aggregates the series to the given frequency by taking the mean of
// every bin. Supported frequency codes follow the usual resampling
// conventions: "D" (daily), "5D" (pentadal, bins anchored at the first
// sample), "W" (weekly, Monday-start), "MS" (month start), "YS" (year start).
// Bins are labeled by their start timestamp.
func (s *Series) Resample(freq string) (*Series, error) {
	binFn, err := binStartFunc(freq, s.Times[0])
	if err != nil {
		return nil, err
	}

	var (
		binTimes []time.Time
		binVals  []float64
		bucket   []float64
	)
	flush := func() {
		if len(bucket) > 0 {
			binVals = append(binVals, stat.Mean(bucket, nil))
			bucket = bucket[:0]
		}
	}
	for i, t := range s.Times {
		b := binFn(t)
		if len(binTimes) == 0 || !b.Equal(binTimes[len(binTimes)-1]) {
			flush()
			binTimes = append(binTimes, b)
		}
		bucket = append(bucket, s.Values[i])
	}
	flush()

	return NewSeries(binTimes, binVals)
}

// binStartFunc maps a frequency code to the function assigning each timestamp
// the start of its bin. origin anchors day-count frequencies such as "5D".
func binStartFunc(freq string, origin time.Time) (func(time.Time) time.Time, error) {
	dayStart := func(t time.Time) time.Time {
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	}
	switch freq {
	case "D":
		return dayStart, nil
	case "5D":
		anchor := dayStart(origin)
		return func(t time.Time) time.Time {
			days := int(dayStart(t).Sub(anchor).Hours() / 24)
			return anchor.AddDate(0, 0, days/5*5)
		}, nil
	case "W":
		return func(t time.Time) time.Time {
			d := dayStart(t)
			return d.AddDate(0, 0, -((int(d.Weekday()) + 6) % 7))
		}, nil
	case "MS":
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
		}, nil
	case "YS":
		return func(t time.Time) time.Time {
			return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
		}, nil
	}
	return nil, fmt.Errorf("unsupported resample frequency %q (supported: D, 5D, W, MS, YS)", freq)
}
