package timeseries

import (
	"fmt"
	"time"
)

// Ensemble is a 3-D array of initialized predictions indexed by
// (initialization time, lead offset, member). Data is laid out as
// Data[init][lead][member]. LeadUnit carries the calendar unit tag of the
// lead dimension and is interpreted by the verification engine.
type Ensemble struct {
	Inits    []time.Time
	Leads    []int
	LeadUnit string
	Members  []string
	Data     [][][]float64
}

// NewEnsemble validates coordinates against the data shape and wraps them in
// an Ensemble. Slices are retained, not copied; the verification engine
// consumes the ensemble read-only.
func NewEnsemble(inits []time.Time, leads []int, leadUnit string, members []string, data [][][]float64) (*Ensemble, error) {
	e := &Ensemble{Inits: inits, Leads: leads, LeadUnit: leadUnit, Members: members, Data: data}
	if err := e.Validate(); err != nil {
		return nil, err
	}
	return e, nil
}

// Validate checks the structural invariants: non-empty axes, strictly
// increasing initializations, non-negative leads, and a data block whose
// shape matches the coordinates.
func (e *Ensemble) Validate() error {
	if len(e.Inits) == 0 || len(e.Leads) == 0 || len(e.Members) == 0 {
		return fmt.Errorf("%w: ensemble needs at least one initialization, lead and member", ErrDimensionMismatch)
	}
	for i := 1; i < len(e.Inits); i++ {
		if !e.Inits[i].After(e.Inits[i-1]) {
			return fmt.Errorf("%w: init coordinate not strictly increasing at index %d", ErrDimensionMismatch, i)
		}
	}
	for i, l := range e.Leads {
		if l < 0 {
			return fmt.Errorf("%w: negative lead offset %d at index %d", ErrDimensionMismatch, l, i)
		}
	}
	if len(e.Data) != len(e.Inits) {
		return fmt.Errorf("%w: %d data rows for %d initializations", ErrDimensionMismatch, len(e.Data), len(e.Inits))
	}
	for i := range e.Data {
		if len(e.Data[i]) != len(e.Leads) {
			return fmt.Errorf("%w: init %d has %d lead rows, want %d", ErrDimensionMismatch, i, len(e.Data[i]), len(e.Leads))
		}
		for j := range e.Data[i] {
			if len(e.Data[i][j]) != len(e.Members) {
				return fmt.Errorf("%w: init %d lead %d has %d members, want %d",
					ErrDimensionMismatch, i, j, len(e.Data[i][j]), len(e.Members))
			}
		}
	}
	return nil
}

// ResampleInit aggregates the ensemble along the initialization axis to the
// given frequency, averaging member values within each bin. The lead and
// member axes are untouched; callers retag LeadUnit to match the new
// resolution, mirroring how resampled hindcasts are prepared. Frequency codes
// are those of Series.Resample.
func (e *Ensemble) ResampleInit(freq string) (*Ensemble, error) {
	binFn, err := binStartFunc(freq, e.Inits[0])
	if err != nil {
		return nil, err
	}

	nl, nm := len(e.Leads), len(e.Members)
	var (
		binInits []time.Time
		binData  [][][]float64
		sum      [][]float64
		count    int
	)
	newBlock := func() [][]float64 {
		b := make([][]float64, nl)
		for j := range b {
			b[j] = make([]float64, nm)
		}
		return b
	}
	flush := func() {
		if count == 0 {
			return
		}
		for j := range sum {
			for k := range sum[j] {
				sum[j][k] /= float64(count)
			}
		}
		binData = append(binData, sum)
		sum, count = nil, 0
	}
	for i, t := range e.Inits {
		b := binFn(t)
		if len(binInits) == 0 || !b.Equal(binInits[len(binInits)-1]) {
			flush()
			binInits = append(binInits, b)
			sum = newBlock()
		}
		for j := 0; j < nl; j++ {
			for k := 0; k < nm; k++ {
				sum[j][k] += e.Data[i][j][k]
			}
		}
		count++
	}
	flush()

	leads := make([]int, nl)
	copy(leads, e.Leads)
	return NewEnsemble(binInits, leads, e.LeadUnit, e.Members, binData)
}

// PermuteMembers returns a copy of the ensemble with the member axis
// reordered by perm, where perm[k] names the source index of new member k.
func (e *Ensemble) PermuteMembers(perm []int) (*Ensemble, error) {
	nm := len(e.Members)
	if len(perm) != nm {
		return nil, fmt.Errorf("%w: permutation length %d for %d members", ErrDimensionMismatch, len(perm), nm)
	}
	seen := make([]bool, nm)
	for _, p := range perm {
		if p < 0 || p >= nm || seen[p] {
			return nil, fmt.Errorf("%w: invalid member permutation %v", ErrDimensionMismatch, perm)
		}
		seen[p] = true
	}

	members := make([]string, nm)
	for k, p := range perm {
		members[k] = e.Members[p]
	}
	data := make([][][]float64, len(e.Inits))
	for i := range e.Data {
		data[i] = make([][]float64, len(e.Leads))
		for j := range e.Data[i] {
			row := make([]float64, nm)
			for k, p := range perm {
				row[k] = e.Data[i][j][p]
			}
			data[i][j] = row
		}
	}
	return &Ensemble{Inits: e.Inits, Leads: e.Leads, LeadUnit: e.LeadUnit, Members: members, Data: data}, nil
}
