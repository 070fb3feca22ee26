// Package prediction verifies initialized prediction ensembles against a
// reference time series. It aligns every (initialization, lead) pair to a
// valid time using the calendar unit declared on the lead dimension, scores
// the member dimension with a pluggable metric, and aggregates skill per
// lead. Two comparison modes are provided: hindcast, which verifies members
// against the reference value at the valid time, and perfect model, which
// verifies members against each other with the reference gating alignment
// only.
package prediction

import (
	"fmt"
	"math"
	"slices"
	"time"

	"github.com/clearskies/esmverify/internal/log"
	"github.com/clearskies/esmverify/pkg/leadtime"
	"github.com/clearskies/esmverify/pkg/timeseries"
)

// ErrDimensionMismatch mirrors the timeseries sentinel so callers can test
// structural failures with a single errors.Is target.
var ErrDimensionMismatch = timeseries.ErrDimensionMismatch

// SkillResult holds per-lead verification skill. Values preserves the input
// lead ordering exactly; a NaN entry marks a lead with no alignable
// initialization, which is always distinguishable from a valid zero score.
type SkillResult struct {
	Leads []int
	Unit  leadtime.Unit
	Inits []time.Time

	// Values is the skill per lead, averaged over alignable initializations.
	Values []float64

	// ByInit retains the initialization dimension: ByInit[lead][init] is the
	// score of one (initialization, lead) pair, NaN where the valid time fell
	// outside the reference coverage.
	ByInit [][]float64

	// MissingPairs counts the (initialization, lead) pairs excluded because
	// their valid time was not covered by the reference series.
	MissingPairs int
}

// All reports whether every per-lead value is finite and non-missing. It is
// the aggregate check used by resolution coverage tests.
func (r *SkillResult) All() bool {
	for _, v := range r.Values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return len(r.Values) > 0
}

type compareMode int

const (
	modeHindcast compareMode = iota
	modePerfectModel
)

// ComputeHindcast verifies the ensemble against the reference series: for
// each (initialization, lead) pair the member values are scored against the
// reference value at the aligned valid time, then averaged over
// initializations per lead. A nil metric selects RMSE.
func ComputeHindcast(ens *timeseries.Ensemble, ref *timeseries.Series, metric Metric) (*SkillResult, error) {
	return compute(ens, ref, metric, modeHindcast)
}

// ComputePerfectModel verifies the ensemble against itself: at each aligned
// (initialization, lead) pair every member in turn is treated as the
// pseudo-observation and the remaining members are scored against it, the
// scores averaged over all truth-member choices. The choice set is the full
// member axis, so the result is deterministic. The reference series is used
// only to gate alignment: pairs whose valid time falls outside its coverage
// are excluded exactly as in hindcast mode. Requires at least two members.
func ComputePerfectModel(ens *timeseries.Ensemble, ref *timeseries.Series, metric Metric) (*SkillResult, error) {
	return compute(ens, ref, metric, modePerfectModel)
}

func compute(ens *timeseries.Ensemble, ref *timeseries.Series, metric Metric, mode compareMode) (*SkillResult, error) {
	if ens == nil || ref == nil {
		return nil, fmt.Errorf("%w: nil ensemble or reference", ErrDimensionMismatch)
	}
	if err := ens.Validate(); err != nil {
		return nil, err
	}
	if err := ref.Validate(); err != nil {
		return nil, err
	}
	if mode == modePerfectModel && len(ens.Members) < 2 {
		return nil, fmt.Errorf("%w: perfect-model comparison needs at least two members, got %d",
			ErrDimensionMismatch, len(ens.Members))
	}

	// The unit tag is validated once, before any alignment work.
	unit, err := leadtime.Parse(ens.LeadUnit)
	if err != nil {
		return nil, err
	}
	if metric == nil {
		metric = RMSE
	}

	nl, ni, nm := len(ens.Leads), len(ens.Inits), len(ens.Members)
	res := &SkillResult{
		Leads:  slices.Clone(ens.Leads),
		Unit:   unit,
		Inits:  slices.Clone(ens.Inits),
		Values: make([]float64, nl),
		ByInit: make([][]float64, nl),
	}

	obs := make([]float64, nm)
	for j, lead := range ens.Leads {
		perInit := make([]float64, ni)
		aligned := 0
		for i, init := range ens.Inits {
			valid := unit.Offset(init, lead)
			var score float64
			switch mode {
			case modeHindcast:
				target, ok := ref.At(valid)
				if !ok {
					perInit[i] = math.NaN()
					res.MissingPairs++
					continue
				}
				for k := range obs {
					obs[k] = target
				}
				score = metric(ens.Data[i][j], obs)
			case modePerfectModel:
				if !ref.Covers(valid) {
					perInit[i] = math.NaN()
					res.MissingPairs++
					continue
				}
				score = leaveOneOut(ens.Data[i][j], metric)
			}
			perInit[i] = score
			aligned++
		}
		res.ByInit[j] = perInit
		if aligned == 0 {
			log.Warnf("insufficient coverage: lead %d (%s) has no alignable initializations, marking missing", lead, unit)
			res.Values[j] = math.NaN()
			continue
		}
		res.Values[j] = nanMean(perInit)
	}
	return res, nil
}

// leaveOneOut treats each member in turn as truth, scores the remaining
// members against it, and averages over all truth choices.
func leaveOneOut(row []float64, metric Metric) float64 {
	nm := len(row)
	forecast := make([]float64, nm-1)
	truth := make([]float64, nm-1)
	sum := 0.0
	for m := 0; m < nm; m++ {
		copy(forecast, row[:m])
		copy(forecast[m:], row[m+1:])
		for k := range truth {
			truth[k] = row[m]
		}
		sum += metric(forecast, truth)
	}
	return sum / float64(nm)
}

// nanMean averages the non-NaN entries. Summation order is fixed so repeated
// runs over identical inputs are bit-identical.
func nanMean(vals []float64) float64 {
	sum, n := 0.0, 0
	for _, v := range vals {
		if math.IsNaN(v) {
			continue
		}
		sum += v
		n++
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}
