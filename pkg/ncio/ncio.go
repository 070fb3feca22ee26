// Package ncio loads labeled arrays from NetCDF files: a 1-D time-indexed
// reference series and a 3-D (init, lead, member) initialized ensemble. Time
// coordinates follow the CF convention "<unit> since <epoch>"; the lead
// coordinate carries its calendar unit in a "units" attribute.
package ncio

import (
	"fmt"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"

	"github.com/clearskies/esmverify/pkg/timeseries"
)

// LoadSeries reads a reference series from the named variable, using its
// first dimension as the time coordinate.
func LoadSeries(path, varName string) (*timeseries.Series, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncio: opening %s: %w", path, err)
	}
	defer nc.Close()

	vr, err := nc.GetVariable(varName)
	if err != nil {
		return nil, fmt.Errorf("ncio: variable %q: %w", varName, err)
	}
	if len(vr.Dimensions) != 1 {
		return nil, fmt.Errorf("%w: reference variable %q has %d dimensions, want 1 (time)",
			timeseries.ErrDimensionMismatch, varName, len(vr.Dimensions))
	}
	values, err := floats1D(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("ncio: variable %q: %w", varName, err)
	}
	times, err := timeCoord(nc, vr.Dimensions[0])
	if err != nil {
		return nil, err
	}
	return timeseries.NewSeries(times, values)
}

// LoadEnsemble reads an initialized ensemble from the named variable, whose
// dimensions must be ordered (init, lead, member). The lead unit is taken
// from the "units" attribute of the lead coordinate variable.
func LoadEnsemble(path, varName string) (*timeseries.Ensemble, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("ncio: opening %s: %w", path, err)
	}
	defer nc.Close()

	vr, err := nc.GetVariable(varName)
	if err != nil {
		return nil, fmt.Errorf("ncio: variable %q: %w", varName, err)
	}
	if len(vr.Dimensions) != 3 {
		return nil, fmt.Errorf("%w: ensemble variable %q has %d dimensions, want 3 (init, lead, member)",
			timeseries.ErrDimensionMismatch, varName, len(vr.Dimensions))
	}
	data, err := floats3D(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("ncio: variable %q: %w", varName, err)
	}

	inits, err := timeCoord(nc, vr.Dimensions[0])
	if err != nil {
		return nil, err
	}

	leadVar, err := nc.GetVariable(vr.Dimensions[1])
	if err != nil {
		return nil, fmt.Errorf("ncio: lead coordinate %q: %w", vr.Dimensions[1], err)
	}
	leadVals, err := floats1D(leadVar.Values)
	if err != nil {
		return nil, fmt.Errorf("ncio: lead coordinate %q: %w", vr.Dimensions[1], err)
	}
	leads := make([]int, len(leadVals))
	for i, v := range leadVals {
		leads[i] = int(v)
	}
	leadUnit, _ := attrString(leadVar, "units")

	members, err := memberLabels(nc, vr.Dimensions[2])
	if err != nil {
		return nil, err
	}

	return timeseries.NewEnsemble(inits, leads, leadUnit, members, data)
}

// timeCoord reads a coordinate variable and decodes its CF time units.
func timeCoord(nc api.Group, dim string) ([]time.Time, error) {
	vr, err := nc.GetVariable(dim)
	if err != nil {
		return nil, fmt.Errorf("ncio: time coordinate %q: %w", dim, err)
	}
	units, ok := attrString(vr, "units")
	if !ok {
		return nil, fmt.Errorf("ncio: time coordinate %q has no units attribute", dim)
	}
	step, epoch, err := parseTimeUnits(units)
	if err != nil {
		return nil, fmt.Errorf("ncio: time coordinate %q: %w", dim, err)
	}
	offsets, err := floats1D(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("ncio: time coordinate %q: %w", dim, err)
	}
	times := make([]time.Time, len(offsets))
	for i, o := range offsets {
		times[i] = epoch.Add(time.Duration(o * float64(step)))
	}
	return times, nil
}

// parseTimeUnits decodes a CF "<unit> since <epoch>" declaration.
func parseTimeUnits(units string) (time.Duration, time.Time, error) {
	fields := strings.SplitN(strings.TrimSpace(units), " since ", 2)
	if len(fields) != 2 {
		return 0, time.Time{}, fmt.Errorf("cannot parse time units %q", units)
	}
	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(fields[0])) {
	case "days", "day", "d":
		step = 24 * time.Hour
	case "hours", "hour", "h":
		step = time.Hour
	case "minutes", "minute", "min":
		step = time.Minute
	case "seconds", "second", "sec", "s":
		step = time.Second
	default:
		return 0, time.Time{}, fmt.Errorf("unsupported time unit in %q", units)
	}
	epochStr := strings.TrimSpace(fields[1])
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02"} {
		if epoch, err := time.Parse(layout, epochStr); err == nil {
			return step, epoch.UTC(), nil
		}
	}
	return 0, time.Time{}, fmt.Errorf("cannot parse epoch in time units %q", units)
}

// memberLabels reads member names, stringifying numeric member coordinates.
func memberLabels(nc api.Group, dim string) ([]string, error) {
	vr, err := nc.GetVariable(dim)
	if err != nil {
		return nil, fmt.Errorf("ncio: member coordinate %q: %w", dim, err)
	}
	if labels, ok := vr.Values.([]string); ok {
		return labels, nil
	}
	vals, err := floats1D(vr.Values)
	if err != nil {
		return nil, fmt.Errorf("ncio: member coordinate %q: %w", dim, err)
	}
	labels := make([]string, len(vals))
	for i, v := range vals {
		labels[i] = fmt.Sprintf("%d", int(v))
	}
	return labels, nil
}

func attrString(vr *api.Variable, name string) (string, bool) {
	if vr.Attributes == nil {
		return "", false
	}
	val, has := vr.Attributes.Get(name)
	if !has {
		return "", false
	}
	s, ok := val.(string)
	return s, ok
}

// floats1D widens any of the numeric slice types NetCDF variables decode to.
func floats1D(v interface{}) ([]float64, error) {
	switch vals := v.(type) {
	case []float64:
		return vals, nil
	case []float32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	case []int64:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	case []int32:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	case []int16:
		out := make([]float64, len(vals))
		for i, x := range vals {
			out[i] = float64(x)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}

func floats3D(v interface{}) ([][][]float64, error) {
	switch vals := v.(type) {
	case [][][]float64:
		return vals, nil
	case [][][]float32:
		out := make([][][]float64, len(vals))
		for i := range vals {
			out[i] = make([][]float64, len(vals[i]))
			for j := range vals[i] {
				row := make([]float64, len(vals[i][j]))
				for k, x := range vals[i][j] {
					row[k] = float64(x)
				}
				out[i][j] = row
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("unsupported value type %T", v)
}
