package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/integrate"
	"gonum.org/v1/gonum/stat"

	"match-occupancy/models/occupancy"
)

// Options controls how windowed records are summarised.
type Options struct {
	// ReferenceHour is the kick-off hour (0-23). Only the kick-off metric
	// reads it.
	ReferenceHour int
	// Normalize divides every value by its baseline group's mean w1-6.
	Normalize bool
	Metric    occupancy.Metric
	// Baselines defaults to DefaultBaselineGroups when nil.
	Baselines BaselineGroups
}

// Aggregate reduces windowed records to two observations per facility: the
// w1-6 baseline and the w7 match day.
func Aggregate(windowed []occupancy.WindowedRecord, opts Options) ([]occupancy.LongResultRow, error) {
	baselines := opts.Baselines
	if baselines == nil {
		baselines = DefaultBaselineGroups()
	}

	switch opts.Metric {
	case occupancy.MetricKickoff:
		if opts.ReferenceHour < 0 || opts.ReferenceHour > 23 {
			return nil, fmt.Errorf("%w: got %d", ErrInvalidReferenceHour, opts.ReferenceHour)
		}
		return aggregateKickoff(windowed, opts.ReferenceHour, opts.Normalize, baselines)
	case occupancy.MetricAUC:
		return aggregateAUC(windowed, opts.Normalize, baselines)
	default:
		return nil, fmt.Errorf("%w: got %d", ErrInvalidMetric, int(opts.Metric))
	}
}

func aggregateKickoff(windowed []occupancy.WindowedRecord, hour int, normalize bool, baselines BaselineGroups) ([]occupancy.LongResultRow, error) {
	atKickoff := make([]occupancy.WindowedRecord, 0, len(windowed))
	for _, r := range windowed {
		ts := r.Timestamp
		if ts.Hour() == hour && ts.Minute() == 0 && ts.Second() == 0 && ts.Nanosecond() == 0 {
			atKickoff = append(atKickoff, r)
		}
	}

	rows, err := pivot(atKickoff, false)
	if err != nil {
		return nil, err
	}
	if normalize {
		if err := normalizeRows(rows, baselines); err != nil {
			return nil, err
		}
	}

	// Facilities without an exact kick-off sample for a side are left out.
	out := make([]occupancy.LongResultRow, 0, 2*len(rows))
	for _, row := range rows {
		if row.HasBaseline {
			out = append(out, occupancy.LongResultRow{
				Country: row.Country, Facility: row.Facility,
				Week: occupancy.WeekBaseline, Value: row.Baseline,
			})
		}
	}
	for _, row := range rows {
		if v, ok := row.Week(occupancy.MatchWeek); ok {
			out = append(out, occupancy.LongResultRow{
				Country: row.Country, Facility: row.Facility,
				Week: occupancy.WeekMatch, Value: v,
			})
		}
	}
	return out, nil
}

type facilityKey struct {
	country  string
	facility string
}

type curve struct {
	hours  []float64
	values []float64
}

func aggregateAUC(windowed []occupancy.WindowedRecord, normalize bool, baselines BaselineGroups) ([]occupancy.LongResultRow, error) {
	rows, err := pivot(windowed, true)
	if err != nil {
		return nil, err
	}
	if normalize {
		if err := normalizeRows(rows, baselines); err != nil {
			return nil, err
		}
	}

	var keys []facilityKey
	baseline := make(map[facilityKey]*curve)
	match := make(map[facilityKey]*curve)
	// rows are sorted by hour within a facility, so the curves come out sorted.
	for _, row := range rows {
		k := facilityKey{row.Country, row.Facility}
		if _, seen := baseline[k]; !seen {
			keys = append(keys, k)
			baseline[k] = &curve{}
			match[k] = &curve{}
		}
		if row.HasBaseline {
			baseline[k].hours = append(baseline[k].hours, row.Hour)
			baseline[k].values = append(baseline[k].values, row.Baseline)
		}
		if v, ok := row.Week(occupancy.MatchWeek); ok {
			match[k].hours = append(match[k].hours, row.Hour)
			match[k].values = append(match[k].values, v)
		}
	}

	out := make([]occupancy.LongResultRow, 0, 2*len(keys))
	for _, k := range keys {
		for _, side := range []struct {
			label occupancy.WeekLabel
			c     *curve
		}{
			{occupancy.WeekBaseline, baseline[k]},
			{occupancy.WeekMatch, match[k]},
		} {
			area, err := integrateCurve(side.c.hours, side.c.values)
			if err != nil {
				return nil, fmt.Errorf("%w: %s/%s %s", err, k.country, k.facility, side.label)
			}
			out = append(out, occupancy.LongResultRow{
				Country: k.country, Facility: k.facility,
				Week: side.label, Value: area,
			})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Week != out[j].Week {
			return out[i].Week < out[j].Week
		}
		if out[i].Facility != out[j].Facility {
			return out[i].Facility < out[j].Facility
		}
		return out[i].Country < out[j].Country
	})
	return out, nil
}

// integrateCurve uses Simpson's rule, falling back to the trapezoid rule
// when only two samples exist.
func integrateCurve(hours, values []float64) (float64, error) {
	switch n := len(hours); {
	case n < 2:
		return 0, fmt.Errorf("%w: %d time-of-day samples, need at least 2", ErrInsufficientData, n)
	case n == 2:
		return integrate.Trapezoidal(hours, values), nil
	default:
		return integrate.Simpsons(hours, values), nil
	}
}

type pivotKey struct {
	country  string
	facility string
	minute   int
}

// pivot widens records into one row per facility, or per facility and
// minute of day when byTime is set. Rows come back sorted by country,
// facility and time of day.
func pivot(records []occupancy.WindowedRecord, byTime bool) ([]*occupancy.WideRow, error) {
	index := make(map[pivotKey]*occupancy.WideRow)
	var rows []*occupancy.WideRow

	for _, r := range records {
		if r.Week < 1 || r.Week > occupancy.MatchWeek {
			return nil, fmt.Errorf("analysis: week %d out of range for %s/%s", r.Week, r.Country, r.Facility)
		}
		k := pivotKey{country: r.Country, facility: r.Facility}
		if byTime {
			k.minute = r.Timestamp.Hour()*60 + r.Timestamp.Minute()
		}
		row, ok := index[k]
		if !ok {
			row = &occupancy.WideRow{Country: r.Country, Facility: r.Facility}
			if byTime {
				row.Hour = float64(r.Timestamp.Hour()) + float64(r.Timestamp.Minute())/60
			}
			index[k] = row
			rows = append(rows, row)
		}
		if row.Present[r.Week-1] {
			return nil, fmt.Errorf("%w: %s/%s week %d at %s", ErrDuplicateSample,
				r.Country, r.Facility, r.Week, r.Timestamp.Format("15:04"))
		}
		row.Weeks[r.Week-1] = r.Occupancy
		row.Present[r.Week-1] = true
	}

	for _, row := range rows {
		var sampled []float64
		for w := 1; w <= occupancy.BaselineWeeks; w++ {
			if v, ok := row.Week(w); ok {
				sampled = append(sampled, v)
			}
		}
		if len(sampled) > 0 {
			row.Baseline = stat.Mean(sampled, nil)
			row.HasBaseline = true
		}
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Country != rows[j].Country {
			return rows[i].Country < rows[j].Country
		}
		if rows[i].Facility != rows[j].Facility {
			return rows[i].Facility < rows[j].Facility
		}
		return rows[i].Hour < rows[j].Hour
	})
	return rows, nil
}

// normalizeRows divides w1-6 and w7 by the mean w1-6 of each row's baseline
// group, so every group's mean baseline becomes 1.
func normalizeRows(rows []*occupancy.WideRow, baselines BaselineGroups) error {
	sampled := make(map[string][]float64)
	groups := make([]string, len(rows))
	for i, row := range rows {
		group, err := baselines.Group(row.Country)
		if err != nil {
			return err
		}
		groups[i] = group
		if row.HasBaseline {
			sampled[group] = append(sampled[group], row.Baseline)
		}
	}

	means := make(map[string]float64, len(sampled))
	for group, values := range sampled {
		means[group] = stat.Mean(values, nil)
	}

	for i, row := range rows {
		mean, ok := means[groups[i]]
		if !ok || mean == 0 || math.IsNaN(mean) {
			return fmt.Errorf("%w: no baseline occupancy to normalise group %q", ErrInsufficientData, groups[i])
		}
		row.Baseline /= mean
		row.Weeks[occupancy.MatchWeek-1] /= mean
	}
	return nil
}
