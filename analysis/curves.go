package analysis

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"match-occupancy/models/occupancy"
)

// BandPoint summarises the baseline weeks at one time of day.
type BandPoint struct {
	Hour  float64 `json:"hour"`
	Mean  float64 `json:"mean"`
	Std   float64 `json:"std"`
	SEM   float64 `json:"sem"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// CurvePoint is the match day occupancy at one time of day.
type CurvePoint struct {
	Hour      float64 `json:"hour"`
	Occupancy float64 `json:"occupancy"`
}

// Curves is what the match plot draws for one country.
type Curves struct {
	Country  string       `json:"country"`
	Baseline []BandPoint  `json:"baseline"`
	Match    []CurvePoint `json:"match"`
}

// MatchCurves averages a country's facilities per timestamp, then builds the
// 95% confidence band of the baseline weeks and the match day curve.
func MatchCurves(windowed []occupancy.WindowedRecord, country string) (Curves, error) {
	type stamp struct {
		unix   int64
		minute int
		hour   float64
	}
	baselineAt := make(map[stamp][]float64)
	matchAt := make(map[stamp][]float64)

	for _, r := range windowed {
		if r.Country != country {
			continue
		}
		ts := r.Timestamp
		s := stamp{
			unix:   ts.Unix(),
			minute: ts.Hour()*60 + ts.Minute(),
			hour:   float64(ts.Hour()) + float64(ts.Minute())/60,
		}
		switch {
		case r.Week >= 1 && r.Week <= occupancy.BaselineWeeks:
			baselineAt[s] = append(baselineAt[s], r.Occupancy)
		case r.Week == occupancy.MatchWeek:
			matchAt[s] = append(matchAt[s], r.Occupancy)
		}
	}
	if len(baselineAt) == 0 && len(matchAt) == 0 {
		return Curves{}, fmt.Errorf("%w: no samples for %q", ErrInsufficientData, country)
	}

	// per time of day, the facility-averaged value of each baseline day
	byMinute := make(map[int][]float64)
	hourOf := make(map[int]float64)
	for s, values := range baselineAt {
		byMinute[s.minute] = append(byMinute[s.minute], stat.Mean(values, nil))
		hourOf[s.minute] = s.hour
	}

	z := distuv.UnitNormal.Quantile(0.975)
	curves := Curves{Country: country}
	for minute, days := range byMinute {
		p := BandPoint{Hour: hourOf[minute]}
		if len(days) > 1 {
			p.Mean, p.Std = stat.MeanStdDev(days, nil)
			p.SEM = stat.StdErr(p.Std, float64(len(days)))
		} else {
			p.Mean = days[0]
		}
		p.Lower = p.Mean - z*p.SEM
		p.Upper = p.Mean + z*p.SEM
		curves.Baseline = append(curves.Baseline, p)
	}
	sort.Slice(curves.Baseline, func(i, j int) bool {
		return curves.Baseline[i].Hour < curves.Baseline[j].Hour
	})

	var stamps []stamp
	for s := range matchAt {
		stamps = append(stamps, s)
	}
	sort.Slice(stamps, func(i, j int) bool { return stamps[i].unix < stamps[j].unix })
	for _, s := range stamps {
		curves.Match = append(curves.Match, CurvePoint{
			Hour:      s.hour,
			Occupancy: stat.Mean(matchAt[s], nil),
		})
	}
	return curves, nil
}
