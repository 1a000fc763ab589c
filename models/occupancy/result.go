package occupancy

// WeekLabel identifies the side of the baseline/match comparison.
type WeekLabel string

const (
	WeekBaseline WeekLabel = "w1-6"
	WeekMatch    WeekLabel = "w7"
)

// BaselineWeeks is the number of same-weekday occurrences preceding the match.
const BaselineWeeks = 6

// MatchWeek is the week number assigned to the match day.
const MatchWeek = BaselineWeeks + 1

// LongResultRow is one observation handed to the statistical tests.
type LongResultRow struct {
	Country  string    `json:"country"`
	Facility string    `json:"gym"`
	Week     WeekLabel `json:"week"`
	Value    float64   `json:"value"`
}

// WideRow holds per-week values for one pivot key. Missing weeks have
// Present[i] == false.
type WideRow struct {
	Country  string
	Facility string
	// Hour is the time of day for the curve metric; zero for kick-off.
	Hour     float64
	Weeks    [MatchWeek]float64
	Present  [MatchWeek]bool
	Baseline float64
	// HasBaseline is false when none of w1..w6 were sampled.
	HasBaseline bool
}

// Week returns the value for week (1-based) and whether it was sampled.
func (w *WideRow) Week(week int) (float64, bool) {
	return w.Weeks[week-1], w.Present[week-1]
}
