package occupancy

import "strings"

// Metric selects how a day of occupancy is summarised.
type Metric int

const (
	// MetricKickoff samples occupancy at the kick-off hour.
	MetricKickoff Metric = iota + 1
	// MetricAUC integrates the occupancy curve over the whole day.
	MetricAUC
)

func (m Metric) String() string {
	switch m {
	case MetricKickoff:
		return "kick-off"
	case MetricAUC:
		return "auc"
	default:
		return "unknown"
	}
}

// LookupMetric resolves an external metric name. The bool is false for
// anything that is not a known metric.
func LookupMetric(name string) (Metric, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "kick-off", "kickoff":
		return MetricKickoff, true
	case "auc":
		return MetricAUC, true
	}
	return 0, false
}
