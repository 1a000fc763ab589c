package occupancy

import (
	"fmt"
	"time"
)

// Record is a single occupancy sample for a facility.
type Record struct {
	Timestamp time.Time `json:"datetime"`
	Country   string    `json:"country"`
	Facility  string    `json:"gym"`
	Occupancy float64   `json:"occupancy"`
}

// WindowedRecord is a Record tagged with its week inside a match window.
// Weeks 1-6 are the baseline, week 7 is the match day.
type WindowedRecord struct {
	Record
	Week int `json:"week"`
}

func (r Record) ToString() string {
	return fmt.Sprintf("Record(country=%s, gym=%s, at=%s, occupancy=%.1f)",
		r.Country, r.Facility, r.Timestamp.Format("2006-01-02 15:04"), r.Occupancy)
}

// Day returns the civil date of the sample, as a UTC midnight.
func (r Record) Day() time.Time {
	y, m, d := r.Timestamp.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
