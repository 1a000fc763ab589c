package analysis

import (
	"time"

	"match-occupancy/models/occupancy"
)

// Friday of England v Scotland, Euro 2020.
var matchDay = time.Date(2021, 6, 18, 0, 0, 0, 0, time.UTC)

// weekDay returns the date of window week w (1..7) ending on matchDay.
func weekDay(w int) time.Time {
	return matchDay.AddDate(0, 0, -7*(occupancy.MatchWeek-w))
}

// hourly builds windowed records for one facility, one sample per hour for
// every week of the window.
func hourly(country, gym string, value func(week, hour int) float64) []occupancy.WindowedRecord {
	var out []occupancy.WindowedRecord
	for w := 1; w <= occupancy.MatchWeek; w++ {
		day := weekDay(w)
		for h := 0; h < 24; h++ {
			out = append(out, occupancy.WindowedRecord{
				Record: occupancy.Record{
					Timestamp: day.Add(time.Duration(h) * time.Hour),
					Country:   country,
					Facility:  gym,
					Occupancy: value(w, h),
				},
				Week: w,
			})
		}
	}
	return out
}

func constant(v float64) func(week, hour int) float64 {
	return func(int, int) float64 { return v }
}

func record(country, gym string, at time.Time, v float64) occupancy.Record {
	return occupancy.Record{Timestamp: at, Country: country, Facility: gym, Occupancy: v}
}
