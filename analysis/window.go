package analysis

import (
	"fmt"
	"time"

	"match-occupancy/models/occupancy"
)

// DateLayout is the only accepted match date format.
const DateLayout = "2006-01-02"

// lookbackWeeks bounds how far before the match a same-weekday sample can be.
// One spare week lets the legacy week-8 correction apply.
const lookbackWeeks = occupancy.MatchWeek

// ParseEventDate parses a YYYY-MM-DD match date.
func ParseEventDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q: %v", ErrFormat, s, err)
	}
	return d, nil
}

// SelectWindow keeps the records that fall on the match weekday, up to and
// including the match date, and numbers them by week so the match day is
// week 7 and the six preceding occurrences are weeks 1-6.
func SelectWindow(records []occupancy.Record, eventDate time.Time) []occupancy.WindowedRecord {
	event := civilDate(eventDate)
	earliest := event.AddDate(0, 0, -7*lookbackWeeks)

	kept := make([]occupancy.WindowedRecord, 0, len(records))
	minWeek, maxWeek := 0, 0
	for _, r := range records {
		day := r.Day()
		if day.After(event) || day.Before(earliest) {
			continue
		}
		if day.Weekday() != event.Weekday() {
			continue
		}
		week := isoWeekIndex(day)
		if len(kept) == 0 || week < minWeek {
			minWeek = week
		}
		if len(kept) == 0 || week > maxWeek {
			maxWeek = week
		}
		kept = append(kept, occupancy.WindowedRecord{Record: r, Week: week})
	}
	if len(kept) == 0 {
		return kept
	}

	for i := range kept {
		kept[i].Week = kept[i].Week - minWeek + 1
	}

	// Week 8 shows up when the window holds one surplus week; shift down and
	// drop what lands on week 0.
	if maxWeek-minWeek+1 == 8 {
		out := kept[:0]
		for _, r := range kept {
			r.Week--
			if r.Week > 0 {
				out = append(out, r)
			}
		}
		kept = out
	}
	return kept
}

func civilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// isoWeekIndex numbers ISO (Monday-based) weeks continuously, so consecutive
// weeks differ by one even across a year boundary.
func isoWeekIndex(day time.Time) int {
	days := int(day.Unix() / 86400)
	// 1970-01-05 was the first Monday after the epoch.
	sinceMonday := (days - 4) % 7
	if sinceMonday < 0 {
		sinceMonday += 7
	}
	return (days - 4 - sinceMonday) / 7
}
