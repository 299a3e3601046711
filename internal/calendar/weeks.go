package calendar

import (
	"sort"
	"time"

	"github.com/julianstephens/komaplan/internal/constants"
	"github.com/julianstephens/komaplan/internal/utils"
)

// WeekBucket holds the candidate dates of one Monday-start week for one grade.
type WeekBucket struct {
	Key   time.Time   // Monday of the week
	Dates []time.Time // unique, weekday-priority order
}

// Capacity is the number of dates that can each take one session.
func (b WeekBucket) Capacity() int {
	return len(b.Dates)
}

// WeekdayPriority ranks weekdays for session placement: Mon, Wed, Fri, Tue, Thu.
func WeekdayPriority(wd time.Weekday) int {
	switch wd {
	case time.Monday:
		return 0
	case time.Wednesday:
		return 1
	case time.Friday:
		return 2
	case time.Tuesday:
		return 3
	case time.Thursday:
		return 4
	default:
		return constants.UnlistedWeekdayPriority
	}
}

// SortWeekDatesByPriority orders dates by weekday priority, ties by date ascending.
// The input slice is not modified.
func SortWeekDatesByPriority(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	copy(out, dates)
	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := WeekdayPriority(out[i].Weekday()), WeekdayPriority(out[j].Weekday())
		if pi != pj {
			return pi < pj
		}
		return out[i].Before(out[j])
	})
	return out
}

// GroupByWeek buckets dates by WeekKey. Buckets come back in week order with
// duplicate dates removed and dates in priority order.
func GroupByWeek(dates []time.Time) []WeekBucket {
	byKey := make(map[time.Time][]time.Time)
	seen := make(map[time.Time]bool, len(dates))
	for _, d := range dates {
		d = utils.Day(d)
		if seen[d] {
			continue
		}
		seen[d] = true
		key := utils.WeekKey(d)
		byKey[key] = append(byKey[key], d)
	}

	keys := make([]time.Time, 0, len(byKey))
	for k := range byKey {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i].Before(keys[j]) })

	buckets := make([]WeekBucket, 0, len(keys))
	for _, k := range keys {
		buckets = append(buckets, WeekBucket{Key: k, Dates: SortWeekDatesByPriority(byKey[k])})
	}
	return buckets
}
