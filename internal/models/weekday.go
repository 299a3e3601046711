package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// WeekdaySet is a set of instructional weekdays, Monday through Friday.
type WeekdaySet uint8

var weekdayNames = map[string]time.Weekday{
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
}

// DefaultWeekdays is {Mon, Wed, Fri}.
func DefaultWeekdays() WeekdaySet {
	return NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)
}

// NewWeekdaySet builds a set; weekends are ignored.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= time.Monday && d <= time.Friday {
			s |= 1 << uint(d)
		}
	}
	return s
}

// ParseWeekdays parses a comma-separated list of weekday codes (1=Mon .. 5=Fri) or names.
// An empty string yields an empty set.
func ParseWeekdays(s string) (WeekdaySet, error) {
	var set WeekdaySet
	if strings.TrimSpace(s) == "" {
		return set, nil
	}
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := weekdayNames[part]; ok {
			set |= 1 << uint(wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < int(time.Monday) || num > int(time.Friday) {
			return 0, fmt.Errorf("invalid weekday: %s", part)
		}
		set |= 1 << uint(num)
	}
	return set, nil
}

// Contains reports whether wd is enabled.
func (s WeekdaySet) Contains(wd time.Weekday) bool {
	return s&(1<<uint(wd)) != 0
}

// IsEmpty reports whether no weekday is enabled.
func (s WeekdaySet) IsEmpty() bool {
	return s == 0
}

// OrDefault returns the default set when s is empty.
func (s WeekdaySet) OrDefault() WeekdaySet {
	if s.IsEmpty() {
		return DefaultWeekdays()
	}
	return s
}

// Days lists the enabled weekdays in calendar order.
func (s WeekdaySet) Days() []time.Weekday {
	var days []time.Weekday
	for d := time.Monday; d <= time.Friday; d++ {
		if s.Contains(d) {
			days = append(days, d)
		}
	}
	return days
}

// String renders the set as comma-joined codes, e.g. "1,3,5".
func (s WeekdaySet) String() string {
	parts := make([]string, 0, 5)
	for _, d := range s.Days() {
		parts = append(parts, strconv.Itoa(int(d)))
	}
	return strings.Join(parts, ",")
}
