package scheduler

import (
	"math"
	"sort"
	"time"

	"github.com/julianstephens/komaplan/internal/calendar"
	"github.com/julianstephens/komaplan/internal/logger"
	"github.com/julianstephens/komaplan/internal/utils"
)

// Allocation is the result of spreading a session total over candidate weeks.
type Allocation struct {
	// Sessions maps each assigned date to 1. Unassigned candidates are absent.
	Sessions map[time.Time]int
	// PerWeek is the allocated count per week, aligned with the input weeks after dedup.
	PerWeek    []int
	Requested  int
	Assignable int
	Dropped    int
}

// Total is the number of sessions actually assigned.
func (a Allocation) Total() int {
	return len(a.Sessions)
}

// Dates lists the assigned dates in ascending order.
func (a Allocation) Dates() []time.Time {
	dates := make([]time.Time, 0, len(a.Sessions))
	for d := range a.Sessions {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// Allocate spreads totalSessions over weeks as evenly as capacities allow, one
// session per date at most. Dates inside each week are filled in the order given,
// so buckets should come from calendar.GroupByWeek.
func Allocate(totalSessions float64, weeks []calendar.WeekBucket) Allocation {
	alloc := Allocation{Sessions: map[time.Time]int{}}
	if math.IsNaN(totalSessions) || totalSessions <= 0 || len(weeks) == 0 {
		return alloc
	}

	// Step 1: dedupe dates within each week and compute capacities
	buckets := make([][]time.Time, len(weeks))
	capacity := make([]int, len(weeks))
	totalCapacity := 0
	for i, w := range weeks {
		seen := make(map[time.Time]bool, len(w.Dates))
		for _, d := range w.Dates {
			d = utils.Day(d)
			if seen[d] {
				continue
			}
			seen[d] = true
			buckets[i] = append(buckets[i], d)
		}
		capacity[i] = len(buckets[i])
		totalCapacity += capacity[i]
	}

	// Step 2: clamp to what the one-session-per-day cap can hold
	requested := int(math.Round(totalSessions))
	assignable := requested
	if assignable > totalCapacity {
		assignable = totalCapacity
	}
	alloc.Requested = requested
	alloc.Assignable = assignable
	alloc.Dropped = requested - assignable
	if alloc.Dropped > 0 {
		logger.Info("Sessions exceed available school days, dropping the excess",
			"requested", requested, "capacity", totalCapacity, "dropped", alloc.Dropped)
	}
	alloc.PerWeek = make([]int, len(weeks))
	if assignable == 0 {
		return alloc
	}

	// Step 3: even split with cumulative largest-remainder extras
	n := len(weeks)
	base := assignable / n
	rem := assignable % n
	target := make([]int, n)
	for i := range target {
		target[i] = base + (i+1)*rem/n - i*rem/n
	}

	// Step 4: cap each week at its capacity
	deficit := 0
	for i := range target {
		alloc.PerWeek[i] = target[i]
		if alloc.PerWeek[i] > capacity[i] {
			deficit += alloc.PerWeek[i] - capacity[i]
			alloc.PerWeek[i] = capacity[i]
		}
	}

	// Step 5: sweep the deficit into weeks with spare capacity until none is left
	for deficit > 0 {
		moved := false
		for i := range alloc.PerWeek {
			if deficit == 0 {
				break
			}
			if alloc.PerWeek[i] < capacity[i] {
				alloc.PerWeek[i]++
				deficit--
				moved = true
			}
		}
		if !moved {
			break
		}
	}

	// Step 6: one session on each of the first PerWeek[i] dates
	for i, dates := range buckets {
		for _, d := range dates[:alloc.PerWeek[i]] {
			alloc.Sessions[d] = 1
		}
	}
	return alloc
}
