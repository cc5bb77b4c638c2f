package allocation

import (
	"fmt"
	"sort"
	"time"
)

type AggregateOptions struct {
	WorkDaysPerWeek int
	ReferenceDate   time.Time
	PastWeeks       int
	FutureWeeks     int
}

// DefaultAggregateOptions shows four weeks back and twelve ahead of ref.
func DefaultAggregateOptions(ref time.Time) AggregateOptions {
	return AggregateOptions{
		WorkDaysPerWeek: 5,
		ReferenceDate:   ref,
		PastWeeks:       4,
		FutureWeeks:     12,
	}
}

// Window returns the week labels bounding the display window. A bucket is
// shown when start < label <= end, so the week exactly PastWeeks back is cut.
func (o AggregateOptions) Window() (start, end string) {
	start = WeekLabel(o.ReferenceDate.AddDate(0, 0, -7*o.PastWeeks))
	end = WeekLabel(o.ReferenceDate.AddDate(0, 0, 7*o.FutureWeeks))
	return start, end
}

type bucketKey struct {
	person  string
	project string
	week    string
}

type accumulator struct {
	first   Fact
	weekOf  time.Time
	count   int
	isoYear int
	isoWeek int
}

// Aggregate rolls per-day facts up into per-week buckets.
//
// Each bucket takes the load of its earliest fact (ties go to input order),
// scaled by the number of facts in the week over the work-days per week. Rows
// outside the window are dropped and the rest are ordered by week label.
func Aggregate(facts []Fact, opts AggregateOptions) ([]Bucket, error) {
	if err := validWorkDays(opts.WorkDaysPerWeek); err != nil {
		return nil, err
	}
	if opts.ReferenceDate.IsZero() {
		return nil, ErrMissingReferenceDate
	}
	if opts.PastWeeks < 0 || opts.FutureWeeks < 0 {
		return nil, fmt.Errorf("window weeks must not be negative: past=%d future=%d", opts.PastWeeks, opts.FutureWeeks)
	}

	var order []bucketKey
	groups := make(map[bucketKey]*accumulator)
	for _, f := range facts {
		key := bucketKey{person: f.Person, project: f.Project, week: WeekLabel(f.Date)}
		acc, ok := groups[key]
		if !ok {
			year, week := f.Date.ISOWeek()
			acc = &accumulator{first: f, weekOf: f.Date, isoYear: year, isoWeek: week}
			groups[key] = acc
			order = append(order, key)
		}
		acc.count++
		if f.Date.Before(acc.first.Date) {
			acc.first = f
		}
		if f.Date.Before(acc.weekOf) {
			acc.weekOf = f.Date
		}
	}

	windowStart, windowEnd := opts.Window()
	buckets := make([]Bucket, 0, len(order))
	for _, key := range order {
		if key.week <= windowStart || key.week > windowEnd {
			continue
		}
		acc := groups[key]
		buckets = append(buckets, Bucket{
			Person:      key.person,
			Project:     key.project,
			Week:        key.week,
			ISOYear:     acc.isoYear,
			ISOWeek:     acc.isoWeek,
			WeekOf:      acc.weekOf,
			Days:        acc.count,
			Allocation:  acc.first.Load,
			Utilization: acc.first.Load * float64(acc.count) / float64(opts.WorkDaysPerWeek),
		})
	}

	sort.SliceStable(buckets, func(i, j int) bool {
		return buckets[i].Week < buckets[j].Week
	})

	return buckets, nil
}
