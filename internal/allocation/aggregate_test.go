package allocation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekLabel(t *testing.T) {
	cases := []struct {
		date string
		want string
	}{
		{"2023-01-02", "2023-CW01"},
		{"2023-01-01", "2022-CW52"},
		{"2021-01-01", "2020-CW53"},
		{"2024-12-30", "2025-CW01"},
		{"2023-03-15", "2023-CW11"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, WeekLabel(date(tc.date)), tc.date)
	}
}

func TestWeekLabel_SortsInCalendarOrder(t *testing.T) {
	prev := WeekLabel(date("2022-12-26"))
	for d := date("2023-01-02"); d.Year() < 2024; d = d.AddDate(0, 0, 7) {
		label := WeekLabel(d)
		assert.Less(t, prev, label)
		prev = label
	}
}

func TestAggregate_FullWeek(t *testing.T) {
	res, err := Extract([]WorkItem{{
		Name: "Launch", StartDate: "2023-01-02", DueDate: "2023-01-06",
		AllocationText: strPtr("Carol: 50%"),
	}}, 5)
	require.NoError(t, err)

	buckets, err := Aggregate(res.Facts, DefaultAggregateOptions(date("2023-01-02")))
	require.NoError(t, err)
	require.Len(t, buckets, 1)

	b := buckets[0]
	assert.Equal(t, "Carol", b.Person)
	assert.Equal(t, "Launch", b.Project)
	assert.Equal(t, "2023-CW01", b.Week)
	assert.Equal(t, 2023, b.ISOYear)
	assert.Equal(t, 1, b.ISOWeek)
	assert.Equal(t, date("2023-01-02"), b.WeekOf)
	assert.Equal(t, 5, b.Days)
	assert.InDelta(t, 0.5, b.Utilization, 1e-12)
}

func TestAggregate_PartialWeeksAreScaled(t *testing.T) {
	// Thursday to Tuesday: two work-days in each of two weeks.
	res, err := Extract([]WorkItem{{
		Name: "Rollout", StartDate: "2023-01-05", DueDate: "2023-01-10",
		AllocationText: strPtr("Fay: 50%, Gus: 4d"),
	}}, 5)
	require.NoError(t, err)

	buckets, err := Aggregate(res.Facts, DefaultAggregateOptions(date("2023-01-02")))
	require.NoError(t, err)
	require.Len(t, buckets, 4)

	got := make(map[string]Bucket)
	for _, b := range buckets {
		got[b.Person+"/"+b.Week] = b
	}

	assert.InDelta(t, 0.2, got["Fay/2023-CW01"].Utilization, 1e-12)
	assert.InDelta(t, 0.2, got["Fay/2023-CW02"].Utilization, 1e-12)
	assert.InDelta(t, 0.4, got["Gus/2023-CW01"].Utilization, 1e-12)
	assert.InDelta(t, 0.4, got["Gus/2023-CW02"].Utilization, 1e-12)
	assert.Equal(t, date("2023-01-05"), got["Gus/2023-CW01"].WeekOf)
	assert.Equal(t, date("2023-01-09"), got["Gus/2023-CW02"].WeekOf)
	assert.Equal(t, 2, got["Gus/2023-CW02"].Days)
}

func TestAggregate_EarliestFactWins(t *testing.T) {
	// Two items sharing a name land in one bucket; the earliest day's load is
	// taken and every fact counts towards the day total.
	facts := []Fact{
		{Date: date("2023-01-04"), Person: "Ann", Project: "Ops", Load: 0.3},
		{Date: date("2023-01-03"), Person: "Ann", Project: "Ops", Load: 0.7},
		{Date: date("2023-01-05"), Person: "Ann", Project: "Ops", Load: 0.1},
	}

	buckets, err := Aggregate(facts, DefaultAggregateOptions(date("2023-01-02")))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 0.7, buckets[0].Allocation)
	assert.Equal(t, 3, buckets[0].Days)
	assert.Equal(t, date("2023-01-03"), buckets[0].WeekOf)
	assert.InDelta(t, 0.7*3/5, buckets[0].Utilization, 1e-12)
}

func TestAggregate_EqualDatesKeepInputOrder(t *testing.T) {
	facts := []Fact{
		{Date: date("2023-01-03"), Person: "Ann", Project: "Ops", Load: 0.2},
		{Date: date("2023-01-03"), Person: "Ann", Project: "Ops", Load: 0.9},
	}

	buckets, err := Aggregate(facts, DefaultAggregateOptions(date("2023-01-02")))
	require.NoError(t, err)
	require.Len(t, buckets, 1)
	assert.Equal(t, 0.2, buckets[0].Allocation)
}

func TestAggregate_WindowBounds(t *testing.T) {
	ref := date("2023-01-02")
	facts := []Fact{
		{Date: date("2022-12-05"), Person: "Ann", Project: "A", Load: 1}, // 4 weeks back: excluded
		{Date: date("2022-12-12"), Person: "Ann", Project: "A", Load: 1}, // 3 weeks back: included
		{Date: date("2023-03-27"), Person: "Ann", Project: "A", Load: 1}, // 12 weeks ahead: included
		{Date: date("2023-04-03"), Person: "Ann", Project: "A", Load: 1}, // 13 weeks ahead: excluded
	}

	opts := DefaultAggregateOptions(ref)
	start, end := opts.Window()
	assert.Equal(t, "2022-CW49", start)
	assert.Equal(t, "2023-CW13", end)

	buckets, err := Aggregate(facts, opts)
	require.NoError(t, err)
	require.Len(t, buckets, 2)
	assert.Equal(t, "2022-CW50", buckets[0].Week)
	assert.Equal(t, "2023-CW13", buckets[1].Week)
}

func TestAggregate_SortedByWeekThenFirstAppearance(t *testing.T) {
	facts := []Fact{
		{Date: date("2023-01-10"), Person: "Zed", Project: "B", Load: 1},
		{Date: date("2023-01-03"), Person: "Zed", Project: "B", Load: 1},
		{Date: date("2023-01-03"), Person: "Ann", Project: "A", Load: 1},
		{Date: date("2023-01-10"), Person: "Ann", Project: "A", Load: 1},
	}

	buckets, err := Aggregate(facts, DefaultAggregateOptions(date("2023-01-02")))
	require.NoError(t, err)
	require.Len(t, buckets, 4)

	var order []string
	for _, b := range buckets {
		order = append(order, b.Week+"/"+b.Person)
	}
	assert.Equal(t, []string{"2023-CW01/Zed", "2023-CW01/Ann", "2023-CW02/Zed", "2023-CW02/Ann"}, order)
}

func TestAggregate_Idempotent(t *testing.T) {
	res, err := Extract([]WorkItem{
		{Name: "A", StartDate: "2023-01-02", DueDate: "2023-02-10", AllocationText: strPtr("Ann: 30%, Ben: 7d")},
		{Name: "B", StartDate: "2023-01-16", DueDate: "2023-01-27", AllocationText: strPtr("Ann: 60%")},
	}, 5)
	require.NoError(t, err)

	opts := DefaultAggregateOptions(date("2023-01-18"))
	first, err := Aggregate(res.Facts, opts)
	require.NoError(t, err)
	second, err := Aggregate(res.Facts, opts)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestAggregate_Errors(t *testing.T) {
	_, err := Aggregate(nil, AggregateOptions{WorkDaysPerWeek: 5})
	assert.ErrorIs(t, err, ErrMissingReferenceDate)

	opts := DefaultAggregateOptions(date("2023-01-02"))
	opts.WorkDaysPerWeek = 0
	_, err = Aggregate(nil, opts)
	assert.ErrorIs(t, err, ErrInvalidWorkDays)

	opts = DefaultAggregateOptions(date("2023-01-02"))
	opts.PastWeeks = -1
	_, err = Aggregate(nil, opts)
	assert.Error(t, err)
}

func TestAggregate_EmptyFacts(t *testing.T) {
	buckets, err := Aggregate(nil, DefaultAggregateOptions(date("2023-01-02")))
	require.NoError(t, err)
	assert.Empty(t, buckets)
}

func TestOverallocated(t *testing.T) {
	buckets := []Bucket{
		{Person: "Ann", Project: "A", Week: "2023-CW01", Utilization: 0.6},
		{Person: "Ann", Project: "B", Week: "2023-CW01", Utilization: 0.6},
		{Person: "Ben", Project: "A", Week: "2023-CW01", Utilization: 1.0},
		{Person: "Ann", Project: "A", Week: "2023-CW02", Utilization: 0.6},
	}

	over := Overallocated(buckets, "2023-CW01", 1.0)
	require.Len(t, over, 1)
	assert.Equal(t, "Ann", over[0].Person)
	assert.InDelta(t, 1.2, over[0].Utilization, 1e-12)
	assert.Equal(t, []string{"A", "B"}, over[0].Projects)

	assert.Empty(t, Overallocated(buckets, "2023-CW02", 1.0))
}

func TestFilterPersons(t *testing.T) {
	facts := []Fact{{Person: "Ann"}, {Person: "Ben"}, {Person: "Cid"}, {Person: "Ann"}}

	assert.Equal(t, facts, FilterPersons(facts, nil))
	assert.Len(t, FilterPersons(facts, []string{"Ann"}), 2)
	assert.Empty(t, FilterPersons(facts, []string{"Nobody"}))
	assert.Equal(t, []string{"Ann", "Ben", "Cid"}, Persons(facts))
}
