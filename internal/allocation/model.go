package allocation

import "time"

// WorkItem is one scheduled unit of planning as supplied by a task source.
// Dates are YYYY-MM-DD strings exactly as the source reports them.
type WorkItem struct {
	ID             string  `json:"id" yaml:"id"`
	Name           string  `json:"name" yaml:"name"`
	StartDate      string  `json:"start_on" yaml:"start_on"`
	DueDate        string  `json:"due_on" yaml:"due_on"`
	Completed      bool    `json:"completed" yaml:"completed"`
	AllocationText *string `json:"allocation,omitempty" yaml:"allocation,omitempty"`
}

type Unit string

const (
	UnitPercent Unit = "%"
	UnitDays    Unit = "d"
)

// Clause is one "person: amount(unit)" fragment of an allocation text.
type Clause struct {
	Person string
	Amount float64
	Unit   Unit
}

// Fact is the load one clause puts on a person for a single work-day.
// Load is a fraction of one day's capacity (1.0 = fully booked).
type Fact struct {
	Date    time.Time
	Person  string
	Project string
	Load    float64
}

// Bucket is the utilization of one person on one project during one ISO week.
type Bucket struct {
	Person      string
	Project     string
	Week        string
	ISOYear     int
	ISOWeek     int
	WeekOf      time.Time
	Days        int
	Allocation  float64
	Utilization float64
}

// Extraction is the result of expanding a set of work items.
type Extraction struct {
	Facts       []Fact
	Unallocated []string
	Unparseable []string
	Invalid     []ItemError
}
