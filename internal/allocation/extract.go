package allocation

import (
	"regexp"
	"strconv"
)

// clausePattern is scanned across the whole text; anything between matches is
// ignored. Names are ASCII letters only, so "Jane Doe: 50%" yields "Doe".
var clausePattern = regexp.MustCompile(`([A-Za-z]+): ([0-9]+)(%|d)`)

// ParseClauses returns every allocation clause found in text, in order.
func ParseClauses(text string) []Clause {
	matches := clausePattern.FindAllStringSubmatch(text, -1)
	clauses := make([]Clause, 0, len(matches))
	for _, m := range matches {
		amount, err := strconv.ParseFloat(m[2], 64)
		if err != nil {
			continue
		}
		clauses = append(clauses, Clause{
			Person: m[1],
			Amount: amount,
			Unit:   Unit(m[3]),
		})
	}
	return clauses
}

// Extract expands work items into per-person, per-day facts.
//
// Items without allocation text are listed in Unallocated, items whose text
// holds no clause in Unparseable. A malformed start or due date fails the
// whole call and nothing is returned. A days clause on an item whose range has
// no work-days is reported in Invalid and the item is skipped.
func Extract(items []WorkItem, workDaysPerWeek int) (*Extraction, error) {
	if err := validWorkDays(workDaysPerWeek); err != nil {
		return nil, err
	}

	res := &Extraction{}
	for _, item := range items {
		if item.AllocationText == nil {
			res.Unallocated = append(res.Unallocated, item.Name)
			continue
		}

		clauses := ParseClauses(*item.AllocationText)
		if len(clauses) == 0 {
			res.Unparseable = append(res.Unparseable, item.Name)
			continue
		}

		start, err := ParseDate(item.StartDate)
		if err != nil {
			return nil, &DateFormatError{Value: item.StartDate, Field: "start date", Item: item.Name}
		}
		due, err := ParseDate(item.DueDate)
		if err != nil {
			return nil, &DateFormatError{Value: item.DueDate, Field: "due date", Item: item.Name}
		}

		days := WorkDays(start, due, workDaysPerWeek)
		if len(days) == 0 && !start.After(due) && hasDaysClause(clauses) {
			res.Invalid = append(res.Invalid, ItemError{ItemID: item.ID, Name: item.Name, Err: ErrZeroWorkDays})
			continue
		}

		for _, day := range days {
			for _, c := range clauses {
				res.Facts = append(res.Facts, Fact{
					Date:    day,
					Person:  c.Person,
					Project: item.Name,
					Load:    c.load(len(days)),
				})
			}
		}
	}

	return res, nil
}

func (c Clause) load(workDays int) float64 {
	if c.Unit == UnitDays {
		return c.Amount / float64(workDays)
	}
	return c.Amount / 100
}

func hasDaysClause(clauses []Clause) bool {
	for _, c := range clauses {
		if c.Unit == UnitDays {
			return true
		}
	}
	return false
}
