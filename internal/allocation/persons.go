package allocation

import "sort"

// Persons returns the distinct people in facts, sorted.
func Persons(facts []Fact) []string {
	seen := make(map[string]bool)
	var names []string
	for _, f := range facts {
		if !seen[f.Person] {
			seen[f.Person] = true
			names = append(names, f.Person)
		}
	}
	sort.Strings(names)
	return names
}

// FilterPersons keeps the facts of the given people. An empty list keeps all.
func FilterPersons(facts []Fact, persons []string) []Fact {
	if len(persons) == 0 {
		return facts
	}
	keep := make(map[string]bool, len(persons))
	for _, p := range persons {
		keep[p] = true
	}
	var out []Fact
	for _, f := range facts {
		if keep[f.Person] {
			out = append(out, f)
		}
	}
	return out
}

// Load is one person's summed utilization across projects in a week.
type Load struct {
	Person      string
	Week        string
	Utilization float64
	Projects    []string
}

// WeeklyLoad sums bucket utilization per person for the given week label.
// The result is sorted by person.
func WeeklyLoad(buckets []Bucket, week string) []Load {
	byPerson := make(map[string]*Load)
	for _, b := range buckets {
		if b.Week != week {
			continue
		}
		l, ok := byPerson[b.Person]
		if !ok {
			l = &Load{Person: b.Person, Week: week}
			byPerson[b.Person] = l
		}
		l.Utilization += b.Utilization
		l.Projects = append(l.Projects, b.Project)
	}

	loads := make([]Load, 0, len(byPerson))
	for _, l := range byPerson {
		loads = append(loads, *l)
	}
	sort.Slice(loads, func(i, j int) bool { return loads[i].Person < loads[j].Person })
	return loads
}

// Overallocated returns the people whose load in week exceeds threshold.
func Overallocated(buckets []Bucket, week string, threshold float64) []Load {
	var over []Load
	for _, l := range WeeklyLoad(buckets, week) {
		if l.Utilization > threshold {
			over = append(over, l)
		}
	}
	return over
}
