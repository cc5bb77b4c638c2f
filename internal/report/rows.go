// Package report turns weekly buckets into rows for the terminal and for
// export.
package report

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	"github.com/christopherklint97/asananas/internal/allocation"
)

// Row is the exported shape of one weekly bucket.
type Row struct {
	Person      string  `json:"person" jsonschema:"description=Name taken from the allocation clause"`
	Project     string  `json:"project" jsonschema:"description=Name of the work item"`
	Week        string  `json:"week" jsonschema:"pattern=^[0-9]{4}-CW[0-9]{2}$,description=ISO week label"`
	WeekOf      string  `json:"week_of" jsonschema:"format=date,description=Earliest work-day of the item in this week"`
	Days        int     `json:"days" jsonschema:"minimum=1,maximum=7,description=Work-days of the item in this week"`
	Allocation  float64 `json:"allocation" jsonschema:"minimum=0,description=Daily load before weekly scaling"`
	Utilization float64 `json:"utilization" jsonschema:"minimum=0,description=Share of the person's week"`
}

func Rows(buckets []allocation.Bucket) []Row {
	rows := make([]Row, len(buckets))
	for i, b := range buckets {
		rows[i] = Row{
			Person:      b.Person,
			Project:     b.Project,
			Week:        b.Week,
			WeekOf:      allocation.FormatDate(b.WeekOf),
			Days:        b.Days,
			Allocation:  b.Allocation,
			Utilization: b.Utilization,
		}
	}
	return rows
}

// Schema returns the JSON schema describing an exported list of rows.
func Schema() ([]byte, error) {
	r := &jsonschema.Reflector{
		DoNotReference: true,
	}
	s := r.Reflect(&[]Row{})
	s.Title = "asananas weekly utilization"
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding schema: %w", err)
	}
	return data, nil
}
