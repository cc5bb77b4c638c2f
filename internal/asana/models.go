package asana

import "github.com/christopherklint97/asananas/internal/allocation"

type Resource struct {
	GID  string `json:"gid"`
	Name string `json:"name"`
}

type Workspace = Resource

type Project = Resource

type CustomField struct {
	GID       string  `json:"gid"`
	Name      string  `json:"name"`
	TextValue *string `json:"text_value"`
}

type Task struct {
	GID             string        `json:"gid"`
	Name            string        `json:"name"`
	ResourceSubtype string        `json:"resource_subtype"`
	StartOn         *string       `json:"start_on"`
	DueOn           *string       `json:"due_on"`
	Completed       bool          `json:"completed"`
	Assignee        *Resource     `json:"assignee"`
	PermalinkURL    string        `json:"permalink_url"`
	CustomFields    []CustomField `json:"custom_fields"`
}

// Allocation returns the text value of the named custom field, or nil when
// the field is missing or unset.
func (t Task) Allocation(field string) *string {
	for _, cf := range t.CustomFields {
		if cf.Name == field {
			return cf.TextValue
		}
	}
	return nil
}

func (t Task) WorkItem(allocationField string) allocation.WorkItem {
	return allocation.WorkItem{
		ID:             t.GID,
		Name:           t.Name,
		StartDate:      deref(t.StartOn),
		DueDate:        deref(t.DueOn),
		Completed:      t.Completed,
		AllocationText: t.Allocation(allocationField),
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
