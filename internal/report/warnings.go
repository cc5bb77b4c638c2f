package report

import (
	"fmt"

	"github.com/christopherklint97/asananas/internal/allocation"
)

// Warnings lists the work items that contributed nothing to the report.
func Warnings(ex *allocation.Extraction) []string {
	if ex == nil {
		return nil
	}
	var out []string
	for _, name := range ex.Unallocated {
		out = append(out, fmt.Sprintf("%s: no allocation set", name))
	}
	for _, name := range ex.Unparseable {
		out = append(out, fmt.Sprintf("%s: allocation could not be parsed", name))
	}
	for _, e := range ex.Invalid {
		out = append(out, e.Error())
	}
	return out
}
