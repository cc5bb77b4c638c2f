package allocation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidDateFormat    = errors.New("invalid date format, expected YYYY-MM-DD")
	ErrZeroWorkDays         = errors.New("days allocation over a range without work-days")
	ErrInvalidWorkDays      = errors.New("work days per week must be between 1 and 7")
	ErrMissingReferenceDate = errors.New("reference date is required")
)

// DateFormatError reports a date string that is not YYYY-MM-DD.
type DateFormatError struct {
	Value string
	Field string
	Item  string
}

func (e *DateFormatError) Error() string {
	if e.Item != "" {
		return fmt.Sprintf("%s of %q: %q: %v", e.Field, e.Item, e.Value, ErrInvalidDateFormat)
	}
	return fmt.Sprintf("%q: %v", e.Value, ErrInvalidDateFormat)
}

func (e *DateFormatError) Unwrap() error { return ErrInvalidDateFormat }

// ItemError ties an item-level failure to the work item that caused it.
type ItemError struct {
	ItemID string
	Name   string
	Err    error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("%s: %v", e.Name, e.Err)
}

func (e ItemError) Unwrap() error { return e.Err }
