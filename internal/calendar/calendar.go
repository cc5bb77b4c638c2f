package calendar

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	ical "github.com/emersion/go-ical"

	"github.com/christopherklint97/asananas/internal/allocation"
)

// PropAllocation carries the allocation text of an event.
const PropAllocation = "X-ALLOCATION"

// Source reads work items from an iCalendar feed: a URL or a file path.
type Source struct {
	Location   string
	HTTPClient *http.Client
}

func (s *Source) Name() string {
	return "ics:" + s.Location
}

func (s *Source) open(ctx context.Context) (io.ReadCloser, error) {
	if !strings.HasPrefix(s.Location, "http://") && !strings.HasPrefix(s.Location, "https://") {
		f, err := os.Open(s.Location)
		if err != nil {
			return nil, fmt.Errorf("opening calendar file: %w", err)
		}
		return f, nil
	}

	client := s.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching calendar: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("calendar fetch returned status %d", resp.StatusCode)
	}
	return resp.Body, nil
}

// WorkItems turns every VEVENT and VTODO of the feed into a work item.
func (s *Source) WorkItems(ctx context.Context) ([]allocation.WorkItem, error) {
	r, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Decode(r)
}

func Decode(r io.Reader) ([]allocation.WorkItem, error) {
	dec := ical.NewDecoder(r)
	var items []allocation.WorkItem

	for {
		cal, err := dec.Decode()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parsing calendar: %w", err)
		}

		for _, component := range cal.Children {
			if component.Name != ical.CompEvent && component.Name != ical.CompToDo {
				continue
			}
			item, err := workItem(component)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
	}

	return items, nil
}

func workItem(c *ical.Component) (allocation.WorkItem, error) {
	uid, _ := c.Props.Text(ical.PropUID)
	summary, _ := c.Props.Text(ical.PropSummary)
	status, _ := c.Props.Text(ical.PropStatus)

	start, err := c.Props.DateTime(ical.PropDateTimeStart, time.UTC)
	if err != nil {
		return allocation.WorkItem{}, fmt.Errorf("event %q: parsing start: %w", summary, err)
	}

	endProp := ical.PropDateTimeEnd
	if c.Name == ical.CompToDo {
		endProp = ical.PropDue
	}
	end, err := c.Props.DateTime(endProp, time.UTC)
	if err != nil {
		return allocation.WorkItem{}, fmt.Errorf("event %q: parsing end: %w", summary, err)
	}

	item := allocation.WorkItem{
		ID:             uid,
		Name:           summary,
		Completed:      strings.EqualFold(status, "COMPLETED"),
		AllocationText: allocationText(c),
	}
	if !start.IsZero() {
		item.StartDate = allocation.FormatDate(start)
	}
	if due := dueDate(start, end); !due.IsZero() {
		item.DueDate = allocation.FormatDate(due)
	}
	return item, nil
}

// dueDate converts an exclusive end boundary into the last day covered. An end
// at midnight after the start means the previous day; a missing end means the
// start day.
func dueDate(start, end time.Time) time.Time {
	if end.IsZero() {
		return start
	}
	if end.After(start) && end.Hour() == 0 && end.Minute() == 0 && end.Second() == 0 {
		return end.AddDate(0, 0, -1)
	}
	return end
}

func allocationText(c *ical.Component) *string {
	if prop := c.Props.Get(PropAllocation); prop != nil {
		v, err := prop.Text()
		if err == nil {
			return &v
		}
	}

	desc, _ := c.Props.Text(ical.PropDescription)
	for _, line := range strings.Split(desc, "\n") {
		if rest, ok := strings.CutPrefix(strings.TrimSpace(line), "Allocation:"); ok {
			v := strings.TrimSpace(rest)
			return &v
		}
	}
	return nil
}
