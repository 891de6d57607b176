// Package calendar holds the academic calendar and the month labels that
// key planning data.
package calendar

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed calendar.yaml
var defaultCalendar []byte

var (
	// ErrInvalidRange is returned when a planning horizon ends before it starts.
	ErrInvalidRange = errors.New("end month must be after start month")
	// ErrInvalidType is returned for an unknown event or holiday type.
	ErrInvalidType = errors.New("unknown calendar type")
	// ErrInvalidLabel is returned for a month label that cannot be parsed.
	ErrInvalidLabel = errors.New("invalid month label")
)

// EventType classifies calendar events.
type EventType string

const (
	EventAcademic EventType = "academic"
	EventHoliday  EventType = "holiday"
	EventExam     EventType = "exam"
)

// HolidayType classifies holidays.
type HolidayType string

const (
	HolidayNational HolidayType = "national"
	HolidayRegional HolidayType = "regional"
	HolidaySchool   HolidayType = "school"
)

// Event is a dated school event.
type Event struct {
	ID       string    `json:"id" yaml:"id"`
	Title    string    `json:"title" yaml:"title"`
	Date     Date      `json:"date" yaml:"date"`
	Type     EventType `json:"type" yaml:"type"`
	Location string    `json:"location,omitempty" yaml:"location,omitempty"`
}

// Holiday recurs every year on the same month and day.
type Holiday struct {
	Month time.Month  `json:"month" yaml:"month"`
	Day   int         `json:"day" yaml:"day"`
	Name  string      `json:"name" yaml:"name"`
	Type  HolidayType `json:"type" yaml:"type"`
}

// Date is a calendar day encoded as YYYY-MM-DD.
type Date struct{ time.Time }

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalYAML(node *yaml.Node) error {
	t, err := time.Parse(dateLayout, node.Value)
	if err != nil {
		return fmt.Errorf("date %q: %w", node.Value, err)
	}
	d.Time = t
	return nil
}

// Calendar is the loaded academic calendar.
type Calendar struct {
	Events   []Event   `yaml:"events"`
	Holidays []Holiday `yaml:"holidays"`
}

// Load reads the calendar at path, or the built-in calendar when path is empty.
func Load(path string) (*Calendar, error) {
	data := defaultCalendar
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading calendar: %w", err)
		}
	}

	var c Calendar
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing calendar: %w", err)
	}
	for _, e := range c.Events {
		if _, err := ParseEventType(string(e.Type)); err != nil {
			return nil, fmt.Errorf("event %q: %w", e.ID, err)
		}
	}
	for _, h := range c.Holidays {
		if h.Month < time.January || h.Month > time.December || h.Day < 1 || h.Day > 31 {
			return nil, fmt.Errorf("holiday %q: invalid date %d/%d", h.Name, h.Month, h.Day)
		}
	}
	slices.SortStableFunc(c.Events, func(a, b Event) int { return a.Date.Compare(b.Date.Time) })
	return &c, nil
}

// ParseEventType accepts the event types, and "" or "all" for no filter.
func ParseEventType(s string) (EventType, error) {
	switch EventType(s) {
	case "", "all":
		return "", nil
	case EventAcademic, EventHoliday, EventExam:
		return EventType(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidType, s)
}

// EventsOf returns the events of type t in date order. An empty t returns all.
func (c *Calendar) EventsOf(t EventType) []Event {
	out := make([]Event, 0, len(c.Events))
	for _, e := range c.Events {
		if t == "" || e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

// HolidaysIn returns the holidays of month sorted by day.
func (c *Calendar) HolidaysIn(month time.Month) []Holiday {
	out := make([]Holiday, 0)
	for _, h := range c.Holidays {
		if h.Month == month {
			out = append(out, h)
		}
	}
	slices.SortStableFunc(out, func(a, b Holiday) int { return a.Day - b.Day })
	return out
}

var labelLayouts = []string{"January 2006", "Jan 2006", "2006-01", "01/2006"}

// ParseLabel parses a month label such as "june 2024", "Jun 2024" or
// "2024-06" to the first day of that month.
func ParseLabel(label string) (time.Time, error) {
	s := cases.Title(language.English).String(strings.Join(strings.Fields(label), " "))
	for _, layout := range labelLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidLabel, label)
}

// NormalizeLabel rewrites a month label into the canonical "June 2024" form
// used in storage keys.
func NormalizeLabel(label string) (string, error) {
	t, err := ParseLabel(label)
	if err != nil {
		return "", err
	}
	return Label(t), nil
}

// Label formats the month of t as a canonical label.
func Label(t time.Time) string {
	return t.Format("January 2006")
}

// MonthsBetween returns the labels of every month from start to end
// inclusive. end must fall in a later month than start.
func MonthsBetween(start, end time.Time) ([]string, error) {
	from := time.Date(start.Year(), start.Month(), 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(end.Year(), end.Month(), 1, 0, 0, 0, 0, time.UTC)
	if !to.After(from) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidRange, Label(from), Label(to))
	}

	var months []string
	for m := from; !m.After(to); m = m.AddDate(0, 1, 0) {
		months = append(months, Label(m))
	}
	return months, nil
}
