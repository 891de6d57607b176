package calendar_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/p-n-ai/unit-planner/internal/calendar"
)

func load(t *testing.T) *calendar.Calendar {
	t.Helper()
	c, err := calendar.Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	return c
}

func TestEventsOf(t *testing.T) {
	c := load(t)

	if got := c.EventsOf(""); len(got) != 5 {
		t.Errorf("EventsOf(all) = %d events, want 5", len(got))
	}
	exams := c.EventsOf(calendar.EventExam)
	if len(exams) != 1 || exams[0].Title != "Diagnostic Assessments" {
		t.Errorf("EventsOf(exam) = %+v", exams)
	}
	academic := c.EventsOf(calendar.EventAcademic)
	if len(academic) != 3 {
		t.Errorf("EventsOf(academic) = %d, want 3", len(academic))
	}
	for i := 1; i < len(academic); i++ {
		if academic[i].Date.Before(academic[i-1].Date.Time) {
			t.Error("events not in date order")
		}
	}
}

func TestEvent_JSONDate(t *testing.T) {
	c := load(t)
	data, err := json.Marshal(c.Events[0])
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if !strings.Contains(string(data), `"date":"2024-06-03"`) {
		t.Errorf("Marshal() = %s", data)
	}
}

func TestHolidaysIn_SortedByDay(t *testing.T) {
	c := load(t)

	jan := c.HolidaysIn(time.January)
	if len(jan) != 3 {
		t.Fatalf("January holidays = %d, want 3", len(jan))
	}
	want := []int{14, 23, 26}
	for i, h := range jan {
		if h.Day != want[i] {
			t.Errorf("holiday %d day = %d, want %d", i, h.Day, want[i])
		}
	}
	if got := c.HolidaysIn(time.August); len(got) != 0 {
		t.Errorf("August holidays = %v, want none", got)
	}
}

func TestParseEventType(t *testing.T) {
	for _, in := range []string{"", "all", "academic", "holiday", "exam"} {
		if _, err := calendar.ParseEventType(in); err != nil {
			t.Errorf("ParseEventType(%q) error = %v", in, err)
		}
	}
	if _, err := calendar.ParseEventType("party"); !errors.Is(err, calendar.ErrInvalidType) {
		t.Errorf("ParseEventType(party) error = %v, want ErrInvalidType", err)
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"June 2024", "June 2024"},
		{"june 2024", "June 2024"},
		{"JUNE   2024", "June 2024"},
		{"Feb 2025", "February 2025"},
		{"2024-09", "September 2024"},
	}
	for _, tt := range tests {
		got, err := calendar.NormalizeLabel(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("NormalizeLabel(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if _, err := calendar.NormalizeLabel("Smarch 2024"); !errors.Is(err, calendar.ErrInvalidLabel) {
		t.Errorf("NormalizeLabel(Smarch) error = %v", err)
	}
}

func TestMonthsBetween(t *testing.T) {
	start := time.Date(2024, time.June, 15, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, time.February, 1, 0, 0, 0, 0, time.UTC)

	got, err := calendar.MonthsBetween(start, end)
	if err != nil {
		t.Fatalf("MonthsBetween() error = %v", err)
	}
	if len(got) != 9 {
		t.Fatalf("len = %d, want 9: %v", len(got), got)
	}
	if got[0] != "June 2024" || got[8] != "February 2025" {
		t.Errorf("range = %s..%s", got[0], got[8])
	}
	if got[6] != "December 2024" {
		t.Errorf("got[6] = %s, want December 2024", got[6])
	}
}

func TestMonthsBetween_InvalidRange(t *testing.T) {
	june := time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		end  time.Time
	}{
		{"same month", june.AddDate(0, 0, 20)},
		{"before start", june.AddDate(0, -1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := calendar.MonthsBetween(june, tt.end); !errors.Is(err, calendar.ErrInvalidRange) {
				t.Errorf("error = %v, want ErrInvalidRange", err)
			}
		})
	}
}

func TestLoad_InvalidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cal.yaml")
	_ = os.WriteFile(path, []byte("events:\n  - {id: x, title: Fair, date: 2024-06-01, type: party}\n"), 0o644)

	if _, err := calendar.Load(path); !errors.Is(err, calendar.ErrInvalidType) {
		t.Errorf("Load() error = %v, want ErrInvalidType", err)
	}
}
