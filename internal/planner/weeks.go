package planner

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/p-n-ai/unit-planner/internal/events"
	"github.com/p-n-ai/unit-planner/internal/planning"
)

// AddWeek appends a week to the weekly plan of a month.
func (s *Service) AddWeek(ctx context.Context, subjectID, month string, week planning.Week) (planning.WeeklyPlan, error) {
	return s.editWeeks(ctx, subjectID, month, nil, func(w planning.WeeklyPlan) (planning.WeeklyPlan, error) {
		return w.Add(week), nil
	})
}

// DeleteWeek removes a week by id.
func (s *Service) DeleteWeek(ctx context.Context, subjectID, month, weekID string) (planning.WeeklyPlan, error) {
	return s.editWeeks(ctx, subjectID, month, &weekID, func(w planning.WeeklyPlan) (planning.WeeklyPlan, error) {
		return w.Delete(weekID), nil
	})
}

// MoveWeek swaps a week with its neighbour.
func (s *Service) MoveWeek(ctx context.Context, subjectID, month, weekID string, dir planning.Direction) (planning.WeeklyPlan, error) {
	return s.editWeeks(ctx, subjectID, month, &weekID, func(w planning.WeeklyPlan) (planning.WeeklyPlan, error) {
		return w.Move(weekID, dir)
	})
}

// UpdateWeek replaces a week in place.
func (s *Service) UpdateWeek(ctx context.Context, subjectID, month string, week planning.Week) (planning.WeeklyPlan, error) {
	return s.editWeeks(ctx, subjectID, month, &week.ID, func(w planning.WeeklyPlan) (planning.WeeklyPlan, error) {
		return w.Update(week), nil
	})
}

// editWeeks applies fn to the weekly plan. When weekID is given it must name
// an existing week; otherwise nothing is written and ErrWeekNotFound is
// returned, so editing a missing week never creates a document.
func (s *Service) editWeeks(ctx context.Context, subjectID, month string, weekID *string, fn func(planning.WeeklyPlan) (planning.WeeklyPlan, error)) (planning.WeeklyPlan, error) {
	var result planning.WeeklyPlan
	err := s.docs.Update(ctx, subjectID, month, func(doc *planning.Document) error {
		if weekID != nil && (*weekID == "" || !doc.WeeklyPlan.Has(*weekID)) {
			return fmt.Errorf("%w: %q", planning.ErrWeekNotFound, *weekID)
		}
		next, err := fn(doc.WeeklyPlan)
		if err != nil {
			return err
		}
		doc.Set(next)
		result = doc.WeeklyPlan
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.emit(eventSectionSaved(subjectID, month, result))
	return result, nil
}

// WeeklyReport pairs a planned week with its delivery report.
type WeeklyReport struct {
	Plan     planning.Week       `json:"plan"`
	Report   planning.WeekReport `json:"report"`
	Progress int                 `json:"progress"`
}

// WeekReports returns one entry per planned week of a month, in plan order.
// Weeks without a saved report get a blank one. Reports of weeks that were
// deleted from the plan are not returned.
func (s *Service) WeekReports(ctx context.Context, subjectID, month string) ([]WeeklyReport, error) {
	doc, err := s.docs.Get(ctx, subjectID, month)
	if err != nil {
		return nil, err
	}
	out := make([]WeeklyReport, 0)
	if doc == nil || len(doc.WeeklyPlan) == 0 {
		return out, nil
	}

	saved, err := s.reports.Get(ctx, subjectID, month)
	if err != nil {
		return nil, err
	}
	for _, week := range doc.WeeklyPlan {
		report, ok := saved[week.ID]
		if !ok {
			report = planning.WeekReport{WeekID: week.ID}
		}
		out = append(out, WeeklyReport{Plan: week, Report: report, Progress: report.Progress()})
	}
	return out, nil
}

// SaveWeekReport stores the report of a planned week. The week must exist in
// the month's weekly plan.
func (s *Service) SaveWeekReport(ctx context.Context, subjectID, month string, report planning.WeekReport) (WeeklyReport, error) {
	doc, err := s.docs.Get(ctx, subjectID, month)
	if err != nil {
		return WeeklyReport{}, err
	}
	if report.WeekID == "" || doc == nil || !doc.WeeklyPlan.Has(report.WeekID) {
		return WeeklyReport{}, fmt.Errorf("%w: %q", planning.ErrWeekNotFound, report.WeekID)
	}
	if err := s.reports.Put(ctx, subjectID, month, report); err != nil {
		slog.Error("saving week report failed",
			"subject_id", subjectID,
			"month", month,
			"week_id", report.WeekID,
			"error", err,
		)
		return WeeklyReport{}, err
	}

	var week planning.Week
	for _, w := range doc.WeeklyPlan {
		if w.ID == report.WeekID {
			week = w
			break
		}
	}
	entry := WeeklyReport{Plan: week, Report: report, Progress: report.Progress()}
	s.emit(events.Event{
		SubjectID: subjectID,
		Month:     month,
		Type:      events.WeekReported,
		Data:      map[string]any{"weekId": report.WeekID, "progress": entry.Progress},
	})
	return entry, nil
}
