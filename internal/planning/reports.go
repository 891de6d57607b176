package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/p-n-ai/unit-planner/internal/store"
)

// WeekReport records what was delivered in one planned week.
type WeekReport struct {
	WeekID               string `json:"weekId"`
	ActivitiesCompleted  bool   `json:"activitiesCompleted"`
	AssessmentsCompleted bool   `json:"assessmentsCompleted"`
	Notes                string `json:"notes"`
}

// Progress returns the share of the two delivery checks that are done, as a
// percentage.
func (r WeekReport) Progress() int {
	done := 0
	if r.ActivitiesCompleted {
		done++
	}
	if r.AssessmentsCompleted {
		done++
	}
	return CompletionPercentage(done, 2)
}

// ReportStore persists week reports per (subject, month), keyed by week id.
type ReportStore struct {
	kv store.KV
	mu sync.Mutex
}

// NewReportStore creates a report store over kv.
func NewReportStore(kv store.KV) *ReportStore {
	return &ReportStore{kv: kv}
}

// Get returns the stored reports of a month. A month without reports yields
// an empty map.
func (s *ReportStore) Get(ctx context.Context, subjectID, month string) (map[string]WeekReport, error) {
	key := store.WeekReportKey(subjectID, month)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading week reports: %w", err)
	}
	reports := map[string]WeekReport{}
	if !ok {
		return reports, nil
	}
	if err := json.Unmarshal(raw, &reports); err != nil {
		return nil, fmt.Errorf("decoding week reports %s: %w", key, err)
	}
	if reports == nil {
		reports = map[string]WeekReport{}
	}
	return reports, nil
}

// Put stores report under its week id, replacing any earlier report.
func (s *ReportStore) Put(ctx context.Context, subjectID, month string, report WeekReport) error {
	if report.WeekID == "" {
		return fmt.Errorf("%w: empty week id", ErrWeekNotFound)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	reports, err := s.Get(ctx, subjectID, month)
	if err != nil {
		return err
	}
	reports[report.WeekID] = report

	data, err := json.Marshal(reports)
	if err != nil {
		return fmt.Errorf("encoding week reports: %w", err)
	}
	if err := s.kv.Set(ctx, store.WeekReportKey(subjectID, month), data); err != nil {
		return fmt.Errorf("saving week reports: %w", err)
	}
	return nil
}
