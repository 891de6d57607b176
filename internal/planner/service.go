// Package planner ties the plan store, completion tracker, class registry,
// progress aggregation and suggestions together behind one service.
package planner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/p-n-ai/unit-planner/internal/calendar"
	"github.com/p-n-ai/unit-planner/internal/catalog"
	"github.com/p-n-ai/unit-planner/internal/events"
	"github.com/p-n-ai/unit-planner/internal/planning"
	"github.com/p-n-ai/unit-planner/internal/progress"
	"github.com/p-n-ai/unit-planner/internal/registry"
	"github.com/p-n-ai/unit-planner/internal/store"
	"github.com/p-n-ai/unit-planner/internal/suggest"
)

// ErrInvalidMonth is returned for a month index outside the month sequence.
var ErrInvalidMonth = errors.New("invalid month")

var defaultTotals = progress.Totals{Concepts: 3, Topics: 6, Assessments: 3}

// ServiceConfig holds dependencies for the planner service.
type ServiceConfig struct {
	KV          store.KV         // defaults to an in-memory store
	Catalog     *catalog.Catalog // defaults to the built-in catalog
	Months      []string         // required; parseable labels are normalised
	Totals      *progress.Totals // per-month denominators (default 3/6/3)
	Suggester   suggest.Provider // defaults to the canned provider
	Events      events.Logger    // defaults to NopLogger
	SeedPresets bool             // store catalog preset plans on Init
}

// Service is the planner's application layer.
type Service struct {
	kv          store.KV
	catalog     *catalog.Catalog
	months      []string
	docs        *planning.DocumentStore
	tracker     *planning.CompletionTracker
	reports     *planning.ReportStore
	registry    *registry.Registry
	aggregator  *progress.Aggregator
	validator   *planning.Validator
	suggester   suggest.Provider
	board       *suggest.Board
	events      events.Logger
	seedPresets bool
}

// NewService creates a planner service.
func NewService(cfg ServiceConfig) (*Service, error) {
	months, err := normalizeMonths(cfg.Months)
	if err != nil {
		return nil, err
	}

	kv := cfg.KV
	if kv == nil {
		kv = store.NewMemoryKV()
	}
	cat := cfg.Catalog
	if cat == nil {
		cat, err = catalog.Load("")
		if err != nil {
			return nil, err
		}
	}
	totals := defaultTotals
	if cfg.Totals != nil {
		totals = *cfg.Totals
	}
	suggester := cfg.Suggester
	if suggester == nil {
		suggester = suggest.NewCannedProvider()
	}
	logger := cfg.Events
	if logger == nil {
		logger = events.NopLogger{}
	}

	validator, err := planning.NewValidator()
	if err != nil {
		return nil, err
	}

	docs := planning.NewDocumentStore(kv)
	tracker := planning.NewCompletionTracker(kv)
	return &Service{
		kv:          kv,
		catalog:     cat,
		months:      months,
		docs:        docs,
		tracker:     tracker,
		reports:     planning.NewReportStore(kv),
		registry:    registry.New(kv, cat.Classes),
		aggregator:  progress.NewAggregator(docs, tracker, totals),
		validator:   validator,
		suggester:   suggester,
		board:       suggest.NewBoard(),
		events:      logger,
		seedPresets: cfg.SeedPresets,
	}, nil
}

// normalizeMonths rewrites parseable labels into the canonical form used for
// storage keys and rejects empty or repeated months.
func normalizeMonths(in []string) ([]string, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("month sequence is empty")
	}
	out := make([]string, 0, len(in))
	for _, m := range in {
		m = strings.TrimSpace(m)
		if label, err := calendar.NormalizeLabel(m); err == nil {
			m = label
		}
		if m == "" {
			return nil, fmt.Errorf("month sequence has a blank label")
		}
		if slices.Contains(out, m) {
			return nil, fmt.Errorf("month %q appears more than once", m)
		}
		out = append(out, m)
	}
	return out, nil
}

// Init persists the seed roster and, if enabled, the preset plans of the
// catalog. Existing data is never overwritten.
func (s *Service) Init(ctx context.Context) error {
	classes, err := s.registry.ListClasses(ctx)
	if err != nil {
		return fmt.Errorf("seeding classes: %w", err)
	}

	seeded := 0
	if s.seedPresets {
		for _, p := range s.catalog.Presets {
			ok, err := s.docs.SeedIfAbsent(ctx, p.SubjectID, p.Month, p.Plan.Clone())
			if err != nil {
				return fmt.Errorf("seeding preset %s %s: %w", p.SubjectID, p.Month, err)
			}
			if ok {
				seeded++
			}
		}
	}

	slog.Info("planner initialised", "classes", len(classes), "presets_seeded", seeded)
	return nil
}

// Reset wipes all planning data and seeds again.
func (s *Service) Reset(ctx context.Context) error {
	if err := s.kv.Reset(ctx); err != nil {
		return fmt.Errorf("resetting store: %w", err)
	}
	return s.Init(ctx)
}

// Months returns the month sequence.
func (s *Service) Months() []string {
	return slices.Clone(s.months)
}

// MonthIndex returns the position of month in the sequence, or -1.
func (s *Service) MonthIndex(month string) int {
	return slices.Index(s.months, month)
}

// Validator returns the plan payload validator.
func (s *Service) Validator() *planning.Validator {
	return s.validator
}

// Classes returns the merged class roster.
func (s *Service) Classes(ctx context.Context) ([]registry.Class, error) {
	return s.registry.ListClasses(ctx)
}

// FindSubject looks a subject up across all classes.
func (s *Service) FindSubject(ctx context.Context, subjectID string) (registry.Class, registry.Subject, bool, error) {
	return s.registry.FindSubject(ctx, subjectID)
}

// UpdateSubjectStatus sets a subject's plan status. It reports false when the
// subject does not exist.
func (s *Service) UpdateSubjectStatus(ctx context.Context, subjectID string, status registry.PlanStatus, completion int) (bool, error) {
	ok, err := s.registry.UpdateSubjectStatus(ctx, subjectID, status, completion)
	if err != nil || !ok {
		return ok, err
	}
	s.emit(events.Event{
		SubjectID: subjectID,
		Type:      events.StatusUpdated,
		Data:      map[string]any{"status": string(status), "completion": completion},
	})
	return true, nil
}

// Document returns the plan of a subject for a month, or nil if none was saved.
func (s *Service) Document(ctx context.Context, subjectID, month string) (*planning.Document, error) {
	return s.docs.Get(ctx, subjectID, month)
}

// SavedMonths lists the months with a stored plan for a subject, in sequence
// order. Months outside the sequence follow in label order.
func (s *Service) SavedMonths(ctx context.Context, subjectID string) ([]string, error) {
	saved, err := s.docs.Months(ctx, subjectID)
	if err != nil {
		return nil, err
	}
	slices.SortStableFunc(saved, func(a, b string) int {
		ia, ib := s.MonthIndex(a), s.MonthIndex(b)
		switch {
		case ia >= 0 && ib >= 0:
			return ia - ib
		case ia >= 0:
			return -1
		case ib >= 0:
			return 1
		}
		return strings.Compare(a, b)
	})
	return saved, nil
}

// Concepts returns the saved concepts of a month. When the concepts section
// was never saved the subject's starter concepts are returned and starter is
// true.
func (s *Service) Concepts(ctx context.Context, subjectID, month string) (concepts planning.Concepts, starter bool, err error) {
	doc, err := s.docs.Get(ctx, subjectID, month)
	if err != nil {
		return nil, false, err
	}
	if doc != nil && doc.Concepts != nil {
		return doc.Concepts, false, nil
	}
	if c, ok := s.catalog.StarterConcepts(subjectID); ok {
		return c, true, nil
	}
	return planning.Concepts{}, false, nil
}

// Apply stores a write and emits section_saved or document_saved.
func (s *Service) Apply(ctx context.Context, subjectID, month string, w planning.Write) error {
	if err := s.docs.Apply(ctx, subjectID, month, w); err != nil {
		slog.Error("saving plan failed",
			"subject_id", subjectID,
			"month", month,
			"error", err,
		)
		return err
	}

	switch w := w.(type) {
	case planning.SectionWrite:
		s.emit(eventSectionSaved(subjectID, month, w.Content))
	case planning.FullWrite:
		sections := []string{}
		for _, sec := range planning.Sections {
			if _, ok := w.Document.Get(sec); ok {
				sections = append(sections, string(sec))
			}
		}
		s.emit(events.Event{
			SubjectID: subjectID,
			Month:     month,
			Type:      events.DocumentSaved,
			Data:      map[string]any{"sections": sections},
		})
	}
	return nil
}

func eventSectionSaved(subjectID, month string, c planning.Content) events.Event {
	return events.Event{
		SubjectID: subjectID,
		Month:     month,
		Type:      events.SectionSaved,
		Data:      map[string]any{"section": string(c.Section()), "items": c.Len()},
	}
}

// SaveSection replaces one section of a plan.
func (s *Service) SaveSection(ctx context.Context, subjectID, month string, content planning.Content) error {
	if content == nil {
		return fmt.Errorf("%w: no content", planning.ErrInvalidSection)
	}
	return s.Apply(ctx, subjectID, month, planning.SectionWrite{Content: content})
}

// SaveFull merges the present sections of doc into a plan.
func (s *Service) SaveFull(ctx context.Context, subjectID, month string, doc planning.Document) error {
	return s.Apply(ctx, subjectID, month, planning.FullWrite{Document: doc})
}

// Completed returns the completed month indices of a subject.
func (s *Service) Completed(ctx context.Context, subjectID string) ([]int, error) {
	return s.tracker.Completed(ctx, subjectID)
}

// MarkCompleted records monthIndex as done for a subject.
func (s *Service) MarkCompleted(ctx context.Context, subjectID string, monthIndex int) error {
	if monthIndex < 0 || monthIndex >= len(s.months) {
		return fmt.Errorf("%w: index %d outside 0..%d", ErrInvalidMonth, monthIndex, len(s.months)-1)
	}
	added, err := s.tracker.MarkCompleted(ctx, subjectID, monthIndex)
	if err != nil {
		return err
	}
	if added {
		s.emit(events.Event{
			SubjectID: subjectID,
			Month:     s.months[monthIndex],
			Type:      events.MonthCompleted,
			Data:      map[string]any{"monthIndex": monthIndex},
		})
	}
	return nil
}

// DraftResult is the outcome of SaveDraft.
type DraftResult struct {
	Completed    []int `json:"completed"`
	Completion   int   `json:"completionPercentage"`
	SubjectFound bool  `json:"subjectFound"`
}

// SaveDraft marks a month as done and sets the subject to draft with the
// share of completed months as its completion.
func (s *Service) SaveDraft(ctx context.Context, subjectID string, monthIndex int) (DraftResult, error) {
	if err := s.MarkCompleted(ctx, subjectID, monthIndex); err != nil {
		return DraftResult{}, err
	}
	completed, err := s.tracker.Completed(ctx, subjectID)
	if err != nil {
		return DraftResult{}, err
	}

	res := DraftResult{
		Completed:  completed,
		Completion: planning.CompletionPercentage(s.countInRange(completed), len(s.months)),
	}
	res.SubjectFound, err = s.UpdateSubjectStatus(ctx, subjectID, registry.StatusDraft, res.Completion)
	if err != nil {
		return DraftResult{}, err
	}
	return res, nil
}

// PublishResult is the outcome of Publish.
type PublishResult struct {
	AllMonthsCompleted bool `json:"allMonthsCompleted"`
	CompletedMonths    int  `json:"completedMonths"`
	TotalMonths        int  `json:"totalMonths"`
	SubjectFound       bool `json:"subjectFound"`
}

// Publish marks a subject's plan published at 100%. Publishing before every
// month is completed is allowed and reported in the result.
func (s *Service) Publish(ctx context.Context, subjectID string) (PublishResult, error) {
	completed, err := s.tracker.Completed(ctx, subjectID)
	if err != nil {
		return PublishResult{}, err
	}

	res := PublishResult{
		CompletedMonths: s.countInRange(completed),
		TotalMonths:     len(s.months),
	}
	res.AllMonthsCompleted = res.CompletedMonths >= res.TotalMonths
	if !res.AllMonthsCompleted {
		slog.Warn("publishing plan with incomplete months",
			"subject_id", subjectID,
			"completed", res.CompletedMonths,
			"months", res.TotalMonths,
		)
	}

	res.SubjectFound, err = s.UpdateSubjectStatus(ctx, subjectID, registry.StatusPublished, 100)
	if err != nil {
		return PublishResult{}, err
	}
	s.emit(events.Event{
		SubjectID: subjectID,
		Type:      events.PlanPublished,
		Data:      map[string]any{"allMonthsCompleted": res.AllMonthsCompleted},
	})
	return res, nil
}

// Progress returns the per-month progress of a subject over the sequence.
func (s *Service) Progress(ctx context.Context, subjectID string) ([]progress.Summary, error) {
	return s.aggregator.MonthlyProgress(ctx, subjectID, s.months)
}

// Report returns the progress report of a subject.
func (s *Service) Report(ctx context.Context, subjectID string) (progress.Report, error) {
	return s.aggregator.Report(ctx, subjectID, s.months)
}

// Analytics returns the roster-wide overview.
func (s *Service) Analytics(ctx context.Context) (progress.Analytics, error) {
	classes, err := s.registry.ListClasses(ctx)
	if err != nil {
		return progress.Analytics{}, err
	}
	return progress.Overview(classes), nil
}

// Suggest requests suggestions and records them for the subject and month.
// On failure the previously recorded suggestions are kept.
func (s *Service) Suggest(ctx context.Context, subjectID string, req suggest.Request) (suggest.Response, error) {
	if _, err := suggest.ParseKind(string(req.Type)); err != nil {
		return suggest.Response{}, err
	}
	key := suggest.Key{SubjectID: subjectID, Month: req.Month, Type: req.Type}
	resp, _, err := s.board.Fetch(ctx, s.suggester, key, req)
	if err != nil {
		slog.Warn("suggestions unavailable",
			"subject_id", subjectID,
			"month", req.Month,
			"type", req.Type,
			"error", err,
		)
		if !errors.Is(err, suggest.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", suggest.ErrUnavailable, err)
		}
		return suggest.Response{}, err
	}
	return resp, nil
}

// Suggestions returns the latest recorded suggestions.
func (s *Service) Suggestions(subjectID, month string, kind suggest.Kind) (suggest.Response, bool) {
	return s.board.Current(suggest.Key{SubjectID: subjectID, Month: month, Type: kind})
}

// ClearSuggestions drops recorded suggestions and ignores in-flight ones.
func (s *Service) ClearSuggestions(subjectID, month string, kind suggest.Kind) {
	s.board.Clear(suggest.Key{SubjectID: subjectID, Month: month, Type: kind})
}

func (s *Service) countInRange(completed []int) int {
	n := 0
	for _, i := range completed {
		if i >= 0 && i < len(s.months) {
			n++
		}
	}
	return n
}

func (s *Service) emit(ev events.Event) {
	if err := s.events.LogEvent(ev); err != nil {
		slog.Warn("event logging failed",
			"type", ev.Type,
			"subject_id", ev.SubjectID,
			"error", err,
		)
	}
}
