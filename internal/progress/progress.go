// Package progress derives per-month and overall planning statistics from
// stored plan documents and completed months.
package progress

import (
	"context"
	"fmt"
	"slices"

	"github.com/p-n-ai/unit-planner/internal/planning"
)

// Status classifies a month of a subject's plan.
type Status string

const (
	StatusPlanned    Status = "planned"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Totals are the expected counts per month used as denominators.
type Totals struct {
	Concepts    int
	Topics      int
	Assessments int
}

// Summary is the progress of one month.
type Summary struct {
	Month                string `json:"month"`
	Index                int    `json:"index"`
	Status               Status `json:"status"`
	ConceptsCovered      int    `json:"conceptsCovered"`
	TotalConcepts        int    `json:"totalConcepts"`
	TopicsCovered        int    `json:"topicsCovered"`
	TotalTopics          int    `json:"totalTopics"`
	AssessmentsCompleted int    `json:"assessmentsCompleted"`
	TotalAssessments     int    `json:"totalAssessments"`
}

// Report aggregates the summaries of every month of a plan.
type Report struct {
	SubjectID            string    `json:"subjectId,omitempty"`
	Months               []Summary `json:"months"`
	CompletedMonths      int       `json:"completedMonths"`
	ConceptsCovered      int       `json:"conceptsCovered"`
	TotalConcepts        int       `json:"totalConcepts"`
	TopicsCovered        int       `json:"topicsCovered"`
	TotalTopics          int       `json:"totalTopics"`
	AssessmentsCompleted int       `json:"assessmentsCompleted"`
	TotalAssessments     int       `json:"totalAssessments"`
	SyllabusPercentage   int       `json:"syllabusPercentage"`
}

// DocumentReader reads plan documents.
type DocumentReader interface {
	Get(ctx context.Context, subjectID, month string) (*planning.Document, error)
}

// CompletionReader reads completed month indices.
type CompletionReader interface {
	Completed(ctx context.Context, subjectID string) ([]int, error)
}

// Aggregator computes progress for a subject.
type Aggregator struct {
	docs   DocumentReader
	done   CompletionReader
	totals Totals
}

// NewAggregator creates an aggregator using fixed per-month totals.
func NewAggregator(docs DocumentReader, done CompletionReader, totals Totals) *Aggregator {
	return &Aggregator{docs: docs, done: done, totals: totals}
}

// MonthlyProgress returns one summary per month, in the order given. Month
// indices are positions in months.
func (a *Aggregator) MonthlyProgress(ctx context.Context, subjectID string, months []string) ([]Summary, error) {
	completed, err := a.done.Completed(ctx, subjectID)
	if err != nil {
		return nil, fmt.Errorf("progress for %s: %w", subjectID, err)
	}

	out := make([]Summary, 0, len(months))
	for i, month := range months {
		doc, err := a.docs.Get(ctx, subjectID, month)
		if err != nil {
			return nil, fmt.Errorf("progress for %s %s: %w", subjectID, month, err)
		}
		out = append(out, summarizeMonth(month, i, doc, slices.Contains(completed, i), a.totals))
	}
	return out, nil
}

// Report returns the monthly progress of a subject together with the
// aggregate figures.
func (a *Aggregator) Report(ctx context.Context, subjectID string, months []string) (Report, error) {
	summaries, err := a.MonthlyProgress(ctx, subjectID, months)
	if err != nil {
		return Report{}, err
	}
	r := Summarize(summaries)
	r.SubjectID = subjectID
	return r, nil
}

func summarizeMonth(month string, index int, doc *planning.Document, completed bool, totals Totals) Summary {
	s := Summary{
		Month:            month,
		Index:            index,
		Status:           StatusPlanned,
		TotalConcepts:    totals.Concepts,
		TotalTopics:      totals.Topics,
		TotalAssessments: totals.Assessments,
	}
	if doc != nil {
		s.Status = StatusInProgress
		s.ConceptsCovered = len(doc.Concepts)
		s.TopicsCovered = doc.Concepts.TopicCount()
		s.AssessmentsCompleted = len(doc.Assessment)
	}
	if completed {
		s.Status = StatusCompleted
	}
	return s
}

// Summarize adds up the monthly figures. SyllabusPercentage is the share of
// expected topics covered, or 0 when no topics are expected.
func Summarize(months []Summary) Report {
	r := Report{Months: months}
	if r.Months == nil {
		r.Months = []Summary{}
	}
	for _, m := range months {
		if m.Status == StatusCompleted {
			r.CompletedMonths++
		}
		r.ConceptsCovered += m.ConceptsCovered
		r.TotalConcepts += m.TotalConcepts
		r.TopicsCovered += m.TopicsCovered
		r.TotalTopics += m.TotalTopics
		r.AssessmentsCompleted += m.AssessmentsCompleted
		r.TotalAssessments += m.TotalAssessments
	}
	r.SyllabusPercentage = planning.CompletionPercentage(r.TopicsCovered, r.TotalTopics)
	return r
}
