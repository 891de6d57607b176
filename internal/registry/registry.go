// Package registry keeps the roster of classes and their subjects, together
// with each subject's planning status.
package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/p-n-ai/unit-planner/internal/store"
)

// ErrInvalidStatus is returned for an unknown plan status or an out of range
// completion percentage.
var ErrInvalidStatus = errors.New("invalid subject status")

// PlanStatus is the planning state of a subject. The zero value means no
// plan has been started.
type PlanStatus string

const (
	StatusNone      PlanStatus = ""
	StatusDraft     PlanStatus = "draft"
	StatusPublished PlanStatus = "published"
)

// ParseStatus accepts "draft", "published", and "none" or "" for no plan.
func ParseStatus(s string) (PlanStatus, error) {
	switch s {
	case "", "none":
		return StatusNone, nil
	case string(StatusDraft):
		return StatusDraft, nil
	case string(StatusPublished):
		return StatusPublished, nil
	}
	return StatusNone, fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// Subject is a subject taught in a class. Its ID is unique across classes and
// keys all planning data.
type Subject struct {
	ID                   string     `json:"id" yaml:"id"`
	Name                 string     `json:"name" yaml:"name"`
	HasActivePlan        bool       `json:"hasActivePlan" yaml:"has_active_plan"`
	PlanStatus           PlanStatus `json:"planStatus,omitempty" yaml:"plan_status,omitempty"`
	CompletionPercentage int        `json:"completionPercentage" yaml:"completion_percentage"`
}

// Class is a class with its ordered subjects.
type Class struct {
	ID           string    `json:"id" yaml:"id"`
	Name         string    `json:"name" yaml:"name"`
	Grade        string    `json:"grade" yaml:"grade"`
	StudentCount int       `json:"studentCount,omitempty" yaml:"student_count,omitempty"`
	Subjects     []Subject `json:"subjects" yaml:"subjects"`
}

// Clone returns a copy of the class that shares no subject storage.
func (c Class) Clone() Class {
	c.Subjects = append([]Subject{}, c.Subjects...)
	return c
}

// Registry stores the class roster as a single snapshot merged with a seed.
type Registry struct {
	kv   store.KV
	seed []Class
	mu   sync.Mutex
}

// New creates a registry over kv seeded with the given classes.
func New(kv store.KV, seed []Class) *Registry {
	cp := make([]Class, len(seed))
	for i, c := range seed {
		cp[i] = c.Clone()
	}
	return &Registry{kv: kv, seed: cp}
}

// ListClasses returns the persisted roster with every seed class and subject
// that is not yet persisted appended. Persisted entries are never removed.
// The merged roster is written back only when the merge added something.
func (r *Registry) ListClasses(ctx context.Context) ([]Class, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	classes, err := r.mergedLocked(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Class, len(classes))
	for i, c := range classes {
		out[i] = c.Clone()
	}
	return out, nil
}

// FindSubject returns the class holding subjectID and the subject itself.
func (r *Registry) FindSubject(ctx context.Context, subjectID string) (Class, Subject, bool, error) {
	classes, err := r.ListClasses(ctx)
	if err != nil {
		return Class{}, Subject{}, false, err
	}
	for _, c := range classes {
		for _, s := range c.Subjects {
			if s.ID == subjectID {
				return c, s, true, nil
			}
		}
	}
	return Class{}, Subject{}, false, nil
}

// UpdateSubjectStatus sets the status and completion of a subject and marks
// it as having an active plan. It reports false, with no error, when no
// subject has that ID.
func (r *Registry) UpdateSubjectStatus(ctx context.Context, subjectID string, status PlanStatus, completion int) (bool, error) {
	if status != StatusDraft && status != StatusPublished {
		return false, fmt.Errorf("%w: status %q", ErrInvalidStatus, status)
	}
	if completion < 0 || completion > 100 {
		return false, fmt.Errorf("%w: completion %d outside 0..100", ErrInvalidStatus, completion)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	classes, err := r.mergedLocked(ctx)
	if err != nil {
		return false, err
	}

	found := false
	for ci := range classes {
		for si := range classes[ci].Subjects {
			s := &classes[ci].Subjects[si]
			if s.ID != subjectID {
				continue
			}
			s.PlanStatus = status
			s.CompletionPercentage = completion
			s.HasActivePlan = true
			found = true
		}
	}
	if !found {
		slog.Debug("subject not found for status update", "subject_id", subjectID)
		return false, nil
	}

	if err := r.saveLocked(ctx, classes); err != nil {
		return false, err
	}
	return true, nil
}

func (r *Registry) mergedLocked(ctx context.Context) ([]Class, error) {
	classes, err := r.loadLocked(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]bool)
	classIdx := make(map[string]int, len(classes))
	for i, c := range classes {
		classIdx[c.ID] = i
		for _, s := range c.Subjects {
			known[s.ID] = true
		}
	}

	changed := false
	for _, seed := range r.seed {
		i, ok := classIdx[seed.ID]
		if !ok {
			c := seed.Clone()
			c.Subjects = c.Subjects[:0]
			for _, s := range seed.Subjects {
				if !known[s.ID] {
					c.Subjects = append(c.Subjects, s)
					known[s.ID] = true
				}
			}
			classes = append(classes, c)
			classIdx[c.ID] = len(classes) - 1
			changed = true
			continue
		}
		for _, s := range seed.Subjects {
			if known[s.ID] {
				continue
			}
			classes[i].Subjects = append(classes[i].Subjects, s)
			known[s.ID] = true
			changed = true
		}
	}

	if changed {
		if err := r.saveLocked(ctx, classes); err != nil {
			return nil, err
		}
	}
	return classes, nil
}

func (r *Registry) loadLocked(ctx context.Context) ([]Class, error) {
	raw, ok, err := r.kv.Get(ctx, store.ClassesKey)
	if err != nil {
		return nil, fmt.Errorf("loading classes: %w", err)
	}
	if !ok {
		return []Class{}, nil
	}
	var classes []Class
	if err := json.Unmarshal(raw, &classes); err != nil {
		return nil, fmt.Errorf("decoding classes: %w", err)
	}
	for i := range classes {
		if classes[i].Subjects == nil {
			classes[i].Subjects = []Subject{}
		}
	}
	return classes, nil
}

func (r *Registry) saveLocked(ctx context.Context, classes []Class) error {
	data, err := json.Marshal(classes)
	if err != nil {
		return fmt.Errorf("encoding classes: %w", err)
	}
	if err := r.kv.Set(ctx, store.ClassesKey, data); err != nil {
		return fmt.Errorf("saving classes: %w", err)
	}
	return nil
}
