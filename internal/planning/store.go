package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/p-n-ai/unit-planner/internal/store"
)

// DocumentStore persists plan documents keyed by (subject, month).
//
// Writes are read-modify-write of the whole document and are serialised
// within the process. Across processes the last write wins.
type DocumentStore struct {
	kv store.KV
	mu sync.Mutex
}

// NewDocumentStore creates a document store over kv.
func NewDocumentStore(kv store.KV) *DocumentStore {
	return &DocumentStore{kv: kv}
}

// Get returns the document for subject and month, or nil when nothing was
// ever saved for that key.
func (s *DocumentStore) Get(ctx context.Context, subjectID, month string) (*Document, error) {
	key := store.PlanKey(subjectID, month)
	raw, ok, err := s.kv.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading plan: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var doc Document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("decoding plan %s: %w", key, err)
	}
	return &doc, nil
}

// SaveSection replaces one section of the document, creating the document
// if needed. The other sections are left untouched.
func (s *DocumentStore) SaveSection(ctx context.Context, subjectID, month string, content Content) error {
	if content == nil {
		return fmt.Errorf("%w: no content", ErrInvalidSection)
	}
	return s.Apply(ctx, subjectID, month, SectionWrite{Content: content})
}

// SaveFull merges the sections present in doc into the stored document.
func (s *DocumentStore) SaveFull(ctx context.Context, subjectID, month string, doc Document) error {
	return s.Apply(ctx, subjectID, month, FullWrite{Document: doc})
}

// Apply performs a write against the stored document.
func (s *DocumentStore) Apply(ctx context.Context, subjectID, month string, w Write) error {
	if w == nil {
		return fmt.Errorf("%w: empty write", ErrInvalidPayload)
	}
	return s.Update(ctx, subjectID, month, func(doc *Document) error {
		w.apply(doc)
		return nil
	})
}

// Update loads the document (empty if absent), passes it to fn and stores
// the result. Nothing is stored when fn fails.
func (s *DocumentStore) Update(ctx context.Context, subjectID, month string, fn func(doc *Document) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, err := s.Get(ctx, subjectID, month)
	if err != nil {
		return err
	}
	doc := Document{}
	if current != nil {
		doc = *current
	}
	if err := fn(&doc); err != nil {
		return err
	}
	if doc.WeeklyPlan != nil {
		doc.WeeklyPlan = doc.WeeklyPlan.Renumber()
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encoding plan: %w", err)
	}
	if err := s.kv.Set(ctx, store.PlanKey(subjectID, month), data); err != nil {
		return fmt.Errorf("saving plan: %w", err)
	}
	return nil
}

// SeedIfAbsent stores doc only when the key was never written.
func (s *DocumentStore) SeedIfAbsent(ctx context.Context, subjectID, month string, doc Document) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := store.PlanKey(subjectID, month)
	if _, ok, err := s.kv.Get(ctx, key); err != nil || ok {
		return false, err
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return false, fmt.Errorf("encoding plan: %w", err)
	}
	if err := s.kv.Set(ctx, key, data); err != nil {
		return false, fmt.Errorf("seeding plan: %w", err)
	}
	return true, nil
}

// Months lists the months that have a stored document for subject.
func (s *DocumentStore) Months(ctx context.Context, subjectID string) ([]string, error) {
	prefix := store.PlanPrefix(subjectID)
	keys, err := s.kv.Keys(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("listing plans: %w", err)
	}
	months := make([]string, 0, len(keys))
	for _, k := range keys {
		months = append(months, strings.TrimPrefix(k, prefix))
	}
	return months, nil
}
