package planning

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/p-n-ai/unit-planner/internal/store"
)

// CompletionTracker records, per subject, the month indices whose plan has
// been saved as done. The set only grows.
type CompletionTracker struct {
	kv store.KV
	mu sync.Mutex
}

// NewCompletionTracker creates a tracker over kv.
func NewCompletionTracker(kv store.KV) *CompletionTracker {
	return &CompletionTracker{kv: kv}
}

// MarkCompleted adds monthIndex to the subject's set. added is false when it
// was already present.
func (t *CompletionTracker) MarkCompleted(ctx context.Context, subjectID string, monthIndex int) (added bool, err error) {
	if monthIndex < 0 {
		return false, fmt.Errorf("month index must be non-negative, got %d", monthIndex)
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	done, err := t.Completed(ctx, subjectID)
	if err != nil {
		return false, err
	}
	if slices.Contains(done, monthIndex) {
		return false, nil
	}
	done = append(done, monthIndex)

	data, err := json.Marshal(done)
	if err != nil {
		return false, fmt.Errorf("encoding completions: %w", err)
	}
	if err := t.kv.Set(ctx, store.CompletionKey(subjectID), data); err != nil {
		return false, fmt.Errorf("saving completions: %w", err)
	}
	return true, nil
}

// Completed returns the completed month indices of a subject in the order
// they were marked. Unknown subjects have an empty set.
func (t *CompletionTracker) Completed(ctx context.Context, subjectID string) ([]int, error) {
	raw, ok, err := t.kv.Get(ctx, store.CompletionKey(subjectID))
	if err != nil {
		return nil, fmt.Errorf("loading completions: %w", err)
	}
	if !ok {
		return []int{}, nil
	}

	var done []int
	if err := json.Unmarshal(raw, &done); err != nil {
		return nil, fmt.Errorf("decoding completions for %s: %w", subjectID, err)
	}
	if done == nil {
		done = []int{}
	}
	return done, nil
}

// CompletionPercentage returns round(completed/total*100), or 0 when total is 0.
func CompletionPercentage(completed, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}
