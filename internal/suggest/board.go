package suggest

import (
	"context"
	"log/slog"
	"sync"
)

// Key identifies one suggestion list.
type Key struct {
	SubjectID string
	Month     string
	Type      Kind
}

type slot struct {
	generation uint64
	resp       Response
	ok         bool
}

// Board keeps the latest suggestions per key. Every request takes a new
// generation; a response is applied only if no newer request or clear
// happened for the key in the meantime. Failed requests leave the stored
// suggestions as they were.
type Board struct {
	slots map[Key]*slot
	mu    sync.Mutex
}

// NewBoard creates an empty board.
func NewBoard() *Board {
	return &Board{slots: make(map[Key]*slot)}
}

// Begin starts a request for key and returns its generation.
func (b *Board) Begin(key Key) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slot(key)
	s.generation++
	return s.generation
}

// Complete stores resp if generation is still the latest for key.
func (b *Board) Complete(key Key, generation uint64, resp Response) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slot(key)
	if s.generation != generation {
		return false
	}
	s.resp = resp
	s.ok = true
	return true
}

// Current returns the stored suggestions for key.
func (b *Board) Current(key Key) (Response, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s, ok := b.slots[key]
	if !ok || !s.ok {
		return Response{Type: key.Type}, false
	}
	return s.resp, true
}

// Clear drops the suggestions for key and invalidates in-flight requests.
func (b *Board) Clear(key Key) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.slot(key)
	s.generation++
	s.resp = Response{}
	s.ok = false
}

// Fetch asks p for suggestions and records them under key. applied is
// false when a newer request superseded this one.
func (b *Board) Fetch(ctx context.Context, p Provider, key Key, req Request) (resp Response, applied bool, err error) {
	req.Type = key.Type
	gen := b.Begin(key)

	resp, err = p.Suggest(ctx, req)
	if err != nil {
		return Response{}, false, err
	}
	applied = b.Complete(key, gen, resp)
	if !applied {
		slog.Debug("discarding stale suggestions",
			"subject_id", key.SubjectID,
			"month", key.Month,
			"type", key.Type,
		)
	}
	return resp, applied, nil
}

func (b *Board) slot(key Key) *slot {
	s, ok := b.slots[key]
	if !ok {
		s = &slot{}
		b.slots[key] = s
	}
	return s
}
