// Package store provides the key/value persistence used for planning data.
//
// Keys follow the layout shared with the browser storage of the planner UI so
// that backends can be swapped without migrating data:
//
//	planning_data::{subjectId}::{month}  -> plan document (JSON object)
//	months_completed::{subjectId}       -> completed month indices (JSON array)
//	weekly_reports::{subjectId}::{month} -> week reports keyed by week id (JSON object)
//	classes_data                        -> class registry snapshot (JSON array)
package store

import (
	"context"
	"errors"
	"fmt"
)

const (
	planPrefix       = "planning_data::"
	completionPrefix = "months_completed::"
	weekReportPrefix = "weekly_reports::"

	// ClassesKey holds the class registry snapshot.
	ClassesKey = "classes_data"
)

// ErrStorage marks failures of the underlying backend.
var ErrStorage = errors.New("storage failure")

// KV is a flat string-keyed store of JSON values.
type KV interface {
	// Get returns the value for key. ok is false when the key was never written.
	Get(ctx context.Context, key string) (value []byte, ok bool, err error)
	Set(ctx context.Context, key string, value []byte) error
	// Keys lists keys starting with prefix in lexical order.
	Keys(ctx context.Context, prefix string) ([]string, error)
	// Reset removes every key owned by the store.
	Reset(ctx context.Context) error
}

// PlanKey returns the key of the plan document for a subject and month.
func PlanKey(subjectID, month string) string {
	return planPrefix + subjectID + "::" + month
}

// PlanPrefix returns the key prefix shared by all plan documents of a subject.
func PlanPrefix(subjectID string) string {
	return planPrefix + subjectID + "::"
}

// WeekReportKey returns the key of the week reports for a subject and month.
func WeekReportKey(subjectID, month string) string {
	return weekReportPrefix + subjectID + "::" + month
}

// CompletionKey returns the key of the completed-month set for a subject.
func CompletionKey(subjectID string) string {
	return completionPrefix + subjectID
}

// Error describes a failed backend operation.
type Error struct {
	Op  string
	Key string
	Err error
}

func (e *Error) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("store %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("store %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports every store Error as ErrStorage.
func (e *Error) Is(target error) bool { return target == ErrStorage }

func wrap(op, key string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Key: key, Err: err}
}
