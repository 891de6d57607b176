// Package suggest serves planning suggestions for outcomes, process steps
// and assessments from interchangeable providers.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrUnavailable is returned when no provider could produce suggestions.
var ErrUnavailable = errors.New("suggestion service unavailable")

// ErrInvalidKind is returned for an unknown suggestion type.
var ErrInvalidKind = errors.New("invalid suggestion type")

// Kind selects what is being suggested.
type Kind string

const (
	KindOutcomes    Kind = "outcomes"
	KindProcess     Kind = "process"
	KindAssessments Kind = "assessments"
)

// ParseKind validates a suggestion type.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindOutcomes, KindProcess, KindAssessments:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Request is the planning context sent to a provider.
type Request struct {
	Type          Kind     `json:"type"`
	Month         string   `json:"month"`
	Concepts      []string `json:"concepts"`
	Topics        []string `json:"topics"`
	ExistingItems []string `json:"existingItems"`
}

// AssessmentIdea is a suggested assessment.
type AssessmentIdea struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
}

// Response holds suggestions of one kind. Texts is used for outcomes and
// process steps, Assessments for assessments.
type Response struct {
	Type        Kind
	Texts       []string
	Assessments []AssessmentIdea
}

// Len returns the number of suggestions.
func (r Response) Len() int {
	if r.Type == KindAssessments {
		return len(r.Assessments)
	}
	return len(r.Texts)
}

// MarshalJSON encodes the response as {"suggestions": [...]}.
func (r Response) MarshalJSON() ([]byte, error) {
	if r.Type == KindAssessments {
		items := r.Assessments
		if items == nil {
			items = []AssessmentIdea{}
		}
		return json.Marshal(struct {
			Suggestions []AssessmentIdea `json:"suggestions"`
		}{items})
	}
	texts := r.Texts
	if texts == nil {
		texts = []string{}
	}
	return json.Marshal(struct {
		Suggestions []string `json:"suggestions"`
	}{texts})
}

// DecodeResponse decodes a {"suggestions": [...]} body of the given kind.
// A body carrying an "error" field is reported as ErrUnavailable.
func DecodeResponse(kind Kind, body []byte) (Response, error) {
	var envelope struct {
		Error       string          `json:"error"`
		Suggestions json.RawMessage `json:"suggestions"`
	}
	if err := json.Unmarshal(body, &envelope); err != nil {
		return Response{}, fmt.Errorf("%w: decoding response: %v", ErrUnavailable, err)
	}
	if envelope.Error != "" {
		return Response{}, fmt.Errorf("%w: %s", ErrUnavailable, envelope.Error)
	}

	resp := Response{Type: kind}
	if len(envelope.Suggestions) == 0 || string(envelope.Suggestions) == "null" {
		return resp, nil
	}
	var err error
	if kind == KindAssessments {
		err = json.Unmarshal(envelope.Suggestions, &resp.Assessments)
	} else {
		err = json.Unmarshal(envelope.Suggestions, &resp.Texts)
	}
	if err != nil {
		return Response{}, fmt.Errorf("%w: decoding %s suggestions: %v", ErrUnavailable, kind, err)
	}
	return resp, nil
}

// Provider produces suggestions.
type Provider interface {
	Suggest(ctx context.Context, req Request) (Response, error)
	HealthCheck(ctx context.Context) error
}
