package planning_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/p-n-ai/unit-planner/internal/planning"
)

func newValidator(t *testing.T) *planning.Validator {
	t.Helper()
	v, err := planning.NewValidator()
	if err != nil {
		t.Fatalf("NewValidator() error = %v", err)
	}
	return v
}

func TestParseWrite_Section(t *testing.T) {
	v := newValidator(t)

	w, err := v.ParseWrite([]byte(`{"section":"outcomes","content":[{"id":"1","content":"x","aiGenerated":true}]}`))
	if err != nil {
		t.Fatalf("ParseWrite() error = %v", err)
	}
	sw, ok := w.(planning.SectionWrite)
	if !ok {
		t.Fatalf("ParseWrite() = %T, want SectionWrite", w)
	}
	outcomes, ok := sw.Content.(planning.Outcomes)
	if !ok {
		t.Fatalf("Content = %T, want Outcomes", sw.Content)
	}
	if len(outcomes) != 1 || !outcomes[0].AIGenerated {
		t.Errorf("outcomes = %+v", outcomes)
	}
}

func TestParseWrite_EmptySection(t *testing.T) {
	v := newValidator(t)

	w, err := v.ParseWrite([]byte(`{"section":"concepts","content":[]}`))
	if err != nil {
		t.Fatalf("ParseWrite() error = %v", err)
	}
	sw := w.(planning.SectionWrite)
	if sw.Content.Section() != planning.SectionConcepts || sw.Content.Len() != 0 {
		t.Errorf("Content = %#v, want empty concepts", sw.Content)
	}
}

func TestParseWrite_Full(t *testing.T) {
	v := newValidator(t)

	body := `{"concepts":[{"id":"c1","name":"Algebra","topics":[{"id":"t1","name":"Linear"}]}],"weeklyPlan":[{"id":"w1","week":4,"focus":"Intro"}]}`
	w, err := v.ParseWrite([]byte(body))
	if err != nil {
		t.Fatalf("ParseWrite() error = %v", err)
	}
	fw, ok := w.(planning.FullWrite)
	if !ok {
		t.Fatalf("ParseWrite() = %T, want FullWrite", w)
	}
	if len(fw.Document.Concepts) != 1 || fw.Document.Concepts.TopicCount() != 1 {
		t.Errorf("Concepts = %+v", fw.Document.Concepts)
	}
	if fw.Document.Outcomes != nil {
		t.Errorf("Outcomes = %v, want absent", fw.Document.Outcomes)
	}
}

func TestParseWrite_Errors(t *testing.T) {
	v := newValidator(t)

	tests := []struct {
		name string
		body string
		want error
	}{
		{"unknown section", `{"section":"homework","content":[]}`, planning.ErrInvalidSection},
		{"missing content", `{"section":"outcomes"}`, planning.ErrInvalidPayload},
		{"null content", `{"section":"outcomes","content":null}`, planning.ErrInvalidPayload},
		{"content not a list", `{"section":"outcomes","content":{"id":"1"}}`, planning.ErrInvalidPayload},
		{"item missing id", `{"section":"process","content":[{"content":"x"}]}`, planning.ErrInvalidPayload},
		{"week number not integer", `{"section":"weeklyPlan","content":[{"id":"w","week":"one"}]}`, planning.ErrInvalidPayload},
		{"unknown top-level key", `{"homework":[]}`, planning.ErrInvalidPayload},
		{"not json", `not json`, planning.ErrInvalidPayload},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := v.ParseWrite([]byte(tt.body))
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseWrite() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidationError_Fields(t *testing.T) {
	v := newValidator(t)

	err := v.ValidateSection(planning.SectionAssessment, []byte(`[{"id":"a1"}]`))
	var verr *planning.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if len(verr.Fields) == 0 {
		t.Error("Fields should describe the missing title")
	}
}

func TestDecodeContent_UnknownSection(t *testing.T) {
	_, err := planning.DecodeContent(planning.Section("homework"), json.RawMessage(`[]`))
	if !errors.Is(err, planning.ErrInvalidSection) {
		t.Errorf("DecodeContent() error = %v, want ErrInvalidSection", err)
	}
}

func TestParseSection(t *testing.T) {
	for _, s := range planning.Sections {
		got, err := planning.ParseSection(string(s))
		if err != nil || got != s {
			t.Errorf("ParseSection(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := planning.ParseSection("Concepts"); !errors.Is(err, planning.ErrInvalidSection) {
		t.Errorf("ParseSection is case sensitive, got err = %v", err)
	}
}
