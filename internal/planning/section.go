package planning

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrInvalidSection is returned for a section name outside the five known ones.
var ErrInvalidSection = errors.New("invalid section")

// Section names one part of a plan document.
type Section string

const (
	SectionConcepts   Section = "concepts"
	SectionProcess    Section = "process"
	SectionOutcomes   Section = "outcomes"
	SectionAssessment Section = "assessment"
	SectionWeeklyPlan Section = "weeklyPlan"
)

// Sections lists every section in document order.
var Sections = []Section{
	SectionConcepts,
	SectionProcess,
	SectionOutcomes,
	SectionAssessment,
	SectionWeeklyPlan,
}

// ParseSection validates a section name.
func ParseSection(name string) (Section, error) {
	for _, s := range Sections {
		if string(s) == name {
			return s, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidSection, name)
}

// Content is the typed body of one section. It is implemented by Concepts,
// Process, Outcomes, Assessments and WeeklyPlan only.
type Content interface {
	Section() Section
	Len() int
	isContent()
}

// Concepts is the concepts section.
type Concepts []Concept

// Process is the process section.
type Process []Step

// Outcomes is the outcomes section.
type Outcomes []Outcome

// Assessments is the assessment section.
type Assessments []Assessment

// WeeklyPlan is the weekly plan section.
type WeeklyPlan []Week

func (Concepts) Section() Section    { return SectionConcepts }
func (Process) Section() Section     { return SectionProcess }
func (Outcomes) Section() Section    { return SectionOutcomes }
func (Assessments) Section() Section { return SectionAssessment }
func (WeeklyPlan) Section() Section  { return SectionWeeklyPlan }

func (c Concepts) Len() int    { return len(c) }
func (p Process) Len() int     { return len(p) }
func (o Outcomes) Len() int    { return len(o) }
func (a Assessments) Len() int { return len(a) }
func (w WeeklyPlan) Len() int  { return len(w) }

func (Concepts) isContent()    {}
func (Process) isContent()     {}
func (Outcomes) isContent()    {}
func (Assessments) isContent() {}
func (WeeklyPlan) isContent()  {}

// DecodeContent decodes the raw JSON body of a section.
func DecodeContent(section Section, raw json.RawMessage) (Content, error) {
	var (
		content Content
		err     error
	)
	switch section {
	case SectionConcepts:
		var v Concepts
		err = json.Unmarshal(raw, &v)
		content = v
	case SectionProcess:
		var v Process
		err = json.Unmarshal(raw, &v)
		content = v
	case SectionOutcomes:
		var v Outcomes
		err = json.Unmarshal(raw, &v)
		content = v
	case SectionAssessment:
		var v Assessments
		err = json.Unmarshal(raw, &v)
		content = v
	case SectionWeeklyPlan:
		var v WeeklyPlan
		err = json.Unmarshal(raw, &v)
		content = v
	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidSection, section)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPayload, section, err)
	}
	return content, nil
}
