package planning

import (
	"encoding/json"
	"fmt"
)

// Write is a pending change to a plan document: either a SectionWrite or a
// FullWrite.
type Write interface {
	apply(d *Document)
}

// SectionWrite replaces a single section.
type SectionWrite struct {
	Content Content
}

// FullWrite merges every section present in Document, keeping the others.
type FullWrite struct {
	Document Document
}

func (w SectionWrite) apply(d *Document) { d.Set(w.Content) }
func (w FullWrite) apply(d *Document)    { d.Merge(w.Document) }

type sectionBody struct {
	Section string          `json:"section"`
	Content json.RawMessage `json:"content"`
}

// ParseWrite resolves a request body into a Write. A body carrying a
// "section" key is a section write ({"section": ..., "content": [...]});
// anything else is a full document.
func (v *Validator) ParseWrite(body []byte) (Write, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	if _, ok := fields["section"]; ok {
		var sb sectionBody
		if err := json.Unmarshal(body, &sb); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		section, err := ParseSection(sb.Section)
		if err != nil {
			return nil, err
		}
		if len(sb.Content) == 0 || string(sb.Content) == "null" {
			return nil, fmt.Errorf("%w: section %s has no content", ErrInvalidPayload, section)
		}
		if err := v.ValidateSection(section, sb.Content); err != nil {
			return nil, err
		}
		content, err := DecodeContent(section, sb.Content)
		if err != nil {
			return nil, err
		}
		return SectionWrite{Content: content}, nil
	}

	if err := v.ValidateDocument(body); err != nil {
		return nil, err
	}
	var doc Document
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	return FullWrite{Document: doc}, nil
}
