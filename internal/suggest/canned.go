package suggest

import (
	"context"
	"strings"
)

// CannedProvider returns fixed suggestion lists. Items already present in
// the request's existing items are left out.
type CannedProvider struct {
	// Err, when set, is returned by every call.
	Err error
}

// NewCannedProvider creates a CannedProvider.
func NewCannedProvider() *CannedProvider {
	return &CannedProvider{}
}

var cannedOutcomes = []string{
	"Students will be able to analyze the impact of the core concepts on daily life.",
	"Develop a critical perspective on the historical context of the topic.",
	"Demonstrate mastery through practical application and project work.",
	"Collaborate to solve complex problems related to the unit theme.",
}

var cannedAssessments = []AssessmentIdea{
	{Title: "Creative Presentation", Description: "Design a visual aid that explains the key mechanism.", Category: "writing"},
	{Title: "Peer Debate", Description: "Argue for or against the central premise using evidence.", Category: "speaking"},
	{Title: "Concept Map", Description: "Visually organize the relationships between topics.", Category: "reading"},
}

func cannedProcess(topic string) []string {
	return []string{
		"Conduct a guided inquiry into " + topic + " using primary sources.",
		"Small group workshop to practice skills related to " + topic + ".",
		"Reflective journaling session to consolidate understanding.",
		"Gallery walk to review peer work and provide feedback.",
	}
}

func (p *CannedProvider) Suggest(_ context.Context, req Request) (Response, error) {
	if p.Err != nil {
		return Response{}, p.Err
	}

	existing := make(map[string]bool, len(req.ExistingItems))
	for _, item := range req.ExistingItems {
		existing[strings.ToLower(strings.TrimSpace(item))] = true
	}
	fresh := func(s string) bool { return !existing[strings.ToLower(s)] }

	resp := Response{Type: req.Type}
	switch req.Type {
	case KindOutcomes:
		resp.Texts = filter(cannedOutcomes, fresh)
	case KindProcess:
		topic := "General"
		if len(req.Topics) > 0 && req.Topics[0] != "" {
			topic = req.Topics[0]
		}
		resp.Texts = filter(cannedProcess(topic), fresh)
	case KindAssessments:
		for _, a := range cannedAssessments {
			if fresh(a.Title) {
				resp.Assessments = append(resp.Assessments, a)
			}
		}
	}
	return resp, nil
}

func (p *CannedProvider) HealthCheck(_ context.Context) error {
	return p.Err
}

func filter(items []string, keep func(string) bool) []string {
	out := make([]string, 0, len(items))
	for _, s := range items {
		if keep(s) {
			out = append(out, s)
		}
	}
	return out
}
