package planning

// Document is the plan of one subject for one month. A nil section was never
// written; a non-nil empty section was explicitly saved empty.
type Document struct {
	Concepts   Concepts    `json:"concepts,omitzero" yaml:"concepts,omitempty"`
	Process    Process     `json:"process,omitzero" yaml:"process,omitempty"`
	Outcomes   Outcomes    `json:"outcomes,omitzero" yaml:"outcomes,omitempty"`
	Assessment Assessments `json:"assessment,omitzero" yaml:"assessment,omitempty"`
	WeeklyPlan WeeklyPlan  `json:"weeklyPlan,omitzero" yaml:"weeklyPlan,omitempty"`
}

// Set replaces one section with content. A nil list is stored as an empty
// section so that it still overwrites earlier content. Weeks are renumbered
// and concepts always carry a topics list.
func (d *Document) Set(content Content) {
	switch c := content.(type) {
	case Concepts:
		d.Concepts = c.withTopics()
	case Process:
		if c == nil {
			c = Process{}
		}
		d.Process = c
	case Outcomes:
		if c == nil {
			c = Outcomes{}
		}
		d.Outcomes = c
	case Assessments:
		if c == nil {
			c = Assessments{}
		}
		d.Assessment = c
	case WeeklyPlan:
		if c == nil {
			c = WeeklyPlan{}
		}
		d.WeeklyPlan = c.Renumber()
	}
}

// Get returns a section and whether it was ever written.
func (d *Document) Get(section Section) (Content, bool) {
	switch section {
	case SectionConcepts:
		return d.Concepts, d.Concepts != nil
	case SectionProcess:
		return d.Process, d.Process != nil
	case SectionOutcomes:
		return d.Outcomes, d.Outcomes != nil
	case SectionAssessment:
		return d.Assessment, d.Assessment != nil
	case SectionWeeklyPlan:
		return d.WeeklyPlan, d.WeeklyPlan != nil
	}
	return nil, false
}

// Merge copies every section present in other into d, leaving the rest alone.
func (d *Document) Merge(other Document) {
	for _, s := range Sections {
		if c, ok := other.Get(s); ok {
			d.Set(c)
		}
	}
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	var out Document
	if d.Concepts != nil {
		out.Concepts = make(Concepts, len(d.Concepts))
		for i, c := range d.Concepts {
			c.Topics = append([]Topic{}, c.Topics...)
			out.Concepts[i] = c
		}
	}
	if d.Process != nil {
		out.Process = append(Process{}, d.Process...)
	}
	if d.Outcomes != nil {
		out.Outcomes = append(Outcomes{}, d.Outcomes...)
	}
	if d.Assessment != nil {
		out.Assessment = append(Assessments{}, d.Assessment...)
	}
	if d.WeeklyPlan != nil {
		out.WeeklyPlan = append(WeeklyPlan{}, d.WeeklyPlan...)
	}
	return out
}
