// Package planning holds the month-by-month unit plan of a subject: the plan
// documents with their five sections, the store that persists them and the
// tracker of months a facilitator has marked done.
package planning

// Topic is a teachable unit within a concept.
type Topic struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Concept groups related topics.
type Concept struct {
	ID     string  `json:"id" yaml:"id"`
	Name   string  `json:"name" yaml:"name"`
	Topics []Topic `json:"topics" yaml:"topics"`
}

// Step is one activity of the learning process.
type Step struct {
	ID          string `json:"id" yaml:"id"`
	Content     string `json:"content" yaml:"content"`
	LinkedTopic string `json:"linkedTopic,omitempty" yaml:"linked_topic,omitempty"`
}

// Outcome is an expected learning outcome.
type Outcome struct {
	ID          string `json:"id" yaml:"id"`
	Content     string `json:"content" yaml:"content"`
	AIGenerated bool   `json:"aiGenerated,omitempty" yaml:"ai_generated,omitempty"`
}

// Assessment is a planned assessment task.
type Assessment struct {
	ID            string `json:"id" yaml:"id"`
	Title         string `json:"title" yaml:"title"`
	Description   string `json:"description" yaml:"description"`
	Category      string `json:"category" yaml:"category"`
	LinkedConcept string `json:"linkedConcept,omitempty" yaml:"linked_concept,omitempty"`
	LinkedTopic   string `json:"linkedTopic,omitempty" yaml:"linked_topic,omitempty"`
}

// Week is one row of the weekly delivery schedule. Number is the 1-based
// position of the week in its plan.
type Week struct {
	ID            string `json:"id" yaml:"id"`
	Number        int    `json:"week" yaml:"week"`
	Focus         string `json:"focus" yaml:"focus"`
	Activities    string `json:"activities" yaml:"activities"`
	Outcomes      string `json:"outcomes" yaml:"outcomes"`
	Assessments   string `json:"assessments" yaml:"assessments"`
	LinkedConcept string `json:"linkedConcept,omitempty" yaml:"linked_concept,omitempty"`
	LinkedTopic   string `json:"linkedTopic,omitempty" yaml:"linked_topic,omitempty"`
}

// withTopics returns a copy in which every concept has a non-nil topic list.
func (c Concepts) withTopics() Concepts {
	out := make(Concepts, len(c))
	for i, concept := range c {
		if concept.Topics == nil {
			concept.Topics = []Topic{}
		}
		out[i] = concept
	}
	return out
}

// TopicCount returns the number of topics across all concepts.
func (c Concepts) TopicCount() int {
	n := 0
	for _, concept := range c {
		n += len(concept.Topics)
	}
	return n
}

// Names returns the concept names in order.
func (c Concepts) Names() []string {
	names := make([]string, 0, len(c))
	for _, concept := range c {
		names = append(names, concept.Name)
	}
	return names
}

// TopicNames returns every topic name in order.
func (c Concepts) TopicNames() []string {
	names := make([]string, 0, c.TopicCount())
	for _, concept := range c {
		for _, topic := range concept.Topics {
			names = append(names, topic.Name)
		}
	}
	return names
}
