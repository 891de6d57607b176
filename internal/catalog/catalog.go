// Package catalog loads the static seed data of the planner: the class
// roster, preset plan documents and starter concepts.
package catalog

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/p-n-ai/unit-planner/internal/calendar"
	"github.com/p-n-ai/unit-planner/internal/planning"
	"github.com/p-n-ai/unit-planner/internal/registry"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Preset is a plan document shipped with the catalog.
type Preset struct {
	SubjectID string            `yaml:"subject_id"`
	Month     string            `yaml:"month"`
	Plan      planning.Document `yaml:"plan"`
}

// Starter is the set of concepts offered to subjects that have not saved
// any concepts yet.
type Starter struct {
	SubjectIDs []string          `yaml:"subject_ids"`
	Concepts   planning.Concepts `yaml:"concepts"`
}

// Catalog is the parsed seed data. It is read-only after loading.
type Catalog struct {
	Classes  []registry.Class `yaml:"classes"`
	Presets  []Preset         `yaml:"presets"`
	Starters []Starter        `yaml:"starters"`

	starters map[string]planning.Concepts
}

// Load reads the catalog at path, or the built-in catalog when path is empty.
func Load(path string) (*Catalog, error) {
	data := defaultCatalog
	if path != "" {
		var err error
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading catalog: %w", err)
		}
	}

	c, err := Parse(data)
	if err != nil {
		return nil, err
	}
	slog.Info("catalog loaded",
		"classes", len(c.Classes),
		"presets", len(c.Presets),
		"path", path,
	)
	return c, nil
}

// Parse decodes and checks catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}
	if err := c.index(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) index() error {
	classIDs := make(map[string]bool)
	subjectIDs := make(map[string]bool)
	for i, class := range c.Classes {
		if class.ID == "" {
			return fmt.Errorf("catalog class %d has no id", i)
		}
		if classIDs[class.ID] {
			return fmt.Errorf("duplicate class id %q", class.ID)
		}
		classIDs[class.ID] = true

		if class.Subjects == nil {
			c.Classes[i].Subjects = []registry.Subject{}
		}
		for _, s := range class.Subjects {
			if s.ID == "" {
				return fmt.Errorf("class %q has a subject without id", class.ID)
			}
			if subjectIDs[s.ID] {
				return fmt.Errorf("duplicate subject id %q", s.ID)
			}
			subjectIDs[s.ID] = true
			status, err := registry.ParseStatus(string(s.PlanStatus))
			if err != nil {
				return fmt.Errorf("subject %q: %w", s.ID, err)
			}
			if status != registry.StatusNone && !s.HasActivePlan {
				return fmt.Errorf("subject %q: %s plan needs has_active_plan", s.ID, status)
			}
		}
	}

	for i, p := range c.Presets {
		if p.SubjectID == "" || p.Month == "" {
			return fmt.Errorf("preset needs subject_id and month")
		}
		if label, err := calendar.NormalizeLabel(p.Month); err == nil {
			c.Presets[i].Month = label
		}
	}

	c.starters = make(map[string]planning.Concepts)
	for _, st := range c.Starters {
		for _, id := range st.SubjectIDs {
			c.starters[id] = st.Concepts
		}
	}
	return nil
}

// StarterConcepts returns a copy of the starter concepts for subjectID.
func (c *Catalog) StarterConcepts(subjectID string) (planning.Concepts, bool) {
	concepts, ok := c.starters[subjectID]
	if !ok {
		return nil, false
	}
	doc := planning.Document{Concepts: concepts}
	return doc.Clone().Concepts, true
}
