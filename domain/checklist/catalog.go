package checklist

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Catalog is the read-only template registry shared by all sessions.
type Catalog struct {
	templates map[string]*Template
	order     []string
}

// NewCatalog builds a catalog from the given templates, validating each.
func NewCatalog(templates ...*Template) (*Catalog, error) {
	c := &Catalog{templates: make(map[string]*Template, len(templates))}
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.templates[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.templates[t.ID] = t
		c.order = append(c.order, t.ID)
	}
	return c, nil
}

// Get returns the template for an identifier.
func (c *Catalog) Get(templateID string) (*Template, bool) {
	t, ok := c.templates[templateID]
	return t, ok
}

// List returns all templates in registration order.
func (c *Catalog) List() []*Template {
	out := make([]*Template, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.templates[id])
	}
	return out
}

type catalogFile struct {
	Templates []*Template `yaml:"templates"`
}

// LoadCatalogFile loads additional templates from a YAML file and merges
// them over the built-in set. File templates win on ID collisions.
func LoadCatalogFile(path string, base *Catalog) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read template catalog: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	merged := make(map[string]*Template)
	var order []string
	if base != nil {
		for _, t := range base.List() {
			merged[t.ID] = t
			order = append(order, t.ID)
		}
	}
	for _, t := range file.Templates {
		if err := t.Validate(); err != nil {
			return nil, err
		}
		if _, exists := merged[t.ID]; !exists {
			order = append(order, t.ID)
		}
		merged[t.ID] = t
	}

	return &Catalog{templates: merged, order: order}, nil
}

// BuiltinCatalog returns the construction-safety templates that ship with
// the service.
func BuiltinCatalog() *Catalog {
	c, err := NewCatalog(
		generalSiteSafetyTemplate(),
		scaffoldingInspectionTemplate(),
		excavationTemplate(),
	)
	if err != nil {
		// Built-in templates are covered by tests; reaching this means a
		// programming error, not a runtime condition.
		panic(err)
	}
	return c
}

func generalSiteSafetyTemplate() *Template {
	required := ItemFlags{Required: true, SupportsNotes: true}
	return &Template{
		ID:    "general-site-safety",
		Title: "General Site Safety Inspection",
		Sections: []Section{
			{
				Title: "Site Conditions",
				Items: []Item{
					NewShortTextItem("site-location", "Where is the work site located?", ItemFlags{Required: true, Critical: true, SupportsNotes: true}),
					NewNumericItem("worker-count", "How many workers are on site today?", required),
					NewSelectItem("weather", "What are the current weather conditions?",
						[]string{"Clear", "Rain", "High wind", "Snow/Ice", "Extreme heat"},
						ItemFlags{Required: true, SupportsNotes: true}),
					NewLongTextItem("access-routes", "Describe site access and emergency egress routes.",
						ItemFlags{Required: true, SupportsNotes: true, SupportsImages: true, SupportsFiles: true}),
				},
			},
			{
				Title: "Hazards and Controls",
				Items: []Item{
					NewLongTextItem("identified-hazards", "List all hazards identified during the walkthrough.",
						ItemFlags{Required: true, Critical: true, SupportsNotes: true, SupportsImages: true, SupportsDeadline: true}),
					NewSelectItem("fall-protection", "Is fall protection in place where required?",
						[]string{"Yes", "No", "Not applicable"},
						ItemFlags{Required: true, Critical: true, SupportsImages: true, SupportsDeadline: true}),
					NewSelectItem("ppe-compliance", "Are all workers wearing required PPE?",
						[]string{"Yes", "Partial", "No"},
						ItemFlags{Required: true, Critical: true, SupportsNotes: true, SupportsImages: true}),
					NewShortTextItem("first-aid", "Who is the designated first-aid responder on site?", required),
				},
			},
		},
	}
}

func scaffoldingInspectionTemplate() *Template {
	return &Template{
		ID:    "scaffolding-inspection",
		Title: "Scaffolding Inspection",
		Sections: []Section{
			{
				Title: "Structure",
				Items: []Item{
					NewSelectItem("base-plates", "Are base plates and mudsills sound and level?",
						[]string{"Yes", "No"},
						ItemFlags{Required: true, Critical: true, SupportsImages: true}),
					NewSelectItem("guardrails", "Are guardrails installed on all open sides?",
						[]string{"Yes", "No", "Partial"},
						ItemFlags{Required: true, Critical: true, SupportsImages: true, SupportsDeadline: true}),
					NewNumericItem("max-load", "What is the rated maximum load (kg)?",
						ItemFlags{Required: true, SupportsNotes: true, SupportsFiles: true}),
				},
			},
			{
				Title: "Use",
				Items: []Item{
					NewShortTextItem("competent-person", "Who inspected the scaffold before this shift?",
						ItemFlags{Required: true, SupportsNotes: true}),
					NewLongTextItem("defects", "Record any defects found and actions taken.",
						ItemFlags{SupportsNotes: true, SupportsImages: true, SupportsDeadline: true}),
				},
			},
		},
	}
}

func excavationTemplate() *Template {
	return &Template{
		ID:    "excavation-safety",
		Title: "Excavation and Trenching Safety",
		Sections: []Section{
			{
				Title: "Before Digging",
				Items: []Item{
					NewSelectItem("utilities-located", "Have underground utilities been located and marked?",
						[]string{"Yes", "No"},
						ItemFlags{Required: true, Critical: true, SupportsFiles: true}),
					NewNumericItem("trench-depth", "What is the maximum trench depth (m)?",
						ItemFlags{Required: true, Critical: true}),
					NewSelectItem("protective-system", "What protective system is in use?",
						[]string{"Sloping", "Shoring", "Shielding", "None required (<1.2m)"},
						ItemFlags{Required: true, Critical: true, SupportsImages: true}),
				},
			},
			{
				Title: "Ongoing",
				Items: []Item{
					NewShortTextItem("spoil-distance", "How far is spoil kept from the trench edge?",
						ItemFlags{Required: true, SupportsNotes: true}),
					NewLongTextItem("water-control", "Describe water accumulation controls in place.",
						ItemFlags{SupportsNotes: true, SupportsImages: true}),
				},
			},
		},
	}
}
