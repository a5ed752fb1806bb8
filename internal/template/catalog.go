// Package template holds the static phase template catalog. The
// catalog is embedded at build time, parsed once at process start,
// and never mutated afterwards.
package template

import (
	_ "embed"
	"fmt"

	"github.com/planforge/planforge/internal/types"
	"gopkg.in/yaml.v3"
)

//go:embed templates.yaml
var catalogYAML []byte

// Catalog is the loaded template library keyed by goal type and
// extension type
type Catalog struct {
	goalTemplates map[types.GoalType][]types.PhaseTemplate
	extTemplates  map[types.ExtensionType][]types.PhaseTemplate
	byID          map[string]types.PhaseTemplate
}

type catalogFile struct {
	GoalTypes      map[string][]types.PhaseTemplate `yaml:"goal_types"`
	ExtensionTypes map[string][]types.PhaseTemplate `yaml:"extension_types"`
}

// Load parses and validates the embedded catalog. A dependency
// reference to a nonexistent template id is a fatal configuration
// error raised here, never mid-execution.
func Load() (*Catalog, error) {
	return load(catalogYAML)
}

func load(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("catalog: invalid YAML: %w", err)
	}

	c := &Catalog{
		goalTemplates: make(map[types.GoalType][]types.PhaseTemplate),
		extTemplates:  make(map[types.ExtensionType][]types.PhaseTemplate),
		byID:          make(map[string]types.PhaseTemplate),
	}

	for key, templates := range file.GoalTypes {
		goalType := types.GoalType(key)
		if !goalType.IsValid() {
			return nil, fmt.Errorf("catalog: unknown goal type %q", key)
		}
		if err := c.add(templates); err != nil {
			return nil, err
		}
		c.goalTemplates[goalType] = templates
	}
	for key, templates := range file.ExtensionTypes {
		extType := types.ExtensionType(key)
		if !extType.IsValid() {
			return nil, fmt.Errorf("catalog: unknown extension type %q", key)
		}
		if err := c.add(templates); err != nil {
			return nil, err
		}
		c.extTemplates[extType] = templates
	}

	// Dependency references must resolve within the catalog
	for id, tpl := range c.byID {
		for _, dep := range tpl.DependsOn {
			if _, ok := c.byID[dep]; !ok {
				return nil, fmt.Errorf("catalog: template %q depends on unknown template %q", id, dep)
			}
		}
	}

	for _, goalType := range types.AllGoalTypes() {
		if len(c.goalTemplates[goalType]) == 0 {
			return nil, fmt.Errorf("catalog: no templates for goal type %q", goalType)
		}
	}
	for _, extType := range types.AllExtensionTypes() {
		if len(c.extTemplates[extType]) == 0 {
			return nil, fmt.Errorf("catalog: no templates for extension type %q", extType)
		}
	}

	return c, nil
}

func (c *Catalog) add(templates []types.PhaseTemplate) error {
	for i := range templates {
		tpl := &templates[i]
		if err := tpl.Validate(); err != nil {
			return fmt.Errorf("catalog: %w", err)
		}
		if _, dup := c.byID[tpl.ID]; dup {
			return fmt.Errorf("catalog: duplicate template id %q", tpl.ID)
		}
		c.byID[tpl.ID] = *tpl
	}
	return nil
}

// ForGoalType returns the template set for a goal type, in catalog order
func (c *Catalog) ForGoalType(goalType types.GoalType) []types.PhaseTemplate {
	return c.goalTemplates[goalType]
}

// ForExtensionType returns the template set for an extension type
func (c *Catalog) ForExtensionType(extType types.ExtensionType) []types.PhaseTemplate {
	return c.extTemplates[extType]
}

// ByID looks up a single template
func (c *Catalog) ByID(id string) (types.PhaseTemplate, bool) {
	tpl, ok := c.byID[id]
	return tpl, ok
}

// Size returns the total number of templates loaded
func (c *Catalog) Size() int {
	return len(c.byID)
}
