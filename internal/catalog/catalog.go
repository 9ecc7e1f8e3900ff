package catalog

import (
	_ "embed"
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Level is the conformance level a criterion belongs to.
type Level string

const (
	// LevelA is WCAG Level A.
	LevelA Level = "A"
	// LevelAA is WCAG Level AA.
	LevelAA Level = "AA"
	// LevelAAA is WCAG Level AAA.
	LevelAAA Level = "AAA"
	// LevelEU marks EN 301 549 rows outside the WCAG tables.
	LevelEU Level = "EU"
)

// Edition codes accepted by CriteriaForEdition. Unknown codes fall back to
// the A+AA subset.
const (
	EditionSection508    = "vpat24-508"
	EditionWCAG          = "vpat24-wcag"
	EditionEU            = "vpat24-eu"
	EditionInternational = "vpat24-int"
)

// Criterion is one success criterion from the catalog.
type Criterion struct {
	ID      string `koanf:"id" json:"id"`
	Name    string `koanf:"name" json:"name"`
	Level   Level  `koanf:"level" json:"level"`
	Section string `koanf:"section" json:"section"`
}

// Edition selects which criteria a report edition covers.
type Edition struct {
	Code        string   `koanf:"code" json:"code"`
	Name        string   `koanf:"name" json:"name"`
	CriteriaIDs []string `koanf:"criteria_ids" json:"criteria_ids"`
}

// Catalog is the loaded, immutable criterion catalog.
type Catalog struct {
	criteria []Criterion
	byID     map[string]Criterion
	editions map[string]Edition
}

// Load parses the embedded catalog resource.
func Load() (*Catalog, error) {
	return LoadBytes(catalogYAML)
}

// LoadBytes parses a catalog from raw YAML. Exposed for tests that need a
// reduced catalog.
func LoadBytes(data []byte) (*Catalog, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	var file struct {
		Criteria []Criterion `koanf:"criteria"`
		Editions []Edition   `koanf:"editions"`
	}
	if err := k.Unmarshal("", &file); err != nil {
		return nil, fmt.Errorf("failed to unmarshal catalog: %w", err)
	}

	c := &Catalog{
		criteria: file.Criteria,
		byID:     make(map[string]Criterion, len(file.Criteria)),
		editions: make(map[string]Edition, len(file.Editions)),
	}

	for _, crit := range file.Criteria {
		if crit.ID == "" {
			return nil, fmt.Errorf("catalog contains a criterion without an id")
		}
		if _, dup := c.byID[crit.ID]; dup {
			return nil, fmt.Errorf("duplicate criterion id %q", crit.ID)
		}
		c.byID[crit.ID] = crit
	}

	for _, ed := range file.Editions {
		for _, id := range ed.CriteriaIDs {
			if _, ok := c.byID[id]; !ok {
				return nil, fmt.Errorf("edition %q references unknown criterion %q", ed.Code, id)
			}
		}
		c.editions[ed.Code] = ed
	}

	return c, nil
}

// Criteria returns all catalog criteria in catalog order.
func (c *Catalog) Criteria() []Criterion {
	out := make([]Criterion, len(c.criteria))
	copy(out, c.criteria)
	return out
}

// Criterion looks up a criterion by id.
func (c *Catalog) Criterion(id string) (Criterion, bool) {
	crit, ok := c.byID[id]
	return crit, ok
}

// Editions returns the known editions.
func (c *Catalog) Editions() []Edition {
	out := make([]Edition, 0, len(c.editions))
	// Stable order: follow catalog constant order, then any extras.
	for _, code := range []string{EditionSection508, EditionWCAG, EditionEU, EditionInternational} {
		if ed, ok := c.editions[code]; ok {
			out = append(out, ed)
		}
	}
	for code, ed := range c.editions {
		if !isKnownEditionCode(code) {
			out = append(out, ed)
		}
	}
	return out
}

// CriteriaForEdition returns the criteria an edition reports on, in catalog
// order. An unknown edition code falls back to the WCAG A+AA subset rather
// than erroring; an edition that selects nothing yields an empty slice.
func (c *Catalog) CriteriaForEdition(code string) []Criterion {
	ed, ok := c.editions[code]
	if !ok {
		return c.levelSubset(LevelA, LevelAA)
	}

	selected := make(map[string]struct{}, len(ed.CriteriaIDs))
	for _, id := range ed.CriteriaIDs {
		selected[id] = struct{}{}
	}

	out := make([]Criterion, 0, len(ed.CriteriaIDs))
	for _, crit := range c.criteria {
		if _, ok := selected[crit.ID]; ok {
			out = append(out, crit)
		}
	}
	return out
}

func (c *Catalog) levelSubset(levels ...Level) []Criterion {
	want := make(map[Level]struct{}, len(levels))
	for _, l := range levels {
		want[l] = struct{}{}
	}
	var out []Criterion
	for _, crit := range c.criteria {
		if _, ok := want[crit.Level]; ok {
			out = append(out, crit)
		}
	}
	return out
}

func isKnownEditionCode(code string) bool {
	switch code {
	case EditionSection508, EditionWCAG, EditionEU, EditionInternational:
		return true
	}
	return false
}
