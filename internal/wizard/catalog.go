package wizard

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"persona-studio/internal/domain"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Template es una plantilla integrada que precarga tipo, rol y sliders.
type Template struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Role        string             `json:"role" yaml:"role"`
	Description string             `json:"description" yaml:"description"`
	Type        domain.PersonaType `json:"type" yaml:"type"`
	Traits      domain.Traits      `json:"traits" yaml:"traits"`
}

// Preset es una configuracion de entrenamiento guardada.
type Preset struct {
	ID     string                `json:"id" yaml:"id"`
	Name   string                `json:"name" yaml:"name"`
	Config domain.TrainingConfig `json:"config" yaml:"config"`
	System bool                  `json:"is_system" yaml:"-"`
}

// Catalog agrupa plantillas y presets de sistema.
type Catalog struct {
	Templates []Template `yaml:"templates"`
	Presets   []Preset   `yaml:"presets"`
}

// ParseCatalog decodifica y valida un catalogo YAML.
func ParseCatalog(data []byte) (Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Catalog{}, fmt.Errorf("parse catalog: %w", err)
	}
	seen := make(map[string]struct{}, len(c.Templates))
	for i, tpl := range c.Templates {
		if tpl.ID == "" {
			return Catalog{}, fmt.Errorf("template %d: missing id", i)
		}
		if _, dup := seen[tpl.ID]; dup {
			return Catalog{}, fmt.Errorf("template %s: duplicate id", tpl.ID)
		}
		seen[tpl.ID] = struct{}{}
		if !tpl.Type.Valid() {
			return Catalog{}, fmt.Errorf("template %s: invalid type %q", tpl.ID, tpl.Type)
		}
		c.Templates[i].Traits = tpl.Traits.Clamped()
	}
	for i := range c.Presets {
		c.Presets[i].System = true
		c.Presets[i].Config = c.Presets[i].Config.Normalize()
	}
	return c, nil
}

var (
	defaultCatalogOnce sync.Once
	defaultCatalog     Catalog
)

// DefaultCatalog devuelve el catalogo embebido. Entra en panic si el YAML embebido es invalido.
func DefaultCatalog() Catalog {
	defaultCatalogOnce.Do(func() {
		c, err := ParseCatalog(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return Catalog{
		Templates: append([]Template(nil), defaultCatalog.Templates...),
		Presets:   append([]Preset(nil), defaultCatalog.Presets...),
	}
}

// Template busca una plantilla por id.
func (c Catalog) Template(id string) (Template, bool) {
	for _, tpl := range c.Templates {
		if tpl.ID == id {
			return tpl, true
		}
	}
	return Template{}, false
}
