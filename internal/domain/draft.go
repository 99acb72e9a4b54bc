package domain

import "strings"

// PersonaType es la categoria cerrada de un persona.
type PersonaType string

const (
	PersonaTypeClone     PersonaType = "clone"     // "Digital You"
	PersonaTypeExpert    PersonaType = "expert"
	PersonaTypeCharacter PersonaType = "character"
)

// PersonaTypes lista el conjunto cerrado de tipos validos.
var PersonaTypes = []PersonaType{PersonaTypeClone, PersonaTypeExpert, PersonaTypeCharacter}

// Valid indica si el tipo pertenece al conjunto cerrado.
func (t PersonaType) Valid() bool {
	for _, pt := range PersonaTypes {
		if t == pt {
			return true
		}
	}
	return false
}

// Label devuelve el nombre visible del tipo.
func (t PersonaType) Label() string {
	switch t {
	case PersonaTypeClone:
		return "Digital You"
	case PersonaTypeExpert:
		return "Expert"
	case PersonaTypeCharacter:
		return "Character"
	}
	return string(t)
}

const (
	TraitMin     = 0
	TraitMax     = 100
	TraitDefault = 50
)

// Nombres de los sliders de personalidad.
const (
	TraitFormalCasual        = "formal_casual"
	TraitDirectDiplomatic    = "direct_diplomatic"
	TraitSeriousPlayful      = "serious_playful"
	TraitAnalyticalEmotional = "analytical_emotional"
	TraitCalmExpressive      = "calm_expressive"
)

// TraitNames conserva el orden de presentacion de los sliders.
var TraitNames = []string{
	TraitFormalCasual,
	TraitDirectDiplomatic,
	TraitSeriousPlayful,
	TraitAnalyticalEmotional,
	TraitCalmExpressive,
}

// Traits agrupa los sliders de personalidad, cada uno en [0,100].
type Traits struct {
	FormalCasual        int `json:"formal_casual" yaml:"formal_casual"`               // Formal vs. Casual
	DirectDiplomatic    int `json:"direct_diplomatic" yaml:"direct_diplomatic"`       // Directo vs. Diplomatico
	SeriousPlayful      int `json:"serious_playful" yaml:"serious_playful"`           // Serio vs. Jugueton
	AnalyticalEmotional int `json:"analytical_emotional" yaml:"analytical_emotional"` // Analitico vs. Emocional
	CalmExpressive      int `json:"calm_expressive" yaml:"calm_expressive"`           // Calmado vs. Expresivo
}

// DefaultTraits devuelve todos los sliders en el punto medio.
func DefaultTraits() Traits {
	return Traits{
		FormalCasual:        TraitDefault,
		DirectDiplomatic:    TraitDefault,
		SeriousPlayful:      TraitDefault,
		AnalyticalEmotional: TraitDefault,
		CalmExpressive:      TraitDefault,
	}
}

// ClampTrait limita un valor al rango [0,100].
func ClampTrait(v int) int {
	if v < TraitMin {
		return TraitMin
	}
	if v > TraitMax {
		return TraitMax
	}
	return v
}

// Set asigna un slider por nombre, aplicando clamp. Devuelve false si el nombre no existe.
func (t *Traits) Set(name string, value int) bool {
	value = ClampTrait(value)
	switch name {
	case TraitFormalCasual:
		t.FormalCasual = value
	case TraitDirectDiplomatic:
		t.DirectDiplomatic = value
	case TraitSeriousPlayful:
		t.SeriousPlayful = value
	case TraitAnalyticalEmotional:
		t.AnalyticalEmotional = value
	case TraitCalmExpressive:
		t.CalmExpressive = value
	default:
		return false
	}
	return true
}

// Get lee un slider por nombre.
func (t Traits) Get(name string) (int, bool) {
	switch name {
	case TraitFormalCasual:
		return t.FormalCasual, true
	case TraitDirectDiplomatic:
		return t.DirectDiplomatic, true
	case TraitSeriousPlayful:
		return t.SeriousPlayful, true
	case TraitAnalyticalEmotional:
		return t.AnalyticalEmotional, true
	case TraitCalmExpressive:
		return t.CalmExpressive, true
	}
	return 0, false
}

// Clamped devuelve una copia con todos los sliders dentro de rango.
func (t Traits) Clamped() Traits {
	for _, name := range TraitNames {
		v, _ := t.Get(name)
		t.Set(name, v)
	}
	return t
}

// KnowledgeKind etiqueta el origen de una fuente de conocimiento.
type KnowledgeKind string

const (
	KnowledgeKindFile    KnowledgeKind = "file"
	KnowledgeKindURL     KnowledgeKind = "url"
	KnowledgeKindYouTube KnowledgeKind = "youtube"
	KnowledgeKindText    KnowledgeKind = "text"
	KnowledgeKindAudio   KnowledgeKind = "audio"
)

func (k KnowledgeKind) Valid() bool {
	switch k {
	case KnowledgeKindFile, KnowledgeKindURL, KnowledgeKindYouTube, KnowledgeKindText, KnowledgeKindAudio:
		return true
	}
	return false
}

// KnowledgeItem es una referencia a una fuente adjunta al draft.
type KnowledgeItem struct {
	ID      string        `json:"id"`
	Kind    KnowledgeKind `json:"kind"`
	Title   string        `json:"title"`
	Content string        `json:"content,omitempty"`
}

// Draft es el persona en construccion dentro del wizard.
type Draft struct {
	Type           PersonaType     `json:"type"`
	Name           string          `json:"name"`
	Role           string          `json:"role"`
	Traits         Traits          `json:"traits"`
	KnowledgeItems []KnowledgeItem `json:"knowledge_items"`
}

// NewDraft devuelve un draft vacio con sliders por defecto.
func NewDraft() Draft {
	return Draft{
		Traits:         DefaultTraits(),
		KnowledgeItems: []KnowledgeItem{},
	}
}

// Clone copia el draft sin compartir el slice de fuentes.
func (d Draft) Clone() Draft {
	items := make([]KnowledgeItem, len(d.KnowledgeItems))
	copy(items, d.KnowledgeItems)
	d.KnowledgeItems = items
	return d
}

// TrimmedName devuelve el nombre sin espacios alrededor.
func (d Draft) TrimmedName() string {
	return strings.TrimSpace(d.Name)
}

// TrimmedRole devuelve el rol sin espacios alrededor.
func (d Draft) TrimmedRole() string {
	return strings.TrimSpace(d.Role)
}
