package wizard

import (
	"persona-studio/internal/domain"
)

// Campos del draft direccionables por UpdateField y por los errores.
const (
	FieldType = "type"
	FieldName = "name"
	FieldRole = "role"

	// Los sliders se direccionan como "traits.<nombre>".
	TraitFieldPrefix = "traits."
)

// Mensajes de validacion mostrados junto al campo.
const (
	MsgTypeRequired = "Please select a persona type to continue."
	MsgNameRequired = "Persona name is required."
	MsgRoleRequired = "Role description is required."
)

// ValidationErrors mapea campo -> mensaje legible.
type ValidationErrors map[string]string

// Empty indica que no hay errores.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

func (v ValidationErrors) clone() ValidationErrors {
	out := make(ValidationErrors, len(v))
	for k, msg := range v {
		out[k] = msg
	}
	return out
}

// checkedFields indica que campos valida cada paso al salir de el.
var checkedFields = map[Step][]string{
	StepType:     {FieldType},
	StepIdentity: {FieldName, FieldRole},
}

// ValidateStep evalua el draft contra las reglas del paso que se abandona.
// Devuelve un mapa vacio si se puede avanzar.
func ValidateStep(step Step, draft domain.Draft) ValidationErrors {
	errs := ValidationErrors{}
	switch step {
	case StepType:
		if !draft.Type.Valid() {
			errs[FieldType] = MsgTypeRequired
		}
	case StepIdentity:
		if draft.TrimmedName() == "" {
			errs[FieldName] = MsgNameRequired
		}
		if draft.TrimmedRole() == "" {
			errs[FieldRole] = MsgRoleRequired
		}
	}
	return errs
}
