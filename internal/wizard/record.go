package wizard

import (
	"net/url"
	"strings"
	"time"

	"persona-studio/internal/domain"
)

const avatarBaseURL = "https://ui-avatars.com/api/"

// buildPersona convierte el draft en el registro final que recibe la aplicacion.
func buildPersona(id, userID string, draft domain.Draft, cfg domain.TrainingConfig, now time.Time) domain.Persona {
	name := draft.TrimmedName()
	if name == "" {
		name = "Untitled Persona"
	}
	role := draft.TrimmedRole()
	description := role
	if role == "" {
		role = "Digital Assistant"
		description = "Custom Persona"
	}
	personaType := draft.Type
	if !personaType.Valid() {
		personaType = domain.PersonaTypeExpert
	}

	snapshot := draft.Clone()
	return domain.Persona{
		ID:          id,
		UserID:      userID,
		Name:        name,
		Role:        role,
		Description: description,
		AvatarURL:   AvatarURL(draft.TrimmedName()),
		Type:        personaType,
		Identity: domain.PersonaIdentity{
			Tone:      "Custom",
			Objective: draft.TrimmedRole(),
		},
		Traits:     snapshot.Traits.Clamped(),
		Knowledge:  snapshot.KnowledgeItems,
		Training:   cfg,
		Status:     domain.PersonaStatusTraining,
		Visibility: domain.VisibilityPrivate,
		CreatedAt:  now.UTC(),
	}
}

// AvatarURL genera la referencia del avatar placeholder.
func AvatarURL(name string) string {
	if name == "" {
		name = "AI"
	}
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return avatarBaseURL + "?name=" + escaped + "&background=random"
}
