package wizard

import (
	"fmt"
	"strings"

	"persona-studio/internal/domain"
)

// Presets devuelve los presets de sistema seguidos de los guardados por el usuario.
func (c *Controller) Presets() []Preset {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Preset(nil), c.presets...)
}

// SavePreset guarda la configuracion de entrenamiento actual con un nombre.
// Como el resto de la configuracion, queda congelado mientras haya un entrenamiento.
func (c *Controller) SavePreset(name string) (Preset, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return Preset{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return Preset{}, fmt.Errorf("preset name is empty: %w", ErrInvalidValue)
	}
	p := Preset{
		ID:     "custom-" + c.newID(),
		Name:   name,
		Config: c.training,
	}
	c.presets = append(c.presets, p)
	return p, nil
}

// DeletePreset elimina un preset propio. Los de sistema no se pueden borrar.
func (c *Controller) DeletePreset(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	for i, p := range c.presets {
		if p.ID != id {
			continue
		}
		if p.System {
			return ErrSystemPreset
		}
		c.presets = append(c.presets[:i:i], c.presets[i+1:]...)
		return nil
	}
	return fmt.Errorf("%w: %s", ErrUnknownPreset, id)
}

// ApplyPreset copia la configuracion del preset al wizard.
func (c *Controller) ApplyPreset(id string) (domain.TrainingConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return domain.TrainingConfig{}, err
	}
	for _, p := range c.presets {
		if p.ID == id {
			c.training = p.Config.Normalize()
			return c.training, nil
		}
	}
	return domain.TrainingConfig{}, fmt.Errorf("%w: %s", ErrUnknownPreset, id)
}
