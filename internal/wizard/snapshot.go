package wizard

import (
	"persona-studio/internal/domain"
)

// Estimates resume tiempo y costo estimados del entrenamiento.
type Estimates struct {
	Minutes int     `json:"minutes"`
	CostUSD float64 `json:"cost_usd"`
}

// RunView es la vista derivada del entrenamiento. Nada de esto se guarda.
type RunView struct {
	ProgressPercent int      `json:"progress_percent"`
	Phase           Phase    `json:"phase"`
	Message         string   `json:"message"`
	Metrics         Metrics  `json:"metrics"`
	Log             []string `json:"log"`
	Complete        bool     `json:"complete"`
}

// Snapshot es una copia inmutable del estado del wizard para renderizar.
type Snapshot struct {
	Step           Step                  `json:"step"`
	StepTitle      string                `json:"step_title"`
	Draft          domain.Draft          `json:"draft"`
	Errors         ValidationErrors      `json:"errors"`
	TrainingConfig domain.TrainingConfig `json:"training_config"`
	Estimates      Estimates             `json:"estimates"`
	Presets        []Preset              `json:"presets"`
	Run            *RunView              `json:"training_run,omitempty"`
	PersonaID      string                `json:"persona_id,omitempty"`
	Closed         bool                  `json:"closed"`
}

// Snapshot devuelve el estado actual; las metricas se recalculan en cada llamada.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Snapshot{
		Step:           c.step,
		StepTitle:      c.step.Title(),
		Draft:          c.draft.Clone(),
		Errors:         c.errs.clone(),
		TrainingConfig: c.training,
		Estimates: Estimates{
			Minutes: c.training.EstimatedMinutes(),
			CostUSD: c.training.EstimatedCost(),
		},
		Presets: append([]Preset(nil), c.presets...),
		Closed:  c.closed,
	}
	if c.run != nil {
		p := c.run.ProgressPercent
		phase := PhaseFor(p)
		s.Run = &RunView{
			ProgressPercent: p,
			Phase:           phase,
			Message:         phase.Message(),
			Metrics:         ComputeMetrics(p, c.training.Epochs),
			Log:             LogLines(p),
			Complete:        c.finished,
		}
	}
	if c.record != nil {
		s.PersonaID = c.record.ID
	}
	return s
}
