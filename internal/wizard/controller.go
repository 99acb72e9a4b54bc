package wizard

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"persona-studio/internal/domain"
)

var (
	ErrUnknownTemplate        = errors.New("unknown template")
	ErrUnknownField           = errors.New("unknown field")
	ErrInvalidValue           = errors.New("invalid value")
	ErrDuplicateKnowledgeItem = errors.New("duplicate knowledge item")
	ErrKnowledgeItemNotFound  = errors.New("knowledge item not found")
	ErrCommitNotAllowed       = errors.New("commit allowed only from review step")
	ErrTrainingInProgress     = errors.New("training in progress")
	ErrWizardClosed           = errors.New("wizard closed")
	ErrUnknownPreset          = errors.New("unknown preset")
	ErrSystemPreset           = errors.New("system presets cannot be deleted")
)

// FinishedFunc recibe el registro terminado. Se invoca una sola vez por ciclo commit-completado.
type FinishedFunc func(domain.Persona)

// Options configura un Controller. Los campos vacios toman valores por defecto.
type Options struct {
	UserID       string
	Scheduler    Scheduler
	TickInterval time.Duration
	Catalog      *Catalog
	OnFinished   FinishedFunc
	Now          func() time.Time
	NewID        func() string
}

// Controller es la maquina de estados del wizard de creacion de personas.
// Los ticks llegan desde la goroutine del scheduler, por eso el estado va bajo mutex.
type Controller struct {
	mu sync.Mutex

	userID       string
	scheduler    Scheduler
	tickInterval time.Duration
	catalog      Catalog
	onFinished   FinishedFunc
	now          func() time.Time
	newID        func() string

	step     Step
	draft    domain.Draft
	errs     ValidationErrors
	training domain.TrainingConfig
	presets  []Preset

	run      *TrainingRun
	cancel   CancelFunc
	finished bool
	closed   bool
	record   *domain.Persona
}

// New crea un Controller en la landing (paso 0) con un draft vacio.
func New(opts Options) *Controller {
	c := &Controller{
		userID:       opts.UserID,
		scheduler:    opts.Scheduler,
		tickInterval: opts.TickInterval,
		onFinished:   opts.OnFinished,
		now:          opts.Now,
		newID:        opts.NewID,
	}
	if c.scheduler == nil {
		c.scheduler = TickerScheduler{}
	}
	if c.tickInterval <= 0 {
		c.tickInterval = DefaultTickInterval
	}
	if opts.Catalog != nil {
		c.catalog = *opts.Catalog
	} else {
		c.catalog = DefaultCatalog()
	}
	if c.now == nil {
		c.now = time.Now
	}
	if c.newID == nil {
		c.newID = uuid.NewString
	}
	c.presets = append([]Preset(nil), c.catalog.Presets...)
	c.resetLocked()
	return c
}

func (c *Controller) resetLocked() {
	c.step = StepLanding
	c.draft = domain.NewDraft()
	c.errs = ValidationErrors{}
	c.training = domain.DefaultTrainingConfig()
	c.run = nil
	c.cancel = nil
	c.finished = false
	c.record = nil
}

// Templates devuelve las plantillas disponibles.
func (c *Controller) Templates() []Template {
	return append([]Template(nil), c.catalog.Templates...)
}

// SelectTemplate carga tipo, rol y sliders de una plantilla y salta al paso 1 sin validar.
func (c *Controller) SelectTemplate(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	tpl, ok := c.catalog.Template(id)
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTemplate, id)
	}
	c.draft.Type = tpl.Type
	c.draft.Role = tpl.Role
	c.draft.Traits = tpl.Traits.Clamped()
	delete(c.errs, FieldType)
	delete(c.errs, FieldRole)
	c.step = StepType
	return nil
}

// Advance valida el paso actual. Si falla guarda los errores y no se mueve;
// si pasa, incrementa el paso con tope en Training.
func (c *Controller) Advance() (ValidationErrors, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, ErrWizardClosed
	}

	found := ValidateStep(c.step, c.draft)
	for _, field := range checkedFields[c.step] {
		if msg, bad := found[field]; bad {
			c.errs[field] = msg
		} else {
			delete(c.errs, field)
		}
	}
	if !found.Empty() {
		return found, nil
	}
	if c.step < LastStep {
		c.step++
	}
	return found, nil
}

// Retreat retrocede un paso sin validar. Bloqueado mientras exista un entrenamiento.
func (c *Controller) Retreat() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrWizardClosed
	}
	if c.run != nil {
		return ErrTrainingInProgress
	}
	if c.step > StepLanding {
		c.step--
	}
	return nil
}

// UpdateField asigna un campo del draft y limpia en el acto el error de ese campo.
// Los sliders se direccionan como "traits.<nombre>" y se limitan a [0,100].
func (c *Controller) UpdateField(field string, value any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}

	switch field {
	case FieldType:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: %w", field, ErrInvalidValue)
		}
		c.draft.Type = domain.PersonaType(strings.TrimSpace(s))
	case FieldName:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: %w", field, ErrInvalidValue)
		}
		c.draft.Name = s
	case FieldRole:
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("%s: %w", field, ErrInvalidValue)
		}
		c.draft.Role = s
	default:
		name, isTrait := strings.CutPrefix(field, TraitFieldPrefix)
		if !isTrait {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		if _, known := c.draft.Traits.Get(name); !known {
			return fmt.Errorf("%w: %s", ErrUnknownField, field)
		}
		n, err := toInt(value)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		c.draft.Traits.Set(name, n)
	}

	delete(c.errs, field)
	return nil
}

// AddKnowledgeItem agrega una fuente al principio de la lista.
func (c *Controller) AddKnowledgeItem(item domain.KnowledgeItem) (domain.KnowledgeItem, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return domain.KnowledgeItem{}, err
	}
	if !item.Kind.Valid() || strings.TrimSpace(item.Title) == "" {
		return domain.KnowledgeItem{}, fmt.Errorf("knowledge item kind %q title %q: %w", item.Kind, item.Title, ErrInvalidValue)
	}
	if item.ID == "" {
		item.ID = c.newID()
	}
	for _, existing := range c.draft.KnowledgeItems {
		if existing.ID == item.ID {
			return domain.KnowledgeItem{}, fmt.Errorf("%w: %s", ErrDuplicateKnowledgeItem, item.ID)
		}
	}
	items := make([]domain.KnowledgeItem, 0, len(c.draft.KnowledgeItems)+1)
	items = append(items, item)
	items = append(items, c.draft.KnowledgeItems...)
	c.draft.KnowledgeItems = items
	return item, nil
}

// RemoveKnowledgeItem quita una fuente por id conservando el orden del resto.
func (c *Controller) RemoveKnowledgeItem(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return err
	}
	for i, item := range c.draft.KnowledgeItems {
		if item.ID != id {
			continue
		}
		items := make([]domain.KnowledgeItem, 0, len(c.draft.KnowledgeItems)-1)
		items = append(items, c.draft.KnowledgeItems[:i]...)
		items = append(items, c.draft.KnowledgeItems[i+1:]...)
		c.draft.KnowledgeItems = items
		return nil
	}
	return fmt.Errorf("%w: %s", ErrKnowledgeItemNotFound, id)
}

// SetTrainingConfig reemplaza la configuracion de entrenamiento (normalizada).
func (c *Controller) SetTrainingConfig(cfg domain.TrainingConfig) (domain.TrainingConfig, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.editableLocked(); err != nil {
		return domain.TrainingConfig{}, err
	}
	c.training = cfg.Normalize()
	return c.training, nil
}

// Commit crea el entrenamiento, pasa a Training y arranca el timer.
// Si ya hay un entrenamiento es un no-op: nunca se crea un segundo timer.
func (c *Controller) Commit() error {
	return c.CommitWith(nil)
}

// CommitWith es Commit con una condicion extra que se evalua bajo el lock,
// solo cuando el commit realmente crearia un entrenamiento. Si allow devuelve
// error, el wizard no cambia y ese error se propaga.
func (c *Controller) CommitWith(allow func() error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrWizardClosed
	}
	if c.run != nil {
		return nil
	}
	if c.step != StepReview {
		return ErrCommitNotAllowed
	}
	if allow != nil {
		if err := allow(); err != nil {
			return err
		}
	}
	run := &TrainingRun{ProgressPercent: 0, StartedAt: c.now().UTC()}
	c.run = run
	c.step = StepTraining
	c.cancel = c.scheduler.Every(c.tickInterval, func() { c.tick(run) })
	return nil
}

// Tick avanza el entrenamiento actual un punto. Al llegar a 100 cancela el timer
// y emite el registro una sola vez; los ticks posteriores no hacen nada.
func (c *Controller) Tick() {
	c.tick(nil)
}

// tick ignora los ticks de un timer cuyo entrenamiento ya no es el actual.
// owner nil significa el entrenamiento en curso.
func (c *Controller) tick(owner *TrainingRun) {
	c.mu.Lock()
	if c.closed || c.run == nil || c.finished || (owner != nil && owner != c.run) {
		c.mu.Unlock()
		return
	}
	if c.run.ProgressPercent < ProgressMax {
		c.run.ProgressPercent++
	}
	if c.run.ProgressPercent < ProgressMax {
		c.mu.Unlock()
		return
	}

	c.finished = true
	c.stopLocked()
	record := buildPersona(c.newID(), c.userID, c.draft, c.training, c.now())
	c.record = &record
	hook := c.onFinished
	c.mu.Unlock()

	if hook != nil {
		hook(record)
	}
}

// Close libera el timer. Despues de Close ningun tick modifica el estado.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	c.stopLocked()
}

// Reset vuelve a la landing con un draft nuevo. Los presets guardados se conservan.
func (c *Controller) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrWizardClosed
	}
	c.stopLocked()
	c.resetLocked()
	return nil
}

// Training indica si hay un entrenamiento en curso (creado y no terminado).
func (c *Controller) Training() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.run != nil && !c.finished
}

// Record devuelve el registro emitido, si el entrenamiento termino.
func (c *Controller) Record() (domain.Persona, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.record == nil {
		return domain.Persona{}, false
	}
	return *c.record, true
}

func (c *Controller) stopLocked() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// editableLocked rechaza cambios al draft una vez comprometido o cerrado.
func (c *Controller) editableLocked() error {
	if c.closed {
		return ErrWizardClosed
	}
	if c.run != nil {
		return ErrTrainingInProgress
	}
	return nil
}

func toInt(value any) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int32:
		return int(v), nil
	case int64:
		return clampInt64(v), nil
	case float64:
		if math.IsNaN(v) {
			return 0, ErrInvalidValue
		}
		return clampFloat(v), nil
	case json.Number:
		f, err := v.Float64()
		if err != nil || math.IsNaN(f) {
			return 0, ErrInvalidValue
		}
		return clampFloat(f), nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) {
			return 0, ErrInvalidValue
		}
		return clampFloat(f), nil
	}
	return 0, ErrInvalidValue
}

// clampFloat redondea y evita overflow al convertir a int.
func clampFloat(f float64) int {
	if f < domain.TraitMin {
		return domain.TraitMin
	}
	if f > domain.TraitMax {
		return domain.TraitMax
	}
	return int(math.Round(f))
}

func clampInt64(v int64) int {
	if v < domain.TraitMin {
		return domain.TraitMin
	}
	if v > domain.TraitMax {
		return domain.TraitMax
	}
	return int(v)
}
