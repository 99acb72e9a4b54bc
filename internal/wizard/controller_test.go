package wizard

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"persona-studio/internal/domain"
)

type manualScheduler struct {
	mu        sync.Mutex
	fn        func()
	fns       []func()
	interval  time.Duration
	scheduled int
	cancels   int
}

func (m *manualScheduler) Every(interval time.Duration, fn func()) CancelFunc {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fn = fn
	m.fns = append(m.fns, fn)
	m.interval = interval
	m.scheduled++
	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		m.cancels++
	}
}

func (m *manualScheduler) fire(n int) {
	for i := 0; i < n; i++ {
		m.fn()
	}
}

// fireTimer dispara el callback del timer numero idx aunque ya se haya cancelado.
func (m *manualScheduler) fireTimer(idx, n int) {
	m.mu.Lock()
	fn := m.fns[idx]
	m.mu.Unlock()
	for i := 0; i < n; i++ {
		fn()
	}
}

type finishedRecorder struct {
	mu      sync.Mutex
	records []domain.Persona
}

func (r *finishedRecorder) record(p domain.Persona) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, p)
}

func (r *finishedRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.records)
}

var fixedNow = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestController(t *testing.T) (*Controller, *manualScheduler, *finishedRecorder) {
	t.Helper()
	sched := &manualScheduler{}
	rec := &finishedRecorder{}
	seq := 0
	c := New(Options{
		UserID:     "u1",
		Scheduler:  sched,
		OnFinished: rec.record,
		Now:        func() time.Time { return fixedNow },
		NewID: func() string {
			seq++
			return "id-" + strings.Repeat("x", seq)
		},
	})
	return c, sched, rec
}

// walkToReview lleva un controller valido hasta el paso Review.
func walkToReview(t *testing.T, c *Controller) {
	t.Helper()
	if err := c.SelectTemplate("tpl-1"); err != nil {
		t.Fatalf("select template: %v", err)
	}
	if err := c.UpdateField(FieldName, "Sarah"); err != nil {
		t.Fatalf("update name: %v", err)
	}
	for c.Snapshot().Step < StepReview {
		errs, err := c.Advance()
		if err != nil || !errs.Empty() {
			t.Fatalf("advance failed at step %d: errs=%v err=%v", c.Snapshot().Step, errs, err)
		}
	}
}

func TestNewControllerStartsAtLanding(t *testing.T) {
	c, _, _ := newTestController(t)
	s := c.Snapshot()
	if s.Step != StepLanding {
		t.Fatalf("expected landing step, got %d", s.Step)
	}
	if s.Draft.Traits != domain.DefaultTraits() {
		t.Fatalf("expected default traits, got %+v", s.Draft.Traits)
	}
	if s.Run != nil {
		t.Fatalf("expected no training run")
	}
	if s.TrainingConfig != domain.DefaultTrainingConfig() {
		t.Fatalf("unexpected training config %+v", s.TrainingConfig)
	}
}

func TestAdvanceTypeStepRequiresType(t *testing.T) {
	c, _, _ := newTestController(t)
	if _, err := c.Advance(); err != nil {
		t.Fatalf("advance from landing: %v", err)
	}

	for _, value := range []string{"", "   ", "robot"} {
		if err := c.UpdateField(FieldType, value); err != nil {
			t.Fatalf("update type: %v", err)
		}
		errs, err := c.Advance()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		s := c.Snapshot()
		if s.Step != StepType {
			t.Fatalf("type=%q: expected step to stay at 1, got %d", value, s.Step)
		}
		if errs[FieldType] != MsgTypeRequired || s.Errors[FieldType] != MsgTypeRequired {
			t.Fatalf("type=%q: expected type error, got %v", value, s.Errors)
		}
	}
}

func TestAdvanceIdentityStepRequiresNameAndRole(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.SelectTemplate("tpl-2"); err != nil {
		t.Fatalf("select template: %v", err)
	}
	if _, err := c.Advance(); err != nil {
		t.Fatalf("advance: %v", err)
	}
	if err := c.UpdateField(FieldRole, "  "); err != nil {
		t.Fatalf("update role: %v", err)
	}
	if err := c.UpdateField(FieldName, "\t"); err != nil {
		t.Fatalf("update name: %v", err)
	}

	errs, _ := c.Advance()
	if c.Snapshot().Step != StepIdentity {
		t.Fatalf("expected to stay at identity")
	}
	want := ValidationErrors{FieldName: MsgNameRequired, FieldRole: MsgRoleRequired}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Fatalf("errors mismatch (-want +got):\n%s", diff)
	}

	if err := c.UpdateField(FieldName, "Sarah"); err != nil {
		t.Fatalf("update name: %v", err)
	}
	errs, _ = c.Advance()
	if _, ok := errs[FieldName]; ok {
		t.Fatalf("name should be valid now")
	}
	if errs[FieldRole] != MsgRoleRequired {
		t.Fatalf("expected role error only, got %v", errs)
	}

	if err := c.UpdateField(FieldRole, "Advisor"); err != nil {
		t.Fatalf("update role: %v", err)
	}
	errs, _ = c.Advance()
	if !errs.Empty() {
		t.Fatalf("expected no errors, got %v", errs)
	}
	s := c.Snapshot()
	if s.Step != StepPersonality {
		t.Fatalf("expected step 3, got %d", s.Step)
	}
	if len(s.Errors) != 0 {
		t.Fatalf("expected errors cleared, got %v", s.Errors)
	}
}

func TestAdvanceExpertExample(t *testing.T) {
	c, _, _ := newTestController(t)
	_, _ = c.Advance()
	_ = c.UpdateField(FieldType, "expert")
	_, _ = c.Advance()
	_ = c.UpdateField(FieldName, "Sarah")
	_ = c.UpdateField(FieldRole, "Advisor")

	errs, err := c.Advance()
	if err != nil || !errs.Empty() {
		t.Fatalf("expected success, errs=%v err=%v", errs, err)
	}
	if got := c.Snapshot().Step; got != StepPersonality {
		t.Fatalf("expected step 3, got %d", got)
	}
}

func TestUpdateFieldClearsOnlyThatError(t *testing.T) {
	c, _, _ := newTestController(t)
	_ = c.SelectTemplate("tpl-1")
	_ = c.UpdateField(FieldRole, "")
	_, _ = c.Advance()
	_, _ = c.Advance()

	s := c.Snapshot()
	if len(s.Errors) != 2 {
		t.Fatalf("expected two errors, got %v", s.Errors)
	}

	if err := c.UpdateField(FieldName, "x"); err != nil {
		t.Fatalf("update: %v", err)
	}
	s = c.Snapshot()
	if _, ok := s.Errors[FieldName]; ok {
		t.Fatalf("name error should be cleared")
	}
	if s.Errors[FieldRole] != MsgRoleRequired {
		t.Fatalf("role error should remain, got %v", s.Errors)
	}

	// Limpieza inmediata aunque el valor siga siendo invalido.
	if err := c.UpdateField(FieldRole, " "); err != nil {
		t.Fatalf("update: %v", err)
	}
	if len(c.Snapshot().Errors) != 0 {
		t.Fatalf("expected role error cleared eagerly")
	}
}

func TestRetreatNeverValidates(t *testing.T) {
	c, _, _ := newTestController(t)
	_, _ = c.Advance()
	_ = c.UpdateField(FieldType, "expert")
	_, _ = c.Advance()

	if err := c.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	if got := c.Snapshot().Step; got != StepType {
		t.Fatalf("expected step 1, got %d", got)
	}
	_ = c.UpdateField(FieldType, "")
	if err := c.Retreat(); err != nil {
		t.Fatalf("retreat: %v", err)
	}
	s := c.Snapshot()
	if s.Step != StepLanding {
		t.Fatalf("expected landing, got %d", s.Step)
	}
	if len(s.Errors) != 0 {
		t.Fatalf("retreat must not validate, got %v", s.Errors)
	}
	if err := c.Retreat(); err != nil {
		t.Fatalf("retreat at landing: %v", err)
	}
	if got := c.Snapshot().Step; got != StepLanding {
		t.Fatalf("expected floor at 0, got %d", got)
	}
}

func TestAdvanceCapsAtTraining(t *testing.T) {
	c, _, _ := newTestController(t)
	walkToReview(t, c)
	_, _ = c.Advance()
	_, _ = c.Advance()
	if got := c.Snapshot().Step; got != StepTraining {
		t.Fatalf("expected cap at 6, got %d", got)
	}
}

func TestUpdateFieldClampsTraits(t *testing.T) {
	c, _, _ := newTestController(t)
	tests := []struct {
		value any
		want  int
	}{
		{value: -5, want: 0},
		{value: 150, want: 100},
		{value: 42, want: 42},
		{value: 99.6, want: 100},
		{value: "37", want: 37},
		{value: int64(1 << 40), want: 100},
		{value: 1e300, want: 100},
		{value: -1e300, want: 0},
	}
	for _, tt := range tests {
		if err := c.UpdateField(TraitFieldPrefix+domain.TraitCalmExpressive, tt.value); err != nil {
			t.Fatalf("value=%v: %v", tt.value, err)
		}
		got := c.Snapshot().Draft.Traits.CalmExpressive
		if got != tt.want {
			t.Fatalf("value=%v: expected %d, got %d", tt.value, tt.want, got)
		}
	}
}

func TestUpdateFieldRejectsUnknownAndInvalid(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.UpdateField("nickname", "x"); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := c.UpdateField("traits.mood", 3); !errors.Is(err, ErrUnknownField) {
		t.Fatalf("expected ErrUnknownField, got %v", err)
	}
	if err := c.UpdateField(TraitFieldPrefix+domain.TraitFormalCasual, "loud"); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
	if err := c.UpdateField(FieldName, 12); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestSelectTemplateAssignsAndJumps(t *testing.T) {
	c, _, _ := newTestController(t)
	if err := c.SelectTemplate("tpl-3"); err != nil {
		t.Fatalf("select: %v", err)
	}
	s := c.Snapshot()
	if s.Step != StepType {
		t.Fatalf("expected step 1, got %d", s.Step)
	}
	if s.Draft.Type != domain.PersonaTypeCharacter || s.Draft.Role != "Storyteller" {
		t.Fatalf("unexpected draft %+v", s.Draft)
	}
	want := domain.Traits{FormalCasual: 10, DirectDiplomatic: 20, SeriousPlayful: 10, AnalyticalEmotional: 30, CalmExpressive: 60}
	if s.Draft.Traits != want {
		t.Fatalf("traits mismatch: %+v", s.Draft.Traits)
	}
	if s.Draft.Name != "" {
		t.Fatalf("template must not assign name")
	}
	if err := c.SelectTemplate("tpl-404"); !errors.Is(err, ErrUnknownTemplate) {
		t.Fatalf("expected ErrUnknownTemplate, got %v", err)
	}
}

func TestKnowledgeItemsRoundTrip(t *testing.T) {
	c, _, _ := newTestController(t)
	first, err := c.AddKnowledgeItem(domain.KnowledgeItem{Kind: domain.KnowledgeKindFile, Title: "a.pdf"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if first.ID == "" {
		t.Fatalf("expected generated id")
	}
	if _, err := c.AddKnowledgeItem(domain.KnowledgeItem{ID: "s2", Kind: domain.KnowledgeKindText, Title: "note"}); err != nil {
		t.Fatalf("add: %v", err)
	}
	before := c.Snapshot().Draft.KnowledgeItems
	if before[0].ID != "s2" {
		t.Fatalf("expected newest first, got %+v", before)
	}

	added, err := c.AddKnowledgeItem(domain.KnowledgeItem{Kind: domain.KnowledgeKindURL, Title: "stripe.com"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := c.RemoveKnowledgeItem(added.ID); err != nil {
		t.Fatalf("remove: %v", err)
	}
	after := c.Snapshot().Draft.KnowledgeItems
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("round trip mismatch (-before +after):\n%s", diff)
	}

	if _, err := c.AddKnowledgeItem(domain.KnowledgeItem{ID: "s2", Kind: domain.KnowledgeKindText, Title: "again"}); !errors.Is(err, ErrDuplicateKnowledgeItem) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
	if err := c.RemoveKnowledgeItem("missing"); !errors.Is(err, ErrKnowledgeItemNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCommitOnlyFromReview(t *testing.T) {
	c, sched, _ := newTestController(t)
	if err := c.Commit(); !errors.Is(err, ErrCommitNotAllowed) {
		t.Fatalf("expected ErrCommitNotAllowed, got %v", err)
	}
	if sched.scheduled != 0 {
		t.Fatalf("no timer should be scheduled")
	}
}

func TestCommitRunsTrainingToCompletion(t *testing.T) {
	c, sched, rec := newTestController(t)
	walkToReview(t, c)

	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	s := c.Snapshot()
	if s.Step != StepTraining || s.Run == nil || s.Run.ProgressPercent != 0 {
		t.Fatalf("unexpected state after commit: %+v", s)
	}
	if sched.scheduled != 1 || sched.interval != DefaultTickInterval {
		t.Fatalf("expected one timer at default interval, got %d/%v", sched.scheduled, sched.interval)
	}

	// Commit repetido no crea un segundo timer.
	if err := c.Commit(); err != nil {
		t.Fatalf("second commit: %v", err)
	}
	if sched.scheduled != 1 {
		t.Fatalf("double commit scheduled another timer")
	}
	if err := c.Retreat(); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("expected retreat to be blocked, got %v", err)
	}
	if err := c.UpdateField(FieldName, "Other"); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("expected edits to be blocked, got %v", err)
	}

	last := 0
	for i := 0; i < 99; i++ {
		sched.fire(1)
		p := c.Snapshot().Run.ProgressPercent
		if p < last {
			t.Fatalf("progress decreased: %d -> %d", last, p)
		}
		last = p
	}
	if last != 99 || rec.count() != 0 {
		t.Fatalf("expected 99%% and no emission, got %d%% and %d records", last, rec.count())
	}

	sched.fire(1)
	sched.fire(5)
	s = c.Snapshot()
	if s.Run.ProgressPercent != 100 || !s.Run.Complete {
		t.Fatalf("expected complete at 100, got %+v", s.Run)
	}
	if rec.count() != 1 {
		t.Fatalf("expected exactly one record, got %d", rec.count())
	}
	if sched.cancels != 1 {
		t.Fatalf("expected exactly one cancellation, got %d", sched.cancels)
	}
	if s.Run.Phase != PhaseFinalizing {
		t.Fatalf("expected finalizing phase, got %q", s.Run.Phase)
	}

	got := rec.records[0]
	if got.Name != "Sarah" || got.Role != "Support Agent" || got.Type != domain.PersonaTypeExpert {
		t.Fatalf("unexpected record %+v", got)
	}
	if got.Status != domain.PersonaStatusTraining || got.Visibility != domain.VisibilityPrivate {
		t.Fatalf("unexpected status/visibility %q/%q", got.Status, got.Visibility)
	}
	if got.UserID != "u1" || got.ID == "" || !got.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected ids/timestamps %+v", got)
	}
	if s.PersonaID != got.ID {
		t.Fatalf("snapshot should expose persona id")
	}
	if _, ok := c.Record(); !ok {
		t.Fatalf("expected record to be retrievable")
	}
}

func TestCloseBeforeCompletionPreventsEmission(t *testing.T) {
	c, sched, rec := newTestController(t)
	walkToReview(t, c)
	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	sched.fire(40)
	c.Close()
	c.Close()
	sched.fire(100)

	if rec.count() != 0 {
		t.Fatalf("closed wizard must not emit")
	}
	if sched.cancels != 1 {
		t.Fatalf("expected one cancellation, got %d", sched.cancels)
	}
	if p := c.Snapshot().Run.ProgressPercent; p != 40 {
		t.Fatalf("closed wizard must not progress, got %d", p)
	}
	if _, err := c.Advance(); !errors.Is(err, ErrWizardClosed) {
		t.Fatalf("expected ErrWizardClosed, got %v", err)
	}
}

func TestResetAfterCompletion(t *testing.T) {
	c, sched, _ := newTestController(t)
	walkToReview(t, c)
	_ = c.Commit()
	sched.fire(100)

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	s := c.Snapshot()
	if s.Step != StepLanding || s.Run != nil || s.Draft.Name != "" || s.PersonaID != "" {
		t.Fatalf("expected fresh state, got %+v", s)
	}
	if c.Training() {
		t.Fatalf("expected no training after reset")
	}
}

func TestTrainingConfigAndPresets(t *testing.T) {
	c, _, _ := newTestController(t)

	cfg, err := c.SetTrainingConfig(domain.TrainingConfig{Model: domain.ModelGeminiPro, Epochs: 80, LearningRate: "warp"})
	if err != nil {
		t.Fatalf("set config: %v", err)
	}
	want := domain.TrainingConfig{Model: domain.ModelGeminiPro, Epochs: 50, LearningRate: domain.LearningRateAdaptive}
	if cfg != want {
		t.Fatalf("expected normalized config %+v, got %+v", want, cfg)
	}
	s := c.Snapshot()
	if s.Estimates.Minutes != 100 || s.Estimates.CostUSD != 2.5 {
		t.Fatalf("unexpected estimates %+v", s.Estimates)
	}

	if len(c.Presets()) != 2 {
		t.Fatalf("expected two system presets")
	}
	if _, err := c.SavePreset("   "); !errors.Is(err, ErrInvalidValue) {
		t.Fatalf("expected blank name rejected, got %v", err)
	}
	saved, err := c.SavePreset("Mine")
	if err != nil {
		t.Fatalf("save preset: %v", err)
	}
	if saved.System || saved.Config != want {
		t.Fatalf("unexpected saved preset %+v", saved)
	}

	applied, err := c.ApplyPreset("preset-1")
	if err != nil {
		t.Fatalf("apply: %v", err)
	}
	if applied.Epochs != 5 || applied.Model != domain.ModelGeminiFlash {
		t.Fatalf("unexpected applied config %+v", applied)
	}
	if err := c.DeletePreset("preset-2"); !errors.Is(err, ErrSystemPreset) {
		t.Fatalf("expected ErrSystemPreset, got %v", err)
	}
	if err := c.DeletePreset(saved.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := c.DeletePreset(saved.ID); !errors.Is(err, ErrUnknownPreset) {
		t.Fatalf("expected ErrUnknownPreset, got %v", err)
	}
	if len(c.Presets()) != 2 {
		t.Fatalf("expected custom preset removed")
	}
}

func TestTickerSchedulerCompletesTraining(t *testing.T) {
	done := make(chan domain.Persona, 2)
	c := New(Options{
		TickInterval: time.Millisecond,
		OnFinished:   func(p domain.Persona) { done <- p },
	})
	defer c.Close()

	_, _ = c.Advance()
	_ = c.UpdateField(FieldType, "clone")
	_, _ = c.Advance()
	_ = c.UpdateField(FieldName, "Ana")
	_ = c.UpdateField(FieldRole, "Me")
	for i := 0; i < 3; i++ {
		_, _ = c.Advance()
	}
	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}

	select {
	case p := <-done:
		if p.Name != "Ana" || p.Type != domain.PersonaTypeClone {
			t.Fatalf("unexpected record %+v", p)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("training did not complete")
	}

	time.Sleep(20 * time.Millisecond)
	if len(done) != 0 {
		t.Fatalf("completion callback fired more than once")
	}
}

func TestCancelledTimerDoesNotDriveNextRun(t *testing.T) {
	c, sched, rec := newTestController(t)
	walkToReview(t, c)
	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	sched.fire(10)

	if err := c.Reset(); err != nil {
		t.Fatalf("reset: %v", err)
	}
	walkToReview(t, c)
	if err := c.Commit(); err != nil {
		t.Fatalf("second commit: %v", err)
	}

	// Ticks atrasados del primer timer no cuentan para el segundo entrenamiento.
	sched.fireTimer(0, 150)
	if p := c.Snapshot().Run.ProgressPercent; p != 0 {
		t.Fatalf("stale timer advanced the new run to %d", p)
	}
	if rec.count() != 0 {
		t.Fatalf("stale timer must not emit")
	}

	sched.fireTimer(1, 3)
	if p := c.Snapshot().Run.ProgressPercent; p != 3 {
		t.Fatalf("expected current timer to advance to 3, got %d", p)
	}
}

func TestCommitWithDeniedLeavesReview(t *testing.T) {
	c, sched, _ := newTestController(t)
	walkToReview(t, c)

	denied := errors.New("denied")
	calls := 0
	if err := c.CommitWith(func() error { calls++; return denied }); !errors.Is(err, denied) {
		t.Fatalf("expected denied, got %v", err)
	}
	if s := c.Snapshot(); s.Step != StepReview || s.Run != nil || sched.scheduled != 0 {
		t.Fatalf("denied commit must not start training: %+v", s)
	}

	if err := c.CommitWith(func() error { calls++; return nil }); err != nil {
		t.Fatalf("commit: %v", err)
	}
	// Con el entrenamiento ya creado la condicion no se vuelve a evaluar.
	if err := c.CommitWith(func() error { calls++; return denied }); err != nil {
		t.Fatalf("repeated commit should be a no-op, got %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected allow to run twice, got %d", calls)
	}
}

func TestPresetsFrozenDuringTraining(t *testing.T) {
	c, _, _ := newTestController(t)
	saved, err := c.SavePreset("Mine")
	if err != nil {
		t.Fatalf("save preset: %v", err)
	}
	walkToReview(t, c)
	if err := c.Commit(); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if _, err := c.SavePreset("Other"); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("expected ErrTrainingInProgress on save, got %v", err)
	}
	if err := c.DeletePreset(saved.ID); !errors.Is(err, ErrTrainingInProgress) {
		t.Fatalf("expected ErrTrainingInProgress on delete, got %v", err)
	}
	if len(c.Presets()) != 3 {
		t.Fatalf("presets must not change during training")
	}
}

func TestAddKnowledgeItemRejectsInvalidItems(t *testing.T) {
	c, _, _ := newTestController(t)
	cases := []domain.KnowledgeItem{
		{Kind: domain.KnowledgeKind("video"), Title: "x"},
		{Kind: domain.KnowledgeKindURL, Title: "   "},
		{},
	}
	for _, item := range cases {
		if _, err := c.AddKnowledgeItem(item); !errors.Is(err, ErrInvalidValue) {
			t.Fatalf("item %+v: expected ErrInvalidValue, got %v", item, err)
		}
	}
	if n := len(c.Snapshot().Draft.KnowledgeItems); n != 0 {
		t.Fatalf("invalid items must not be stored, got %d", n)
	}
}

func TestTickerSchedulerStopsAfterCancel(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	cancel := TickerScheduler{}.Every(time.Millisecond, func() {
		mu.Lock()
		calls++
		mu.Unlock()
	})
	time.Sleep(10 * time.Millisecond)
	cancel()
	cancel()
	time.Sleep(5 * time.Millisecond)

	mu.Lock()
	settled := calls
	mu.Unlock()
	time.Sleep(20 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != settled {
		t.Fatalf("callback kept running after cancel: %d -> %d", settled, calls)
	}
}
