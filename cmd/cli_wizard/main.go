package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"persona-studio/internal/config"
	"persona-studio/internal/db"
	"persona-studio/internal/domain"
	"persona-studio/internal/repository"
	"persona-studio/internal/wizard"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "no persistir el persona, solo imprimirlo")
	userID := flag.String("user", "cli-user", "user id del persona creado")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	var repo repository.PersonaRepository = repository.NewMemoryPersonaRepository()
	if !*dryRun {
		conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			log.Fatal(err)
		}
		defer conn.Close()
		sqliteRepo, err := repository.NewSQLitePersonaRepository(ctx, conn)
		if err != nil {
			log.Fatal(err)
		}
		repo = sqliteRepo
	}

	finished := make(chan domain.Persona, 1)
	ctrl := wizard.New(wizard.Options{
		UserID:       *userID,
		TickInterval: cfg.TrainingTickInterval,
		OnFinished: func(p domain.Persona) {
			finished <- p
		},
	})
	defer ctrl.Close()

	if err := run(ctrl); err != nil {
		if errors.Is(err, terminal.InterruptErr) {
			fmt.Println("\nCancelado.")
			return
		}
		log.Fatal(err)
	}

	persona := waitTraining(ctrl, finished)
	if err := repo.Create(ctx, persona); err != nil {
		logger.Error("persist persona failed", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("persona created",
		zap.String("persona_id", persona.ID),
		zap.String("name", persona.Name),
		zap.Bool("dry_run", *dryRun),
	)
	fmt.Printf("\nPersona %q listo (ID: %s)\n", persona.Name, persona.ID)
}

// run recorre los pasos hasta que el entrenamiento arranca.
func run(ctrl *wizard.Controller) error {
	for {
		snap := ctrl.Snapshot()
		if snap.Step == wizard.StepTraining && snap.Run != nil {
			return nil
		}
		fmt.Printf("\n===== Paso %d: %s =====\n", snap.Step, snap.StepTitle)

		var err error
		switch snap.Step {
		case wizard.StepLanding:
			err = landingStep(ctrl)
		case wizard.StepType:
			err = typeStep(ctrl, snap)
		case wizard.StepIdentity:
			err = identityStep(ctrl, snap)
		case wizard.StepPersonality:
			err = personalityStep(ctrl, snap)
		case wizard.StepKnowledge:
			err = knowledgeStep(ctrl, snap)
		case wizard.StepReview:
			err = reviewStep(ctrl, snap)
		default:
			// Paso 6 sin entrenamiento: solo se puede volver.
			err = ctrl.Retreat()
		}
		if err != nil {
			return err
		}
	}
}

func advance(ctrl *wizard.Controller) error {
	errs, err := ctrl.Advance()
	if err != nil {
		return err
	}
	for field, msg := range errs {
		fmt.Printf("  ! %s: %s\n", field, msg)
	}
	return nil
}

func landingStep(ctrl *wizard.Controller) error {
	templates := ctrl.Templates()
	options := []string{"Empezar desde cero"}
	for _, tpl := range templates {
		options = append(options, fmt.Sprintf("%s (%s)", tpl.Name, tpl.Role))
	}
	var choice string
	if err := survey.AskOne(&survey.Select{Message: "Como queres empezar?", Options: options}, &choice); err != nil {
		return err
	}
	idx := indexOf(options, choice)
	if idx <= 0 {
		return advance(ctrl)
	}
	return ctrl.SelectTemplate(templates[idx-1].ID)
}

func typeStep(ctrl *wizard.Controller, snap wizard.Snapshot) error {
	options := make([]string, 0, len(domain.PersonaTypes))
	def := ""
	for _, t := range domain.PersonaTypes {
		options = append(options, t.Label())
		if t == snap.Draft.Type {
			def = t.Label()
		}
	}
	prompt := &survey.Select{Message: "Tipo de persona:", Options: options}
	if def != "" {
		prompt.Default = def
	}
	var choice string
	if err := survey.AskOne(prompt, &choice); err != nil {
		return err
	}
	if err := ctrl.UpdateField(wizard.FieldType, string(domain.PersonaTypes[indexOf(options, choice)])); err != nil {
		return err
	}
	return advance(ctrl)
}

func identityStep(ctrl *wizard.Controller, snap wizard.Snapshot) error {
	var name, role string
	if err := survey.AskOne(&survey.Input{Message: "Nombre:", Default: snap.Draft.Name}, &name); err != nil {
		return err
	}
	if err := survey.AskOne(&survey.Input{Message: "Rol:", Default: snap.Draft.Role}, &role); err != nil {
		return err
	}
	if err := ctrl.UpdateField(wizard.FieldName, name); err != nil {
		return err
	}
	if err := ctrl.UpdateField(wizard.FieldRole, role); err != nil {
		return err
	}
	return advance(ctrl)
}

func personalityStep(ctrl *wizard.Controller, snap wizard.Snapshot) error {
	for _, name := range domain.TraitNames {
		current, _ := snap.Draft.Traits.Get(name)
		var answer string
		prompt := &survey.Input{Message: name + " (0-100):", Default: strconv.Itoa(current)}
		if err := survey.AskOne(prompt, &answer, survey.WithValidator(numberValidator)); err != nil {
			return err
		}
		if err := ctrl.UpdateField(wizard.TraitFieldPrefix+name, strings.TrimSpace(answer)); err != nil {
			return err
		}
	}
	return advance(ctrl)
}

func knowledgeStep(ctrl *wizard.Controller, snap wizard.Snapshot) error {
	for _, item := range snap.Draft.KnowledgeItems {
		fmt.Printf("  - [%s] %s\n", item.Kind, item.Title)
	}
	const done = "Continuar"
	options := []string{done, "Volver"}
	kinds := []domain.KnowledgeKind{
		domain.KnowledgeKindFile,
		domain.KnowledgeKindURL,
		domain.KnowledgeKindYouTube,
		domain.KnowledgeKindText,
		domain.KnowledgeKindAudio,
	}
	for _, k := range kinds {
		options = append(options, "Agregar "+string(k))
	}
	var choice string
	if err := survey.AskOne(&survey.Select{Message: "Fuentes de conocimiento:", Options: options}, &choice); err != nil {
		return err
	}
	switch idx := indexOf(options, choice); idx {
	case 0:
		return advance(ctrl)
	case 1:
		return ctrl.Retreat()
	default:
		kind := kinds[idx-2]
		var input string
		if kind != domain.KnowledgeKindAudio {
			if err := survey.AskOne(&survey.Input{Message: "Contenido:"}, &input); err != nil {
				return err
			}
		}
		item, err := wizard.NewKnowledgeItem(kind, input, time.Now())
		if err != nil {
			fmt.Printf("  ! %v\n", err)
			return nil
		}
		_, err = ctrl.AddKnowledgeItem(item)
		return err
	}
}

func reviewStep(ctrl *wizard.Controller, snap wizard.Snapshot) error {
	d := snap.Draft
	fmt.Printf("  %s | %s | %s\n", d.Name, d.Role, d.Type.Label())
	fmt.Printf("  fuentes: %d\n", len(d.KnowledgeItems))
	fmt.Printf("  modelo: %s, epocas: %d, lr: %s (~%d min, $%.2f)\n",
		snap.TrainingConfig.Model, snap.TrainingConfig.Epochs, snap.TrainingConfig.LearningRate,
		snap.Estimates.Minutes, snap.Estimates.CostUSD)

	options := []string{"Entrenar", "Aplicar preset", "Cambiar epocas", "Volver"}
	var choice string
	if err := survey.AskOne(&survey.Select{Message: "Siguiente accion:", Options: options}, &choice); err != nil {
		return err
	}
	switch indexOf(options, choice) {
	case 0:
		return ctrl.Commit()
	case 1:
		presetNames := make([]string, 0, len(snap.Presets))
		for _, p := range snap.Presets {
			presetNames = append(presetNames, p.Name)
		}
		var name string
		if err := survey.AskOne(&survey.Select{Message: "Preset:", Options: presetNames}, &name); err != nil {
			return err
		}
		_, err := ctrl.ApplyPreset(snap.Presets[indexOf(presetNames, name)].ID)
		return err
	case 2:
		var answer string
		prompt := &survey.Input{Message: "Epocas (1-50):", Default: strconv.Itoa(snap.TrainingConfig.Epochs)}
		if err := survey.AskOne(prompt, &answer, survey.WithValidator(numberValidator)); err != nil {
			return err
		}
		cfg := snap.TrainingConfig
		cfg.Epochs, _ = strconv.Atoi(strings.TrimSpace(answer))
		_, err := ctrl.SetTrainingConfig(cfg)
		return err
	default:
		return ctrl.Retreat()
	}
}

// waitTraining imprime el progreso hasta que el controller emite el registro.
func waitTraining(ctrl *wizard.Controller, finished <-chan domain.Persona) domain.Persona {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()
	var out logPrinter
	for {
		select {
		case p := <-finished:
			out.print(ctrl.Snapshot())
			return p
		case <-ticker.C:
			snap := ctrl.Snapshot()
			if snap.Run == nil {
				continue
			}
			out.print(snap)
			m := snap.Run.Metrics
			fmt.Printf("  %3d%% epoch %d/%d loss %.4f acc %.1f%% %d tok/s\n",
				snap.Run.ProgressPercent, m.Epoch, m.Epochs, m.Loss, m.Accuracy, m.Throughput)
		}
	}
}

// logPrinter imprime solo las lineas nuevas. La ultima linea del log es la fase actual.
type logPrinter struct {
	printed int
	phase   string
}

func (l *logPrinter) print(snap wizard.Snapshot) {
	if snap.Run == nil || len(snap.Run.Log) == 0 {
		return
	}
	lines := snap.Run.Log
	stable, current := lines[:len(lines)-1], lines[len(lines)-1]
	for _, line := range stable[l.printed:] {
		fmt.Println(line)
	}
	l.printed = len(stable)
	if current != l.phase {
		fmt.Println(current)
		l.phase = current
	}
}

func numberValidator(ans interface{}) error {
	s, _ := ans.(string)
	if _, err := strconv.Atoi(strings.TrimSpace(s)); err != nil {
		return errors.New("ingresa un numero entero")
	}
	return nil
}

func indexOf(options []string, value string) int {
	for i, o := range options {
		if o == value {
			return i
		}
	}
	return -1
}
