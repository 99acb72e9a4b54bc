package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"persona-studio/internal/config"
	"persona-studio/internal/db"
	"persona-studio/internal/llm"
	"persona-studio/internal/repository"
	"persona-studio/internal/service"
)

const (
	colorGreen = "\033[32m"
	colorCyan  = "\033[36m"
	colorReset = "\033[0m"
)

// Scenario es un mensaje de prueba para el preview.
type Scenario struct {
	Input    string `yaml:"input"`
	Expected string `yaml:"expected"`
}

var defaultScenarios = []Scenario{
	{Input: "Hi, who are you?", Expected: "Introduces itself in character"},
	{Input: "Can you help me with something outside your field?", Expected: "Stays within its role"},
	{Input: "Give me your honest opinion in one sentence.", Expected: "Tone matches the sliders"},
}

func main() {
	personaID := flag.String("persona", "", "id del persona a evaluar")
	scenariosPath := flag.String("scenarios", "", "archivo YAML con escenarios (opcional)")
	flag.Parse()

	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}
	if *personaID == "" {
		log.Fatal("-persona es obligatorio")
	}

	logger := zap.NewExample()
	defer logger.Sync()

	llmClient, err := llm.NewFromConfig(cfg.LLMProvider, cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModel, logger)
	if err != nil {
		log.Fatal(err)
	}
	if llmClient == nil {
		log.Fatal("LLM_API_KEY es obligatorio para evaluar previews")
	}

	conn, err := db.OpenSQLite(ctx, cfg.SQLitePath)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()
	repo, err := repository.NewSQLitePersonaRepository(ctx, conn)
	if err != nil {
		log.Fatal(err)
	}
	persona, err := repo.GetByID(ctx, *personaID)
	if err != nil {
		log.Fatalf("cargar persona: %v", err)
	}

	scenarios := defaultScenarios
	if *scenariosPath != "" {
		scenarios, err = loadScenarios(*scenariosPath)
		if err != nil {
			log.Fatal(err)
		}
	}

	previewSvc := service.NewPreviewService(llmClient, logger)
	judge := service.NewPreviewJudge(llmClient)

	var totalPersonality, totalRole int
	for _, sc := range scenarios {
		fmt.Printf("%s[Input]%s %s\n", colorCyan, colorReset, sc.Input)
		reply, err := previewSvc.Respond(ctx, persona, sc.Input)
		if err != nil {
			log.Fatalf("preview failed: %v", err)
		}
		fmt.Printf("%s[%s]%s %s\n", colorGreen, persona.Name, colorReset, reply)

		score, err := judge.Score(ctx, persona, sc.Input, reply)
		if err != nil {
			log.Fatalf("judge failed: %v", err)
		}
		fmt.Printf("%sJuez%s %q (esperado: %s)\n", colorCyan, colorReset, score.Reasoning, sc.Expected)
		fmt.Printf("Scores: Personalidad %d/5 | Rol %d/5\n\n", score.PersonalityScore, score.RoleScore)

		totalPersonality += score.PersonalityScore
		totalRole += score.RoleScore
	}

	n := float64(len(scenarios))
	fmt.Println("==== Promedios ====")
	fmt.Printf("Personalidad: %.2f/5 | Rol: %.2f/5\n", float64(totalPersonality)/n, float64(totalRole)/n)
}

func loadScenarios(path string) ([]Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scenarios: %w", err)
	}
	var doc struct {
		Scenarios []Scenario `yaml:"scenarios"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse scenarios: %w", err)
	}
	if len(doc.Scenarios) == 0 {
		return nil, fmt.Errorf("no scenarios in %s", path)
	}
	return doc.Scenarios, nil
}
