package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"persona-studio/internal/domain"
	"persona-studio/internal/llm"
)

// PreviewScore es la evaluacion del juez sobre una respuesta de preview (escala 1-5).
type PreviewScore struct {
	Reasoning        string `json:"reasoning"`
	PersonalityScore int    `json:"personality_score"`
	RoleScore        int    `json:"role_score"`
}

var ErrJudgeNotJSON = errors.New("judge returned no json object")

// PreviewJudge pide a un LLM que puntue si la respuesta respeta el persona.
type PreviewJudge struct {
	judge llm.LLMClient
}

func NewPreviewJudge(judge llm.LLMClient) *PreviewJudge {
	return &PreviewJudge{judge: judge}
}

func (j *PreviewJudge) Score(ctx context.Context, persona domain.Persona, message, reply string) (PreviewScore, error) {
	if j.judge == nil {
		return PreviewScore{}, errors.New("judge client not configured")
	}
	raw, err := j.judge.Generate(ctx, buildJudgePrompt(persona, message, reply))
	if err != nil {
		return PreviewScore{}, fmt.Errorf("judge generate: %w", err)
	}
	return parsePreviewScore(raw)
}

func parsePreviewScore(raw string) (PreviewScore, error) {
	obj := extractFirstJSONObject(cleanLLMJSONResponse(raw))
	if obj == "" {
		return PreviewScore{}, fmt.Errorf("%w: %q", ErrJudgeNotJSON, raw)
	}
	var score PreviewScore
	if err := json.Unmarshal([]byte(obj), &score); err != nil {
		return PreviewScore{}, fmt.Errorf("parse judge json: %w", err)
	}
	score.PersonalityScore = clamp1to5(score.PersonalityScore)
	score.RoleScore = clamp1to5(score.RoleScore)
	return score, nil
}

func buildJudgePrompt(persona domain.Persona, message, reply string) string {
	var traits []string
	for _, name := range domain.TraitNames {
		v, _ := persona.Traits.Get(name)
		traits = append(traits, fmt.Sprintf("%s: %d/100", name, v))
	}
	return fmt.Sprintf(`You are an expert reviewer checking whether a digital persona stays in character.

Persona: %s (%s)
Role: %s
Personality sliders (0 = left pole, 100 = right pole): %s

User message: %q
Persona reply: %q

Score from 1 to 5:
1) personality_score: does the tone match the sliders?
2) role_score: does the reply stay within the persona's role and objective?

Answer ONLY with JSON (no markdown):
{
  "reasoning": "...",
  "personality_score": 0,
  "role_score": 0
}`, persona.Name, persona.Type.Label(), persona.Role, strings.Join(traits, ", "), message, reply)
}

func clamp1to5(v int) int {
	if v < 1 {
		return 1
	}
	if v > 5 {
		return 5
	}
	return v
}

var (
	fenceStart = regexp.MustCompile("(?is)^\\s*```(?:json)?\\s*")
	fenceEnd   = regexp.MustCompile("(?is)\\s*```\\s*$")
)

// cleanLLMJSONResponse quita BOM y fences ```json.
func cleanLLMJSONResponse(raw string) string {
	s := strings.TrimPrefix(strings.TrimSpace(raw), "\uFEFF")
	s = fenceStart.ReplaceAllString(s, "")
	s = fenceEnd.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// extractFirstJSONObject devuelve el primer objeto {...} balanceado, ignorando llaves dentro de strings.
func extractFirstJSONObject(input string) string {
	start := strings.IndexByte(input, '{')
	if start == -1 {
		return ""
	}
	inString, escape := false, false
	depth := 0
	for i := start; i < len(input); i++ {
		ch := input[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return input[start : i+1]
			}
		}
	}
	return ""
}
