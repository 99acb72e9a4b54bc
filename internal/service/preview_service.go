package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"persona-studio/internal/domain"
	"persona-studio/internal/llm"
)

const (
	PreviewNoClientReply = "I am simulating a response because no API key is configured. In production, I would answer based on this persona's knowledge sources."
	PreviewErrorReply    = "Error communicating with the cognitive engine."
	PreviewEmptyReply    = "I couldn't generate a response."
)

var ErrEmptyMessage = errors.New("message is empty")

// PreviewService responde como el persona para probarlo antes de publicarlo.
type PreviewService struct {
	llmClient llm.LLMClient
	logger    *zap.Logger
}

// NewPreviewService acepta un cliente nil; en ese caso responde con un texto fijo.
func NewPreviewService(llmClient llm.LLMClient, logger *zap.Logger) *PreviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PreviewService{llmClient: llmClient, logger: logger}
}

// Respond nunca falla por el LLM: cualquier problema se traduce en un texto de respaldo.
func (s *PreviewService) Respond(ctx context.Context, persona domain.Persona, message string) (string, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return "", ErrEmptyMessage
	}
	if s.llmClient == nil {
		s.logger.Warn("llm client not configured, returning simulated preview", zap.String("persona_id", persona.ID))
		return PreviewNoClientReply, nil
	}

	reply, err := s.llmClient.Generate(ctx, BuildPreviewPrompt(persona, message))
	if err != nil {
		s.logger.Warn("preview generation failed", zap.String("persona_id", persona.ID), zap.Error(err))
		return PreviewErrorReply, nil
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return PreviewEmptyReply, nil
	}
	return reply, nil
}

// BuildPreviewPrompt arma el prompt con identidad, sliders y fuentes del persona.
func BuildPreviewPrompt(persona domain.Persona, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a digital persona (%s).\n", persona.Name, persona.Type.Label())
	fmt.Fprintf(&b, "Tone: %s.\nObjective: %s.\n", persona.Identity.Tone, persona.Identity.Objective)

	b.WriteString("Personality (0 = left pole, 100 = right pole):\n")
	for _, name := range domain.TraitNames {
		v, _ := persona.Traits.Get(name)
		fmt.Fprintf(&b, "- %s: %d\n", name, v)
	}

	if len(persona.Knowledge) > 0 {
		b.WriteString("Knowledge sources:\n")
		for _, k := range persona.Knowledge {
			fmt.Fprintf(&b, "- [%s] %s\n", k.Kind, k.Title)
		}
	}
	b.WriteString("Act accordingly.\n\n")
	fmt.Fprintf(&b, "User: %s", message)
	return b.String()
}
