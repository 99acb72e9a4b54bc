package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"persona-studio/internal/domain"
	"persona-studio/internal/llm"
)

func previewPersona() domain.Persona {
	return domain.Persona{
		ID:       "p1",
		Name:     "Sarah Chen",
		Type:     domain.PersonaTypeExpert,
		Identity: domain.PersonaIdentity{Tone: "Custom", Objective: "Product Strategy Lead"},
		Traits:   domain.Traits{FormalCasual: 20, DirectDiplomatic: 80, SeriousPlayful: 10, AnalyticalEmotional: 90, CalmExpressive: 40},
		Knowledge: []domain.KnowledgeItem{
			{ID: "k1", Kind: domain.KnowledgeKindURL, Title: "stripe.com"},
		},
	}
}

func TestPreviewServiceRespond(t *testing.T) {
	tests := []struct {
		name   string
		client llm.LLMClient
		want   string
	}{
		{name: "no client", client: nil, want: PreviewNoClientReply},
		{name: "llm error", client: &llm.MockClient{Err: errors.New("boom")}, want: PreviewErrorReply},
		{name: "empty reply", client: &llm.MockClient{Response: "   "}, want: PreviewEmptyReply},
		{name: "ok", client: &llm.MockClient{Response: " Hola, soy Sarah. "}, want: "Hola, soy Sarah."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPreviewService(tt.client, zap.NewNop())
			got, err := svc.Respond(context.Background(), previewPersona(), "What do you do?")
			if err != nil {
				t.Fatalf("respond: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestPreviewServiceRejectsBlankMessage(t *testing.T) {
	svc := NewPreviewService(&llm.MockClient{Response: "x"}, nil)
	if _, err := svc.Respond(context.Background(), previewPersona(), "  "); !errors.Is(err, ErrEmptyMessage) {
		t.Fatalf("expected ErrEmptyMessage, got %v", err)
	}
}

func TestBuildPreviewPromptIncludesPersona(t *testing.T) {
	mock := &llm.MockClient{Response: "ok"}
	svc := NewPreviewService(mock, nil)
	if _, err := svc.Respond(context.Background(), previewPersona(), "hi"); err != nil {
		t.Fatalf("respond: %v", err)
	}
	if len(mock.Prompts) != 1 {
		t.Fatalf("expected one prompt, got %d", len(mock.Prompts))
	}
	prompt := mock.Prompts[0]
	for _, want := range []string{"Sarah Chen", "Tone: Custom", "Objective: Product Strategy Lead", "analytical_emotional: 90", "[url] stripe.com", "User: hi"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt missing %q:\n%s", want, prompt)
		}
	}
}
