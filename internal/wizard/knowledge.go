package wizard

import (
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"persona-studio/internal/domain"
)

const textTitleLen = 20

// NewKnowledgeItem arma una fuente a partir de lo que el usuario ingreso.
// El titulo se deriva segun el tipo de fuente.
func NewKnowledgeItem(kind domain.KnowledgeKind, input string, now time.Time) (domain.KnowledgeItem, error) {
	input = strings.TrimSpace(input)
	item := domain.KnowledgeItem{
		ID:   uuid.NewString(),
		Kind: kind,
	}

	switch kind {
	case domain.KnowledgeKindFile:
		if input == "" {
			return domain.KnowledgeItem{}, fmt.Errorf("file name is empty: %w", ErrInvalidValue)
		}
		item.Title = filepath.Base(input)
	case domain.KnowledgeKindURL:
		u, err := url.Parse(input)
		if err != nil || u.Host == "" {
			return domain.KnowledgeItem{}, fmt.Errorf("invalid url %q: %w", input, ErrInvalidValue)
		}
		item.Title = u.Hostname()
		item.Content = input
	case domain.KnowledgeKindYouTube:
		if input == "" {
			return domain.KnowledgeItem{}, fmt.Errorf("video link is empty: %w", ErrInvalidValue)
		}
		item.Title = "YouTube Video"
		item.Content = input
	case domain.KnowledgeKindText:
		if input == "" {
			return domain.KnowledgeItem{}, fmt.Errorf("text note is empty: %w", ErrInvalidValue)
		}
		runes := []rune(input)
		if len(runes) > textTitleLen {
			runes = runes[:textTitleLen]
		}
		item.Title = string(runes) + "..."
		item.Content = input
	case domain.KnowledgeKindAudio:
		item.Title = "Voice Memo " + now.Format("15:04:05")
	default:
		return domain.KnowledgeItem{}, fmt.Errorf("unknown knowledge kind %q: %w", kind, ErrInvalidValue)
	}
	return item, nil
}
