package llm

import (
	"context"
	"strings"

	"github.com/vaak-ai/voxengine/internal/turn"
)

// Translator adapts a Model to httpapi's Translator collaborator
// interface with a single system-prompt instruction, so the same
// OpenAI-backed Model that serves chat completions also backs
// cross-language text translation without a second client.
type Translator struct {
	model Model
}

// NewTranslator wraps model as a text translator.
func NewTranslator(model Model) *Translator {
	return &Translator{model: model}
}

// Translate implements httpapi.Translator.
func (t *Translator) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if strings.EqualFold(sourceLang, targetLang) {
		return text, nil
	}

	prompt := "Translate the user's message from " + sourceLang + " to " + targetLang +
		". Reply with only the translated text, no quotes, no commentary."

	resp, err := t.model.Complete(ctx, Request{
		Turns: []turn.Turn{
			{Role: turn.RoleSystem, Content: prompt},
			{Role: turn.RoleUser, Content: text},
		},
	})
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(resp.Text), nil
}
