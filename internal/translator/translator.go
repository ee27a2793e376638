// Package translator turns text into a target language. The chat pipeline
// uses it twice: once to echo the request back in the working language and
// once to localize the final answer into the user's language.
package translator

import (
	"context"
	"fmt"

	"github.com/valpere/perechat/internal/lang"
	"github.com/valpere/perechat/internal/llm"
)

type Translator interface {
	Name() string
	Translate(ctx context.Context, text string, target lang.Language) (string, error)
}

// LLMTranslator asks the chat model itself to translate: one model call per
// Translate.
type LLMTranslator struct {
	client llm.Client
}

func NewLLMTranslator(client llm.Client) *LLMTranslator {
	return &LLMTranslator{client: client}
}

func (t *LLMTranslator) Name() string {
	return "llm"
}

func (t *LLMTranslator) Translate(ctx context.Context, text string, target lang.Language) (string, error) {
	out, err := t.client.Invoke(ctx, BuildPrompt(text, target.Name))
	if err != nil {
		return "", fmt.Errorf("translate into %s: %w", target.Name, err)
	}
	return out, nil
}

// BuildPrompt returns the translation instruction for text. The text is
// fenced so the model does not mistake it for further instructions.
func BuildPrompt(text, targetLanguage string) string {
	return fmt.Sprintf("Accurately translate the following text into natural %s.\n```\n%s\n```\nOutput only the perfectly translated text.",
		targetLanguage, text)
}
