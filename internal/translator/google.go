package translator

import (
	"context"
	"fmt"

	translate "cloud.google.com/go/translate"
	"golang.org/x/text/language"
	"google.golang.org/api/option"

	"github.com/valpere/perechat/internal/lang"
)

// Cloud Translation recommends at most 5K code points per segment.
const googleMaxSegment = 5000

type batchFunc func(ctx context.Context, segments []string, target language.Tag) ([]string, error)

// GoogleTranslator uses Cloud Translation instead of the chat model, so a
// run with it makes two fewer model calls. Code and markup are masked before
// sending and long text goes out as a batch of segments in one request.
type GoogleTranslator struct {
	opts  []option.ClientOption
	batch batchFunc
}

// NewGoogleTranslator authenticates with apiKey when given, otherwise with
// application default credentials.
func NewGoogleTranslator(apiKey string, opts ...option.ClientOption) *GoogleTranslator {
	if apiKey != "" {
		opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	}
	t := &GoogleTranslator{opts: opts}
	t.batch = t.cloudBatch
	return t
}

func (t *GoogleTranslator) Name() string {
	return "google"
}

func (t *GoogleTranslator) Translate(ctx context.Context, text string, target lang.Language) (string, error) {
	if !target.Known {
		return "", fmt.Errorf("google: no language tag for %q", target.Name)
	}

	out, err := translateSegmented(ctx, text, googleMaxSegment, func(ctx context.Context, segments []string) ([]string, error) {
		return t.batch(ctx, segments, target.Tag)
	})
	if err != nil {
		return "", fmt.Errorf("google: %w", err)
	}
	return out, nil
}

func (t *GoogleTranslator) cloudBatch(ctx context.Context, segments []string, target language.Tag) ([]string, error) {
	client, err := translate.NewClient(ctx, t.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	translations, err := client.Translate(ctx, segments, target, &translate.Options{
		Format: translate.Text,
	})
	if err != nil {
		return nil, err
	}

	out := make([]string, len(translations))
	for i, tr := range translations {
		out[i] = tr.Text
	}
	return out, nil
}
