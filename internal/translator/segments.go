package translator

import (
	"context"
	"fmt"
	"strings"

	"github.com/valpere/perechat/internal/chunker"
	"github.com/valpere/perechat/internal/placeholder"
)

// translateSegmented prepares text for a machine translation service: code
// and markup are masked, the rest is split into pieces of at most maxRunes,
// and only the trimmed core of each non-blank piece goes to send. The
// translations are stitched back with the original whitespace between them.
func translateSegmented(ctx context.Context, text string, maxRunes int, send func(context.Context, []string) ([]string, error)) (string, error) {
	masked := placeholder.Mask(text)
	pieces := chunker.Split(masked.Text, maxRunes)

	var segments []string
	for _, p := range pieces {
		if core := strings.TrimSpace(p); core != "" {
			segments = append(segments, core)
		}
	}
	if len(segments) == 0 {
		return text, nil
	}

	translated, err := send(ctx, segments)
	if err != nil {
		return "", err
	}
	if len(translated) != len(segments) {
		return "", fmt.Errorf("expected %d translations, got %d", len(segments), len(translated))
	}

	var b strings.Builder
	next := 0
	for _, p := range pieces {
		core := strings.TrimSpace(p)
		if core == "" {
			b.WriteString(p)
			continue
		}
		start := strings.Index(p, core)
		b.WriteString(p[:start])
		b.WriteString(translated[next])
		b.WriteString(p[start+len(core):])
		next++
	}

	return masked.Unmask(b.String())
}
