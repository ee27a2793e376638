// Package detector guesses which language a piece of text is written in.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"
)

// minimumRelativeDistance makes the detector answer "unknown" rather than
// guess between two close candidates.
const minimumRelativeDistance = 0.1

// Detector wraps a lingua detector over all supported languages. Building it
// is expensive; keep one per process.
type Detector struct {
	detector lingua.LanguageDetector
}

func New() *Detector {
	detector := lingua.NewLanguageDetectorBuilder().
		FromAllLanguages().
		WithMinimumRelativeDistance(minimumRelativeDistance).
		Build()

	return &Detector{detector: detector}
}

// DetectISO returns the lower-case ISO 639-1 code of text's language.
func (d *Detector) DetectISO(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}
	language, ok := d.detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(language.IsoCode639_1().String()), true
}
