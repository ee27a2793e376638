// Package placeholder shields code and markup from machine translation. Mask
// swaps fenced code blocks, inline code spans and HTML tags for numbered
// markers ([PH0], [PH1], …); Unmask puts the originals back.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	fencedCode = regexp.MustCompile("(?s)```.*?```")
	inlineCode = regexp.MustCompile("`[^`\n]+`")
	htmlTag    = regexp.MustCompile(`</?[A-Za-z][^<>]*>`)
	marker     = regexp.MustCompile(`\[PH(\d+)\]`)
)

// Masked is text with its protected spans replaced by markers.
type Masked struct {
	Text  string
	spans []string
}

// Mask protects fenced code first, then inline code, then HTML tags.
func Mask(text string) Masked {
	var m Masked
	replace := func(span string) string {
		m.spans = append(m.spans, span)
		return fmt.Sprintf("[PH%d]", len(m.spans)-1)
	}

	for _, re := range []*regexp.Regexp{fencedCode, inlineCode, htmlTag} {
		text = re.ReplaceAllStringFunc(text, replace)
	}
	m.Text = text
	return m
}

// Len reports how many spans were masked.
func (m Masked) Len() int {
	return len(m.spans)
}

// Unmask restores the protected spans in translated. Markers that no longer
// refer to a span are left alone. If the translation lost any marker, the
// partially restored text is returned together with an error.
func (m Masked) Unmask(translated string) (string, error) {
	restored := marker.ReplaceAllStringFunc(translated, func(s string) string {
		idx, err := strconv.Atoi(marker.FindStringSubmatch(s)[1])
		if err != nil || idx >= len(m.spans) {
			return s
		}
		return m.spans[idx]
	})

	var missing []string
	for i := range m.spans {
		if id := fmt.Sprintf("[PH%d]", i); !strings.Contains(translated, id) {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return restored, fmt.Errorf("translation dropped %d of %d protected spans: %s",
			len(missing), len(m.spans), strings.Join(missing, ", "))
	}
	return restored, nil
}
