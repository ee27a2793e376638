// Package chunker splits long text into pieces that fit a per-request size
// limit, cutting at paragraph, sentence or word boundaries where it can.
package chunker

import "unicode"

// Split cuts text into consecutive pieces of at most maxRunes runes.
// Concatenating the pieces gives back text exactly, whitespace included.
// Boundaries are preferred in this order:
//  1. the end of a blank line
//  2. sentence-ending punctuation
//  3. whitespace
//  4. a hard cut at maxRunes
//
// maxRunes ≤ 0 means no limit.
func Split(text string, maxRunes int) []string {
	runes := []rune(text)
	if maxRunes <= 0 || len(runes) <= maxRunes {
		return []string{text}
	}

	var parts []string
	for len(runes) > maxRunes {
		cut := cutPoint(runes[:maxRunes])
		parts = append(parts, string(runes[:cut]))
		runes = runes[cut:]
	}
	if len(runes) > 0 {
		parts = append(parts, string(runes))
	}
	return parts
}

// cutPoint returns how many runes of window belong in the current piece.
// It is always at least 1.
func cutPoint(window []rune) int {
	for i := len(window) - 1; i > 0; i-- {
		if window[i] != '\n' {
			continue
		}
		if window[i-1] == '\n' || (i > 1 && window[i-1] == '\r' && window[i-2] == '\n') {
			return i + 1
		}
	}

	for i := len(window) - 1; i > 0; i-- {
		switch window[i] {
		case '。', '！', '？':
			return i + 1
		case '.', '!', '?':
			if i+1 < len(window) && unicode.IsSpace(window[i+1]) {
				return i + 2
			}
		}
	}

	for i := len(window) - 1; i > 0; i-- {
		if unicode.IsSpace(window[i]) {
			return i + 1
		}
	}

	return len(window)
}
