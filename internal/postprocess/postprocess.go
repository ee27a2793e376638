// Package postprocess strips artifacts that chat models leave around the
// text they were asked for.
//
// Nothing calls Clean by default. llm.Cleaning applies it when clean_output
// is set.
package postprocess

import (
	"regexp"
	"strings"
)

// Clean removes closed reasoning blocks, a leading preamble and one pair of
// wrapping quotes, in that order, and trims the result. An unclosed tag is
// left in place along with everything after it.
func Clean(text string) string {
	text = stripReasoning(text)
	text = stripPreamble(text)
	text = stripWrappingQuotes(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so each tag pair is spelled out.
var reasoningBlockRe = regexp.MustCompile(
	`(?is)<think>.*?</think>|<thinking>.*?</thinking>|<reasoning>.*?</reasoning>|<reflection>.*?</reflection>`,
)

func stripReasoning(text string) string {
	text = reasoningBlockRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// Preambles must end in a colon to count; a sentence that merely starts with
// "Here is" is left alone.
var preamblePatterns = []*regexp.Regexp{
	// Here is / Here's [the] [refined|final|translated] response:
	regexp.MustCompile(`(?i)^here(?:'s| is)(?: the| my)? (?:refined |final |improved |polished |translated )?(?:response|answer|translation|text|version)\s*:`),
	// [The] [refined|final] response:
	regexp.MustCompile(`(?i)^(?:the )?(?:refined |final |improved |polished )?(?:response|answer|translation|translated text)\s*:`),
	// Sure / Certainly / Of course[,] here is [the] response:
	regexp.MustCompile(`(?i)^(?:sure|certainly|of course|okay)[,.!]? here(?:'s| is)(?: the| my)? (?:refined |final |improved |polished |translated )?(?:response|answer|translation|text|version)\s*:`),
}

func stripPreamble(text string) string {
	for _, re := range preamblePatterns {
		if loc := re.FindStringIndex(text); loc != nil {
			text = strings.TrimSpace(text[loc[1]:])
		}
	}
	return text
}

var quotePairs = map[rune]rune{
	'"':      '"',
	'\'':     '\'',
	'«':      '»',
	'\u201C': '\u201D',
	'\u2018': '\u2019',
	'「':      '」',
}

// stripWrappingQuotes removes one matching outer pair, and only when no
// other occurrence of the closing quote sits inside the text.
func stripWrappingQuotes(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	closing, ok := quotePairs[runes[0]]
	if !ok || runes[n-1] != closing {
		return text
	}
	inner := string(runes[1 : n-1])
	if strings.ContainsRune(inner, closing) {
		return text
	}
	return strings.TrimSpace(inner)
}
