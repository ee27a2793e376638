// Package lang resolves the working and user languages given either as an
// English display name ("Korean", "American English") or as a BCP 47 tag
// ("ko", "en-US"). Prompts embed the display name; the Google backend and the
// language check need the tag.
package lang

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// candidates are the tags a display name is matched against.
var candidates = []language.Tag{
	language.AmericanEnglish,
	language.BritishEnglish,
	language.English,
	language.Korean,
	language.Japanese,
	language.SimplifiedChinese,
	language.TraditionalChinese,
	language.Chinese,
	language.German,
	language.French,
	language.Spanish,
	language.LatinAmericanSpanish,
	language.Italian,
	language.Portuguese,
	language.BrazilianPortuguese,
	language.Russian,
	language.Ukrainian,
	language.Polish,
	language.Dutch,
	language.Turkish,
	language.Arabic,
	language.Hindi,
	language.Vietnamese,
	language.Thai,
	language.Indonesian,
}

var namer = display.English.Tags()

type Language struct {
	Name  string
	Tag   language.Tag
	Known bool
}

func (l Language) String() string {
	return l.Name
}

// ISO returns the ISO 639-1 code of the language, or "" when unknown.
func (l Language) ISO() string {
	if !l.Known {
		return ""
	}
	base, conf := l.Tag.Base()
	if conf == language.No {
		return ""
	}
	return base.String()
}

// Resolve never fails: text that is neither a known name nor a valid tag is
// kept verbatim as the name, so prompts still carry it.
func Resolve(s string) Language {
	s = strings.TrimSpace(s)
	if s == "" {
		return Language{}
	}

	for _, tag := range candidates {
		if strings.EqualFold(namer.Name(tag), s) {
			return Language{Name: s, Tag: tag, Known: true}
		}
	}

	if tag, err := language.Parse(s); err == nil {
		name := namer.Name(tag)
		if name == "" {
			name = s
		}
		return Language{Name: name, Tag: tag, Known: true}
	}

	return Language{Name: s}
}
