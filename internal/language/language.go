// Package language normalizes caller-supplied language identifiers to
// ISO 639-1 codes used by the subtitle model and the transcription engine.
package language

import (
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// Normalize converts a language identifier ("en", "en-US", "eng", "English")
// to its ISO 639-1 base code. It returns "" when the value cannot be
// resolved to a known language.
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	tag, err := language.Parse(value)
	if err != nil {
		// Full names ("english") are not BCP 47; try a display-name match.
		return matchDisplayName(value)
	}
	base, confidence := tag.Base()
	if confidence == language.No {
		return ""
	}
	code := base.String()
	// Base() can return 3-letter codes for languages without a 2-letter form;
	// the subtitle model wants ISO 639-1 only.
	if len(code) != 2 {
		return ""
	}
	return code
}

// DisplayName returns the English name for an ISO 639-1 code, or the code
// itself when unknown.
func DisplayName(code string) string {
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	name := display.English.Languages().Name(tag)
	if name == "" {
		return code
	}
	return name
}

func matchDisplayName(value string) string {
	want := strings.ToLower(value)
	namer := display.English.Languages()
	for _, tag := range knownTags {
		if strings.ToLower(namer.Name(tag)) == want {
			base, _ := tag.Base()
			return base.String()
		}
	}
	return ""
}

// knownTags covers the languages the transcription engine ships models for.
var knownTags = []language.Tag{
	language.English, language.Spanish, language.French, language.German,
	language.Italian, language.Portuguese, language.Japanese, language.Korean,
	language.Chinese, language.Russian, language.Arabic, language.Hindi,
	language.Dutch, language.Polish, language.Swedish, language.Danish,
	language.Norwegian, language.Finnish, language.Turkish, language.Ukrainian,
}
