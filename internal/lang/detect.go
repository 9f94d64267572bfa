// Package lang detects the language of lyrics text and maps language codes
// to display names.
package lang

import (
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
)

// DetectFunc is the pluggable detection contract: given raw text it returns
// a lowercase ISO 639-1 code, or ok=false when no confident call can be
// made (empty or too-short input included).
type DetectFunc func(text string) (code string, ok bool)

// minDetectableLen guards against one-word titles masquerading as lyrics;
// n-gram detection is noise below this.
const minDetectableLen = 5

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

// Detect is the default DetectFunc, backed by lingua. The detector is built
// lazily because loading the language models is expensive and the analyzer
// may never need it when datasets already carry language codes.
func Detect(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if len(text) < minDetectableLen {
		return "", false
	}
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromAllLanguages().
			Build()
	})
	language, ok := detector.DetectLanguageOf(text)
	if !ok {
		return "", false
	}
	return strings.ToLower(language.IsoCode639_1().String()), true
}

// names maps ISO 639-1 codes to English display names for the languages
// that actually show up in metal lyrics datasets.
var names = map[string]string{
	"en": "English",
	"es": "Spanish",
	"fr": "French",
	"de": "German",
	"it": "Italian",
	"ro": "Romanian",
	"pt": "Portuguese",
	"nl": "Dutch",
	"pl": "Polish",
	"ru": "Russian",
	"tr": "Turkish",
	"ja": "Japanese",
	"zh": "Chinese",
	"ko": "Korean",
	"ar": "Arabic",
	"sv": "Swedish",
	"fi": "Finnish",
	"cs": "Czech",
	"hu": "Hungarian",
	"el": "Greek",
	"ca": "Catalan",
	"no": "Norwegian",
	"nb": "Norwegian",
	"sl": "Slovenian",
	"hr": "Croatian",
	"da": "Danish",
	"is": "Icelandic",
	"lv": "Latvian",
	"lt": "Lithuanian",
	"uk": "Ukrainian",
}

// Name returns the display name for an ISO 639-1 code. Codes outside the
// table pass through unchanged so rare languages still chart.
func Name(code string) string {
	if name, ok := names[code]; ok {
		return name
	}
	return code
}
