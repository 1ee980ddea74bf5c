// Package langdetect guesses the language of spreadsheet text, limited to
// the languages the translation backend supports.
package langdetect

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	lingua "github.com/pemistahl/lingua-go"
)

// minLetters is the shortest sample worth detecting. CJK words are short,
// so this is lower than what Latin scripts would need.
const minLetters = 2

var (
	detectorOnce sync.Once
	detector     lingua.LanguageDetector
)

var supported = []lingua.Language{
	lingua.English,
	lingua.Korean,
	lingua.Japanese,
	lingua.Chinese,
	lingua.Spanish,
	lingua.French,
	lingua.German,
}

// DetectISO6391 returns the two-letter code of text's language, or "" when
// the sample is too short or nothing matches.
func DetectISO6391(text string) string {
	sample := strings.TrimSpace(text)
	if sample == "" {
		return ""
	}

	letterCount := 0
	for _, r := range sample {
		if unicode.IsLetter(r) {
			letterCount++
		}
	}
	if letterCount < minLetters {
		return ""
	}

	language, exists := getDetector().DetectLanguageOf(sample)
	if !exists {
		return ""
	}

	code := strings.ToLower(language.IsoCode639_1().String())
	if len(code) != 2 {
		return ""
	}
	return code
}

// DetectColumn votes over samples and returns the most common language.
// Ties resolve alphabetically so the result is stable.
func DetectColumn(samples []string) string {
	votes := map[string]int{}
	for _, s := range samples {
		if code := DetectISO6391(s); code != "" {
			votes[code]++
		}
	}
	if len(votes) == 0 {
		return ""
	}

	codes := make([]string, 0, len(votes))
	for code := range votes {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool {
		if votes[codes[i]] != votes[codes[j]] {
			return votes[codes[i]] > votes[codes[j]]
		}
		return codes[i] < codes[j]
	})
	return codes[0]
}

func getDetector() lingua.LanguageDetector {
	detectorOnce.Do(func() {
		detector = lingua.NewLanguageDetectorBuilder().
			FromLanguages(supported...).
			Build()
	})
	return detector
}
