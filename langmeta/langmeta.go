// Package langmeta holds the fixed set of languages the translation backend
// accepts, with native display names and emoji flags for the CLI.
package langmeta

import "strings"

// Meta describes language display metadata.
type Meta struct {
	Code string
	Name string
	Flag string
}

// Defaults used when neither config nor flags choose a language.
const (
	DefaultSource = "ko"
	DefaultTarget = "en"
)

// supported is ordered the way language pickers list them.
var supported = []Meta{
	{Code: "en", Name: "English", Flag: "🇺🇸"},
	{Code: "ko", Name: "한국어", Flag: "🇰🇷"},
	{Code: "ja", Name: "日本語", Flag: "🇯🇵"},
	{Code: "zh", Name: "中文", Flag: "🇨🇳"},
	{Code: "es", Name: "Español", Flag: "🇪🇸"},
	{Code: "fr", Name: "Français", Flag: "🇫🇷"},
	{Code: "de", Name: "Deutsch", Flag: "🇩🇪"},
}

// Registry maps a supported code to its metadata.
var Registry = func() map[string]Meta {
	m := make(map[string]Meta, len(supported))
	for _, meta := range supported {
		m[meta.Code] = meta
	}
	return m
}()

// Supported returns the supported languages in display order.
func Supported() []Meta {
	return append([]Meta(nil), supported...)
}

// Codes returns the supported language codes in display order.
func Codes() []string {
	codes := make([]string, len(supported))
	for i, meta := range supported {
		codes[i] = meta.Code
	}
	return codes
}

func canonicalize(lang string) string {
	normalized := strings.ReplaceAll(strings.TrimSpace(lang), "_", "-")
	if normalized == "" {
		return ""
	}
	parts := strings.Split(normalized, "-")
	parts[0] = strings.ToLower(parts[0])
	if len(parts) >= 2 {
		parts[1] = strings.ToUpper(parts[1])
	}
	return strings.Join(parts, "-")
}

// Normalize reduces a language tag to its primary subtag ("ko_KR" -> "ko").
// It returns "" for blank or non-alphabetic input.
func Normalize(lang string) string {
	tag := canonicalize(lang)
	if tag == "" {
		return ""
	}
	base, _, _ := strings.Cut(tag, "-")
	for _, r := range base {
		if r < 'a' || r > 'z' {
			return ""
		}
	}
	return base
}

// IsSupported reports whether lang normalizes to a supported code.
func IsSupported(lang string) bool {
	_, ok := Registry[Normalize(lang)]
	return ok
}

// Resolve returns best-effort metadata for a language code, falling back to
// the base language and finally to the code itself.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	if m, ok := Registry[Normalize(lang)]; ok {
		return m
	}
	return Meta{Code: lang, Name: lang}
}
