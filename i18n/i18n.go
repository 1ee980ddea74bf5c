// Package i18n translates the messages sheetlate shows to the user.
//
// Catalogs are gettext .po files embedded in the binary. Messages are
// written in English and used as msgids, so an untranslated string falls
// through unchanged. Backend error details pass through T as well, which
// lets the catalog localize the well-known server messages.
package i18n

import (
	"embed"
	"os"
	"strings"
	"sync"

	"github.com/leonelquinteros/gotext"
)

// Layout: locales/<lang>/LC_MESSAGES/sheetlate.po
//
//go:embed all:locales
var catalogs embed.FS

const domain = "sheetlate"

var (
	mu     sync.RWMutex
	locale *gotext.Locale
	active = "en"
)

// localeVars are consulted in gettext order.
var localeVars = []string{"LANGUAGE", "LC_ALL", "LC_MESSAGES", "LANG"}

// Init loads the catalog for lang, or for the language named by
// LANGUAGE, LC_ALL, LC_MESSAGES or LANG when lang is empty.
func Init(lang string) {
	if lang == "" {
		lang = detectLanguage()
	}

	l := gotext.NewLocaleFSWithPath(lang, catalogs, "locales")
	l.AddDomain(domain)
	l.SetDomain(domain)

	mu.Lock()
	locale, active = l, lang
	mu.Unlock()
}

// Language returns the language passed to the last Init.
func Language() string {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// T translates msgid, returning it unchanged when no translation exists.
func T(msgid string) string {
	mu.RLock()
	l := locale
	mu.RUnlock()
	if l == nil {
		return msgid
	}
	return l.Get(msgid)
}

// N picks the plural form for n.
func N(singular, plural string, n int) string {
	mu.RLock()
	l := locale
	mu.RUnlock()
	if l != nil {
		return l.GetN(singular, plural, n)
	}
	if n == 1 {
		return singular
	}
	return plural
}

func detectLanguage() string {
	for _, name := range localeVars {
		if lang := cleanLocale(name, os.Getenv(name)); lang != "" {
			return lang
		}
	}
	return "en"
}

// cleanLocale strips the codeset ("ko_KR.UTF-8" -> "ko_KR") and treats the
// C locale as unset. LANGUAGE may hold a colon list; the first entry wins.
func cleanLocale(name, value string) string {
	if name == "LANGUAGE" {
		value, _, _ = strings.Cut(value, ":")
	}
	value, _, _ = strings.Cut(value, ".")
	value = strings.TrimSpace(value)
	if value == "C" || value == "POSIX" {
		return ""
	}
	return value
}
