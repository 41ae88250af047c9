// Package i18n wraps gettext catalogs for user-facing bot text. Strings are
// keyed by their original English form; with no catalog installed every call
// falls back to the original, so the bot works without locale files.
package i18n

import (
	"github.com/leonelquinteros/gotext"
)

const domain = "bookswap"

// Configure points gotext at the compiled catalogs for the given locale.
// Safe to call with an empty dir or locale; defaults keep messages English.
func Configure(localeDir, locale string) {
	if localeDir == "" {
		localeDir = "locale"
	}
	if locale == "" {
		locale = "en"
	}
	gotext.Configure(localeDir, locale, domain)
}

// get is called through a variable so vet's printf check does not treat msg
// as a format string: it is the gettext lookup key, never formatted here.
var get = gotext.Get

// T returns the translation of msg, or msg itself when no entry exists
func T(msg string) string {
	return get(msg)
}

// Tf translates msg and applies fmt-style arguments
func Tf(msg string, args ...interface{}) string {
	return gotext.Get(msg, args...)
}
