// Package locale resolves the content language sent to the backend.
//
// The backend expects its own two-letter codes in Accept-Language ("en" and
// "sp"), so tags are negotiated with x/text and then mapped to those codes.
package locale

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
)

// Locale is a backend content language.
type Locale string

const (
	English Locale = "en"
	Spanish Locale = "sp"
)

// Default is used when nothing is configured.
const Default = English

var supported = []language.Tag{language.English, language.Spanish}

var matcher = language.NewMatcher(supported)

// Parse accepts a backend code ("en", "sp"), a BCP 47 tag ("es-MX") or an
// Accept-Language list and returns the closest supported locale.
func Parse(s string) (Locale, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "":
		return Default, nil
	case string(English):
		return English, nil
	case string(Spanish):
		return Spanish, nil
	}

	tags, _, err := language.ParseAcceptLanguage(s)
	if err != nil || len(tags) == 0 {
		return "", fmt.Errorf("unsupported locale %q (use en or sp)", s)
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return "", fmt.Errorf("unsupported locale %q (use en or sp)", s)
	}
	return fromTag(supported[idx]), nil
}

// MustParse is Parse for constants; it panics on error.
func MustParse(s string) Locale {
	l, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return l
}

func fromTag(t language.Tag) Locale {
	if t == language.Spanish {
		return Spanish
	}
	return English
}

// Tag returns the x/text tag for l.
func (l Locale) Tag() language.Tag {
	if l == Spanish {
		return language.Spanish
	}
	return language.English
}

// Header returns the value for the Accept-Language request header.
func (l Locale) Header() string {
	if l == "" {
		return string(Default)
	}
	return string(l)
}

// Next cycles to the other supported locale.
func (l Locale) Next() Locale {
	if l == Spanish {
		return English
	}
	return Spanish
}

func (l Locale) String() string { return l.Header() }
