package utils

import (
	"strings"

	"golang.org/x/text/language"
)

// DetermineLocale resolves the locale from an explicit query value, then the
// Accept-Language header, then def. Results are base language codes ("en",
// "zh") drawn from supported.
func DetermineLocale(queryLang, acceptLang string, supported []string, def string) string {
	if len(supported) == 0 {
		return "en"
	}
	tags := make([]language.Tag, 0, len(supported))
	for _, s := range supported {
		tags = append(tags, language.Make(strings.ToLower(s)))
	}
	matcher := language.NewMatcher(tags)

	pick := func(prefs ...language.Tag) (string, bool) {
		if len(prefs) == 0 {
			return "", false
		}
		_, idx, conf := matcher.Match(prefs...)
		if conf < language.High {
			return "", false
		}
		return strings.ToLower(supported[idx]), true
	}

	if queryLang != "" {
		if tag, err := language.Parse(queryLang); err == nil {
			if v, ok := pick(tag); ok {
				return v
			}
		}
	}
	if acceptLang != "" {
		if prefs, _, err := language.ParseAcceptLanguage(acceptLang); err == nil {
			if v, ok := pick(prefs...); ok {
				return v
			}
		}
	}
	for _, s := range supported {
		if strings.EqualFold(s, def) {
			return strings.ToLower(s)
		}
	}
	return strings.ToLower(supported[0])
}
