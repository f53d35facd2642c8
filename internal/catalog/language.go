package catalog

import (
	"fmt"
	"strings"
)

// Language selects which script of a bilingual record is shown
type Language string

const (
	Cyrillic Language = "cyr"
	Latin    Language = "lat"
)

// ParseLanguage accepts "cyr" or "lat"; empty means Cyrillic
func ParseLanguage(s string) (Language, error) {
	switch Language(strings.ToLower(strings.TrimSpace(s))) {
	case "", Cyrillic:
		return Cyrillic, nil
	case Latin:
		return Latin, nil
	}
	return "", fmt.Errorf("unknown language %q (want cyr or lat)", s)
}

// Pick returns the text for the language, falling back to the other script
// when the preferred one is blank
func (l Language) Pick(cyr, lat string) string {
	first, second := cyr, lat
	if l == Latin {
		first, second = lat, cyr
	}
	if strings.TrimSpace(first) != "" {
		return first
	}
	return second
}

// Toggle returns the other language
func (l Language) Toggle() Language {
	if l == Latin {
		return Cyrillic
	}
	return Latin
}
