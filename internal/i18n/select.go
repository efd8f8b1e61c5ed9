package i18n

import (
	"strings"
)

// Resolve picks the language from an explicit --lang value, falling back to
// the system language when the value is empty or unsupported, and applies it.
// Returns the selected language code.
func Resolve(flagValue string) string {
	lang := parseLanguageInput(flagValue, DetectSystemLanguage())
	SetLanguage(lang)
	return GetLanguage()
}

// parseLanguageInput parses user input and returns the corresponding language code.
func parseLanguageInput(input string, defaultLang string) string {
	input = strings.ToLower(strings.TrimSpace(input))

	switch input {
	case "1", "en", "english", "e":
		return "en"
	case "2", "zh", "chinese", "中文", "c":
		return "zh"
	default:
		return defaultLang
	}
}

// LanguageName returns the display name for a language code.
func LanguageName(lang string) string {
	switch lang {
	case "zh":
		return "中文"
	case "en":
		return "English"
	default:
		return lang
	}
}
