package prompts

import "strings"

// DefaultLanguageCode is used when a request does not name a language.
const DefaultLanguageCode = "en"

// Language is a supported output language.
type Language struct {
	Code string
	Name string
}

var languages = map[string]string{
	"en": "English",
	"hi": "Hindi",
	"mr": "Marathi",
}

// ResolveLanguage maps a language code to a Language. Unknown or empty codes
// resolve to English.
func ResolveLanguage(code string) Language {
	code = strings.ToLower(strings.TrimSpace(code))
	if name, ok := languages[code]; ok {
		return Language{Code: code, Name: name}
	}
	return Language{Code: DefaultLanguageCode, Name: languages[DefaultLanguageCode]}
}

// IsDefault reports whether no translation pass is needed.
func (l Language) IsDefault() bool {
	return l.Code == DefaultLanguageCode
}

// Directive is the sentence appended to prompts to pin the reply language.
func (l Language) Directive() string {
	if l.IsDefault() {
		return "Respond in English."
	}
	return "Respond only in " + l.Name + ", using simple words a farmer would use."
}
