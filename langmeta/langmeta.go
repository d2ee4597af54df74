// Package langmeta provides a shared language metadata registry
// (English and native names) used by the analyzer report and CLI output.
package langmeta

import (
	"strings"

	"golang.org/x/text/language"
)

// Meta describes language display metadata.
type Meta struct {
	// English is the English display name ("Kurdish").
	English string
	// Native is the name in the language itself ("Kurdî").
	Native string
}

// Registry contains canonical language metadata keyed by BCP-47 code.
// Variants are resolved in Resolve() via normalization and base fallback.
var Registry = map[string]Meta{
	"ar":    {English: "Arabic", Native: "العربية"},
	"bg":    {English: "Bulgarian", Native: "Български"},
	"cs":    {English: "Czech", Native: "Čeština"},
	"da":    {English: "Danish", Native: "Dansk"},
	"de":    {English: "German", Native: "Deutsch"},
	"el":    {English: "Greek", Native: "Ελληνικά"},
	"en":    {English: "English", Native: "English"},
	"es":    {English: "Spanish", Native: "Español"},
	"fa":    {English: "Persian", Native: "فارسی"},
	"fi":    {English: "Finnish", Native: "Suomi"},
	"fr":    {English: "French", Native: "Français"},
	"he":    {English: "Hebrew", Native: "עברית"},
	"hi":    {English: "Hindi", Native: "हिन्दी"},
	"hu":    {English: "Hungarian", Native: "Magyar"},
	"id":    {English: "Indonesian", Native: "Bahasa Indonesia"},
	"it":    {English: "Italian", Native: "Italiano"},
	"ja":    {English: "Japanese", Native: "日本語"},
	"ko":    {English: "Korean", Native: "한국어"},
	"ku":    {English: "Kurdish", Native: "Kurdî"},
	"nl":    {English: "Dutch", Native: "Nederlands"},
	"pl":    {English: "Polish", Native: "Polski"},
	"pt":    {English: "Portuguese", Native: "Português"},
	"pt-BR": {English: "Portuguese (Brazil)", Native: "Português (Brasil)"},
	"ro":    {English: "Romanian", Native: "Română"},
	"ru":    {English: "Russian", Native: "Русский"},
	"sv":    {English: "Swedish", Native: "Svenska"},
	"th":    {English: "Thai", Native: "ไทย"},
	"tr":    {English: "Turkish", Native: "Türkçe"},
	"uk":    {English: "Ukrainian", Native: "Українська"},
	"ur":    {English: "Urdu", Native: "اردو"},
	"vi":    {English: "Vietnamese", Native: "Tiếng Việt"},
	"zh":    {English: "Chinese", Native: "中文"},
	"zh-CN": {English: "Chinese (Simplified)", Native: "简体中文"},
	"zh-TW": {English: "Chinese (Traditional)", Native: "繁體中文"},
}

// Canonical normalizes a language code ("pt_br" → "pt-BR"). Codes that are
// not valid BCP-47 tags are returned trimmed but otherwise unchanged.
func Canonical(lang string) string {
	lang = strings.TrimSpace(lang)
	tag, err := language.Parse(lang)
	if err != nil {
		return lang
	}
	return tag.String()
}

// Resolve returns best-effort metadata for a language code, supporting
// variants like pt_BR and pt-BR and falling back to the base language.
func Resolve(lang string) Meta {
	if m, ok := Registry[lang]; ok {
		return m
	}
	canonical := Canonical(lang)
	if m, ok := Registry[canonical]; ok {
		return m
	}
	if base, _, ok := strings.Cut(canonical, "-"); ok {
		if m, ok := Registry[base]; ok {
			return m
		}
	}
	return Meta{English: lang, Native: lang}
}

// Label renders "English (code)", e.g. "Kurdish (ku)".
func Label(lang string) string {
	return Resolve(lang).English + " (" + lang + ")"
}
