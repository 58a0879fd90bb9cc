package models

import (
	"golang.org/x/text/language"
)

// Locale код языка витрины
type Locale string

const (
	LocaleDE Locale = "de"
	LocaleEN Locale = "en"
	LocalePL Locale = "pl"

	// DefaultLocale базовый язык: немецкие поля хранятся без суффикса
	DefaultLocale = LocaleDE
)

// SupportedLocales порядок совпадает с порядком тегов в matcher
var SupportedLocales = []Locale{LocaleDE, LocaleEN, LocalePL}

var matcher = language.NewMatcher([]language.Tag{
	language.German,
	language.English,
	language.Polish,
})

// ParseLocale приводит произвольный тег (en, en-US, pl_PL, de-AT) к поддерживаемому языку.
// Пустой или неизвестный тег дает DefaultLocale.
func ParseLocale(tag string) Locale {
	switch Locale(tag) {
	case LocaleDE, LocaleEN, LocalePL:
		return Locale(tag)
	case "":
		return DefaultLocale
	}

	parsed, err := language.Parse(tag)
	if err != nil {
		return DefaultLocale
	}

	_, index, confidence := matcher.Match(parsed)
	if confidence < language.High {
		return DefaultLocale
	}
	return SupportedLocales[index]
}

// ParseAcceptLanguage выбирает язык по заголовку Accept-Language
func ParseAcceptLanguage(header string) Locale {
	if header == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(header)
	if err != nil || len(tags) == 0 {
		return DefaultLocale
	}
	_, index, confidence := matcher.Match(tags...)
	if confidence == language.No {
		return DefaultLocale
	}
	return SupportedLocales[index]
}

// String реализует fmt.Stringer
func (l Locale) String() string {
	return string(l)
}

// ResolveText возвращает перевод для языка, если он задан, иначе немецкое базовое значение.
func ResolveText(base, en, pl string, locale Locale) string {
	switch locale {
	case LocaleEN:
		if en != "" {
			return en
		}
	case LocalePL:
		if pl != "" {
			return pl
		}
	}
	return base
}

// LocalizedText одно переводимое поле: базовое значение и переопределения
type LocalizedText struct {
	DE string
	EN string
	PL string
}

// Resolve возвращает текст для отображения на языке locale
func (t LocalizedText) Resolve(locale Locale) string {
	return ResolveText(t.DE, t.EN, t.PL, locale)
}
