package models

import (
	"strings"
)

// GenerateID строит slug из человекочитаемого имени: нижний регистр,
// серии символов вне [a-z0-9] схлопываются в один дефис, дефисы по краям убираются.
func GenerateID(name string) string {
	var b strings.Builder
	b.Grow(len(name))

	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}

	return b.String()
}

// ModelID формирует идентификатор модели из бренда и обозначения
func ModelID(brand, designation string) string {
	return GenerateID(brand + "-" + designation)
}

// IsValidID сообщает, является ли id корректным slug
func IsValidID(id string) bool {
	return id != "" && GenerateID(id) == id
}
