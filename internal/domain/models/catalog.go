package models

import (
	"time"
)

// CategoryRecord строка таблицы categories
type CategoryRecord struct {
	ID          string
	Name        LocalizedText
	Description LocalizedText
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ModelRecord строка таблицы models. Бренд и обозначение не переводятся.
type ModelRecord struct {
	ID          string
	CategoryID  string
	Brand       string
	Designation string
	Description LocalizedText
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// PartRecord строка таблицы parts
type PartRecord struct {
	ID          string
	ModelID     string
	Name        LocalizedText
	Description LocalizedText
	// Image публичный URL изображения, может быть пустым
	Image     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ---------------------------- ВИТРИНА (язык выбран) ----------------------------

// ResolvedCategory категория с текстами на одном языке
type ResolvedCategory struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Models      []ResolvedModel `json:"models"`
}

// ResolvedModel модель мотоцикла с текстами на одном языке
type ResolvedModel struct {
	ID          string         `json:"id"`
	Brand       string         `json:"brand"`
	Designation string         `json:"designation"`
	Description string         `json:"description"`
	Parts       []ResolvedPart `json:"parts"`
}

// ResolvedPart запчасть с текстами на одном языке
type ResolvedPart struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Image       string `json:"image"`
}

// ---------------------------- АДМИНКА (все языки) ----------------------------

// RawCategory категория со всеми языковыми вариантами полей
type RawCategory struct {
	ID            string     `json:"id"`
	Name          string     `json:"name"`
	NameEN        string     `json:"name_en"`
	NamePL        string     `json:"name_pl"`
	Description   string     `json:"description"`
	DescriptionEN string     `json:"description_en"`
	DescriptionPL string     `json:"description_pl"`
	Models        []RawModel `json:"models"`
}

// RawModel модель со всеми языковыми вариантами описания
type RawModel struct {
	ID            string    `json:"id"`
	CategoryID    string    `json:"category_id"`
	Brand         string    `json:"brand"`
	Designation   string    `json:"designation"`
	Description   string    `json:"description"`
	DescriptionEN string    `json:"description_en"`
	DescriptionPL string    `json:"description_pl"`
	Parts         []RawPart `json:"parts"`
}

// RawPart запчасть со всеми языковыми вариантами полей
type RawPart struct {
	ID            string `json:"id"`
	ModelID       string `json:"model_id"`
	Name          string `json:"name"`
	NameEN        string `json:"name_en"`
	NamePL        string `json:"name_pl"`
	Description   string `json:"description"`
	DescriptionEN string `json:"description_en"`
	DescriptionPL string `json:"description_pl"`
	Image         string `json:"image"`
}

// ResolveCategory переводит запись категории на язык locale, без дочерних моделей
func ResolveCategory(c *CategoryRecord, locale Locale) ResolvedCategory {
	return ResolvedCategory{
		ID:          c.ID,
		Name:        c.Name.Resolve(locale),
		Description: c.Description.Resolve(locale),
		Models:      []ResolvedModel{},
	}
}

// ResolveModel переводит запись модели на язык locale, без дочерних запчастей
func ResolveModel(m *ModelRecord, locale Locale) ResolvedModel {
	return ResolvedModel{
		ID:          m.ID,
		Brand:       m.Brand,
		Designation: m.Designation,
		Description: m.Description.Resolve(locale),
		Parts:       []ResolvedPart{},
	}
}

// ResolvePart переводит запись запчасти на язык locale
func ResolvePart(p *PartRecord, locale Locale) ResolvedPart {
	return ResolvedPart{
		ID:          p.ID,
		Name:        p.Name.Resolve(locale),
		Description: p.Description.Resolve(locale),
		Image:       p.Image,
	}
}

// RawCategoryFrom копирует все языковые поля категории
func RawCategoryFrom(c *CategoryRecord) RawCategory {
	return RawCategory{
		ID:            c.ID,
		Name:          c.Name.DE,
		NameEN:        c.Name.EN,
		NamePL:        c.Name.PL,
		Description:   c.Description.DE,
		DescriptionEN: c.Description.EN,
		DescriptionPL: c.Description.PL,
		Models:        []RawModel{},
	}
}

// RawModelFrom копирует все языковые поля модели
func RawModelFrom(m *ModelRecord) RawModel {
	return RawModel{
		ID:            m.ID,
		CategoryID:    m.CategoryID,
		Brand:         m.Brand,
		Designation:   m.Designation,
		Description:   m.Description.DE,
		DescriptionEN: m.Description.EN,
		DescriptionPL: m.Description.PL,
		Parts:         []RawPart{},
	}
}

// RawPartFrom копирует все языковые поля запчасти
func RawPartFrom(p *PartRecord) RawPart {
	return RawPart{
		ID:            p.ID,
		ModelID:       p.ModelID,
		Name:          p.Name.DE,
		NameEN:        p.Name.EN,
		NamePL:        p.Name.PL,
		Description:   p.Description.DE,
		DescriptionEN: p.Description.EN,
		DescriptionPL: p.Description.PL,
		Image:         p.Image,
	}
}
