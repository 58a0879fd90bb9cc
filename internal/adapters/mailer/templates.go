package mailer

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"html/template"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

//go:embed i18n/*.json
var i18nFS embed.FS

// Renderer собирает тексты писем контактной формы на нужном языке
type Renderer struct {
	templates *template.Template
	strings   map[models.Locale]map[string]string
	site      string
}

type templateData struct {
	T       map[string]string
	Name    string
	Email   string
	Message string
	Site    string
}

// NewRenderer загружает встроенные шаблоны и словари всех языков
func NewRenderer(site string) (*Renderer, error) {
	tmpl, err := template.ParseFS(templatesFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	bundle := make(map[models.Locale]map[string]string, len(models.SupportedLocales))
	for _, locale := range models.SupportedLocales {
		raw, err := i18nFS.ReadFile("i18n/" + locale.String() + ".json")
		if err != nil {
			return nil, fmt.Errorf("failed to read %s strings: %w", locale, err)
		}
		dict := map[string]string{}
		if err := json.Unmarshal(raw, &dict); err != nil {
			return nil, fmt.Errorf("failed to parse %s strings: %w", locale, err)
		}
		bundle[locale] = dict
	}

	return &Renderer{templates: tmpl, strings: bundle, site: site}, nil
}

// Notification письмо владельцу магазина, всегда на базовом языке
func (r *Renderer) Notification(req models.ContactRequest) (subject, html string, err error) {
	return r.render("notification.html", "notification_subject", models.DefaultLocale, req)
}

// Confirmation подтверждение отправителю на его языке
func (r *Renderer) Confirmation(req models.ContactRequest, locale models.Locale) (subject, html string, err error) {
	return r.render("confirmation.html", "confirmation_subject", locale, req)
}

func (r *Renderer) render(name, subjectKey string, locale models.Locale, req models.ContactRequest) (string, string, error) {
	dict, ok := r.strings[locale]
	if !ok {
		dict = r.strings[models.DefaultLocale]
	}

	var buf bytes.Buffer
	err := r.templates.ExecuteTemplate(&buf, name, templateData{
		T:       dict,
		Name:    req.Name,
		Email:   req.Email,
		Message: req.Message,
		Site:    r.site,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", name, err)
	}

	subject := dict[subjectKey]
	if subjectKey == "notification_subject" {
		subject = fmt.Sprintf(subject, req.Name)
	}
	return subject, buf.String(), nil
}
