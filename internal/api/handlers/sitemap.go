package handlers

import (
	"context"
	"encoding/xml"
	"net/http"
	"strconv"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/internal/domain/models"
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

const (
	sitemapNamespace = "http://www.sitemaps.org/schemas/sitemap/0.9"
	xhtmlNamespace   = "http://www.w3.org/1999/xhtml"
)

// SitemapBuilder записи карты сайта
type SitemapBuilder interface {
	Entries(ctx context.Context) []models.SitemapEntry
}

// SitemapHandler отдает sitemap.xml
type SitemapHandler struct {
	sitemap SitemapBuilder
	logger  interfaces.LoggerPort
}

// NewSitemapHandler создает обработчик карты сайта
func NewSitemapHandler(sitemap SitemapBuilder, logger interfaces.LoggerPort) *SitemapHandler {
	return &SitemapHandler{sitemap: sitemap, logger: logger}
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	XHTML   string       `xml:"xmlns:xhtml,attr"`
	URLs    []sitemapURL `xml:"url"`
}

type sitemapURL struct {
	Loc        string          `xml:"loc"`
	LastMod    string          `xml:"lastmod"`
	ChangeFreq string          `xml:"changefreq"`
	Priority   string          `xml:"priority"`
	Links      []alternateLink `xml:"xhtml:link"`
}

type alternateLink struct {
	Rel      string `xml:"rel,attr"`
	HrefLang string `xml:"hreflang,attr"`
	Href     string `xml:"href,attr"`
}

// Sitemap godoc
// @Summary  Карта сайта витрины на всех языках
// @Tags     seo
// @Produce  xml
// @Success  200  {string}  string
// @Router   /sitemap.xml [get]
func (h *SitemapHandler) Sitemap(w http.ResponseWriter, r *http.Request) {
	entries := h.sitemap.Entries(r.Context())

	set := urlSet{
		XMLNS: sitemapNamespace,
		XHTML: xhtmlNamespace,
		URLs:  make([]sitemapURL, 0, len(entries)),
	}
	for _, e := range entries {
		u := sitemapURL{
			Loc:        e.URL,
			LastMod:    e.LastModified.UTC().Format(time.RFC3339),
			ChangeFreq: e.ChangeFreq,
			Priority:   strconv.FormatFloat(e.Priority, 'f', 1, 64),
		}
		// Порядок ссылок фиксирован, как в списке языков
		for _, locale := range models.SupportedLocales {
			if href, ok := e.Alternates[locale]; ok {
				u.Links = append(u.Links, alternateLink{Rel: "alternate", HrefLang: locale.String(), Href: href})
			}
		}
		set.URLs = append(set.URLs, u)
	}

	body, err := xml.MarshalIndent(set, "", "  ")
	if err != nil {
		h.logger.ErrorWithContext(r.Context(), "Ошибка формирования карты сайта",
			interfaces.LogField{Key: "error", Value: err.Error()})
		writeError(w, r, http.StatusInternalServerError, "internal", msgLoadFailed)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(xml.Header))
	_, _ = w.Write(body)
}
