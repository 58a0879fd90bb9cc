package models

import "time"

// SitemapEntry один URL карты сайта с альтернативами на других языках
type SitemapEntry struct {
	URL          string
	LastModified time.Time
	ChangeFreq   string
	Priority     float64
	// Alternates язык -> URL, включая сам URL
	Alternates map[Locale]string
}
