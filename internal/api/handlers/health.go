package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
)

// Pinger зависимость, доступность которой проверяет /ready
type Pinger interface {
	Ping(ctx context.Context) error
}

// Ready проверяет соединение с хранилищем каталога
func Ready(store Pinger, logger interfaces.LoggerPort) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := store.Ping(ctx); err != nil {
			logger.WarnWithContext(r.Context(), "Хранилище недоступно",
				interfaces.LogField{Key: "error", Value: err.Error()})
			writeError(w, r, http.StatusServiceUnavailable, "unavailable", "Datenbank nicht erreichbar")
			return
		}
		writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
	}
}
