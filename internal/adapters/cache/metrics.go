package cache

import (
	"github.com/DominikSitny/tornado-racing-moto/pkg/interfaces"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var cacheOperations = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cache_operations_total",
	Help: "Количество операций с кэшем",
}, []string{"driver", "operation", "status"})

// observe учитывает операцию в метрике и возвращает err без изменений
func observe(driver, operation string, err error) error {
	status := "ok"
	switch err {
	case nil:
	case interfaces.ErrCacheMiss:
		status = "miss"
	default:
		status = "error"
	}
	cacheOperations.WithLabelValues(driver, operation, status).Inc()
	return err
}
