package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	catalogMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_mutations_total",
		Help: "Количество операций администрирования каталога",
	}, []string{"action", "status"})

	catalogReads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "catalog_reads_total",
		Help: "Количество чтений дерева каталога",
	}, []string{"variant", "source"})

	contactMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "contact_messages_total",
		Help: "Количество писем контактной формы",
	}, []string{"kind", "status"})
)

// mutationStatus метка результата для catalogMutations
func mutationStatus(err error) string {
	if err == nil {
		return "ok"
	}
	return errorCode(err)
}
