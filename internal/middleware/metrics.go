package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics collects per-request HTTP metrics into its own registry so several
// apps can live in one process.
type Metrics struct {
	registry *prometheus.Registry
	prom     *fiberprometheus.FiberPrometheus
}

// InitMetrics creates the HTTP metrics collector for service.
func InitMetrics(service string) *Metrics {
	reg := prometheus.NewRegistry()
	return &Metrics{
		registry: reg,
		prom:     fiberprometheus.NewWithRegistry(reg, service, "http", "", nil),
	}
}

// Middleware records request count, latency and in-flight gauges.
func (m *Metrics) Middleware() fiber.Handler {
	return m.prom.Middleware
}

// Handler serves the HTTP metrics together with the process-wide default registry.
func (m *Metrics) Handler() fiber.Handler {
	gatherers := prometheus.Gatherers{prometheus.DefaultGatherer, m.registry}
	return adaptor.HTTPHandler(promhttp.HandlerFor(gatherers, promhttp.HandlerOpts{}))
}
