// Package metrics expone contadores Prometheus de las llamadas a servicios remotos
// (Sheets, Drive, exportación CSV, S3).
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder registra llamadas remotas. Un Recorder nil es válido y no registra nada.
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewRecorder crea el registro propio con los colectores de proceso y Go.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		registry: reg,
		calls: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "inventario_remote_calls_total",
			Help: "Llamadas a servicios remotos por servicio, operación y resultado.",
		}, []string{"service", "operation", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "inventario_remote_call_duration_seconds",
			Help:    "Duración de las llamadas a servicios remotos.",
			Buckets: prometheus.DefBuckets,
		}, []string{"service", "operation"}),
	}
	reg.MustRegister(
		r.calls,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// Observe registra una llamada iniciada en start; err decide el resultado.
func (r *Recorder) Observe(service, operation string, start time.Time, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.calls.WithLabelValues(service, operation, outcome).Inc()
	r.duration.WithLabelValues(service, operation).Observe(time.Since(start).Seconds())
}

// Track envuelve fn midiendo su duración y resultado.
func (r *Recorder) Track(service, operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	r.Observe(service, operation, start, err)
	return err
}

// Handler sirve el registro en formato de exposición Prometheus.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Registry expone el registro para tests.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
