package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Outcome labels for satplan_constellations_total.
const (
	StatusWritten = "written"
	StatusSkipped = "skipped"
	StatusFailed  = "failed"
)

// Collector bundles Prometheus metrics for dataset generation and exposes
// them over HTTP or as a node_exporter textfile.
type Collector struct {
	gatherer prometheus.Gatherer

	Constellations    *prometheus.CounterVec
	Satellites        *prometheus.CounterVec
	AssemblyDurations *prometheus.HistogramVec
	CatalogSize       prometheus.Gauge
}

// NewCollector registers generation metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	constellations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satplan_constellations_total",
		Help: "Constellation datasets processed, labeled by inclination family and outcome.",
	}, []string{"family", "status"})
	constellations, err := registerCounterVec(reg, constellations, "satplan_constellations_total")
	if err != nil {
		return nil, err
	}

	satellites := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "satplan_satellites_generated_total",
		Help: "Satellite records written, labeled by inclination family.",
	}, []string{"family"})
	satellites, err = registerCounterVec(reg, satellites, "satplan_satellites_generated_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "satplan_assembly_duration_seconds",
		Help:    "Time to assemble and write one constellation dataset.",
		Buckets: []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
	}, []string{"family"})
	durations, err = registerHistogramVec(reg, durations, "satplan_assembly_duration_seconds")
	if err != nil {
		return nil, err
	}

	catalog, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "satplan_catalog_constellations",
		Help: "Constellations currently held in the in-memory catalog.",
	}), "satplan_catalog_constellations")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:          gatherer,
		Constellations:    constellations,
		Satellites:        satellites,
		AssemblyDurations: durations,
		CatalogSize:       catalog,
	}, nil
}

// ObserveConstellation records the outcome of one (family, size) pair.
// Satellites and duration are only recorded for written datasets.
func (c *Collector) ObserveConstellation(family, status string, satellites int, elapsed time.Duration) {
	if c == nil {
		return
	}
	if c.Constellations != nil {
		c.Constellations.WithLabelValues(family, status).Inc()
	}
	if status != StatusWritten {
		return
	}
	if c.Satellites != nil {
		c.Satellites.WithLabelValues(family).Add(float64(satellites))
	}
	if c.AssemblyDurations != nil {
		c.AssemblyDurations.WithLabelValues(family).Observe(elapsed.Seconds())
	}
}

// SetCatalogSize updates the catalog gauge.
func (c *Collector) SetCatalogSize(n int) {
	if c == nil || c.CatalogSize == nil {
		return
	}
	c.CatalogSize.Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// WriteTextfile dumps the current metrics in the text exposition format,
// suitable for the node_exporter textfile collector.
func (c *Collector) WriteTextfile(path string) error {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	if err := prometheus.WriteToTextfile(path, gatherer); err != nil {
		return fmt.Errorf("write metrics textfile %s: %w", path, err)
	}
	return nil
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
