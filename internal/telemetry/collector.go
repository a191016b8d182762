// Package telemetry exposes frame loop metrics through a private Prometheus
// registry.
package telemetry

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
)

// Collector owns the frame loop metrics.
type Collector struct {
	registry *prometheus.Registry

	frames       prometheus.Counter
	skipped      prometheus.Counter
	resizes      prometheus.Counter
	frameSeconds prometheus.Histogram
	subsystem    *prometheus.GaugeVec
}

// Summary is a snapshot of the counters.
type Summary struct {
	Frames        uint64
	SkippedFrames uint64
	Resizes       uint64
	FrameSeconds  float64 // sum of observed frame deltas
}

func NewCollector(namespace string) *Collector {
	if namespace == "" {
		namespace = "horizon"
	}
	c := &Collector{registry: prometheus.NewRegistry()}

	c.frames = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "presented_total",
		Help:      "Frames that reached the present step",
	})
	c.skipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "skipped_total",
		Help:      "Loop iterations skipped because the window was minimized",
	})
	c.resizes = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "swapchain",
		Name:      "resizes_total",
		Help:      "Swap chain resize requests issued to the render backend",
	})
	c.frameSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "frame",
		Name:      "seconds",
		Help:      "Frame clock delta",
		Buckets:   []float64{1.0 / 240, 1.0 / 144, 1.0 / 120, 1.0 / 60, 1.0 / 30, 1.0 / 15, 0.25, 1},
	})
	c.subsystem = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "subsystem",
		Name:      "start_seconds",
		Help:      "Time spent in each subsystem's init",
	}, []string{"subsystem"})

	c.registry.MustRegister(c.frames, c.skipped, c.resizes, c.frameSeconds, c.subsystem)
	return c
}

// Registry returns the underlying registry for exposition.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler serves the collector's metrics in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) FramePresented(dt float32) {
	c.frames.Inc()
	c.frameSeconds.Observe(float64(dt))
}

func (c *Collector) FrameSkipped()     { c.skipped.Inc() }
func (c *Collector) SwapChainResized() { c.resizes.Inc() }

func (c *Collector) SubsystemStarted(name string, took time.Duration) {
	c.subsystem.WithLabelValues(name).Set(took.Seconds())
}

// Summary reads the current counter values.
func (c *Collector) Summary() Summary {
	var s Summary
	s.Frames = uint64(counterValue(c.frames))
	s.SkippedFrames = uint64(counterValue(c.skipped))
	s.Resizes = uint64(counterValue(c.resizes))
	var m dto.Metric
	if err := c.frameSeconds.Write(&m); err == nil && m.Histogram != nil {
		s.FrameSeconds = m.Histogram.GetSampleSum()
	}
	return s
}

func counterValue(c prometheus.Counter) float64 {
	var m dto.Metric
	if err := c.Write(&m); err != nil || m.Counter == nil {
		return 0
	}
	return m.Counter.GetValue()
}
