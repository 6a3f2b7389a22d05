package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Frame is the set of collectors updated by the frame loop
type Frame struct {
	Frames         prometheus.Counter
	SkippedFrames  prometheus.Counter
	FrameSeconds   prometheus.Histogram
	Blades         prometheus.Gauge
	WindMagnitude  prometheus.Gauge
	SimTime        prometheus.Gauge
	SimStep        prometheus.Gauge
	ClampedTicks   prometheus.Counter
	WindReloads    *prometheus.CounterVec
	ControlClients prometheus.Gauge
}

// NewFrame creates the collectors and registers them with reg
func NewFrame(reg prometheus.Registerer) *Frame {
	f := &Frame{
		Frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grass",
			Name:      "frames_total",
			Help:      "Frames executed: dispatch, barrier and draw.",
		}),
		SkippedFrames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grass",
			Name:      "frames_skipped_total",
			Help:      "Frames skipped while the window had no drawable surface.",
		}),
		FrameSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "grass",
			Name:      "frame_seconds",
			Help:      "Wall time between presented frames.",
			Buckets:   []float64{0.004, 0.008, 0.0167, 0.033, 0.05, 0.1, 0.25},
		}),
		Blades: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grass",
			Name:      "blades",
			Help:      "Blades in the simulated field.",
		}),
		WindMagnitude: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grass",
			Name:      "wind_magnitude",
			Help:      "Wind magnitude fed to the last frame, gusts included.",
		}),
		SimTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grass",
			Name:      "simulation_seconds",
			Help:      "Simulation clock.",
		}),
		SimStep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grass",
			Name:      "simulation_step_seconds",
			Help:      "Delta time of the last tick after clamping.",
		}),
		ClampedTicks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "grass",
			Name:      "ticks_clamped_total",
			Help:      "Ticks whose delta time was cut to the maximum step.",
		}),
		WindReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "grass",
			Name:      "wind_reloads_total",
			Help:      "Wind updates from the settings file or the control server.",
		}, []string{"source", "result"}),
		ControlClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "grass",
			Name:      "control_clients",
			Help:      "Connected control websocket clients.",
		}),
	}
	reg.MustRegister(f.Frames, f.SkippedFrames, f.FrameSeconds, f.Blades,
		f.WindMagnitude, f.SimTime, f.SimStep, f.ClampedTicks, f.WindReloads, f.ControlClients)
	return f
}

// ObserveReload counts a wind update from source
func (f *Frame) ObserveReload(source string, ok bool) {
	result := "ok"
	if !ok {
		result = "rejected"
	}
	f.WindReloads.WithLabelValues(source, result).Inc()
}

// NewServer serves the registry on /metrics
func NewServer(addr string, gatherer prometheus.Gatherer) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  15 * time.Second,
	}
}
