package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/mikey/phish-filter/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Recorder exports assessment counters to Prometheus
type Recorder struct {
	assessments *prometheus.CounterVec
	indicators  *prometheus.CounterVec
	scores      prometheus.Histogram
	bypassed    prometheus.Counter
}

// NewRecorder creates a recorder and registers its collectors
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phish_assessments_total",
			Help: "Number of scored emails by threat level.",
		}, []string{"threat_level"}),
		indicators: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "phish_indicators_total",
			Help: "Number of triggered indicators by rule.",
		}, []string{"indicator"}),
		scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "phish_assessment_score",
			Help:    "Distribution of assessment scores.",
			Buckets: []float64{0, 20, 50, 75, 89, 100, 150},
		}),
		bypassed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "phish_allowlist_bypass_total",
			Help: "Number of emails that skipped scoring due to the allowlist.",
		}),
	}

	for _, c := range []prometheus.Collector{r.assessments, r.indicators, r.scores, r.bypassed} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics collector: %w", err)
		}
	}

	// Expose every level from the start so dashboards see zeros
	for _, level := range core.ThreatLevels {
		r.assessments.WithLabelValues(level.String())
	}

	return r, nil
}

// Observe records one assessment
func (r *Recorder) Observe(assessment *core.Assessment) {
	r.assessments.WithLabelValues(assessment.ThreatLevel.String()).Inc()
	r.scores.Observe(float64(assessment.Score))
	if assessment.Bypassed {
		r.bypassed.Inc()
	}
	for _, indicator := range assessment.Indicators {
		r.indicators.WithLabelValues(indicator.Name).Inc()
	}
}

// Server serves the metrics endpoint over HTTP
type Server struct {
	server *http.Server
	logger *zap.Logger
}

// NewServer creates a metrics server exposing the gatherer on /metrics
func NewServer(addr string, gatherer prometheus.Gatherer, logger *zap.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	return &Server{
		server: &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Start starts serving in the background
func (s *Server) Start() error {
	s.logger.Info("Metrics server starting", zap.String("address", s.server.Addr))
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("Metrics server error", zap.Error(err))
		}
	}()
	return nil
}

// Stop shuts the server down
func (s *Server) Stop(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
