package metrics

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "wallet_bridge"

// Service owns the prometheus registry of the bridge and the collectors
// written by the signing pipeline.
type Service struct {
	registry *prometheus.Registry

	flows        *prometheus.CounterVec
	bridge       *prometheus.CounterVec
	pollAttempts prometheus.Histogram
	inflight     prometheus.Gauge
	connected    prometheus.Gauge
	anchor       prometheus.Gauge
}

func New() (*Service, error) {
	s := &Service{
		registry: prometheus.NewRegistry(),
		flows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "flows_total",
			Help:      "Finished signing invocations by outcome.",
		}, []string{"outcome"}),
		bridge: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "signer_requests_total",
			Help:      "Signature requests handed to the external signer by result.",
		}, []string{"result"}),
		pollAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "confirm_poll_attempts",
			Help:      "Status calls needed per confirmation.",
			Buckets:   prometheus.LinearBuckets(1, 2, 10),
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "flows_inflight",
			Help:      "Signing invocations currently waiting.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "signer_connected",
			Help:      "1 while a signer is connected.",
		}),
		anchor: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "ledger_anchor_height",
			Help:      "Height of the latest anchor seen by the ledger probe.",
		}),
	}

	for _, c := range []prometheus.Collector{
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		s.flows,
		s.bridge,
		s.pollAttempts,
		s.inflight,
		s.connected,
		s.anchor,
	} {
		if err := s.registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "failed to register collector")
		}
	}

	return s, nil
}

func (s *Service) Registry() *prometheus.Registry {
	return s.registry
}

func (s *Service) FlowStarted() {
	s.inflight.Inc()
}

func (s *Service) FlowFinished(outcome string) {
	s.inflight.Dec()
	s.flows.WithLabelValues(outcome).Inc()
}

func (s *Service) SignerResult(result string) {
	s.bridge.WithLabelValues(result).Inc()
}

func (s *Service) PollAttempts(n int) {
	s.pollAttempts.Observe(float64(n))
}

func (s *Service) SetConnected(connected bool) {
	if connected {
		s.connected.Set(1)
		return
	}
	s.connected.Set(0)
}

func (s *Service) SetAnchorHeight(height uint64) {
	s.anchor.Set(float64(height))
}

// Middleware records per-route HTTP metrics into the service registry.
func (s *Service) Middleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Namespace:  namespace,
		Registerer: s.registry,
	})
}

// Handler serves the registry in the prometheus text format.
func (s *Service) Handler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{
		Gatherer: s.registry,
	})
}
