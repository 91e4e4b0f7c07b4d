// Package metrics exposes save orchestration counters to Prometheus.
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/debemdeboas/campaign-editor/internal/saving"
)

const namespace = "campaign_editor"

// Cycle outcomes.
const (
	OutcomePersisted     = "persisted"
	OutcomeEmpty         = "empty"
	OutcomeExportFailed  = "export_failed"
	OutcomePersistFailed = "persist_failed"
)

type Metrics struct {
	registry *prometheus.Registry

	saveRequests *prometheus.CounterVec
	saveCycles   *prometheus.CounterVec
	staleEvents  prometheus.Counter
}

// New builds the collectors on a private registry together with the Go and
// process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		saveRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "save_requests_total",
				Help:      "Save requests received, by whether they were forced.",
			},
			[]string{"force"},
		),
		saveCycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "save_cycles_total",
				Help:      "Finished save cycles, by outcome.",
			},
			[]string{"outcome"},
		),
		staleEvents: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "save_stale_events_total",
			Help:      "Effect results dropped because their cycle was superseded.",
		}),
	}

	m.registry.MustRegister(
		m.saveRequests,
		m.saveCycles,
		m.staleEvents,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// RegisterSessions exports the number of mounted editor sessions.
func (m *Metrics) RegisterSessions(count func() int) {
	m.registry.MustRegister(prometheus.NewGaugeFunc(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "editor_sessions",
			Help:      "Editor sessions currently mounted.",
		},
		func() float64 { return float64(count()) },
	))
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Observer records every orchestrator transition.
func (m *Metrics) Observer() saving.Observer {
	return m.observe
}

func (m *Metrics) observe(tr saving.Transition) {
	if req, ok := tr.Event.(saving.SaveRequested); ok {
		m.saveRequests.WithLabelValues(strconv.FormatBool(req.Force)).Inc()
		return
	}

	if tr.Stale {
		m.staleEvents.Inc()
		return
	}

	if _, wasActive := tr.Before.Active(); !wasActive || tr.After.Process.Step() != saving.StepIdle {
		return
	}

	if outcome := cycleOutcome(tr.Event); outcome != "" {
		m.saveCycles.WithLabelValues(outcome).Inc()
	}
}

func cycleOutcome(e saving.Event) string {
	switch ev := e.(type) {
	case saving.ContentPrepared:
		if ev.Content == nil {
			return OutcomeEmpty
		}
	case saving.PreparingFailed:
		return OutcomeExportFailed
	case saving.ContentPersisted:
		return OutcomePersisted
	case saving.PersistingFailed:
		return OutcomePersistFailed
	}
	return ""
}
