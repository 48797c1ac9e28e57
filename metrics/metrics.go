// Package metrics exposes the Prometheus collectors for note traffic and the
// standalone server that serves them.
package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/itcouldbejimmy-lgtm/myprivatenote/common"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	NotesCreated = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "notes_created_total",
		Help:      "Notes stored since process start.",
	})

	NotesRead = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "notes_read_total",
		Help:      "Notes handed out (and destroyed) since process start.",
	})

	NoteReadMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "notes_read_misses_total",
		Help:      "Read requests for notes that were absent or already read.",
	})

	CounterPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: common.PackageName,
		Name:      "counter_persist_failures_total",
		Help:      "Failed attempts to persist the usage counters record.",
	})

	buildInfo = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: common.PackageName,
		Name:      "build_info",
		Help:      "Build metadata, value is always 1.",
	}, []string{"version"})
)

// MetricsServer serves /metrics from its own registry so that several servers
// (one per test, for example) can coexist in one process.
type MetricsServer struct {
	registry *prometheus.Registry
	srv      *http.Server
}

// New creates a metrics server listening on addr. An empty addr is allowed;
// the server is then only useful through Handler.
func New(addr string) (*MetricsServer, error) {
	registry := prometheus.NewRegistry()
	for _, c := range []prometheus.Collector{
		NotesCreated,
		NotesRead,
		NoteReadMisses,
		CounterPersistFailures,
		buildInfo,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}
	buildInfo.WithLabelValues(common.Version).Set(1)

	ms := &MetricsServer{registry: registry}

	mux := http.NewServeMux()
	mux.Handle("/metrics", ms.Handler())
	ms.srv = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	return ms, nil
}

// Handler returns the Prometheus exposition handler for this server's registry.
func (m *MetricsServer) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *MetricsServer) ListenAndServe() error {
	return m.srv.ListenAndServe()
}

func (m *MetricsServer) Shutdown(ctx context.Context) error {
	return m.srv.Shutdown(ctx)
}
