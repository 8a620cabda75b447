// Package metrics exposes Prometheus instruments for sync runs, token renewals
// and election context lookups. A nil *Metrics is a valid no-op recorder.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "electoralsync"

// Context lookup results.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupRefresh = "refresh"
)

type Metrics struct {
	syncRuns       *prometheus.CounterVec
	syncDuration   *prometheus.HistogramVec
	syncRecords    *prometheus.CounterVec
	tokenRenewals  *prometheus.CounterVec
	contextLookups *prometheus.CounterVec
}

// New registers the instruments on reg. If reg is nil, it returns nil (no-op metrics).
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &Metrics{
		syncRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_runs_total",
			Help:      "Number of sync runs by sync type and result",
		}, []string{"sync_type", "result"}),
		syncDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "sync_duration_seconds",
			Help:      "Duration of sync runs in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"sync_type", "result"}),
		syncRecords: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sync_records_processed_total",
			Help:      "Records upserted by successful sync runs",
		}, []string{"sync_type"}),
		tokenRenewals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_renewals_total",
			Help:      "Bearer token renewals against the commission auth endpoint",
		}, []string{"result"}),
		contextLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "election_context_lookups_total",
			Help:      "Current election context lookups by cache result",
		}, []string{"result"}),
	}

	for _, c := range []prometheus.Collector{m.syncRuns, m.syncDuration, m.syncRecords, m.tokenRenewals, m.contextLookups} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *Metrics) RecordSync(syncType string, duration time.Duration, records int, success bool) {
	if m == nil {
		return
	}
	result := resultLabel(success)
	m.syncRuns.WithLabelValues(syncType, result).Inc()
	m.syncDuration.WithLabelValues(syncType, result).Observe(duration.Seconds())
	if success {
		m.syncRecords.WithLabelValues(syncType).Add(float64(records))
	}
}

func (m *Metrics) RecordTokenRenewal(success bool) {
	if m == nil {
		return
	}
	m.tokenRenewals.WithLabelValues(resultLabel(success)).Inc()
}

func (m *Metrics) RecordContextLookup(result string) {
	if m == nil {
		return
	}
	m.contextLookups.WithLabelValues(result).Inc()
}

func resultLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
