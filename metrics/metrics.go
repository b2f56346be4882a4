package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "dream_league"

// Recorder owns a private prometheus registry for engine and HTTP metrics.
// A nil *Recorder is valid and records nothing, so services can run without
// metrics wired in.
type Recorder struct {
	reg *prometheus.Registry

	operations      *prometheus.CounterVec
	abilities       *prometheus.CounterVec
	tournamentsDone prometheus.Counter
	synergyRuns     *prometheus.CounterVec
	synergyTeams    prometheus.Gauge
	synergyLatency  prometheus.Histogram
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		operations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "operations_total",
			Help:      "Engine operations by entity, operation and result code.",
		}, []string{"entity", "operation", "result"}),
		abilities: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "abilities_granted_total",
			Help:      "Special abilities granted to athletes.",
		}, []string{"ability"}),
		tournamentsDone: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tournaments_completed_total",
			Help:      "Tournaments whose final has been recorded.",
		}),
		synergyRuns: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "synergy_refresh_runs_total",
			Help:      "Synergy refresh job runs by outcome.",
		}, []string{"outcome"}),
		synergyTeams: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "synergy_refresh_teams",
			Help:      "Teams refreshed by the last synergy run.",
		}),
		synergyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "synergy_refresh_duration_seconds",
			Help:      "Duration of synergy refresh runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}

	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.operations,
		r.abilities,
		r.tournamentsDone,
		r.synergyRuns,
		r.synergyTeams,
		r.synergyLatency,
		r.requests,
		r.requestLatency,
	)
	return r
}

// RecordOperation counts one engine operation. result is "ok" or an error code.
func (r *Recorder) RecordOperation(entity, operation, result string) {
	if r == nil {
		return
	}
	r.operations.WithLabelValues(entity, operation, result).Inc()
}

// RecordAbilityGranted counts an ability unlock or grant.
func (r *Recorder) RecordAbilityGranted(ability string) {
	if r == nil {
		return
	}
	r.abilities.WithLabelValues(ability).Inc()
}

func (r *Recorder) RecordTournamentCompleted() {
	if r == nil {
		return
	}
	r.tournamentsDone.Inc()
}

// RecordSynergyRefresh tracks one run of the synergy job.
func (r *Recorder) RecordSynergyRefresh(teams int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	r.synergyRuns.WithLabelValues(outcome).Inc()
	r.synergyTeams.Set(float64(teams))
	r.synergyLatency.Observe(duration.Seconds())
}

// RecordHTTPRequest tracks basic HTTP metrics.
func (r *Recorder) RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if r == nil {
		return
	}
	r.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.requestLatency.WithLabelValues(method, route).Observe(duration.Seconds())
}

// Handler exposes the registry in the prometheus text format.
func (r *Recorder) Handler() http.Handler {
	if r == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}

// Registry is exposed for tests and for callers adding their own collectors.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.reg
}
