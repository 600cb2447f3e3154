// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package metrics

import (
	"net/http"
	"strconv"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "inkwell"

// PrometheusRecorder implements Recorder using Prometheus metrics.
type PrometheusRecorder struct {
	renderDuration  *prom.HistogramVec
	cacheLookups    *prom.CounterVec
	previewRequests *prom.CounterVec
}

// NewPrometheusRecorder constructs the metrics and registers them on reg
// together with the Go runtime and process collectors. A nil reg gets a
// fresh registry.
func NewPrometheusRecorder(reg *prom.Registry) *PrometheusRecorder {
	if reg == nil {
		reg = prom.NewRegistry()
	}
	pr := &PrometheusRecorder{
		renderDuration: prom.NewHistogramVec(prom.HistogramOpts{
			Namespace: namespace,
			Name:      "render_duration_seconds",
			Help:      "Time spent converting markdown to HTML",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}, []string{"format"}),
		cacheLookups: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Cache lookups by layer and result",
		}, []string{"layer", "result"}),
		previewRequests: prom.NewCounterVec(prom.CounterOpts{
			Namespace: namespace,
			Name:      "preview_requests_total",
			Help:      "Preview API requests by response status",
		}, []string{"status"}),
	}
	reg.MustRegister(pr.renderDuration, pr.cacheLookups, pr.previewRequests)
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return pr
}

func (p *PrometheusRecorder) ObserveRender(format string, d time.Duration) {
	p.renderDuration.WithLabelValues(format).Observe(d.Seconds())
}

func (p *PrometheusRecorder) IncCacheLookup(layer Layer, hit bool) {
	res := "miss"
	if hit {
		res = "hit"
	}
	p.cacheLookups.WithLabelValues(string(layer), res).Inc()
}

func (p *PrometheusRecorder) IncPreviewRequest(status int) {
	p.previewRequests.WithLabelValues(strconv.Itoa(status)).Inc()
}

// HTTPHandler returns an http.Handler that serves the metrics of reg.
func HTTPHandler(reg *prom.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{EnableOpenMetrics: true})
}
