// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package metrics records render timings and cache effectiveness. Components
// take a Recorder; NoopRecorder is the default when metrics are disabled.
package metrics

import "time"

// Layer names a cache tier for lookup counters.
type Layer string

const (
	LayerMemory Layer = "memory"
	LayerValkey Layer = "valkey"
	LayerPage   Layer = "page"
)

// Recorder defines the observability hooks of the rendering engine.
// Implementations must be safe for concurrent use.
type Recorder interface {
	ObserveRender(format string, d time.Duration)
	IncCacheLookup(layer Layer, hit bool)
	IncPreviewRequest(status int)
}

// NoopRecorder is a Recorder that does nothing.
type NoopRecorder struct{}

func (NoopRecorder) ObserveRender(string, time.Duration) {}
func (NoopRecorder) IncCacheLookup(Layer, bool)          {}
func (NoopRecorder) IncPreviewRequest(int)               {}
