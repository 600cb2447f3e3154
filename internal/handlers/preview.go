// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"

	"inkwell/internal/engine"
	"inkwell/internal/markdown"
	"inkwell/internal/metrics"
)

// Preview serves the editor's live preview. It is called on (debounced)
// keystrokes, so it does no database work at all.
type Preview struct {
	engine   *engine.Engine
	recorder metrics.Recorder
	maxBody  int64
}

// NewPreview creates the preview handler. maxBody bounds the request body in
// bytes; zero means no limit. A nil recorder disables metrics.
func NewPreview(eng *engine.Engine, recorder metrics.Recorder, maxBody int64) *Preview {
	if recorder == nil {
		recorder = metrics.NoopRecorder{}
	}
	return &Preview{engine: eng, recorder: recorder, maxBody: maxBody}
}

type previewRequest struct {
	Markdown string `json:"markdown"`
	Format   string `json:"format"`
}

type previewResponse struct {
	HTML    string `json:"html"`
	Excerpt string `json:"excerpt"`
	Cached  bool   `json:"cached"`
}

// Render handles POST /api/preview. The body is either JSON
// {"markdown": ..., "format": ...} or raw text/plain Markdown with the format
// in the "format" query parameter.
func (p *Preview) Render(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	defer func() { p.recorder.IncPreviewRequest(status) }()

	fail := func(code int, msg string) {
		status = code
		writeError(w, code, msg)
	}

	if p.maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, p.maxBody)
	}

	req, err := decodePreview(r)
	if err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			fail(http.StatusRequestEntityTooLarge, "Request body too large.")
		case errors.Is(err, errUnsupportedMedia):
			fail(http.StatusUnsupportedMediaType, "Send application/json or text/plain.")
		default:
			fail(http.StatusBadRequest, "Invalid request body.")
		}
		return
	}

	format, err := markdown.ParseFormat(req.Format)
	if err != nil {
		fail(http.StatusBadRequest, "Unknown format.")
		return
	}

	res, err := p.engine.Preview(r.Context(), format, req.Markdown)
	if err != nil {
		slog.Error("preview render failed", "error", err, "format", format)
		fail(http.StatusInternalServerError, "Render failed.")
		return
	}

	writeJSON(w, status, previewResponse{
		HTML:    res.HTML,
		Excerpt: res.Excerpt,
		Cached:  res.Cached(),
	})
}

var errUnsupportedMedia = errors.New("unsupported media type")

// decodePreview reads the request in either accepted encoding. A missing
// Content-Type is treated as JSON.
func decodePreview(r *http.Request) (previewRequest, error) {
	var req previewRequest

	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return req, errUnsupportedMedia
		}
		mediaType = mt
	}

	switch mediaType {
	case "application/json":
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, err
		}
	case "text/plain", "text/markdown":
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return req, err
		}
		req.Markdown = string(body)
		req.Format = r.URL.Query().Get("format")
	default:
		return req, errUnsupportedMedia
	}
	return req, nil
}
