// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func request(h http.Handler, remote string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/preview", nil)
	req.RemoteAddr = remote
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRateLimiterLimitsPerClient(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	defer rl.Stop()
	h := rl.Middleware(okHandler())

	for i := 0; i < 2; i++ {
		if rr := request(h, "10.0.0.1:1234"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i, rr.Code)
		}
	}

	rr := request(h, "10.0.0.1:5678")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("third request: got %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Error("429 should carry Retry-After")
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json; charset=utf-8" {
		t.Errorf("Content-Type: got %q", ct)
	}

	if rr := request(h, "10.0.0.2:1234"); rr.Code != http.StatusOK {
		t.Errorf("other client: got %d, want 200", rr.Code)
	}
}

func TestRateLimiterWindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	if ok, _ := rl.allow("a"); !ok {
		t.Fatal("first request should pass")
	}
	ok, retry := rl.allow("a")
	if ok {
		t.Fatal("second request should be limited")
	}
	if retry != time.Minute {
		t.Errorf("retry: got %v, want 1m", retry)
	}

	now = now.Add(61 * time.Second)
	if ok, _ := rl.allow("a"); !ok {
		t.Error("request after the window should pass")
	}
}

func TestRateLimiterDisabled(t *testing.T) {
	rl := NewRateLimiter(0, time.Minute)
	defer rl.Stop()
	h := rl.Middleware(okHandler())

	for i := 0; i < 50; i++ {
		if rr := request(h, "10.0.0.1:1"); rr.Code != http.StatusOK {
			t.Fatalf("request %d: got %d", i, rr.Code)
		}
	}
}

func TestRateLimiterOnReject(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	defer rl.Stop()

	var mu sync.Mutex
	rejected := 0
	rl.OnReject = func(*http.Request) {
		mu.Lock()
		rejected++
		mu.Unlock()
	}
	h := rl.Middleware(okHandler())

	request(h, "10.0.0.1:1")
	request(h, "10.0.0.1:1")
	request(h, "10.0.0.1:1")

	if rejected != 2 {
		t.Errorf("rejected: got %d, want 2", rejected)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(5, time.Minute)
	defer rl.Stop()

	now := time.Now()
	rl.now = func() time.Time { return now }
	rl.allow("stale")

	now = now.Add(2 * time.Minute)
	rl.allow("fresh")
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	if _, ok := rl.clients["stale"]; ok {
		t.Error("stale client should be removed")
	}
	if _, ok := rl.clients["fresh"]; !ok {
		t.Error("fresh client should be kept")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		remote string
		xff    string
		xri    string
		want   string
	}{
		{"remote addr", "192.0.2.1:4000", "", "", "192.0.2.1"},
		{"ipv6 remote", "[2001:db8::1]:4000", "", "", "2001:db8::1"},
		{"forwarded chain", "10.0.0.1:1", "203.0.113.5, 10.0.0.2", "", "203.0.113.5"},
		{"forwarded single", "10.0.0.1:1", " 203.0.113.6 ", "", "203.0.113.6"},
		{"real ip", "10.0.0.1:1", "", "198.51.100.7", "198.51.100.7"},
		{"no port", "192.0.2.9", "", "", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP: got %q, want %q", got, tt.want)
			}
		})
	}
}
