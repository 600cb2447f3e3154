// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// handler_test.go provides shared test infrastructure for handler tests.
// Most tests run against in-memory fakes; the integration environment is
// skipped when PostgreSQL or Valkey are unavailable.
package handlers

import (
	"context"
	"database/sql"
	"net/http"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"inkwell/internal/cache"
	"inkwell/internal/database"
	"inkwell/internal/engine"
	"inkwell/internal/metrics"
	"inkwell/internal/models"
	"inkwell/internal/store"
)

// memStore is an in-memory ContentStore with the same semantics as the
// PostgreSQL store.
type memStore struct {
	mu    sync.Mutex
	items map[uuid.UUID]models.Content
	err   error // returned by every call when set
}

func newMemStore() *memStore {
	return &memStore{items: map[uuid.UUID]models.Content{}}
}

func (s *memStore) List(_ context.Context, status models.ContentStatus) ([]models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	var out []models.Content
	for _, c := range s.items {
		if status == "" || c.Status == status {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) ListPublished(ctx context.Context) ([]models.Content, error) {
	return s.List(ctx, models.ContentStatusPublished)
}

func (s *memStore) FindByID(_ context.Context, id uuid.UUID) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *memStore) FindBySlug(_ context.Context, slug string) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	for _, c := range s.items {
		if c.Slug == slug && c.IsPublished() {
			return &c, nil
		}
	}
	return nil, nil
}

func (s *memStore) Create(_ context.Context, c *models.Content) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if s.slugTaken(c.Slug, uuid.Nil) {
		return nil, store.ErrSlugTaken
	}
	saved := *c
	saved.ID = uuid.New()
	saved.CreatedAt = time.Now()
	saved.UpdatedAt = saved.CreatedAt
	stamp(&saved)
	s.items[saved.ID] = saved
	return &saved, nil
}

func (s *memStore) Update(_ context.Context, c *models.Content) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.items[c.ID]; !ok {
		return nil, nil
	}
	if s.slugTaken(c.Slug, c.ID) {
		return nil, store.ErrSlugTaken
	}
	saved := *c
	saved.UpdatedAt = time.Now()
	stamp(&saved)
	s.items[saved.ID] = saved
	return &saved, nil
}

func (s *memStore) Publish(_ context.Context, id uuid.UUID) (*models.Content, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	c, ok := s.items[id]
	if !ok {
		return nil, nil
	}
	c.Status = models.ContentStatusPublished
	stamp(&c)
	s.items[id] = c
	return &c, nil
}

func (s *memStore) Delete(_ context.Context, id uuid.UUID) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return false, s.err
	}
	_, ok := s.items[id]
	delete(s.items, id)
	return ok, nil
}

func (s *memStore) slugTaken(slug string, except uuid.UUID) bool {
	for id, c := range s.items {
		if c.Slug == slug && id != except {
			return true
		}
	}
	return false
}

func stamp(c *models.Content) {
	if c.IsPublished() && c.PublishedAt == nil {
		now := time.Now()
		c.PublishedAt = &now
	}
}

// memPages is an in-memory PageCache that records invalidations.
type memPages struct {
	mu          sync.Mutex
	pages       map[string][]byte
	invalidated []string
}

func newMemPages() *memPages {
	return &memPages{pages: map[string][]byte{}}
}

func (p *memPages) Get(_ context.Context, key string) ([]byte, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.pages[key]
	return v, ok
}

func (p *memPages) Set(_ context.Context, key string, html []byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages[key] = html
}

func (p *memPages) InvalidatePage(_ context.Context, slug string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.pages, slug)
	delete(p.pages, cache.IndexKey())
	p.invalidated = append(p.invalidated, slug)
}

func (p *memPages) InvalidateAll(context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pages = map[string][]byte{}
	p.invalidated = append(p.invalidated, "*")
}

func (p *memPages) wasInvalidated(slug string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, s := range p.invalidated {
		if s == slug {
			return true
		}
	}
	return false
}

// statusRecorder collects preview statuses.
type statusRecorder struct {
	metrics.NoopRecorder
	mu       sync.Mutex
	statuses []int
	lookups  map[bool]int
}

func (r *statusRecorder) IncPreviewRequest(status int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.statuses = append(r.statuses, status)
}

func (r *statusRecorder) IncCacheLookup(layer metrics.Layer, hit bool) {
	if layer != metrics.LayerPage {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.lookups == nil {
		r.lookups = map[bool]int{}
	}
	r.lookups[hit]++
}

// testEnv holds all dependencies for handler tests.
type testEnv struct {
	Store    ContentStore
	Pages    PageCache
	Engine   *engine.Engine
	Recorder *statusRecorder
	Preview  *Preview
	Content  *Content
	Public   *Public
	Cache    *Cache
	Router   chi.Router
}

// newTestEnv wires the handlers over the given store and page cache.
func newTestEnv(t *testing.T, contentStore ContentStore, pages PageCache) *testEnv {
	t.Helper()

	eng, err := engine.New(nil, engine.Options{})
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	rec := &statusRecorder{}

	env := &testEnv{
		Store:    contentStore,
		Pages:    pages,
		Engine:   eng,
		Recorder: rec,
		Preview:  NewPreview(eng, rec, 1<<16),
		Content:  NewContent(contentStore, pages, 1<<16),
		Public:   NewPublic(eng, contentStore, pages, rec),
		Cache:    NewCache(eng, pages),
	}

	r := chi.NewRouter()
	r.Post("/api/preview", env.Preview.Render)
	r.Post("/api/cache/flush", env.Cache.Flush)
	r.Route("/api/content", func(r chi.Router) {
		r.Get("/", env.Content.List)
		r.Post("/", env.Content.Create)
		r.Get("/{id}", env.Content.Get)
		r.Put("/{id}", env.Content.Update)
		r.Delete("/{id}", env.Content.Delete)
		r.Post("/{id}/publish", env.Content.Publish)
	})
	r.Get("/", env.Public.Index)
	r.Get("/{slug}", env.Public.Page)
	env.Router = r

	return env
}

// newMemEnv is the default environment: in-memory store and page cache.
func newMemEnv(t *testing.T) (*testEnv, *memStore, *memPages) {
	t.Helper()
	s, p := newMemStore(), newMemPages()
	return newTestEnv(t, s, p), s, p
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// testDB opens a connection to the test PostgreSQL and runs migrations.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	host := envOr("POSTGRES_HOST", "localhost")
	port := envOr("POSTGRES_PORT", "5432")
	user := envOr("POSTGRES_USER", "inkwell")
	pass := envOr("POSTGRES_PASSWORD", "changeme")
	name := envOr("POSTGRES_DB", "inkwell")
	dsn := "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=disable"

	db, err := sql.Open("pgx", dsn)
	if err != nil {
		t.Skipf("skipping: cannot open DB: %v", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		t.Skipf("skipping: DB not reachable: %v", err)
	}

	if err := database.Migrate(context.Background(), db); err != nil {
		db.Close()
		t.Fatalf("migrate: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testValkeyClient returns a Redis client for handler tests on DB 15.
func testValkeyClient(t *testing.T) *redis.Client {
	t.Helper()

	client := redis.NewClient(&redis.Options{
		Addr:     envOr("VALKEY_HOST", "localhost") + ":" + envOr("VALKEY_PORT", "6379"),
		Password: os.Getenv("VALKEY_PASSWORD"),
		DB:       15,
	})

	ctx := context.Background()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		t.Skipf("skipping: Valkey not reachable: %v", err)
	}

	t.Cleanup(func() {
		keys, _ := client.Keys(ctx, "inkwell:*").Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		client.Close()
	})

	return client
}

// newIntegrationEnv wires the handlers over PostgreSQL and Valkey.
func newIntegrationEnv(t *testing.T) (*testEnv, *sql.DB) {
	t.Helper()
	db := testDB(t)
	vk := testValkeyClient(t)
	return newTestEnv(t, store.NewContentStore(db), cache.NewPageCache(vk, time.Minute)), db
}

// cleanContent removes test content by slug.
func cleanContent(t *testing.T, db *sql.DB, slugs ...string) {
	t.Helper()
	for _, s := range slugs {
		db.Exec("DELETE FROM content WHERE slug = $1", s)
	}
}

// withChiURLParam adds a chi URL parameter to a request.
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}
