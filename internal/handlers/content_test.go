package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"inkwell/internal/models"
)

func doJSON(t *testing.T, env *testEnv, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	env.Router.ServeHTTP(rec, req)
	return rec
}

func decodeContent(t *testing.T, rec *httptest.ResponseRecorder) models.Content {
	t.Helper()
	var c models.Content
	if err := json.Unmarshal(rec.Body.Bytes(), &c); err != nil {
		t.Fatalf("decode content: %v (body %q)", err, rec.Body.String())
	}
	return c
}

func TestContentCreate(t *testing.T) {
	env, _, pages := newMemEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/content", `{"title":"Hello World","body":"# Hi"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want 201 (body %q)", rec.Code, rec.Body.String())
	}
	c := decodeContent(t, rec)
	if c.ID == uuid.Nil {
		t.Error("expected an ID")
	}
	if c.Slug != "hello-world" {
		t.Errorf("slug: got %q, want hello-world", c.Slug)
	}
	if c.Format != "blog" {
		t.Errorf("format: got %q, want blog", c.Format)
	}
	if c.Status != models.ContentStatusDraft {
		t.Errorf("status: got %q, want draft", c.Status)
	}
	if pages.wasInvalidated("hello-world") {
		t.Error("creating a draft should not touch the page cache")
	}
}

func TestContentCreateFromFrontMatter(t *testing.T) {
	env, _, _ := newMemEnv(t)

	body := "---\\ntitle: Café Notes\\nexcerpt: Short summary\\nformat: commonmark\\n---\\n# Body"
	rec := doJSON(t, env, http.MethodPost, "/api/content", `{"body":"`+body+`"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (body %q)", rec.Code, rec.Body.String())
	}
	c := decodeContent(t, rec)
	if c.Title != "Café Notes" {
		t.Errorf("title: got %q", c.Title)
	}
	if c.Slug != "cafe-notes" {
		t.Errorf("slug: got %q, want cafe-notes", c.Slug)
	}
	if c.ExcerptText() != "Short summary" {
		t.Errorf("excerpt: got %q", c.ExcerptText())
	}
	if c.Format != "commonmark" {
		t.Errorf("format: got %q", c.Format)
	}
	if !strings.HasPrefix(c.Body, "---\n") {
		t.Errorf("body should be stored as written, got %q", c.Body)
	}
}

func TestContentCreateExplicitFieldsWin(t *testing.T) {
	env, _, _ := newMemEnv(t)

	rec := doJSON(t, env, http.MethodPost, "/api/content",
		`{"title":"Given","slug":"given-slug","body":"---\ntitle: Ignored\nslug: ignored\n---\nx"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (body %q)", rec.Code, rec.Body.String())
	}
	c := decodeContent(t, rec)
	if c.Title != "Given" || c.Slug != "given-slug" {
		t.Errorf("got title %q slug %q", c.Title, c.Slug)
	}
}

func TestContentCreateValidation(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		wantStatus int
	}{
		{"bad json", `{"title":`, http.StatusBadRequest},
		{"missing title", `{"body":"no front matter"}`, http.StatusUnprocessableEntity},
		{"bad slug", `{"title":"T","slug":"Not A Slug"}`, http.StatusUnprocessableEntity},
		{"reserved slug", `{"title":"T","slug":"api"}`, http.StatusUnprocessableEntity},
		{"unknown format", `{"title":"T","format":"rst"}`, http.StatusUnprocessableEntity},
		{"unknown status", `{"title":"T","status":"archived"}`, http.StatusUnprocessableEntity},
		{"invalid yaml", `{"title":"T","body":"---\n: [\n---\nx"}`, http.StatusUnprocessableEntity},
		{"long excerpt", `{"title":"T","excerpt":"` + strings.Repeat("e", 1001) + `"}`, http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env, _, _ := newMemEnv(t)
			rec := doJSON(t, env, http.MethodPost, "/api/content", tt.body)
			if rec.Code != tt.wantStatus {
				t.Errorf("status: got %d, want %d (body %q)", rec.Code, tt.wantStatus, rec.Body.String())
			}
		})
	}
}

func TestContentCreateUnterminatedFrontMatterIsBody(t *testing.T) {
	env, _, _ := newMemEnv(t)
	rec := doJSON(t, env, http.MethodPost, "/api/content", `{"title":"T","body":"---\ntitle: x"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status: got %d (body %q)", rec.Code, rec.Body.String())
	}
}

func TestContentCreateDuplicateSlug(t *testing.T) {
	env, _, _ := newMemEnv(t)

	if rec := doJSON(t, env, http.MethodPost, "/api/content", `{"title":"Same"}`); rec.Code != http.StatusCreated {
		t.Fatalf("first create: %d", rec.Code)
	}
	rec := doJSON(t, env, http.MethodPost, "/api/content", `{"title":"Same"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("status: got %d, want 409", rec.Code)
	}
}

func TestContentGetUpdateDelete(t *testing.T) {
	env, _, pages := newMemEnv(t)

	created := decodeContent(t, doJSON(t, env, http.MethodPost, "/api/content",
		`{"title":"Post","status":"published","body":"text"}`))
	if !pages.wasInvalidated("post") {
		t.Error("creating a published post should invalidate its page")
	}
	path := "/api/content/" + created.ID.String()

	rec := doJSON(t, env, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get: %d", rec.Code)
	}
	if got := decodeContent(t, rec); got.Title != "Post" {
		t.Errorf("get title: %q", got.Title)
	}

	rec = doJSON(t, env, http.MethodPut, path, `{"title":"Renamed","slug":"renamed","body":"new"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d (body %q)", rec.Code, rec.Body.String())
	}
	updated := decodeContent(t, rec)
	if updated.Slug != "renamed" || updated.Body != "new" {
		t.Errorf("update not applied: %+v", updated)
	}
	if updated.Status != models.ContentStatusPublished {
		t.Errorf("empty status should keep the current one, got %q", updated.Status)
	}
	if !pages.wasInvalidated("renamed") {
		t.Error("update should invalidate the new slug")
	}

	rec = doJSON(t, env, http.MethodDelete, path, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete: %d", rec.Code)
	}
	if rec := doJSON(t, env, http.MethodGet, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete: got %d, want 404", rec.Code)
	}
	if rec := doJSON(t, env, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete: got %d, want 404", rec.Code)
	}
}

func TestContentUpdateInvalidatesOldSlug(t *testing.T) {
	env, _, pages := newMemEnv(t)

	created := decodeContent(t, doJSON(t, env, http.MethodPost, "/api/content",
		`{"title":"Old Name","status":"published"}`))
	pages.mu.Lock()
	pages.invalidated = nil
	pages.mu.Unlock()

	rec := doJSON(t, env, http.MethodPut, "/api/content/"+created.ID.String(), `{"title":"New Name"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d", rec.Code)
	}
	if !pages.wasInvalidated("old-name") || !pages.wasInvalidated("new-name") {
		t.Errorf("invalidated %v, want old-name and new-name", pages.invalidated)
	}
}

func TestContentPublish(t *testing.T) {
	env, _, pages := newMemEnv(t)

	created := decodeContent(t, doJSON(t, env, http.MethodPost, "/api/content", `{"title":"Draft"}`))
	if created.PublishedAt != nil {
		t.Fatal("draft should have no publication date")
	}

	rec := doJSON(t, env, http.MethodPost, "/api/content/"+created.ID.String()+"/publish", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("publish: %d", rec.Code)
	}
	c := decodeContent(t, rec)
	if c.Status != models.ContentStatusPublished || c.PublishedAt == nil {
		t.Errorf("publish not applied: %+v", c)
	}
	if !pages.wasInvalidated("draft") {
		t.Error("publish should invalidate the page cache")
	}

	rec = doJSON(t, env, http.MethodPost, "/api/content/"+uuid.NewString()+"/publish", "")
	if rec.Code != http.StatusNotFound {
		t.Errorf("publish missing: got %d, want 404", rec.Code)
	}
}

func TestContentInvalidID(t *testing.T) {
	env, _, _ := newMemEnv(t)
	for _, method := range []string{http.MethodGet, http.MethodPut, http.MethodDelete} {
		rec := doJSON(t, env, method, "/api/content/not-a-uuid", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: got %d, want 400", method, rec.Code)
		}
	}
}

func TestContentList(t *testing.T) {
	env, _, _ := newMemEnv(t)

	doJSON(t, env, http.MethodPost, "/api/content", `{"title":"A"}`)
	doJSON(t, env, http.MethodPost, "/api/content", `{"title":"B","status":"published"}`)

	tests := []struct {
		query string
		want  int
	}{
		{"", 2},
		{"?status=draft", 1},
		{"?status=published", 1},
	}
	for _, tt := range tests {
		rec := doJSON(t, env, http.MethodGet, "/api/content/"+tt.query, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("list%s: %d", tt.query, rec.Code)
		}
		var items []models.Content
		if err := json.Unmarshal(rec.Body.Bytes(), &items); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(items) != tt.want {
			t.Errorf("list%s: got %d items, want %d", tt.query, len(items), tt.want)
		}
	}

	if rec := doJSON(t, env, http.MethodGet, "/api/content/?status=bogus", ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bogus status: got %d, want 400", rec.Code)
	}
}

func TestContentListEmptyIsArray(t *testing.T) {
	env, _, _ := newMemEnv(t)
	rec := doJSON(t, env, http.MethodGet, "/api/content/", "")
	if strings.TrimSpace(rec.Body.String()) != "[]" {
		t.Errorf("body: got %q, want []", rec.Body.String())
	}
}

func TestContentStoreFailure(t *testing.T) {
	env, s, _ := newMemEnv(t)
	s.err = errors.New("connection refused")

	if rec := doJSON(t, env, http.MethodPost, "/api/content", `{"title":"T"}`); rec.Code != http.StatusInternalServerError {
		t.Errorf("create: got %d, want 500", rec.Code)
	}
	if rec := doJSON(t, env, http.MethodGet, "/api/content/"+uuid.NewString(), ""); rec.Code != http.StatusInternalServerError {
		t.Errorf("get: got %d, want 500", rec.Code)
	}
}
