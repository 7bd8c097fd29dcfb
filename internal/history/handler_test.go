package history

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func setupRouter(t *testing.T) (*gin.Engine, *MemoryRepo) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	r := gin.New()
	NewHandler(NewService(repo)).RegisterRoutes(r.Group("/api"))
	return r, repo
}

func do(r *gin.Engine, method, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(method, path, nil))
	return rec
}

func TestListHistory(t *testing.T) {
	r, repo := setupRouter(t)
	now := time.Now().UTC()
	_, _ = repo.Insert(context.Background(), record("a", now))
	_, _ = repo.Insert(context.Background(), record("b", now.Add(time.Second)))

	rec := do(r, http.MethodGet, "/api/history?q=generated+b")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body listResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Success || body.Count != 1 || body.Records[0].ID != "b" || body.Records[0].ToneLabel != "Professional" {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestListHistoryRejectsBadLimit(t *testing.T) {
	r, _ := setupRouter(t)
	if rec := do(r, http.MethodGet, "/api/history?limit=abc"); rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDeleteRecordRoutes(t *testing.T) {
	r, repo := setupRouter(t)
	now := time.Now().UTC()
	_, _ = repo.Insert(context.Background(), record("a", now))
	_, _ = repo.Insert(context.Background(), record("b", now))

	if rec := do(r, http.MethodDelete, "/api/history/a"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec := do(r, http.MethodDelete, "/api/history/delete/b"); rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on legacy path, got %d", rec.Code)
	}

	rec := do(r, http.MethodDelete, "/api/history/a")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]any
	_ = json.Unmarshal(rec.Body.Bytes(), &body)
	if body["success"] != false || body["error"] != "record not found" || body["code"] != "not_found" {
		t.Fatalf("unexpected not-found body %v", body)
	}
}

func TestClearHistoryRoutes(t *testing.T) {
	for _, path := range []string{"/api/history", "/api/history/clear"} {
		t.Run(path, func(t *testing.T) {
			r, repo := setupRouter(t)
			_, _ = repo.Insert(context.Background(), record("a", time.Now()))
			_, _ = repo.Insert(context.Background(), record("b", time.Now()))

			rec := do(r, http.MethodDelete, path)
			if rec.Code != http.StatusOK {
				t.Fatalf("expected 200, got %d", rec.Code)
			}
			var body clearResponse
			_ = json.Unmarshal(rec.Body.Bytes(), &body)
			if !body.Success || body.Deleted != 2 {
				t.Fatalf("unexpected body %+v", body)
			}
		})
	}
}

func TestListHistoryUsesServiceDefaultLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	repo := NewMemoryRepo()
	svc := NewService(repo)
	svc.DefaultLimit = 2
	r := gin.New()
	NewHandler(svc).RegisterRoutes(r.Group("/api"))

	now := time.Now().UTC()
	for i, id := range []string{"a", "b", "c"} {
		_, _ = repo.Insert(context.Background(), record(id, now.Add(time.Duration(i)*time.Second)))
	}

	cases := []struct {
		path string
		want int
	}{
		{"/api/history", 2},
		{"/api/history?limit=0", 2},
		{"/api/history?limit=3", 3},
	}
	for _, tc := range cases {
		var body listResponse
		if err := json.Unmarshal(do(r, http.MethodGet, tc.path).Body.Bytes(), &body); err != nil {
			t.Fatalf("%s: decode: %v", tc.path, err)
		}
		if body.Count != tc.want {
			t.Fatalf("%s: expected %d records, got %d", tc.path, tc.want, body.Count)
		}
	}
}
