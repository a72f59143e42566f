package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/justsurfingit/careers-proxy/internal/config"
	"github.com/justsurfingit/careers-proxy/internal/models"
	"github.com/justsurfingit/careers-proxy/internal/services"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter builds the full handler chain against a fake upstream ATS.
func newTestRouter(t *testing.T, upstream http.HandlerFunc) *gin.Engine {
	t.Helper()
	srv := httptest.NewServer(upstream)
	t.Cleanup(srv.Close)

	cfg := &config.Config{APIToken: "secret", BaseURL: srv.URL, PageSize: 25}
	cfg.ApplyDefaults()

	h := NewJobHandler(services.NewCareersService(cfg), services.NewFeedService(cfg.Feed))
	return NewRouter(h)
}

func TestListJobsRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs":[{"id":"j1","title":"Engineer","company_name":"Acme","city":"Leeds"}]}`)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var jobs []models.Job
	if err := json.Unmarshal(rec.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("body is not a job array: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "Engineer" {
		t.Errorf("jobs = %+v", jobs)
	}
}

func TestListJobsRouteEmpty(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs":[]}`)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs", nil))

	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("empty listing body = %q, want [], not null", body)
	}
}

func TestGetJobRouteNotFound(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/ghost", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestGetJobRouteMasksUpstreamError(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "secret upstream detail", http.StatusServiceUnavailable)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/jobs/j1", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "secret upstream detail") {
		t.Error("upstream error text leaked to the client")
	}
}

func TestApplyRouteForwards(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "/jobs/j1/apply") {
			t.Errorf("upstream path = %q", r.URL.Path)
		}
		if err := r.ParseMultipartForm(16 << 20); err != nil {
			t.Fatalf("upstream multipart parse: %v", err)
		}
		if got := r.FormValue("email"); got != "jane@example.com" {
			t.Errorf("relayed email = %q", got)
		}
		if len(r.MultipartForm.File["resume"]) != 1 {
			t.Error("resume part was not relayed")
		}
		fmt.Fprint(w, `{"prospect_id":"p1"}`)
	})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("name", "Jane Doe")
	w.WriteField("email", "jane@example.com")
	w.WriteField("phone", "0113 000000")
	part, _ := w.CreateFormFile("resume", "cv.pdf")
	part.Write([]byte("%PDF-1.4"))
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/j1/apply", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Success bool                   `json:"success"`
		Data    map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if !resp.Success || resp.Data["prospect_id"] != "p1" {
		t.Errorf("response = %+v, want success with upstream data", resp)
	}
}

func TestApplyRouteUpstreamFailure(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusUnprocessableEntity)
	})

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	w.WriteField("email", "jane@example.com")
	w.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/v1/jobs/j1/apply", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	var resp struct {
		Error string `json:"error"`
	}
	json.Unmarshal(rec.Body.Bytes(), &resp)
	if resp.Error == "" || strings.Contains(resp.Error, "boom") {
		t.Errorf("error = %q, want a generic message", resp.Error)
	}
}

func TestRSSRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"jobs":[{"id":"j1","title":"Engineer","company_name":"Acme","city":"Leeds","original_open_date":"2026-02-14"}]}`)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/careers/rss", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := rec.Header().Get("Cache-Control"); got != services.FeedCacheControl {
		t.Errorf("Cache-Control = %q, want %q", got, services.FeedCacheControl)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "application/rss+xml") {
		t.Errorf("Content-Type = %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "<rss version=\"2.0\">") {
		t.Error("body is not an RSS document")
	}
}

func TestRSSRouteUpstreamFailure(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusBadGateway)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/careers/rss", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "<rss") {
		t.Error("failure should not produce a partial feed")
	}
}

func TestHealthRoute(t *testing.T) {
	router := newTestRouter(t, func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
