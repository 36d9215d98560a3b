package internal

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newTestServer(t *testing.T, options ...AppOption) (*Server, *Config) {
	t.Helper()

	config := testConfig(t)
	config.ConfigDir = t.TempDir()
	config.TempDir = t.TempDir()
	config.Quiet = true

	defaults := []AppOption{
		WithFetcher(&mockFetcher{record: testRecord()}),
		WithTranscriber(&mockTranscriber{result: testResult()}),
		WithChatClient(&mockChatClient{answer: "an answer"}),
	}
	app := NewApp(config, append(defaults, options...)...)
	return NewServer(app), config
}

func TestServerProcess(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/process",
		strings.NewReader(`{"url": "https://www.youtube.com/watch?v=dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp processResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if resp.VideoID != "dQw4w9WgXcQ" || resp.Language != "en" {
		t.Errorf("response = %+v", resp)
	}
	if len(resp.Files) != 4 {
		t.Errorf("files = %v, want 4 artifacts", resp.Files)
	}
}

func TestServerProcessMissingURL(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServerProcessInvalidURL(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/process",
		strings.NewReader(`{"url": "https://example.com/nope"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestServerProcessAuthFailure(t *testing.T) {
	server, config := newTestServer(t)
	config.OpenAIAPIKey = ""

	req := httptest.NewRequest(http.MethodPost, "/api/process",
		strings.NewReader(`{"url": "dQw4w9WgXcQ"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestServerVideos(t *testing.T) {
	server, config := newTestServer(t)
	writeTestBundle(t, config.OutDir, testRecord())

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var records []*VideoRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if len(records) != 1 || records[0].VideoID != "dQw4w9WgXcQ" {
		t.Errorf("records = %+v", records)
	}
}

func TestServerVideosEmpty(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/videos", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty JSON array", body)
	}
}

func TestServerChat(t *testing.T) {
	server, config := newTestServer(t)
	writeTestBundle(t, config.OutDir, testRecord())

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"video_id": "dQw4w9WgXcQ", "question": "what is this?"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("parsing response: %v", err)
	}
	if resp.Answer != "an answer" {
		t.Errorf("answer = %q", resp.Answer)
	}
	if len(resp.History) != 2 {
		t.Errorf("history = %+v, want question and answer", resp.History)
	}
}

func TestServerChatUncachedVideo(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/chat",
		strings.NewReader(`{"video_id": "dQw4w9WgXcQ", "question": "what?"}`))
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestServerIndex(t *testing.T) {
	server, config := newTestServer(t)
	writeTestBundle(t, config.OutDir, testRecord())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "My Video") {
		t.Error("index page should list cached videos")
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrInvalidInput, http.StatusBadRequest},
		{ErrAuth, http.StatusUnauthorized},
		{ErrQuota, http.StatusPaymentRequired},
		{ErrDownload, http.StatusUnprocessableEntity},
		{ErrTransient, http.StatusBadGateway},
		{ErrWrite, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
