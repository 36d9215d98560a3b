package internal

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gorilla/mux"
)

//go:embed index.html
var webFS embed.FS

// Server is the browser UI layer. It only presents results and delegates to
// the App; caching and retries live in the pipeline, not here.
type Server struct {
	app    *App
	router *mux.Router
}

// NewServer creates the web UI server.
func NewServer(app *App) *Server {
	s := &Server{
		app:    app,
		router: mux.NewRouter(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("/", s.handleIndex).Methods(http.MethodGet)
	s.router.HandleFunc("/api/process", s.handleProcess).Methods(http.MethodPost)
	s.router.HandleFunc("/api/videos", s.handleVideos).Methods(http.MethodGet)
	s.router.HandleFunc("/api/chat", s.handleChat).Methods(http.MethodPost)

	// Artifact downloads straight from the output directory.
	files := http.StripPrefix("/files/", http.FileServer(http.Dir(s.app.Config().OutDir)))
	s.router.PathPrefix("/files/").Handler(files)
}

// ListenAndServe runs the HTTP server until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// No write timeout: processing a video inside a request can
		// legitimately take minutes.
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	tmpl, err := template.ParseFS(webFS, "index.html")
	if err != nil {
		http.Error(w, "loading page template", http.StatusInternalServerError)
		return
	}

	records, err := s.app.Cache().List()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = tmpl.Execute(w, map[string]any{"Videos": records})
}

type processRequest struct {
	URL   string `json:"url"`
	Force bool   `json:"force"`
}

type processResponse struct {
	VideoID  string   `json:"video_id"`
	Title    string   `json:"title"`
	Channel  string   `json:"channel"`
	Duration float64  `json:"duration"`
	Language string   `json:"language"`
	Dir      string   `json:"dir"`
	Files    []string `json:"files"`
}

func (s *Server) handleProcess(w http.ResponseWriter, r *http.Request) {
	var req processRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	bundle, err := s.app.Process(r.Context(), req.URL, req.Force)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	files := make([]string, 0, 4)
	for _, path := range bundle.ArtifactPaths() {
		files = append(files, filepath.Base(path))
	}

	writeJSON(w, http.StatusOK, processResponse{
		VideoID:  bundle.Record.VideoID,
		Title:    bundle.Record.Title,
		Channel:  bundle.Record.Channel,
		Duration: bundle.Record.Duration,
		Language: bundle.Transcript.Language,
		Dir:      filepath.Base(bundle.Dir),
		Files:    files,
	})
}

func (s *Server) handleVideos(w http.ResponseWriter, r *http.Request) {
	records, err := s.app.Cache().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if records == nil {
		records = []*VideoRecord{}
	}
	writeJSON(w, http.StatusOK, records)
}

type chatRequest struct {
	VideoID  string        `json:"video_id"`
	Question string        `json:"question"`
	History  []ChatMessage `json:"history"`
}

type chatResponse struct {
	Answer  string        `json:"answer"`
	History []ChatMessage `json:"history"`
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.VideoID == "" || req.Question == "" {
		writeError(w, http.StatusBadRequest, "video_id and question are required")
		return
	}

	entry, err := s.app.Cache().Lookup(req.VideoID)
	if err != nil || entry == nil || !entry.HasTranscript {
		writeError(w, http.StatusNotFound, fmt.Sprintf("no transcript cached for %s", req.VideoID))
		return
	}

	transcript, err := s.app.Cache().LoadTranscript(entry.Dir)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	session := s.app.NewChat(transcript)
	session.messages = append(session.messages, req.History...)

	answer, err := session.Ask(r.Context(), req.Question)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Answer:  answer,
		History: session.History(),
	})
}

// statusFor maps pipeline failure classes onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrAuth):
		return http.StatusUnauthorized
	case errors.Is(err, ErrQuota):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrDownload):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrTransient):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
