// Package web serves the generation form over HTTP.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/sant0-9/quill/internal/config"
	"github.com/sant0-9/quill/internal/llm"
	"github.com/sant0-9/quill/internal/output"
	"github.com/sant0-9/quill/internal/pipeline"
	"github.com/sant0-9/quill/internal/reference"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

const maxFormBytes = 1 << 20

type Server struct {
	cfg         *config.Config
	newPipeline func(*config.Config) (*pipeline.Pipeline, error)
}

func NewServer(cfg *config.Config) *Server {
	return &Server{
		cfg:         cfg,
		newPipeline: pipeline.FromConfig,
	}
}

// Handler returns the routed handler with request logging.
func (s *Server) Handler() http.Handler {
	router := httprouter.New()

	router.GET("/", logRequests(s.index))
	router.POST("/generate", logRequests(s.generate))
	router.POST("/download", logRequests(s.download))
	router.GET("/health", logRequests(s.health))

	return router
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("[INFO] web: listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		log.Printf("[INFO] web: shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

type page struct {
	Title         string
	Provider      string
	Model         string
	KeyConfigured bool

	ContentTypes []string
	Tones        []string
	MinWords     int
	MaxWords     int
	WordStep     int

	Form pipeline.Request
	URLs string

	Warning  string
	Error    string
	Result   *pipeline.Result
	Words    int
	FileName string
}

func (s *Server) newPage(req pipeline.Request) *page {
	title := s.cfg.AppTitle
	if title == "" {
		title = "quill"
	}
	return &page{
		Title:         title,
		Provider:      s.cfg.Provider,
		Model:         s.cfg.Model,
		KeyConfigured: strings.TrimSpace(s.cfg.APIKey) != "",
		ContentTypes:  pipeline.ContentTypes,
		Tones:         pipeline.Tones,
		MinWords:      pipeline.MinWords,
		MaxWords:      pipeline.MaxWords,
		WordStep:      pipeline.WordStep,
		Form:          req,
		URLs:          strings.Join(req.URLs, "\n"),
	}
}

func render(w http.ResponseWriter, status int, p *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := templates.ExecuteTemplate(w, "index.html", p); err != nil {
		log.Printf("[ERROR] web: render: %v", err)
	}
}

func (s *Server) index(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	render(w, http.StatusOK, s.newPage(*pipeline.NewRequest("")))
}

// requestFromForm reads the posted fields. The API key is returned apart so
// it never lands in the echoed form.
func requestFromForm(r *http.Request) (*pipeline.Request, string) {
	words, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue("word_count")))
	req := &pipeline.Request{
		Topic:       r.PostFormValue("topic"),
		ContentType: r.PostFormValue("content_type"),
		Tone:        r.PostFormValue("tone"),
		WordCount:   words,
		Keywords:    r.PostFormValue("keywords"),
		Goal:        r.PostFormValue("goal"),
		URLs:        reference.ParseURLs(r.PostFormValue("urls")),
		Humanize:    r.PostFormValue("humanize") != "",
	}
	req.Normalize()
	return req, strings.TrimSpace(r.PostFormValue("api_key"))
}

func missingInputMessage(err error) string {
	switch {
	case errors.Is(err, pipeline.ErrMissingTopic):
		return "Please enter a topic."
	case errors.Is(err, llm.ErrMissingAPIKey):
		return "Please provide an API key."
	}
	return err.Error()
}

func (s *Server) generate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	req, apiKey := requestFromForm(r)
	p := s.newPage(*req)

	// Per-request copy so a posted key never leaks into other requests.
	cfg := *s.cfg
	if apiKey != "" {
		cfg.APIKey = apiKey
	}

	if err := pipeline.CheckInputs(req, &cfg); err != nil {
		p.Warning = missingInputMessage(err)
		render(w, http.StatusBadRequest, p)
		return
	}

	pl, err := s.newPipeline(&cfg)
	if err != nil {
		if pipeline.IsMissingInput(err) {
			p.Warning = missingInputMessage(err)
			render(w, http.StatusBadRequest, p)
			return
		}
		log.Printf("[ERROR] web: %v", err)
		p.Error = err.Error()
		render(w, http.StatusInternalServerError, p)
		return
	}

	res, err := pl.Process(r.Context(), req)
	if err != nil {
		p.Error = err.Error()
		render(w, http.StatusBadGateway, p)
		return
	}

	p.Result = res
	p.Words = len(strings.Fields(res.Text))
	p.FileName = output.FileName(req.Topic)
	render(w, http.StatusOK, p)
}

func (s *Server) download(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	// Browsers submit textarea line breaks as CRLF.
	text := strings.ReplaceAll(r.PostFormValue("text"), "\r\n", "\n")
	if text == "" {
		http.Error(w, "nothing to download", http.StatusBadRequest)
		return
	}

	name := output.FileName(r.PostFormValue("topic"))
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+name+`"`)
	w.Write([]byte(text))
}

func (s *Server) health(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status":   "ok",
		"provider": s.cfg.Provider,
		"model":    s.cfg.Model,
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(
	handler func(http.ResponseWriter, *http.Request, httprouter.Params),
) func(http.ResponseWriter, *http.Request, httprouter.Params) {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		handler(rec, r, params)
		log.Printf("[DEBUG] web: %s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	}
}
