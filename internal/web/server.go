// Package web serves the movie news page and its JSON counterpart.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Adda-Baaj/cine-khobor/internal/logger"
	"github.com/Adda-Baaj/cine-khobor/internal/metrics"
	"github.com/Adda-Baaj/cine-khobor/internal/render"
	"github.com/Adda-Baaj/cine-khobor/internal/search"
)

const (
	DefaultQuery = "movies"
	Caption      = "Powered by NewsAPI • Only verified movie & entertainment sources"
)

//go:embed templates/index.html
var templateFS embed.FS

var pageTmpl = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// Searcher runs a search for the handlers.
type Searcher interface {
	Search(ctx context.Context, query string) (search.Result, error)
}

// Server holds the HTTP handlers.
type Server struct {
	searcher     Searcher
	defaultQuery string
	sessions     *sessionStore
	log          logger.Logger
}

// NewServer wires a server. An empty defaultQuery means "movies".
func NewServer(s Searcher, defaultQuery string, log logger.Logger) *Server {
	if strings.TrimSpace(defaultQuery) == "" {
		defaultQuery = DefaultQuery
	}
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Server{
		searcher:     s,
		defaultQuery: defaultQuery,
		sessions:     newSessionStore(nil),
		log:          log,
	}
}

// Routes returns the router with middleware applied.
func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	r.Get("/api/search", s.handleAPISearch)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
	return r
}

type pageData struct {
	Query   string
	Failure *render.Notice
	Notice  render.Notice
	Cards   []render.Card
	Caption string
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	id, sess := s.sessions.load(w, r)

	params := r.URL.Query()
	query := sess.lastQuery
	if params.Has("q") {
		query = strings.TrimSpace(params.Get("q"))
	} else if !sess.loaded {
		query = s.defaultQuery
	}
	refresh := params.Get("refresh") == "1"

	if refresh || !sess.loaded || sess.lastQuery != query {
		res, err := s.searcher.Search(r.Context(), query)
		sess.loaded = true
		sess.lastQuery = query
		sess.articles = res.Articles
		sess.failure = nil
		if err != nil {
			n := render.Failure(err)
			sess.failure = &n
		}
		s.sessions.save(id, sess)
	}

	data := pageData{
		Query:   query,
		Failure: sess.failure,
		Notice:  render.Summary(len(sess.articles), query),
		Cards:   render.CardsFor(sess.articles),
		Caption: Caption,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTmpl.Execute(w, data); err != nil {
		s.log.ErrorObj("render page failed", "web_render_error", map[string]any{"error": err})
	}
}

type apiResponse struct {
	Query        string        `json:"query"`
	BoostedQuery string        `json:"boosted_query"`
	FromCache    bool          `json:"from_cache"`
	Articles     []render.Card `json:"articles"`
	Error        string        `json:"error,omitempty"`
}

func (s *Server) handleAPISearch(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if !r.URL.Query().Has("q") {
		query = s.defaultQuery
	}

	res, err := s.searcher.Search(r.Context(), query)
	resp := apiResponse{
		Query:        res.Query,
		BoostedQuery: res.BoostedQuery,
		FromCache:    res.FromCache,
		Articles:     render.CardsFor(res.Articles),
	}
	status := http.StatusOK
	if err != nil {
		resp.Error = render.Failure(err).Text
		status = http.StatusBadGateway
	}
	writeJSON(w, status, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		defer func() {
			route := chi.RouteContext(r.Context()).RoutePattern()
			if route == "" {
				route = "unmatched"
			}
			metrics.HTTPRequestsTotal.WithLabelValues(r.Method, route, strconv.Itoa(ww.Status())).Inc()
			s.log.InfoObj("http request", "http_request", map[string]any{
				"request_id":  middleware.GetReqID(r.Context()),
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      ww.Status(),
				"bytes":       ww.BytesWritten(),
				"remote":      r.RemoteAddr,
				"duration_ms": time.Since(start).Milliseconds(),
			})
		}()
		next.ServeHTTP(ww, r)
	})
}
