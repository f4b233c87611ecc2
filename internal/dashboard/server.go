// Package dashboard serves the interactive BI views over the rebuilt
// store: KPI summary cards, a socioeconomic/education correlation
// view, and a crime-hotspot comparison split by income segment.
//
// The server reads the database read-only. Each panel fetches its own
// endpoint, so one failed query degrades that panel without blanking
// the page.
package dashboard

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/cors"

	"github.com/openchi/chicagodata/internal/store"
)

//go:embed static/index.html
var indexHTML []byte

// Server exposes the dashboard page and its JSON API.
type Server struct {
	queries *queries
	cache   *responseCache
}

// NewServer creates a dashboard server over an open store.
func NewServer(st *store.Store) *Server {
	return &Server{
		queries: &queries{st: st},
		cache:   newResponseCache(),
	}
}

// Handler returns the HTTP handler for the dashboard: the embedded
// page at / and the JSON API under /api/.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/api/filters", s.handleFilters)
	mux.HandleFunc("/api/summary", s.handleSummary)
	mux.HandleFunc("/api/socioeducation", s.handleSocioEducation)
	mux.HandleFunc("/api/hotspots", s.handleHotspots)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	})
	return c.Handler(mux)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(indexHTML)
}

func (s *Server) handleFilters(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "filters", func() (any, error) {
		return s.queries.filterOptions(r.Context())
	})
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "summary", func() (any, error) {
		return s.queries.summary(r.Context(), parseFilter(r))
	})
}

func (s *Server) handleSocioEducation(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "socioeducation", func() (any, error) {
		return s.queries.socioEducation(r.Context(), parseFilter(r))
	})
}

func (s *Server) handleHotspots(w http.ResponseWriter, r *http.Request) {
	s.serveCached(w, r, "hotspots", func() (any, error) {
		return s.queries.hotspots(r.Context(), parseFilter(r))
	})
}

// serveCached answers from the memoized cache when the same view and
// filter combination was computed before, otherwise runs compute and
// caches the rendered body.
func (s *Server) serveCached(w http.ResponseWriter, r *http.Request, view string, compute func() (any, error)) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, fmt.Errorf("only GET is allowed"))
		return
	}

	key := cacheKey(view, parseFilter(r))
	if body, ok := s.cache.get(key); ok {
		writeBody(w, body)
		return
	}

	result, err := compute()
	if err != nil {
		log.Printf("dashboard: %s query failed: %v", view, err)
		writeError(w, http.StatusInternalServerError, fmt.Errorf("%s query failed", view))
		return
	}

	body, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	s.cache.put(key, body)
	writeBody(w, body)
}

// parseFilter reads the sidebar selections from query parameters:
// areas and types as comma-separated lists, income as the low/high
// threshold, top as the number of crime types to compare.
func parseFilter(r *http.Request) Filter {
	q := r.URL.Query()
	f := Filter{
		Areas:      splitList(q.Get("areas")),
		CrimeTypes: splitList(q.Get("types")),
		TopN:       10,
	}
	if v, err := strconv.Atoi(q.Get("income")); err == nil {
		f.IncomeThreshold = v
	}
	if v, err := strconv.Atoi(q.Get("top")); err == nil && v > 0 {
		f.TopN = v
	}
	return f
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	var values []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			values = append(values, p)
		}
	}
	return values
}

func cacheKey(view string, f Filter) string {
	return fmt.Sprintf("%s|%s|%s|%d|%d",
		view, strings.Join(f.Areas, ","), strings.Join(f.CrimeTypes, ","), f.IncomeThreshold, f.TopN)
}

func writeBody(w http.ResponseWriter, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
}
