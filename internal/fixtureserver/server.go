// Package fixtureserver exposes a fixture dataset over HTTP with the same
// two-tier behaviour as the real metadata service: unknown keys under a
// known path answer 200 with "{}".
package fixtureserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	"github.com/raysh454/addrmeta/internal/fetch"
	"github.com/raysh454/addrmeta/internal/fixture"
	_ "github.com/raysh454/addrmeta/internal/fixtureserver/docs" // swagger spec
	"github.com/raysh454/addrmeta/internal/logging"
)

const RequestIDHeader = "X-Request-ID"

// Server is the HTTP + WebSocket surface over a fixture fetcher.
type Server struct {
	cfg      Config
	fetcher  *fixture.Fetcher
	router   chi.Router
	upgrader websocket.Upgrader
	logger   logging.Logger
}

// New creates a Server answering from f.
func New(cfg Config, f *fixture.Fetcher) (*Server, error) {
	if f == nil {
		return nil, errors.New("fixtureserver: fetcher is nil")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewStdoutLogger("fixtureserver")
	}

	s := &Server{
		cfg:     cfg,
		fetcher: f,
		router:  chi.NewRouter(),
		logger:  logger,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				// fixtures are public test data
				return true
			},
		},
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	r := s.router

	r.Use(s.corsMiddleware)

	r.Get("/healthz", s.handleHealth)

	r.Get("/plain/*", s.handleRecord(s.fetcher.DataURL))
	r.Get("/aggregate/*", s.handleRecord(s.fetcher.AggregateURL))
	r.Get("/fetch", s.handleFetch)

	r.Get("/keys", s.handleKeys)
	r.Get("/regions", s.handleRegions)

	r.Get("/ws/fetch", s.handleFetchWS)

	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Max-Age", "86400")

		next.ServeHTTP(w, r)
	})
}

// ServeHTTP implements http.Handler. Every request gets an id, taken from
// the X-Request-ID header when the client supplies one.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	reqID := r.Header.Get(RequestIDHeader)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	w.Header().Set(RequestIDHeader, reqID)

	fields := []logging.Field{
		{Key: "request_id", Value: reqID},
		{Key: "method", Value: r.Method},
		{Key: "path", Value: r.URL.Path},
	}
	if q := r.URL.Query(); len(q) > 0 {
		fields = append(fields, logging.Field{Key: "query", Value: q})
	}
	s.logger.Info("http_request", fields...)

	s.router.ServeHTTP(w, r)
}

// HTTPServer creates an *http.Server ready to ListenAndServe.
func (s *Server) HTTPServer() *http.Server {
	return &http.Server{
		Addr:              s.cfg.ListenAddr,
		Handler:           s,
		ReadHeaderTimeout: 15 * time.Second,
	}
}

// --- JSON helpers ---

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, ErrorResponse{Error: msg})
}

// --- HTTP handlers ---

// handleHealth godoc
// @Summary Health check
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /healthz [get]
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Records: s.fetcher.Dataset().Len()})
}

// handleRecord serves the raw buffer for the key in the wildcard part of the
// path, e.g. /plain/data/CH. Missing keys answer "{}".
//
// @Summary Fetch a record or aggregate by key
// @Produce json
// @Param key path string true "lookup key, e.g. data/CH"
// @Success 200 {object} object
// @Router /plain/{key} [get]
// @Router /aggregate/{key} [get]
func (s *Server) handleRecord(urlFor func(key string) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := chi.URLParam(r, "*")
		resp, err := s.fetcher.Fetch(r.Context(), urlFor(key))
		if err != nil {
			// only reachable when the prefixes are misconfigured
			s.logger.Error("fetching fixture", logging.Field{Key: "key", Value: key}, logging.Field{Key: "error", Value: err})
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(resp.Data)
	}
}

// handleFetch godoc
// @Summary Resolve an arbitrary URL against the fixtures
// @Produce json
// @Param url query string true "URL to fetch, e.g. test:///aggregate/data/US"
// @Success 200 {object} OutcomeFrame
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} OutcomeFrame
// @Router /fetch [get]
func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		s.logger.Warn("fetch: missing url query parameter")
		writeError(w, http.StatusBadRequest, "missing url query parameter")
		return
	}

	o := fetch.Resolve(r.Context(), s.fetcher, url)
	status := http.StatusOK
	if !o.Success {
		status = http.StatusNotFound
	}
	writeJSON(w, status, newOutcomeFrame(o))
}

// handleKeys godoc
// @Summary List record keys
// @Produce json
// @Success 200 {object} KeysResponse
// @Router /keys [get]
func (s *Server) handleKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, KeysResponse{Keys: s.fetcher.Dataset().Keys()})
}

// handleRegions godoc
// @Summary List region codes
// @Produce json
// @Success 200 {object} RegionsResponse
// @Router /regions [get]
func (s *Server) handleRegions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, RegionsResponse{Regions: s.fetcher.Dataset().RegionCodes()})
}

// WebSockets

// handleFetchWS answers every FetchRequest frame with exactly one
// OutcomeFrame, in order, until the client closes the connection.
func (s *Server) handleFetchWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrading to websocket", logging.Field{Key: "error", Value: err.Error()})
		return
	}
	defer conn.Close()

	ctx := r.Context()
	served := 0
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.logger.Warn("reading websocket frame", logging.Field{Key: "error", Value: err.Error()})
			}
			s.logger.Debug("websocket closed", logging.Field{Key: "served", Value: served})
			return
		}

		var req FetchRequest
		var frame OutcomeFrame
		if err := json.Unmarshal(msg, &req); err != nil {
			frame = OutcomeFrame{Error: "invalid JSON"}
		} else {
			frame = newOutcomeFrame(fetch.Resolve(ctx, s.fetcher, req.URL))
		}

		if err := conn.WriteJSON(frame); err != nil {
			s.logger.Warn("writing websocket frame", logging.Field{Key: "error", Value: err.Error()})
			return
		}
		served++
	}
}
