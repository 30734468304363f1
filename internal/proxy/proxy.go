// internal/proxy/proxy.go
package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httputil"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tenderec/internal/common/config"
	"tenderec/internal/common/logger"
	"tenderec/internal/common/metrics"
	"tenderec/internal/common/observability"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

// Server forwards same-origin API calls to the recommendation backend.
type Server struct {
	target  *url.URL
	prefix  string
	proxy   *httputil.ReverseProxy
	origins []string
	obs     *observability.Observability
	logger  logger.Logger
}

func New(backend config.BackendConfig, server config.ServerConfig, obs *observability.Observability, log logger.Logger) (*Server, error) {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	target, err := url.Parse(backend.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", backend.BaseURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", backend.BaseURL)
	}

	s := &Server{
		target:  target,
		prefix:  "/" + strings.Trim(backend.APIPrefix, "/"),
		origins: server.AllowedOrigins,
		obs:     obs,
		logger:  log.Named("proxy"),
	}

	rp := httputil.NewSingleHostReverseProxy(target)
	director := rp.Director
	rp.Director = func(r *http.Request) {
		director(r)
		r.Host = target.Host
	}
	rp.ErrorHandler = s.handleError
	if backend.Timeout > 0 {
		rp.Transport = &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			ResponseHeaderTimeout: config.GetDuration(backend.Timeout),
		}
	}
	s.proxy = rp
	return s, nil
}

// Handler builds the router: the API prefix is proxied, /healthz and /metrics are served locally.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.StripSlashes)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{
			"status":  "healthy",
			"backend": s.target.String(),
		})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Handle(s.prefix, http.HandlerFunc(s.forward))
	r.Handle(s.prefix+"/*", http.HandlerFunc(s.forward))

	return s.cors().Handler(r)
}

func (s *Server) cors() *cors.Cors {
	origins := s.origins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowedOrigins: origins,
		AllowedHeaders: []string{"Content-Type", "Accept", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})
}

func (s *Server) forward(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
	if id := middleware.GetReqID(r.Context()); id != "" && r.Header.Get("X-Request-ID") == "" {
		r.Header.Set("X-Request-ID", id)
	}

	s.proxy.ServeHTTP(rec, r)

	elapsed := time.Since(start)
	metrics.ProxyRequests.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
	s.obs.RecordProxyDuration(r.Context(), elapsed, rec.status)
	s.logger.Debug("Proxied request", map[string]interface{}{
		"method":      r.Method,
		"path":        r.URL.Path,
		"status":      rec.status,
		"duration_ms": elapsed.Milliseconds(),
	})
}

func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	s.logger.Warn("Backend unreachable", map[string]interface{}{
		"method": r.Method,
		"path":   r.URL.Path,
		"error":  err.Error(),
	})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusBadGateway)
	json.NewEncoder(w).Encode(map[string]string{"detail": "backend unavailable"})
}

type statusRecorder struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (r *statusRecorder) WriteHeader(code int) {
	if !r.wroteHeader {
		r.status = code
		r.wroteHeader = true
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}
