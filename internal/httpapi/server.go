package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hamed0406/uptimemonitor/internal/domain"
	apimw "github.com/hamed0406/uptimemonitor/internal/httpapi/middleware"
	"github.com/hamed0406/uptimemonitor/internal/repo"
)

// Checker runs one check on demand. *monitor.Monitor satisfies it.
type Checker interface {
	CheckService(ctx context.Context) (domain.CheckResult, error)
}

type Server struct {
	Logger  *zap.Logger
	Metrics repo.MetricStore
	Monitor Checker
}

func NewServer(l *zap.Logger, ms repo.MetricStore, m Checker) *Server {
	if l == nil {
		l = zap.NewNop()
	}
	return &Server{Logger: l, Metrics: ms, Monitor: m}
}

// Router wires the API. Reads need a public or admin key, triggering a
// check needs an admin key; each group has its own per-IP rate limit.
func (s *Server) Router(keys apimw.Keys, allowedOrigins []string, pubRPM, pubBurst, admRPM, admBurst int) http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverer)
	r.Use(corsHandler(allowedOrigins))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics/prometheus", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(pubRPM, pubBurst))
			r.Use(apimw.RequireAny(keys))
			r.Get("/metrics", s.handleMetrics)
			r.Get("/status", s.handleStatus)
		})
		r.Group(func(r chi.Router) {
			r.Use(apimw.RateLimit(admRPM, admBurst))
			r.Use(apimw.RequireAdmin(keys))
			r.Post("/check", s.handleCheck)
		})
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		return cors.AllowAll().Handler
	}
	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-API-Key"},
		MaxAge:         300,
	})
}

type statusResponse struct {
	Status       domain.Status `json:"status"`
	LastCheck    *time.Time    `json:"lastCheck,omitempty"`
	ResponseTime *int64        `json:"responseTime,omitempty"`
	URL          string        `json:"url,omitempty"`
	Message      string        `json:"message,omitempty"`
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	all, err := s.Metrics.All(r.Context())
	if err != nil {
		s.internalError(w, "metrics_list_error", err)
		return
	}
	if all == nil {
		all = []domain.CheckResult{}
	}
	writeJSON(w, http.StatusOK, all)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	latest, err := s.Metrics.Latest(r.Context())
	if err != nil {
		s.internalError(w, "status_latest_error", err)
		return
	}
	if latest == nil {
		writeJSON(w, http.StatusOK, statusResponse{
			Status:  domain.StatusUnknown,
			Message: "no check performed",
		})
		return
	}
	ts, rt := latest.Timestamp, latest.ResponseTimeMS
	writeJSON(w, http.StatusOK, statusResponse{
		Status:       latest.Status,
		LastCheck:    &ts,
		ResponseTime: &rt,
		URL:          latest.URL,
	})
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	res, err := s.Monitor.CheckService(r.Context())
	if err != nil {
		s.internalError(w, "manual_check_error", err)
		return
	}
	s.Logger.Info("manual_check",
		zap.String("url", res.URL),
		zap.String("status", string(res.Status)),
		zap.Int64("response_time_ms", res.ResponseTimeMS),
	)
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) internalError(w http.ResponseWriter, event string, err error) {
	s.Logger.Error(event, zap.Error(err))
	writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
}

func (s *Server) recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				s.Logger.Error("handler_panic",
					zap.String("path", r.URL.Path),
					zap.Any("panic", rec),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
