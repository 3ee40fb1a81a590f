package http

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/m-mizutani/ctxlog"

	"github.com/defmon-lab/argos/frontend"
	"github.com/defmon-lab/argos/pkg/usecase"
)

// Server represents the HTTP server
type Server struct {
	*http.Server
	router    chi.Router
	startedAt time.Time
}

// NewServer creates the HTTP server with all dashboard routes wired
func NewServer(
	ctx context.Context,
	addr string,
	defectUC *usecase.Defect,
	userUC *usecase.User,
) (*Server, error) {
	router := chi.NewRouter()

	// Apply global middleware
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(LoggingMiddleware(ctx))
	router.Use(middleware.Recoverer)
	router.Use(CORS)

	server := &Server{
		Server: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
		},
		router:    router,
		startedAt: time.Now(),
	}

	defectHandler := NewDefectHandler(defectUC)
	userHandler := NewUserHandler(userUC)

	// Health check
	router.Get("/health", handleHealth)

	// API routes
	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/defect", func(r chi.Router) {
			r.Get("/", defectHandler.HandleGetAll)
			r.Get("/project/{projectName}", defectHandler.HandleGetByProject)
			r.Get("/group/{year}/{week}", defectHandler.HandleGetByGroup)
			r.Get("/weekly-change", defectHandler.HandleGetWeeklyChange)
			r.Get("/min-year", defectHandler.HandleGetMinYear)
			r.Get("/max-year", defectHandler.HandleGetMaxYear)
			r.Get("/max-week/{year}", defectHandler.HandleGetMaxWeek)
			r.Get("/count/{projectName}", defectHandler.HandleGetCounts)
		})

		r.Route("/user", func(r chi.Router) {
			r.Get("/", userHandler.HandleGetAll)
			r.Get("/project/{projectName}", userHandler.HandleGetByProject)
			r.Get("/group/{groupName}", userHandler.HandleGetByGroup)
			r.Get("/count/{projectName}", userHandler.HandleCountByProject)
			r.Get("/info/{userIdList}", userHandler.HandleGetMoreInfo)
		})

		r.Get("/server-status", server.handleServerStatus)
	})

	// Frontend routes (serve embedded SPA assets)
	if fs, err := frontend.GetHTTPFS(); err != nil {
		ctxlog.From(ctx).Warn("Failed to get embedded frontend, using fallback",
			"error", err,
		)
		router.Get("/*", handleFallbackHome)
	} else if spa, err := NewSPAHandler(fs); err != nil {
		ctxlog.From(ctx).Warn("Failed to create SPA handler, using fallback",
			"error", err,
		)
		router.Get("/*", handleFallbackHome)
	} else {
		ctxlog.From(ctx).Info("Serving dashboard from embedded files")
		router.Handle("/*", spa)
	}

	return server, nil
}

// handleHealth handles health check requests
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"status":  "healthy",
		"service": "argos",
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode health response", "error", err)
	}
}

// handleServerStatus reports process-level liveness detail for the
// monitor itself.
func (s *Server) handleServerStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(map[string]any{
		"isAlive":    "ok",
		"pid":        os.Getpid(),
		"uptime":     time.Since(s.startedAt).Seconds(),
		"goroutines": runtime.NumGoroutine(),
		"addr":       s.Addr,
	}); err != nil {
		ctxlog.From(r.Context()).Error("Failed to encode server status", "error", err)
	}
}

// handleFallbackHome handles the root path when the frontend build is
// not embedded.
func handleFallbackHome(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(`<!DOCTYPE html>
<html>
<head><title>Argos</title></head>
<body>
    <h1>Argos</h1>
    <p>Defect tracking monitor dashboard</p>
    <p><a href="/api/v1/defect">Weekly defect report</a></p>
</body>
</html>`)); err != nil {
		ctxlog.From(r.Context()).Error("Failed to write fallback home page", "error", err)
	}
}
