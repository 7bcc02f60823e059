package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/cds/internal/contest"
	"github.com/roach88/cds/internal/model"
	"github.com/roach88/cds/internal/views"
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the logger. Default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) {
		s.logger = l
	}
}

// Server serves the projections of one views.Router.
type Server struct {
	views  *views.Router
	logger *slog.Logger
	mux    *chi.Mux
}

// New builds the routes.
func New(r *views.Router, opts ...Option) *Server {
	s := &Server{views: r, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(middleware.Timeout(30 * time.Second))
	mux.Use(s.logRequests)

	mux.Get("/healthz", s.health)
	mux.Route("/api", func(r chi.Router) {
		r.Route("/team/{teamID}", func(r chi.Router) {
			r.Get("/scoreboard", s.scoreboard)
			r.Get("/{kind}", s.list)
			r.Get("/{kind}/{id}", s.object)
		})
		r.Route("/{role}", func(r chi.Router) {
			r.Get("/scoreboard", s.scoreboard)
			r.Get("/{kind}", s.list)
			r.Get("/{kind}/{id}", s.object)
		})
	})
	s.mux = mux
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Debug("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"request_id", middleware.GetReqID(r.Context()),
		)
	})
}

// projection resolves the contest for the role or team in the path.
func (s *Server) projection(w http.ResponseWriter, r *http.Request) (*contest.Contest, bool) {
	var (
		c   *contest.Contest
		err error
	)
	if teamID := chi.URLParam(r, "teamID"); teamID != "" {
		c, err = s.views.Contest(views.RoleTeam, teamID)
	} else {
		role, perr := views.ParseRole(chi.URLParam(r, "role"))
		if perr != nil {
			writeError(w, http.StatusNotFound, perr.Error())
			return nil, false
		}
		if role == views.RoleTeam {
			writeError(w, http.StatusBadRequest, "team view needs a team id: /api/team/{teamID}/...")
			return nil, false
		}
		c, err = s.views.Contest(role, "")
	}
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return nil, false
	}
	return c, true
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	full, _ := s.views.Contest(views.RoleBlue, "")
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"objects": full.NumObjects(),
		"state":   full.State(),
	})
}

func (s *Server) scoreboard(w http.ResponseWriter, r *http.Request) {
	c, ok := s.projection(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, c.Scoreboard())
}

func (s *Server) list(w http.ResponseWriter, r *http.Request) {
	c, ok := s.projection(w, r)
	if !ok {
		return
	}
	kind, err := model.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	objs := c.ObjectsOfKind(kind)
	if objs == nil {
		objs = []model.Object{}
	}
	writeJSON(w, http.StatusOK, objs)
}

func (s *Server) object(w http.ResponseWriter, r *http.Request) {
	c, ok := s.projection(w, r)
	if !ok {
		return
	}
	kind, err := model.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	id := chi.URLParam(r, "id")
	obj := c.Get(kind, id)
	if obj == nil {
		writeError(w, http.StatusNotFound, fmt.Sprintf("%s/%s not found", kind, id))
		return
	}
	writeJSON(w, http.StatusOK, obj)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
