package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/Simplici0/tenderhub/internal/config"
	"github.com/Simplici0/tenderhub/internal/db"
	"github.com/Simplici0/tenderhub/internal/logger"
	"github.com/Simplici0/tenderhub/internal/markup"
	"github.com/Simplici0/tenderhub/internal/migrations"
	"github.com/Simplici0/tenderhub/internal/recalc"
	"github.com/Simplici0/tenderhub/internal/seed"
	"github.com/Simplici0/tenderhub/internal/store"
)

const maxBodyBytes = 1 << 20

type server struct {
	auth   *authService
	db     *sql.DB
	store  *store.Store
	recalc *recalc.Service
}

func newServer(database *sql.DB, sessionSecret string, workers int) *server {
	st := store.New(database)
	return &server{
		auth:   newAuthService(database, sessionSecret),
		db:     database,
		store:  st,
		recalc: recalc.NewService(st, workers),
	}
}

func main() {
	cfg := config.Load()
	logger.SetLevel(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Open(ctx, cfg.DBPath)
	if err != nil {
		logger.Errorf("failed to open database: %v", err)
		os.Exit(1)
	}
	defer database.Close()

	if err := migrations.Up(ctx, database); err != nil {
		logger.Errorf("failed to run database migrations: %v", err)
		os.Exit(1)
	}

	stats, err := seed.Run(ctx, database, seed.Config{AdminEmail: cfg.AdminEmail, AdminPassword: cfg.AdminPassword})
	if err != nil {
		logger.Errorf("failed to seed database: %v", err)
		os.Exit(1)
	}
	logger.Infof("seed: %d inserts, %d updates", stats.Inserts, stats.Updates)

	srv := newServer(database, cfg.SessionSecret, cfg.RecalcWorkers)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.routes(cfg.IsDev()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Warnf("shutdown: %v", err)
		}
	}()

	logger.Infof("listening on %s", httpServer.Addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Errorf("server stopped: %v", err)
		os.Exit(1)
	}
}

func (s *server) routes(dev bool) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	if dev {
		r.Use(middleware.Logger)
	}
	r.Use(s.authMiddleware)

	r.Get("/healthz", s.handleHealth)
	r.Post("/api/login", s.handleLogin)
	r.Post("/api/logout", s.handleLogout)

	r.Route("/api/markup-parameters", func(r chi.Router) {
		r.Get("/", s.handleListMarkupParameters)
		r.Post("/", s.handleUpsertMarkupParameter)
	})

	r.Route("/api/tactics", func(r chi.Router) {
		r.Get("/", s.handleListTactics)
		r.Post("/", s.handleCreateTactic)
		r.Post("/import", s.handleImportTactic)
		r.Get("/{id}", s.handleGetTactic)
		r.Put("/{id}", s.handleUpdateTactic)
		r.Post("/{id}/preview", s.handlePreviewTactic)
	})

	r.Route("/api/tenders", func(r chi.Router) {
		r.Post("/", s.handleCreateTender)
		r.Get("/{id}", s.handleGetTender)
		r.Put("/{id}/tactic", s.handleSetTenderTactic)
		r.Get("/{id}/markups", s.handleGetTenderMarkups)
		r.Put("/{id}/markups", s.handleSetTenderMarkups)
		r.Get("/{id}/items", s.handleListItems)
		r.Post("/{id}/items", s.handleAddItems)
		r.Post("/{id}/recalculate", s.handleRecalculate)
		r.Get("/{id}/commercial.xlsx", s.handleExportCommercial)
	})

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	version, err := migrations.Version(r.Context(), s.db)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok", "schema_version": version})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	valid, err := s.auth.validateCredentials(req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	if !valid {
		writeJSON(w, http.StatusUnauthorized, errorBody{Error: "invalid credentials"})
		return
	}

	s.auth.setSessionCookie(w, req.Email)
	writeJSON(w, http.StatusOK, map[string]string{"email": req.Email})
}

func (s *server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.auth.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

type errorBody struct {
	Error string `json:"error"`
}

// requestError is a client mistake detected before any store call.
type requestError struct {
	status int
	msg    string
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) error {
	return &requestError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func unprocessable(err error) error {
	return &requestError{status: http.StatusUnprocessableEntity, msg: err.Error()}
}

func statusFor(err error) int {
	var re *requestError
	switch {
	case errors.As(err, &re):
		return re.status
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrNoTactic):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalid), errors.Is(err, markup.ErrConfiguration):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Errorf("request failed: %v", err)
		msg = "internal error"
	}
	writeJSON(w, status, errorBody{Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Warnf("encode response: %v", err)
	}
}

func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid JSON body: %v", err)
	}
	return nil
}

func readBody(r *http.Request) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, badRequest("read body: %v", err)
	}
	return raw, nil
}

func parseID(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, badRequest("invalid id %q", raw)
	}
	return id, nil
}
