package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/liveable/internal/registry"
	"github.com/sells-group/liveable/internal/result"
	"github.com/sells-group/liveable/internal/store"
)

var servePort int

// maxBodyBytes caps a tool request body.
const maxBodyBytes = 1 << 20

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the tools over HTTP",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg)
		if err != nil {
			return err
		}
		defer a.Close()

		port := cfg.Server.Port
		if servePort > 0 {
			port = servePort
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           buildRouter(a.Tools, a.Archive, cfg.Server.AllowedOrigins),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			zap.L().Info("server starting", zap.Int("port", port))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			return eris.Wrap(err, "server")
		case <-ctx.Done():
		}

		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return eris.Wrap(srv.Shutdown(shutdownCtx), "server shutdown")
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildRouter exposes the registry and, when st is non-nil, the archive.
func buildRouter(tools *registry.Registry, st store.Store, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Get("/tools", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"tools": tools.List()})
	})

	r.Post("/tools/{name}", func(w http.ResponseWriter, req *http.Request) {
		body, err := io.ReadAll(io.LimitReader(req.Body, maxBodyBytes))
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid request body"})
			return
		}
		args, err := registry.ParseArgs(body)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"status": "error", "error": "invalid request body"})
			return
		}
		writeEnvelope(w, tools.Invoke(req.Context(), chi.URLParam(req, "name"), args))
	})

	r.Get("/reports/{zip}", func(w http.ResponseWriter, req *http.Request) {
		writeEnvelope(w, tools.Invoke(req.Context(), "neighborhood_report", registry.Args{
			"zip_code": chi.URLParam(req, "zip"),
		}))
	})

	r.Get("/compare/{a}/{b}", func(w http.ResponseWriter, req *http.Request) {
		writeEnvelope(w, tools.Invoke(req.Context(), "compare_neighborhoods", registry.Args{
			"zip_code_a": chi.URLParam(req, "a"),
			"zip_code_b": chi.URLParam(req, "b"),
		}))
	})

	r.Route("/history", func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				if st == nil {
					writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": "archive disabled"})
					return
				}
				next.ServeHTTP(w, req)
			})
		})

		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			q := req.URL.Query()
			limit, _ := strconv.Atoi(q.Get("limit"))
			reports, err := st.ListReports(req.Context(), store.ReportFilter{
				ZipCode: q.Get("zip"),
				Kind:    q.Get("kind"),
				Limit:   limit,
			})
			if err != nil {
				zap.L().Error("history list failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": "archive unavailable"})
				return
			}
			writeJSON(w, http.StatusOK, map[string]any{"reports": reports})
		})

		r.Get("/{id}", func(w http.ResponseWriter, req *http.Request) {
			rep, err := st.GetReport(req.Context(), chi.URLParam(req, "id"))
			if errors.Is(err, store.ErrNotFound) {
				writeJSON(w, http.StatusNotFound, map[string]string{"status": "error", "error": "report not found"})
				return
			}
			if err != nil {
				zap.L().Error("history get failed", zap.Error(err))
				writeJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "error": "archive unavailable"})
				return
			}
			writeJSON(w, http.StatusOK, rep)
		})
	})

	return r
}

// envelopeStatus maps an envelope to an HTTP status by failure family.
func envelopeStatus(env result.Envelope) int {
	if !env.IsError {
		return http.StatusOK
	}
	if env.Kind == result.KindUnknownTool {
		return http.StatusNotFound
	}
	switch result.New(env.Kind, env.Details).Family() {
	case result.FamilyValidation:
		return http.StatusBadRequest
	case result.FamilyConfiguration:
		return http.StatusServiceUnavailable
	case result.FamilyTransient, result.FamilyShape:
		return http.StatusBadGateway
	default:
		return http.StatusUnprocessableEntity
	}
}

func writeEnvelope(w http.ResponseWriter, env result.Envelope) {
	writeJSON(w, envelopeStatus(env), env)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	raw, err := result.Canonical(v)
	if err != nil {
		zap.L().Error("encode response", zap.Error(err))
		status = http.StatusInternalServerError
		raw = []byte(`{"error":"internal_error","status":"error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}
