package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/georepute/visibility-cli/internal/model"
	"github.com/georepute/visibility-cli/internal/pipeline"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for report generation and retrieval",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, "")
		if err != nil {
			return err
		}
		defer env.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
		})

		r.Post("/api/reports/generate", func(w http.ResponseWriter, req *http.Request) {
			var body struct {
				AccountID string `json:"account_id"`
				Domain    string `json:"domain"`
				Variant   string `json:"variant"`
			}
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
				return
			}
			if body.AccountID == "" || body.Domain == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "account_id and domain are required"})
				return
			}
			typ := model.ReportType(body.Variant)
			if body.Variant == "" {
				typ = model.ReportTypeGap
			}
			if !typ.Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant must be gap or blindspot"})
				return
			}

			var (
				report *model.Report
				genErr error
			)
			switch typ {
			case model.ReportTypeBlindSpot:
				report, genErr = env.Pipeline.GenerateBlindSpotReport(req.Context(), body.AccountID, body.Domain)
			default:
				report, genErr = env.Pipeline.GenerateGapReport(req.Context(), body.AccountID, body.Domain)
			}
			switch {
			case genErr == nil:
				writeJSON(w, http.StatusOK, report)
			case eris.Is(genErr, pipeline.ErrNotPersisted) && report != nil:
				zap.L().Warn("api: report not persisted", zap.Error(genErr))
				writeJSON(w, http.StatusOK, report)
			case eris.Is(genErr, pipeline.ErrNoEngines):
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "no answer engines configured"})
			case eris.Is(genErr, pipeline.ErrNoQueries):
				writeJSON(w, http.StatusBadGateway, map[string]string{"error": "performance source unavailable"})
			default:
				zap.L().Error("api: report generation failed",
					zap.String("domain", body.Domain),
					zap.Error(genErr),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report generation failed"})
			}
		})

		r.Get("/api/reports/{variant}", func(w http.ResponseWriter, req *http.Request) {
			typ := model.ReportType(chi.URLParam(req, "variant"))
			if !typ.Valid() {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "variant must be gap or blindspot"})
				return
			}
			accountID := req.URL.Query().Get("account_id")
			domain := req.URL.Query().Get("domain")
			if accountID == "" || domain == "" {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "account_id and domain are required"})
				return
			}

			report, err := env.Pipeline.LastReport(req.Context(), accountID, domain, typ)
			if err != nil {
				zap.L().Error("api: report lookup failed",
					zap.String("domain", domain),
					zap.Error(err),
				)
				writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "report lookup failed"})
				return
			}
			if report == nil {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "report not found"})
				return
			}
			writeJSON(w, http.StatusOK, report)
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
