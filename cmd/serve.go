package main

import (
	"bytes"
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

	"github.com/suvichaar/quotepipe/internal/merge"
	"github.com/suvichaar/quotepipe/internal/structure"
	"github.com/suvichaar/quotepipe/internal/table"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the structure and merge stages over HTTP",
	Long: `Exposes the table transforms as upload endpoints so the pipeline can
be driven from a browser or another service:

  GET  /healthz     liveness check
  POST /structure   raw quotes CSV body -> structured CSV
  POST /merge       multipart csv + jsonl -> merged CSV`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: newRouter(),
		}

		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			_ = srv.Shutdown(ctx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func newRouter() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost},
	}))

	r.Get("/healthz", handleHealth)
	r.Post("/structure", handleStructure)
	r.Post("/merge", handleMerge)
	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

// handleStructure accepts a raw quotes CSV body and responds with the
// structured per-author CSV.
func handleStructure(w http.ResponseWriter, r *http.Request) {
	t, err := table.ReadCSV(r.Body)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	records, err := structure.BuildFromTable(t)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeCSVResponse(w, structure.ToTable(records))
}

// handleMerge accepts a multipart form with "csv" (identified table) and
// "jsonl" (batch results) parts and responds with the merged CSV.
func handleMerge(w http.ResponseWriter, r *http.Request) {
	csvPart, _, err := r.FormFile("csv")
	if err != nil {
		http.Error(w, `missing "csv" file part`, http.StatusBadRequest)
		return
	}
	defer func() { _ = csvPart.Close() }()

	jsonlPart, _, err := r.FormFile("jsonl")
	if err != nil {
		http.Error(w, `missing "jsonl" file part`, http.StatusBadRequest)
		return
	}
	defer func() { _ = jsonlPart.Close() }()

	t, err := table.ReadCSV(csvPart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	results, err := merge.LoadResults(jsonlPart)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	merged, err := merge.Merge(t, results)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	writeCSVResponse(w, merged)
}

func writeCSVResponse(w http.ResponseWriter, t *table.Table) {
	var buf bytes.Buffer
	if err := t.WriteCSV(&buf); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/csv")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
