package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/creditdesk/cibil-extract/internal/export"
	"github.com/creditdesk/cibil-extract/internal/pipeline"
	"github.com/creditdesk/cibil-extract/internal/store"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API for report uploads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initPipeline(ctx, true)
		if err != nil {
			return err
		}
		defer env.Close()

		if err := os.MkdirAll(cfg.Files.UploadDir, 0o755); err != nil {
			return eris.Wrapf(err, "serve: create %s", cfg.Files.UploadDir)
		}

		srv := newReportServer(env)

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		httpSrv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           srv.routes(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			httpSrv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

// reportServer serves the upload API. Uploads are accepted immediately and
// processed in the background; clients poll the returned token for status.
type reportServer struct {
	env     *pipelineEnv
	limiter *rate.Limiter
}

func newReportServer(env *pipelineEnv) *reportServer {
	perMinute := cfg.Server.RateLimitPerMinute
	if perMinute <= 0 {
		perMinute = 60
	}
	return &reportServer{
		env:     env,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), perMinute),
	}
}

func (s *reportServer) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.With(s.rateLimit).Post("/reports", s.handleUpload)
	r.Get("/reports/{token}", s.handleStatus)
	r.Get("/reports/{token}/xlsx", s.handleWorkbook)

	return r
}

func (s *reportServer) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !s.limiter.Allow() {
			writeJSONError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, req)
	})
}

func (s *reportServer) handleUpload(w http.ResponseWriter, req *http.Request) {
	maxBytes := int64(cfg.Server.MaxUploadMB) << 20
	req.Body = http.MaxBytesReader(w, req.Body, maxBytes)
	if err := req.ParseMultipartForm(maxBytes); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart body")
		return
	}

	file, header, err := req.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	opts := pipeline.Options{
		Password:     req.FormValue("password"),
		UserID:       req.FormValue("user_id"),
		MobileNumber: req.FormValue("mobile_number"),
		ReportType:   req.FormValue("report_type"),
		Overwrite:    req.FormValue("overwrite") == "true",
	}

	upload, err := s.env.Store.CreateUpload(req.Context(), header.Filename)
	if err != nil {
		zap.L().Error("create upload failed", zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "could not register upload")
		return
	}

	pdfPath := filepath.Join(cfg.Files.UploadDir, upload.Token+".pdf")
	if err := saveUploadedFile(file, pdfPath); err != nil {
		zap.L().Error("save upload failed", zap.String("token", upload.Token), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "could not save upload")
		return
	}

	// Detached from the request context so the client disconnecting does
	// not abort extraction.
	go s.processUpload(context.Background(), upload.Token, pdfPath, opts)

	writeJSON(w, http.StatusAccepted, map[string]string{
		"token":  upload.Token,
		"status": string(store.UploadStatusQueued),
	})
}

func (s *reportServer) processUpload(ctx context.Context, token, pdfPath string, opts pipeline.Options) {
	log := zap.L().With(zap.String("token", token))

	if err := s.env.Store.UpdateUploadStatus(ctx, token, store.UploadStatusProcessing, ""); err != nil {
		log.Error("update upload status failed", zap.Error(err))
	}

	result, err := s.env.Processor.Process(ctx, pdfPath, opts)
	if err != nil {
		log.Error("upload processing failed", zap.Error(err))
		if uerr := s.env.Store.UpdateUploadStatus(ctx, token, store.UploadStatusFailed, err.Error()); uerr != nil {
			log.Error("update upload status failed", zap.Error(uerr))
		}
		return
	}

	if result.Save != nil {
		if err := s.env.Store.AttachUploadReport(ctx, token, result.Save.ReportID); err != nil {
			log.Error("attach report failed", zap.Error(err))
		}
	}
	if err := s.env.Store.UpdateUploadStatus(ctx, token, store.UploadStatusComplete, ""); err != nil {
		log.Error("update upload status failed", zap.Error(err))
	}
	log.Info("upload processed",
		zap.String("control_number", result.Report.InputResponse.ReportInformation.ControlNumber),
	)
}

func (s *reportServer) handleStatus(w http.ResponseWriter, req *http.Request) {
	token := chi.URLParam(req, "token")

	upload, err := s.env.Store.GetUpload(req.Context(), token)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "upload not found")
		return
	}

	resp := struct {
		*store.Upload
		Report *store.Report `json:"report,omitempty"`
	}{Upload: upload}

	if upload.Status == store.UploadStatusComplete && upload.ReportID != "" {
		report, err := s.env.Store.GetReport(req.Context(), upload.ReportID)
		if err != nil {
			zap.L().Error("get report failed", zap.String("token", token), zap.Error(err))
		} else {
			resp.Report = report
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *reportServer) handleWorkbook(w http.ResponseWriter, req *http.Request) {
	token := chi.URLParam(req, "token")

	upload, err := s.env.Store.GetUpload(req.Context(), token)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "upload not found")
		return
	}
	if upload.Status != store.UploadStatusComplete || upload.ReportID == "" {
		writeJSONError(w, http.StatusConflict, fmt.Sprintf("upload is %s", upload.Status))
		return
	}

	report, err := s.env.Store.GetReport(req.Context(), upload.ReportID)
	if err != nil {
		writeJSONError(w, http.StatusNotFound, "report not found")
		return
	}

	workbook, err := export.Workbook(&report.Payload.InputResponse)
	if err != nil {
		zap.L().Error("workbook build failed", zap.String("token", token), zap.Error(err))
		writeJSONError(w, http.StatusInternalServerError, "could not build workbook")
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", token+".xlsx"))
	if err := workbook.Write(w); err != nil {
		zap.L().Error("workbook write failed", zap.String("token", token), zap.Error(err))
	}
}

func saveUploadedFile(src io.Reader, dst string) error {
	out, err := os.Create(dst)
	if err != nil {
		return eris.Wrapf(err, "serve: create %s", dst)
	}
	if _, err := io.Copy(out, src); err != nil {
		out.Close()
		return eris.Wrapf(err, "serve: write %s", dst)
	}
	return eris.Wrapf(out.Close(), "serve: close %s", dst)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
