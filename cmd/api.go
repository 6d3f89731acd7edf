package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/analysis"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/internal/metrics"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/pkg/ban"
	"github.com/Guillaume-Bsst/Time4-QPV-ZRR/pkg/sirene"
)

// analyzerAPI is the slice of the analyzer the HTTP handlers need.
type analyzerAPI interface {
	AnalyzeSIRET(ctx context.Context, raw string) (*analysis.Result, error)
	AnalyzeAddress(ctx context.Context, text string) (*analysis.Result, error)
}

// newRouter builds the eligibility API router.
func newRouter(a analyzerAPI) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(requestLogger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/siret/{siret}", func(w http.ResponseWriter, req *http.Request) {
			res, err := a.AnalyzeSIRET(req.Context(), chi.URLParam(req, "siret"))
			if err != nil {
				writeError(w, analysis.KindSIRET, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})
		r.Get("/adresse", func(w http.ResponseWriter, req *http.Request) {
			res, err := a.AnalyzeAddress(req.Context(), req.URL.Query().Get("q"))
			if err != nil {
				writeError(w, analysis.KindAddress, err)
				return
			}
			writeJSON(w, http.StatusOK, res)
		})
	})

	return r
}

// writeError maps analysis errors to HTTP statuses: invalid input is the
// caller's fault, a missing match is 404, upstream failures are 502.
func writeError(w http.ResponseWriter, kind string, err error) {
	status := http.StatusInternalServerError

	var sireneErr *sirene.StatusError
	var banErr *ban.StatusError
	switch {
	case errors.Is(err, analysis.ErrInvalidSIRET), errors.Is(err, analysis.ErrEmptyAddress):
		status = http.StatusBadRequest
	case errors.Is(err, ban.ErrNoMatch):
		status = http.StatusNotFound
	case errors.As(err, &sireneErr):
		status = http.StatusBadGateway
		if sireneErr.StatusCode == http.StatusNotFound {
			status = http.StatusNotFound
		}
	case errors.As(err, &banErr):
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		zap.L().Error("analysis failed", zap.String("kind", kind), zap.Error(err))
	} else {
		zap.L().Debug("analysis rejected", zap.String("kind", kind), zap.Int("status", status), zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Error("write response", zap.Error(err))
	}
}

// requestLogger logs each request and feeds the latency histogram. The
// route pattern is read after the handler runs, once chi has matched it.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		metrics.HTTPDuration.WithLabelValues(route, strconv.Itoa(ww.Status())).Observe(elapsed.Seconds())

		zap.L().Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Int("bytes", ww.BytesWritten()),
			zap.Duration("elapsed", elapsed),
			zap.String("request_id", middleware.GetReqID(r.Context())),
		)
	})
}
