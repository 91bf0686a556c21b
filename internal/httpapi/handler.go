// Package httpapi exposes the leaf measurement pipeline over HTTP.
//
// Routes:
//
//	POST /analyze  JSON {"base64_image", "real_area_square", "include_overlay"}
//	               or multipart/form-data with "file" and "real_area_square"
//	GET  /health   liveness check
//
// Successful analyses return the analysis.Record; failures return
// {"error": "..."} with 400 for bad input and 500 for pipeline failures.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ironsheep/leafmeter/internal/analysis"
	"github.com/ironsheep/leafmeter/internal/config"
)

// RequestIDHeader carries the request ID in both directions.
const RequestIDHeader = "X-Request-ID"

type ctxKey struct{}

// RequestID returns the ID assigned to the request by the handler chain, or
// "" outside of it.
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Handler serves the leafmeter HTTP API.
type Handler struct {
	analyzer *analysis.Analyzer
	cfg      config.ServerConfig
	logf     analysis.Logf
}

// NewHandler creates a Handler. Diagnostics go to the standard logger unless
// logf is non-nil.
func NewHandler(a *analysis.Analyzer, logf analysis.Logf) *Handler {
	if logf == nil {
		logf = log.Printf
	}
	return &Handler{
		analyzer: a,
		cfg:      a.Config().Server,
		logf:     logf,
	}
}

// Routes returns the API wrapped in the CORS and request ID middleware.
func (h *Handler) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze", h.AnalyzeHandler)
	mux.HandleFunc("/health", h.HealthHandler)
	return h.requestID(h.cors(mux))
}

// analyzeRequest is the JSON body of POST /analyze.
type analyzeRequest struct {
	Base64Image      string   `json:"base64_image"`
	RealAreaSquare   *float64 `json:"real_area_square"`
	IncludeOverlay   *bool    `json:"include_overlay"`
	IncludeCentroids bool     `json:"include_centroids"`
}

// AnalyzeHandler handles POST /analyze.
//
// The annotated image is included as processedImage unless the request sets
// include_overlay to false.
func (h *Handler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start := time.Now()
	id := RequestID(r.Context())
	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)

	req, data, err := h.parseRequest(r)
	if err != nil {
		h.logf("[%s] rejected request: %v", id, err)
		respondError(w, err.Error(), http.StatusBadRequest)
		return
	}

	opts := analysis.RunOptions{Overlay: req.IncludeOverlay == nil || *req.IncludeOverlay}
	if req.RealAreaSquare != nil {
		// Zero in RunOptions selects the default, so an explicit zero is
		// rejected here.
		if *req.RealAreaSquare == 0 {
			err := fmt.Errorf("%w: got 0", analysis.ErrInvalidReferenceArea)
			respondJSON(w, analysis.NewErrorRecord(err), http.StatusBadRequest)
			return
		}
		opts.ReferenceArea = *req.RealAreaSquare
	}

	var report *analysis.Report
	if data != nil {
		report, err = h.analyzer.AnalyzeBytes(data, opts)
	} else {
		report, err = h.analyzer.AnalyzeBase64(req.Base64Image, opts)
	}
	if err != nil {
		status := http.StatusInternalServerError
		if analysis.IsClientError(err) {
			status = http.StatusBadRequest
		}
		h.logf("[%s] analysis failed (%d): %v", id, status, err)
		respondJSON(w, analysis.NewErrorRecord(err), status)
		return
	}

	p := h.analyzer.Config().Pipeline
	h.logf("[%s] analysed %dx%d image: %d leaves in %s",
		id, report.Width, report.Height, report.Result.NumberOfLeaves, time.Since(start).Round(time.Millisecond))
	respondJSON(w, report.Record(p.RoundLeafMetrics, req.IncludeCentroids || p.IncludeCentroids), http.StatusOK)
}

// parseRequest reads either a multipart upload or a JSON body. For uploads
// the raw file bytes are returned; for JSON the image stays in the request.
func (h *Handler) parseRequest(r *http.Request) (*analyzeRequest, []byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		return h.parseMultipart(r)
	}

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, nil, fmt.Errorf("request body exceeds %d bytes", tooLarge.Limit)
		}
		return nil, nil, fmt.Errorf("invalid JSON body: %w", err)
	}
	if strings.TrimSpace(req.Base64Image) == "" {
		return nil, nil, errors.New("no base64 image provided")
	}
	return &req, nil, nil
}

func (h *Handler) parseMultipart(r *http.Request) (*analyzeRequest, []byte, error) {
	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		return nil, nil, fmt.Errorf("failed to parse form: %w", err)
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		return nil, nil, errors.New("no file uploaded")
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read file: %w", err)
	}

	var req analyzeRequest
	if v := r.FormValue("real_area_square"); v != "" {
		area, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid real_area_square %q", v)
		}
		req.RealAreaSquare = &area
	}
	if v := r.FormValue("include_overlay"); v != "" {
		overlay, err := strconv.ParseBool(v)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid include_overlay %q", v)
		}
		req.IncludeOverlay = &overlay
	}
	if v := r.FormValue("include_centroids"); v != "" {
		req.IncludeCentroids, _ = strconv.ParseBool(v)
	}
	return &req, data, nil
}

// HealthHandler reports that the service is up.
func (h *Handler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		respondError(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}

// cors adds the CORS headers and answers preflight requests.
func (h *Handler) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", h.cfg.AllowedOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		w.Header().Set("Access-Control-Expose-Headers", RequestIDHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requestID propagates the caller's X-Request-ID or assigns a new one.
func (h *Handler) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

func respondJSON(w http.ResponseWriter, data interface{}, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to write response: %v", err)
	}
}

func respondError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, analysis.ErrorRecord{Error: message}, status)
}
