package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/Kocoro-lab/Shannon/go/citations/internal/formatting"
	"github.com/Kocoro-lab/Shannon/go/citations/internal/metadata"
	"github.com/Kocoro-lab/Shannon/go/citations/internal/metrics"
)

const defaultMaxBodyBytes = 1 << 20

// CitationsHandler serves citation extraction and rendering over HTTP.
type CitationsHandler struct {
	logger       *zap.Logger
	maxBodyBytes int64
	display      atomic.Pointer[formatting.DisplayOptions]
}

func NewCitationsHandler(logger *zap.Logger, opts formatting.DisplayOptions, maxBodyBytes int64) *CitationsHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}
	h := &CitationsHandler{logger: logger, maxBodyBytes: maxBodyBytes}
	h.SetDisplayOptions(opts)
	return h
}

// SetDisplayOptions swaps the display bounds used by the render endpoint. Safe for concurrent use.
func (h *CitationsHandler) SetDisplayOptions(opts formatting.DisplayOptions) {
	h.display.Store(&opts)
}

// DisplayOptions returns the display bounds currently in effect.
func (h *CitationsHandler) DisplayOptions() formatting.DisplayOptions {
	return *h.display.Load()
}

func (h *CitationsHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/citations", instrument("extract", h.handleExtract))
	mux.HandleFunc("/v1/citations/render", instrument("render", h.handleRender))
	mux.HandleFunc("/health", h.handleHealth)
}

type extractResponse struct {
	Citations []metadata.Citation     `json:"citations"`
	Stats     metadata.AggregateStats `json:"stats"`
}

// handleExtract: POST /v1/citations with the raw message object as body
func (h *CitationsHandler) handleExtract(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	msg, ok := h.readMessage(w, r)
	if !ok {
		return
	}

	citations, stats := h.aggregate(r, "extract", msg)
	writeJSON(w, http.StatusOK, extractResponse{Citations: citations, Stats: stats})
}

// handleRender: POST /v1/citations/render?format=markdown|html|json
func (h *CitationsHandler) handleRender(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	msg, ok := h.readMessage(w, r)
	if !ok {
		return
	}

	citations, _ := h.aggregate(r, "render", msg)
	opts := h.DisplayOptions()

	if format == "json" {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"items": formatting.PrepareForDisplay(citations, opts),
		})
		return
	}

	out, err := formatting.Render(citations, opts, format)
	if err != nil {
		if errors.Is(err, formatting.ErrUnsupportedFormat) {
			writeError(w, http.StatusBadRequest, "unsupported format")
			return
		}
		h.logger.Error("Render failed", zap.String("request_id", RequestIDFromContext(r.Context())), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "render failed")
		return
	}

	contentType := "text/markdown; charset=utf-8"
	if format == formatting.FormatHTML {
		contentType = "text/html; charset=utf-8"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, out)
}

func (h *CitationsHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// readMessage decodes the request body into a message. Valid JSON of the wrong
// shape yields a nil message, which aggregates to an empty list.
func (h *CitationsHandler) readMessage(w http.ResponseWriter, r *http.Request) (*metadata.Message, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBodyBytes)
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body too large")
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "invalid body")
		return nil, false
	}
	msg, err := metadata.DecodeMessageJSON(body)
	if err != nil {
		h.logger.Debug("Rejected malformed message",
			zap.String("request_id", RequestIDFromContext(r.Context())),
			zap.Int("bytes", len(body)),
			zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid json")
		return nil, false
	}
	return msg, true
}

func (h *CitationsHandler) aggregate(r *http.Request, endpoint string, msg *metadata.Message) ([]metadata.Citation, metadata.AggregateStats) {
	citations, stats := metadata.AggregateWithStats(msg)
	metrics.RecordAggregation(endpoint, stats.FromAnnotations, stats.FromMarkdown, stats.DuplicatesDropped)
	h.logger.Debug("Citations aggregated",
		zap.String("request_id", RequestIDFromContext(r.Context())),
		zap.String("endpoint", endpoint),
		zap.Int("from_annotations", stats.FromAnnotations),
		zap.Int("from_markdown", stats.FromMarkdown),
		zap.Int("duplicates_dropped", stats.DuplicatesDropped))
	return citations, stats
}

// writeJSON writes a JSON response with status and content-type.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// instrument records request count and latency per endpoint.
func instrument(endpoint string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		metrics.RecordRequest(endpoint, strconv.Itoa(rec.status), time.Since(start).Seconds())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}
