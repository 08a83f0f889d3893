// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/skinsight/engine/internal/adapters/pool"
	service "github.com/skinsight/engine/internal/app"
	"github.com/skinsight/engine/internal/domain/model"
)

// defaultMaxImageBytes bounds decoded image payloads.
const defaultMaxImageBytes = 8 << 20

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	// DetectFace runs detection only; guidance is non-empty below the gate.
	DetectFace(ctx context.Context, image []byte, mode string) (model.Detection, string, error)

	// Analyze runs the full pipeline and returns recommendations alongside.
	Analyze(ctx context.Context, image []byte, hints model.Hints) (*model.AnalysisResult, []model.Recommendation, error)
}

// Server wires HTTP routes for the analysis API.
type Server struct {
	faceCheckHandler *FaceCheckHandler
	analyzeHandler   *AnalyzeHandler
	healthHandler    *HealthHandler
	statsHandler     *StatsHandler
}

// ServerOption configures the Server.
type ServerOption func(*Server)

// WithMaxImageBytes bounds the decoded image payload size.
func WithMaxImageBytes(n int64) ServerOption {
	return func(s *Server) {
		if n > 0 {
			s.faceCheckHandler.maxImageBytes = n
			s.analyzeHandler.maxImageBytes = n
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, opts ...ServerOption) *Server {
	s := &Server{
		faceCheckHandler: NewFaceCheckHandler(deps),
		analyzeHandler:   NewAnalyzeHandler(deps),
		healthHandler:    NewHealthHandler(),
		statsHandler:     NewStatsHandler(statsProvider),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("/v1/face-check", MetricsMiddleware(s.faceCheckHandler.HandleFaceCheck, "face_check"))
	mux.HandleFunc("/v1/analyze", MetricsMiddleware(s.analyzeHandler.HandleAnalyze, "analyze"))
}

// imageRequest is the shared request envelope. Clients disagree on the
// field name for the payload; every alias is accepted here and normalized
// before anything downstream sees it.
type imageRequest struct {
	Image     string `json:"image"`
	ImageData string `json:"image_data"`
	Photo     string `json:"photo"`

	Mode string `json:"mode"`

	Hints model.Hints `json:"hints"`
	// Flat hint fields for clients that do not nest them.
	AgeBracket string `json:"age_bracket"`
	Ethnicity  string `json:"ethnicity"`
}

// payload returns the base64 payload from whichever alias the client used.
func (r imageRequest) payload() string {
	for _, p := range []string{r.Image, r.ImageData, r.Photo} {
		if strings.TrimSpace(p) != "" {
			return p
		}
	}
	return ""
}

// hints merges nested and flat hint fields, nested taking precedence.
func (r imageRequest) hints() model.Hints {
	h := r.Hints
	if h.AgeBracket == "" {
		h.AgeBracket = r.AgeBracket
	}
	if h.Ethnicity == "" {
		h.Ethnicity = r.Ethnicity
	}
	return h
}

// decodeImage extracts and size-checks the raw image bytes of a request.
func decodeImage(r imageRequest, maxBytes int64) ([]byte, error) {
	payload := r.payload()
	if payload == "" {
		return nil, errors.New("missing image payload")
	}
	// Tolerate data-URI prefixes from browser clients.
	if idx := strings.Index(payload, ";base64,"); idx >= 0 {
		payload = payload[idx+len(";base64,"):]
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("image payload is not valid base64")
	}
	if int64(len(data)) > maxBytes {
		return nil, errors.New("image payload exceeds the size limit")
	}
	return data, nil
}

type errorResponse struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Guidance string `json:"guidance,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeDomainError maps pipeline errors onto the API error contract.
func writeDomainError(w http.ResponseWriter, err error) {
	var lowConf *service.LowConfidenceError
	switch {
	case errors.As(err, &lowConf):
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Code:     "low_confidence",
			Message:  err.Error(),
			Guidance: lowConf.Guidance,
		})
	case errors.Is(err, model.ErrInvalidImageFormat):
		writeError(w, http.StatusBadRequest, "invalid_image", err)
	case errors.Is(err, model.ErrNoFaceDetected):
		writeError(w, http.StatusUnprocessableEntity, "no_face_detected", err)
	case errors.Is(err, pool.ErrQueueFull):
		writeError(w, http.StatusTooManyRequests, "backpressure", err)
	case errors.Is(err, model.ErrStageTimeout):
		writeError(w, http.StatusGatewayTimeout, "stage_timeout", err)
	case errors.Is(err, pool.ErrClosed), errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", err)
	default:
		writeError(w, http.StatusInternalServerError, "internal", err)
	}
}
