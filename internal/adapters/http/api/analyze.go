package api

import (
	"encoding/json"
	"net/http"

	"github.com/skinsight/engine/internal/domain/model"
)

// AnalyzeHandler serves the full analysis endpoint.
type AnalyzeHandler struct {
	deps          Dependencies
	maxImageBytes int64
}

// NewAnalyzeHandler creates a new analyze handler.
func NewAnalyzeHandler(deps Dependencies) *AnalyzeHandler {
	return &AnalyzeHandler{deps: deps, maxImageBytes: defaultMaxImageBytes}
}

type analyzeResponse struct {
	Analysis        *model.AnalysisResult  `json:"analysis"`
	Recommendations []model.Recommendation `json:"recommendations"`
}

// HandleAnalyze handles POST /v1/analyze requests.
func (h *AnalyzeHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	const op = "api.analyze"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}
	var req imageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	data, err := decodeImage(req, h.maxImageBytes)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}

	result, recs, err := h.deps.Analyze(r.Context(), data, req.hints())
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analyzeResponse{
		Analysis:        result,
		Recommendations: recs,
	})
}
