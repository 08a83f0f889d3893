package api

import (
	"encoding/json"
	"net/http"

	"github.com/skinsight/engine/internal/domain/model"
)

// FaceCheckHandler serves the preview/committed detection endpoint.
type FaceCheckHandler struct {
	deps          Dependencies
	maxImageBytes int64
}

// NewFaceCheckHandler creates a new face-check handler.
func NewFaceCheckHandler(deps Dependencies) *FaceCheckHandler {
	return &FaceCheckHandler{deps: deps, maxImageBytes: defaultMaxImageBytes}
}

type faceCheckResponse struct {
	Status    string          `json:"status"`
	Detection model.Detection `json:"detection"`
	Guidance  string          `json:"guidance,omitempty"`
}

// HandleFaceCheck handles POST /v1/face-check requests.
func (h *FaceCheckHandler) HandleFaceCheck(w http.ResponseWriter, r *http.Request) {
	const op = "api.face_check"
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

	det, guidance, err := h.deps.DetectFace(r.Context(), data, req.Mode)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	status := "ok"
	if guidance != "" {
		status = "low_confidence"
	}
	writeJSON(w, http.StatusOK, faceCheckResponse{
		Status:    status,
		Detection: det,
		Guidance:  guidance,
	})
}
