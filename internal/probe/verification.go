package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// faceCheck posts one synthetic image to the detection endpoint.
func (r *runner) faceCheck(ctx context.Context, spec faceSpec, mode string) (int, faceCheckResponse, errorPayload, error) {
	payload, err := renderFace(spec)
	if err != nil {
		return 0, faceCheckResponse{}, errorPayload{}, err
	}
	status, body, err := r.client.post(ctx, r.cfg.BaseURL+"/v1/face-check",
		map[string]string{"image": payload, "mode": mode})
	if err != nil {
		return 0, faceCheckResponse{}, errorPayload{}, err
	}
	var resp faceCheckResponse
	var apiErr errorPayload
	if status == http.StatusOK {
		err = json.Unmarshal(body, &resp)
	} else {
		err = json.Unmarshal(body, &apiErr)
	}
	return status, resp, apiErr, err
}

// analyze posts one synthetic image to the analysis endpoint.
func (r *runner) analyze(ctx context.Context, spec faceSpec) (int, analyzeResponse, errorPayload, error) {
	payload, err := renderFace(spec)
	if err != nil {
		return 0, analyzeResponse{}, errorPayload{}, err
	}
	status, body, err := r.client.post(ctx, r.cfg.BaseURL+"/v1/analyze",
		map[string]string{"image": payload})
	if err != nil {
		return 0, analyzeResponse{}, errorPayload{}, err
	}
	var resp analyzeResponse
	var apiErr errorPayload
	if status == http.StatusOK {
		err = json.Unmarshal(body, &resp)
	} else {
		err = json.Unmarshal(body, &apiErr)
	}
	return status, resp, apiErr, err
}

// verifyDetectionContract exercises the detection edge cases from outside.
func (r *runner) verifyDetectionContract(ctx context.Context) error {
	// Blank frame: structured error, no panic, no face.
	status, _, apiErr, err := r.faceCheck(ctx, faceSpec{frame: 200}, "committed")
	if err != nil {
		return err
	}
	r.check(ctx, "blank image maps to no_face_detected",
		status == http.StatusUnprocessableEntity && apiErr.Code == "no_face_detected",
		fmt.Sprintf("got status %d code %q", status, apiErr.Code))

	// Small off-center face: below gate, with guidance.
	status, resp, _, err := r.faceCheck(ctx, faceSpec{frame: 200, faceRatio: 0.05, offCenter: true}, "committed")
	if err != nil {
		return err
	}
	r.check(ctx, "small off-center face is below the gate",
		status == http.StatusOK && resp.Status == "low_confidence" && resp.Guidance != "",
		fmt.Sprintf("got status %d response %q guidance %q", status, resp.Status, resp.Guidance))

	// Confidence grows with the face.
	prev := -1.0
	monotone := true
	for _, ratio := range []float64{0.05, 0.15, 0.30, 0.40} {
		_, resp, _, stepErr := r.faceCheck(ctx, faceSpec{frame: 240, faceRatio: ratio}, "committed")
		if stepErr != nil {
			return stepErr
		}
		if resp.Detection.Confidence < prev {
			monotone = false
		}
		prev = resp.Detection.Confidence
	}
	r.check(ctx, "confidence is monotone in face area", monotone,
		"confidence decreased while the face grew")

	// Large centered face clears the gate and reports absolute bounds.
	status, resp, _, err = r.faceCheck(ctx, faceSpec{frame: 240, faceRatio: 0.40}, "committed")
	if err != nil {
		return err
	}
	r.check(ctx, "centered 40% face clears the 0.9 gate",
		status == http.StatusOK && resp.Detection.Confidence >= 0.9,
		fmt.Sprintf("got status %d confidence %.3f", status, resp.Detection.Confidence))
	r.check(ctx, "bounds are within the frame",
		resp.Detection.Bounds.Width > 0 &&
			resp.Detection.Bounds.X+resp.Detection.Bounds.Width <= resp.Detection.FrameWidth,
		fmt.Sprintf("bounds %+v frame %dx%d", resp.Detection.Bounds,
			resp.Detection.FrameWidth, resp.Detection.FrameHeight))
	return nil
}

// verifyAnalysisContract runs clear and blemished faces through the full
// pipeline and checks the scoring invariants.
func (r *runner) verifyAnalysisContract(ctx context.Context) error {
	clearSpec := faceSpec{frame: 240, faceRatio: 0.40}
	status, clear, apiErr, err := r.analyze(ctx, clearSpec)
	if err != nil {
		return err
	}
	r.check(ctx, "clear face analyzes successfully", status == http.StatusOK,
		fmt.Sprintf("got status %d code %q", status, apiErr.Code))
	if status != http.StatusOK {
		return nil
	}

	r.check(ctx, "clear skin scores in the maintenance band",
		clear.Analysis.HealthScore >= 80 && clear.Analysis.HealthScore <= 100,
		fmt.Sprintf("score %.1f", clear.Analysis.HealthScore))
	r.check(ctx, "every condition is reported", len(clear.Analysis.Conditions) == 7,
		fmt.Sprintf("got %d conditions", len(clear.Analysis.Conditions)))
	r.check(ctx, "recommendations are never empty", len(clear.Recommendations) > 0,
		"empty recommendation list")
	for _, rec := range clear.Recommendations {
		if rec.MatchReason == "" {
			r.check(ctx, "every recommendation carries a reason", false,
				fmt.Sprintf("product %s has no reason", rec.ProductID))
			break
		}
	}

	status, blemished, _, err := r.analyze(ctx, faceSpec{frame: 240, faceRatio: 0.40, blemishes: 5})
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		r.check(ctx, "blemished skin never outscores clear skin",
			blemished.Analysis.HealthScore <= clear.Analysis.HealthScore,
			fmt.Sprintf("blemished %.1f > clear %.1f",
				blemished.Analysis.HealthScore, clear.Analysis.HealthScore))
	}
	return nil
}
