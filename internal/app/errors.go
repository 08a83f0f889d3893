package service

import (
	"errors"
	"fmt"

	"github.com/skinsight/engine/internal/domain/model"
)

// ErrNotStarted is returned when the service is used before Start.
var ErrNotStarted = errors.New("service not started")

// LowConfidenceError carries the below-gate detection together with the
// guidance the client should show the user. It unwraps to
// model.ErrLowConfidenceDetection so transports can match on the sentinel.
type LowConfidenceError struct {
	Detection model.Detection
	Guidance  string
}

func (e *LowConfidenceError) Error() string {
	return fmt.Sprintf("detection confidence %.2f below gate: %s", e.Detection.Confidence, e.Guidance)
}

func (e *LowConfidenceError) Unwrap() error {
	return model.ErrLowConfidenceDetection
}
