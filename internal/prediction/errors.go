package prediction

import (
	"errors"
	"fmt"
)

// ErrModelUnavailable is returned by every prediction when no model was loaded.
var ErrModelUnavailable = errors.New("model not loaded")

// PredictionError wraps a failure while building the feature vector or
// running the model.
type PredictionError struct {
	Err error
}

func (e *PredictionError) Error() string {
	return fmt.Sprintf("prediction error: %v", e.Err)
}

func (e *PredictionError) Unwrap() error {
	return e.Err
}

// ValidationError reports a bad caller-supplied parameter.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid parameter %s: %s", e.Field, e.Reason)
}
