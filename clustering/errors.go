package clustering

import (
	"errors"
	"fmt"
)

// Sentinel causes carried inside InputError and ComputationError.
var (
	ErrNoLandmarks = errors.New("no valid landmarks provided")
	ErrDegenerate  = errors.New("degenerate clustering")
)

// InputError reports a request that cannot be processed: the payload did not
// parse, or no landmark survived validation.
type InputError struct {
	Err error
}

func (e *InputError) Error() string {
	if errors.Is(e.Err, ErrNoLandmarks) {
		return "No valid landmarks provided"
	}
	return fmt.Sprintf("Invalid JSON input: %v", e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// ComputationError reports a failure while building features, clustering or
// balancing. Op names the stage that failed.
type ComputationError struct {
	Op  string
	Err error
}

func (e *ComputationError) Error() string {
	return fmt.Sprintf("Clustering failed: %s: %v", e.Op, e.Err)
}

func (e *ComputationError) Unwrap() error { return e.Err }

func computationError(op string, err error) error {
	var ce *ComputationError
	if errors.As(err, &ce) {
		return err
	}
	return &ComputationError{Op: op, Err: err}
}
