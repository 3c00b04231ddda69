package extract

import (
	"errors"
	"fmt"
)

// Sentinel errors for registration and lookup failures. Callers match with
// errors.Is.
var (
	ErrUnsupportedFormat     = errors.New("unsupported format")
	ErrDuplicateRegistration = errors.New("duplicate extractor registration")
	ErrDuplicateStage        = errors.New("duplicate stage registration")
	ErrTimeout               = errors.New("extraction timed out")
	ErrCancelled             = errors.New("extraction cancelled")
	ErrResourceExhausted     = errors.New("resource limit exceeded")
)

// ExtractorError wraps a failure from a format extractor with enough context
// to diagnose which input produced it.
type ExtractorError struct {
	Format      string
	Fingerprint string
	Err         error
}

func (e *ExtractorError) Error() string {
	if e.Fingerprint != "" {
		return fmt.Sprintf("extract %s (%s): %v", e.Format, e.Fingerprint, e.Err)
	}
	return fmt.Sprintf("extract %s: %v", e.Format, e.Err)
}

func (e *ExtractorError) Unwrap() error { return e.Err }

// StageError reports a fatal post-processing stage failure. Best-effort
// stage failures never surface as errors; they become result warnings.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }
