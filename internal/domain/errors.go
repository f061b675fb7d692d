package domain

import "errors"

// ErrorKind classifies pipeline failures so callers can apply
// differentiated retry policy without parsing message strings.
type ErrorKind int

const (
	KindValidation ErrorKind = iota // rejected before any store write
	KindStore                       // resource/embedding write or similarity query failed
	KindProvider                    // embedding provider network/quota/model failure
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindStore:
		return "store"
	case KindProvider:
		return "provider"
	default:
		return "unknown"
	}
}

// PipelineError is the single error type crossing the ingest/retrieve
// boundary. Message is short and human-readable; the wrapped cause is
// kept for logs but never shown to callers.
type PipelineError struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *PipelineError) Error() string { return e.Message }

func (e *PipelineError) Unwrap() error { return e.cause }

func ValidationError(msg string) *PipelineError {
	return &PipelineError{Kind: KindValidation, Message: msg}
}

func StoreError(msg string, cause error) *PipelineError {
	return &PipelineError{Kind: KindStore, Message: msg, cause: cause}
}

func ProviderError(msg string, cause error) *PipelineError {
	return &PipelineError{Kind: KindProvider, Message: msg, cause: cause}
}

// Describe returns the caller-facing message for any error produced by
// the pipeline. Unknown errors get a generic message so lower-level
// internals never leak across the boundary.
func Describe(err error) string {
	var pe *PipelineError
	if errors.As(err, &pe) && pe.Message != "" {
		return pe.Message
	}
	return "error, please try again"
}

// KindOf reports the classification of err, or ok=false for errors that
// did not originate in the pipeline.
func KindOf(err error) (ErrorKind, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Kind, true
	}
	return 0, false
}
