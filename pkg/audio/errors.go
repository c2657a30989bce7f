package audio

import "errors"

// AudioError represents audio pipeline errors
type AudioError struct {
	Code    string `json:"code"`
	Op      string `json:"op"`
	Path    string `json:"path,omitempty"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

func (e *AudioError) Error() string {
	msg := e.Op + ": " + e.Message
	if e.Path != "" {
		msg += " (" + e.Path + ")"
	}
	if e.Cause != nil {
		return msg + ": " + e.Cause.Error()
	}
	return msg
}

func (e *AudioError) Unwrap() error {
	return e.Cause
}

// Common error codes
const (
	ErrCodeDecoding        = "DECODING_FAILED"
	ErrCodeEmptyInput      = "EMPTY_INPUT"
	ErrCodeUnsupportedRate = "UNSUPPORTED_SAMPLE_RATE"
	ErrCodeAnalysis        = "ANALYSIS_FAILED"
)

// NewAudioError creates a new audio pipeline error
func NewAudioError(code, op, path, message string, cause error) *AudioError {
	return &AudioError{
		Code:    code,
		Op:      op,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IsCode reports whether err is (or wraps) an AudioError with the given code.
func IsCode(err error, code string) bool {
	var ae *AudioError
	if errors.As(err, &ae) {
		return ae.Code == code
	}
	return false
}
