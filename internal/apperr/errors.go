// Package apperr defines the failure kinds surfaced by the speech pipeline
// and the HTTP status each one maps to.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a pipeline failure.
type Kind int

const (
	KindInvalidInput Kind = iota
	KindInvalidModel
	KindInvalidVoice
	KindFormatNotSupported
	KindMissingFile
	KindMissingModel
	KindInvalidUpload
	KindConversionFailed
	KindGeneratorFailed
	KindProcessLaunchFailed
	KindFileIOFailed
	KindRecognitionFailed

	kindCount
)

// AcceptedModel is the only model identifier the speech endpoint accepts.
const AcceptedModel = "tts-1"

var kindNames = map[Kind]string{
	KindInvalidInput:        "invalid_input",
	KindInvalidModel:        "invalid_model",
	KindInvalidVoice:        "invalid_voice",
	KindFormatNotSupported:  "format_not_supported",
	KindMissingFile:         "missing_file",
	KindMissingModel:        "missing_model",
	KindInvalidUpload:       "invalid_upload",
	KindConversionFailed:    "conversion_failed",
	KindGeneratorFailed:     "generator_failed",
	KindProcessLaunchFailed: "process_launch_failed",
	KindFileIOFailed:        "file_io_failed",
	KindRecognitionFailed:   "recognition_failed",
}

var statusByKind = map[Kind]int{
	KindInvalidInput:        http.StatusBadRequest,
	KindInvalidModel:        http.StatusBadRequest,
	KindInvalidVoice:        http.StatusBadRequest,
	KindFormatNotSupported:  http.StatusBadRequest,
	KindMissingFile:         http.StatusBadRequest,
	KindMissingModel:        http.StatusBadRequest,
	KindInvalidUpload:       http.StatusBadRequest,
	KindConversionFailed:    http.StatusInternalServerError,
	KindGeneratorFailed:     http.StatusInternalServerError,
	KindProcessLaunchFailed: http.StatusInternalServerError,
	KindFileIOFailed:        http.StatusInternalServerError,
	KindRecognitionFailed:   http.StatusInternalServerError,
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Status returns the HTTP status for the kind. Unknown kinds are server errors.
func (k Kind) Status() int {
	if status, ok := statusByKind[k]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Kinds lists every defined kind.
func Kinds() []Kind {
	out := make([]Kind, 0, int(kindCount))
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

// Error is a classified pipeline failure. Message is safe to return to clients.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// WithCause attaches the underlying error for logging and errors.Is checks.
func (e *Error) WithCause(err error) *Error {
	e.Err = err
	return e
}

// Status returns the HTTP status code for err; unclassified errors map to 500.
func Status(err error) int {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind.Status()
	}
	return http.StatusInternalServerError
}

// IsKind reports whether err is classified as kind.
func IsKind(err error, kind Kind) bool {
	var appErr *Error
	return errors.As(err, &appErr) && appErr.Kind == kind
}

func newError(kind Kind, err error, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: err}
}

func InvalidInput(reason string) *Error {
	return newError(KindInvalidInput, nil, "Invalid input: %s.", reason)
}

func InvalidModel(model string) *Error {
	return newError(KindInvalidModel, nil, "Invalid model: %s. Supported model is '%s'.", model, AcceptedModel)
}

func InvalidVoice(voice string) *Error {
	return newError(KindInvalidVoice, nil, "Invalid voice: %s.", voice)
}

func FormatNotSupported(format string) *Error {
	return newError(KindFormatNotSupported, nil, "Format not supported: %s.", format)
}

func MissingFile() *Error {
	return newError(KindMissingFile, nil, "Missing required file parameter")
}

func MissingModel() *Error {
	return newError(KindMissingModel, nil, "Missing required model parameter")
}

func InvalidUpload(reason string) *Error {
	return newError(KindInvalidUpload, nil, "Invalid upload: %s.", reason)
}

func ConversionFailed(reason string) *Error {
	return newError(KindConversionFailed, nil, "Audio conversion failed: %s.", reason)
}

func GeneratorFailed(exitCode int) *Error {
	return newError(KindGeneratorFailed, nil, "Speech synthesis failed with exit code: %d.", exitCode)
}

func ProcessLaunchFailed(err error) *Error {
	return newError(KindProcessLaunchFailed, err, "Process execution failed: %v.", err)
}

func FileReadFailed(path string, err error) *Error {
	return newError(KindFileIOFailed, err, "Failed to read file: %s.", path)
}

func FileWriteFailed(path string, err error) *Error {
	return newError(KindFileIOFailed, err, "Failed to write file: %s.", path)
}

func RecognitionFailed(reason string) *Error {
	return newError(KindRecognitionFailed, nil, "Speech recognition failed: %s.", reason)
}
