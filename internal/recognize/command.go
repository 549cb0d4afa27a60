package recognize

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/process"
)

// CommandRecognizer runs an executable that prints the transcript on stdout.
type CommandRecognizer struct {
	runner process.Runner
	path   string
	args   []string
}

func NewCommandRecognizer(runner process.Runner, path string, args []string) *CommandRecognizer {
	return &CommandRecognizer{runner: runner, path: path, args: args}
}

func (r *CommandRecognizer) Recognize(ctx context.Context, path, locale string) (string, error) {
	replacer := strings.NewReplacer("{file}", path, "{locale}", locale)
	args := make([]string, len(r.args))
	for i, arg := range r.args {
		args[i] = replacer.Replace(arg)
	}

	out, err := r.runner.Output(ctx, r.path, args...)
	if err != nil {
		var launchErr *process.LaunchError
		if errors.As(err, &launchErr) {
			return "", apperr.ProcessLaunchFailed(err)
		}
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) {
			return "", apperr.RecognitionFailed(fmt.Sprintf("recognizer exited with code %d", exitErr.Code)).WithCause(err)
		}
		return "", apperr.RecognitionFailed(err.Error()).WithCause(err)
	}

	text := strings.TrimSpace(string(out))
	if text == "" {
		return "", apperr.RecognitionFailed("no recognition result")
	}
	return text, nil
}
