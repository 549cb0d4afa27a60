package process

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu       sync.Mutex
	outcomes []string
}

func (o *recordingObserver) RecordToolInvocation(tool, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.outcomes = append(o.outcomes, tool+":"+outcome)
}

func requireShell(t *testing.T) {
	t.Helper()
	if err := Available("sh"); err != nil {
		t.Skipf("sh not available: %v", err)
	}
}

func TestExecRunnerSuccessAndOutput(t *testing.T) {
	requireShell(t)
	observer := &recordingObserver{}
	runner := NewExecRunner(0, observer)

	out, err := runner.Output(context.Background(), "sh", "-c", "printf hello")
	require.NoError(t, err)
	require.Equal(t, "hello", string(out))

	require.NoError(t, runner.Run(context.Background(), "sh", "-c", "exit 0"))
	require.Equal(t, []string{"sh:ok", "sh:ok"}, observer.outcomes)
}

func TestExecRunnerExitCode(t *testing.T) {
	requireShell(t)
	observer := &recordingObserver{}
	runner := NewExecRunner(0, observer)

	err := runner.Run(context.Background(), "sh", "-c", "echo broken >&2; exit 3")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	require.Equal(t, 3, exitErr.Code)
	require.Equal(t, "sh", exitErr.Tool)
	require.Equal(t, "broken", exitErr.Stderr)
	require.Equal(t, []string{"sh:exit_error"}, observer.outcomes)
}

func TestExecRunnerLaunchFailure(t *testing.T) {
	runner := NewExecRunner(0, nil)

	err := runner.Run(context.Background(), "/nonexistent/speech-tool")
	var launchErr *LaunchError
	require.ErrorAs(t, err, &launchErr)
	require.Equal(t, "speech-tool", launchErr.Tool)
	require.Equal(t, "launch_error", Outcome(err))
}

func TestExecRunnerTimeout(t *testing.T) {
	requireShell(t)
	runner := NewExecRunner(50*time.Millisecond, nil)

	err := runner.Run(context.Background(), "sh", "-c", "exec sleep 5")
	require.ErrorIs(t, err, ErrTimeout)
	require.Equal(t, "timeout", Outcome(err))
}

func TestOutcome(t *testing.T) {
	require.Equal(t, "ok", Outcome(nil))
	require.Equal(t, "error", Outcome(errors.New("other")))
	require.Equal(t, "exit_error", Outcome(&ExitError{Tool: "say", Code: 1}))
}
