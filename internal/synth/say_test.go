package synth

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/process"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
)

type fakeSay struct {
	args []string
	err  error
}

func (f *fakeSay) Run(_ context.Context, _ string, args ...string) error {
	f.args = args
	for i, arg := range args {
		if arg == "-o" {
			if err := os.WriteFile(args[i+1], []byte("FORM"), 0o600); err != nil {
				return err
			}
		}
	}
	return f.err
}

func (f *fakeSay) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	return nil, f.Run(ctx, name, args...)
}

func newGenerator(t *testing.T, runner process.Runner) (*SayGenerator, *scratch.Dir) {
	t.Helper()
	dir, err := scratch.New(t.TempDir())
	require.NoError(t, err)
	return NewSayGenerator(runner, dir, "/usr/bin/say", map[string]string{"alloy": "Samantha"}), dir
}

func TestGenerateArguments(t *testing.T) {
	tests := []struct {
		voice     string
		wantVoice []string
	}{
		{voice: "", wantVoice: nil},
		{voice: "default", wantVoice: nil},
		{voice: "Daniel", wantVoice: []string{"-v", "Daniel"}},
		{voice: "Alloy", wantVoice: []string{"-v", "Samantha"}},
	}
	for _, tc := range tests {
		t.Run("voice="+tc.voice, func(t *testing.T) {
			runner := &fakeSay{}
			gen, _ := newGenerator(t, runner)

			out, err := gen.Generate(context.Background(), "Hello there", tc.voice)
			require.NoError(t, err)
			require.True(t, strings.HasSuffix(out, ".aiff"))
			require.FileExists(t, out)

			want := append(append([]string{}, tc.wantVoice...), "-o", out, "--", "Hello there")
			require.Equal(t, want, runner.args)
		})
	}
}

func TestGenerateFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		kind    apperr.Kind
		message string
	}{
		{"nonzero exit", &process.ExitError{Tool: "say", Code: 1}, apperr.KindGeneratorFailed, "Speech synthesis failed with exit code: 1."},
		{"missing binary", &process.LaunchError{Tool: "say", Err: os.ErrNotExist}, apperr.KindProcessLaunchFailed, "Process execution failed"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen, dir := newGenerator(t, &fakeSay{err: tc.err})

			out, err := gen.Generate(context.Background(), "Hi", "")
			require.Empty(t, out)
			require.True(t, apperr.IsKind(err, tc.kind))
			require.Contains(t, err.Error(), tc.message)

			entries, readErr := os.ReadDir(dir.Root())
			require.NoError(t, readErr)
			require.Empty(t, entries)
		})
	}
}

func TestGenerateTextLookingLikeFlags(t *testing.T) {
	for _, text := range []string{"--help", "-v", "-o /etc/passwd"} {
		t.Run(text, func(t *testing.T) {
			runner := &fakeSay{}
			gen, _ := newGenerator(t, runner)

			out, err := gen.Generate(context.Background(), text, "")
			require.NoError(t, err)
			require.Equal(t, []string{"-o", out, "--", text}, runner.args)
		})
	}
}
