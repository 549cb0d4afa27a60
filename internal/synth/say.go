// Package synth drives the system text-to-speech tool.
package synth

import (
	"context"
	"errors"
	"strings"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/process"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
)

// DefaultVoice selects the system voice.
const DefaultVoice = "default"

// SayGenerator writes AIFF audio with the `say` command.
type SayGenerator struct {
	runner   process.Runner
	scratch  *scratch.Dir
	path     string
	voiceMap map[string]string
}

func NewSayGenerator(runner process.Runner, dir *scratch.Dir, path string, voiceMap map[string]string) *SayGenerator {
	return &SayGenerator{runner: runner, scratch: dir, path: path, voiceMap: voiceMap}
}

// Generate synthesizes text and returns the path of a new AIFF scratch file.
// The caller removes it.
func (g *SayGenerator) Generate(ctx context.Context, text, voice string) (string, error) {
	out := g.scratch.Path(string(audio.NativeFormat))

	args := make([]string, 0, 6)
	if v := g.ResolveVoice(voice); v != "" {
		args = append(args, "-v", v)
	}
	// "--" keeps text such as "--help" from being read as an option.
	args = append(args, "-o", out, "--", text)

	if err := g.runner.Run(ctx, g.path, args...); err != nil {
		scratch.Remove(ctx, out)
		var exitErr *process.ExitError
		if errors.As(err, &exitErr) {
			return "", apperr.GeneratorFailed(exitErr.Code).WithCause(err)
		}
		var launchErr *process.LaunchError
		if errors.As(err, &launchErr) {
			return "", apperr.ProcessLaunchFailed(err)
		}
		return "", apperr.GeneratorFailed(-1).WithCause(err)
	}
	return out, nil
}

// ResolveVoice maps a requested voice to the tool's voice name. Empty means
// the system default.
func (g *SayGenerator) ResolveVoice(voice string) string {
	voice = strings.TrimSpace(voice)
	if voice == "" || strings.EqualFold(voice, DefaultVoice) {
		return ""
	}
	if mapped, ok := g.voiceMap[strings.ToLower(voice)]; ok {
		return mapped
	}
	return voice
}
