// Package convert turns the synthesizer's AIFF output into the requested format.
package convert

import (
	"context"
	"errors"
	"fmt"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/process"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
)

// Recorder receives one record per conversion.
type Recorder interface {
	RecordConversion(format, strategy string, err error)
}

type Options struct {
	FFmpegPath    string
	AfconvertPath string
	// Bitrate is the transcoder's target bitrate, e.g. "64k".
	Bitrate string
}

// Converter picks a strategy per target format and runs the matching tool.
type Converter struct {
	runner   process.Runner
	scratch  *scratch.Dir
	catalog  *audio.Catalog
	opts     Options
	recorder Recorder
}

func New(runner process.Runner, dir *scratch.Dir, catalog *audio.Catalog, opts Options, recorder Recorder) *Converter {
	if opts.Bitrate == "" {
		opts.Bitrate = "64k"
	}
	return &Converter{runner: runner, scratch: dir, catalog: catalog, opts: opts, recorder: recorder}
}

// Convert returns a file holding source in target format. For the native
// format that is source itself; otherwise it is a new scratch file the caller
// must remove. Source is never removed here.
func (c *Converter) Convert(ctx context.Context, source string, target audio.Format) (string, error) {
	spec, ok := c.catalog.Lookup(target)
	if !ok || !spec.Supported {
		return "", apperr.FormatNotSupported(string(target))
	}

	var (
		out string
		err error
	)
	switch spec.Strategy {
	case audio.StrategyPassthrough:
		return source, nil
	case audio.StrategyTranscode:
		out, err = c.transcode(ctx, source, spec)
	case audio.StrategyTable:
		out, err = c.table(ctx, source, c.scratch.Path(spec.Extension), spec.ConverterArgs)
	case audio.StrategyTwoStage:
		out, err = c.rawPCM(ctx, source, spec)
	default:
		err = apperr.FormatNotSupported(string(target))
	}
	if c.recorder != nil {
		c.recorder.RecordConversion(string(spec.Format), spec.Strategy.String(), err)
	}
	if err != nil {
		return "", err
	}
	return out, nil
}

func (c *Converter) transcode(ctx context.Context, source string, spec audio.Spec) (string, error) {
	out := c.scratch.Path(spec.Extension)
	args := []string{"-y", "-i", source}
	args = append(args, spec.CodecArgs...)
	args = append(args, "-b:a", c.opts.Bitrate)
	if spec.VBR {
		args = append(args, "-vbr", "on")
	}
	args = append(args, out)

	if err := c.runner.Run(ctx, c.opts.FFmpegPath, args...); err != nil {
		scratch.Remove(ctx, out)
		return "", toolError(err)
	}
	return out, nil
}

func (c *Converter) table(ctx context.Context, source, out string, converterArgs []string) (string, error) {
	args := append([]string{source, "-o", out}, converterArgs...)
	if err := c.runner.Run(ctx, c.opts.AfconvertPath, args...); err != nil {
		scratch.Remove(ctx, out)
		return "", toolError(err)
	}
	return out, nil
}

func (c *Converter) rawPCM(ctx context.Context, source string, spec audio.Spec) (string, error) {
	wav, err := c.table(ctx, source, c.scratch.Path(string(audio.FormatWAV)), spec.ConverterArgs)
	if err != nil {
		return "", err
	}
	defer scratch.Remove(ctx, wav)

	data, err := scratch.ReadFile(wav)
	if err != nil {
		return "", err
	}
	if len(data) < audio.WAVHeaderSize {
		return "", apperr.ConversionFailed(fmt.Sprintf("intermediate WAV has %d bytes, shorter than its header", len(data)))
	}

	out := c.scratch.Path(spec.Extension)
	if err := scratch.WriteFile(out, data[audio.WAVHeaderSize:]); err != nil {
		return "", err
	}
	return out, nil
}

func toolError(err error) error {
	var exitErr *process.ExitError
	var launchErr *process.LaunchError
	switch {
	case errors.As(err, &exitErr):
		return apperr.ConversionFailed(fmt.Sprintf("%s exited with code %d", exitErr.Tool, exitErr.Code)).WithCause(err)
	case errors.As(err, &launchErr):
		return apperr.ProcessLaunchFailed(err)
	default:
		return apperr.ConversionFailed(err.Error()).WithCause(err)
	}
}
