// Package recognize turns an uploaded audio file into text.
package recognize

import (
	"context"
	"fmt"
	"strings"

	"github.com/ncecere/speech_gateway/internal/cache"
	"github.com/ncecere/speech_gateway/internal/config"
	"github.com/ncecere/speech_gateway/internal/process"
)

// Recognizer returns the final transcript of the audio at path.
type Recognizer interface {
	Recognize(ctx context.Context, path, locale string) (string, error)
}

// New builds the configured backend, wrapped in the transcript cache when one is given.
func New(cfg config.RecognitionConfig, runner process.Runner, transcripts *cache.TranscriptCache, recorder CacheRecorder) (Recognizer, error) {
	var backend Recognizer
	switch cfg.Backend {
	case config.RecognitionBackendCommand:
		backend = NewCommandRecognizer(runner, cfg.Command.Path, cfg.Command.Args)
	case config.RecognitionBackendOpenAI:
		backend = NewOpenAIRecognizer(cfg.OpenAI)
	default:
		return nil, fmt.Errorf("unsupported recognition backend %q", cfg.Backend)
	}
	if transcripts != nil {
		backend = NewCached(backend, transcripts, recorder)
	}
	return backend, nil
}

// Language reduces a locale such as ru_RU or pt-BR to its ISO-639-1 language.
func Language(locale string) string {
	locale = strings.TrimSpace(locale)
	if idx := strings.IndexAny(locale, "_-"); idx > 0 {
		locale = locale[:idx]
	}
	return strings.ToLower(locale)
}
