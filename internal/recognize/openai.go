package recognize

import (
	"context"
	"os"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/config"
)

// OpenAIRecognizer sends audio to an OpenAI-compatible transcription endpoint,
// such as a local whisper server.
type OpenAIRecognizer struct {
	client openai.Client
	model  string
}

func NewOpenAIRecognizer(cfg config.RecognitionOpenAIConfig) *OpenAIRecognizer {
	requestOpts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(strings.TrimRight(cfg.BaseURL, "/") + "/"),
	}
	return &OpenAIRecognizer{
		client: openai.NewClient(requestOpts...),
		model:  cfg.Model,
	}
}

func (r *OpenAIRecognizer) Recognize(ctx context.Context, path, locale string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", apperr.FileReadFailed(path, err)
	}
	defer file.Close()

	params := openai.AudioTranscriptionNewParams{
		File:  file,
		Model: openai.AudioModel(r.model),
	}
	if lang := Language(locale); lang != "" {
		params.Language = openai.String(lang)
	}

	resp, err := r.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", apperr.RecognitionFailed(err.Error()).WithCause(err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", apperr.RecognitionFailed("no recognition result")
	}
	return text, nil
}
