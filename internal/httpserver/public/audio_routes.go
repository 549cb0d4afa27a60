package public

import (
	"context"
	"encoding/json"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/speech_gateway/internal/app"
	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/formdata"
	"github.com/ncecere/speech_gateway/internal/httpserver/httputil"
	"github.com/ncecere/speech_gateway/internal/models"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
)

const defaultUploadExtension = "wav"

type audioHandler struct {
	container *app.Container
}

func (h *audioHandler) audioSpeech(c *fiber.Ctx) error {
	ctx := c.UserContext()

	var req models.SpeechRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return httputil.WriteAppError(c, apperr.InvalidInput("request body must be a JSON object"))
	}
	if err := req.Validate(); err != nil {
		return httputil.WriteAppError(c, err)
	}

	format := req.Format()
	spec, ok := h.container.Catalog.Lookup(format)
	if !ok || !spec.Supported {
		return httputil.WriteAppError(c, apperr.FormatNotSupported(string(format)))
	}

	data, err := h.synthesize(ctx, req, spec)
	if err != nil {
		return httputil.WriteAppError(c, err)
	}

	c.Set(fiber.HeaderContentType, spec.ContentType)
	c.Set(fiber.HeaderContentDisposition, "attachment; filename=speech."+spec.Extension)
	return c.Send(data)
}

// synthesize returns the encoded audio. Every scratch file it creates is
// removed before it returns.
func (h *audioHandler) synthesize(ctx context.Context, req models.SpeechRequest, spec audio.Spec) ([]byte, error) {
	intermediate, err := h.container.Generator.Generate(ctx, req.Input, req.Voice)
	if err != nil {
		return nil, err
	}
	defer scratch.Remove(ctx, intermediate)

	final := intermediate
	if spec.Format != audio.NativeFormat {
		final, err = h.container.Converter.Convert(ctx, intermediate, spec.Format)
		if err != nil {
			return nil, err
		}
		if final != intermediate {
			defer scratch.Remove(ctx, final)
		}
	}
	return scratch.ReadFile(final)
}

func (h *audioHandler) audioTranscription(c *fiber.Ctx) error {
	ctx := c.UserContext()

	if strings.TrimSpace(c.Get(fiber.HeaderContentType)) == "" {
		return httputil.WriteAppError(c, apperr.InvalidUpload("missing Content-Type header"))
	}
	boundary := string(c.Request().Header.MultipartFormBoundary())
	if boundary == "" {
		return httputil.WriteAppError(c, apperr.InvalidUpload("Content-Type must be multipart/form-data with a boundary"))
	}

	parts := formdata.Parse(c.Body(), boundary)
	file, ok := parts["file"]
	if !ok || !file.HasFilename {
		return httputil.WriteAppError(c, apperr.MissingFile())
	}
	locale := strings.TrimSpace(string(parts["model"].Data))
	if locale == "" {
		return httputil.WriteAppError(c, apperr.MissingModel())
	}
	format := models.ParseTranscriptionFormat(string(parts["response_format"].Data))

	text, err := h.transcribe(ctx, file, locale)
	if err != nil {
		return httputil.WriteAppError(c, err)
	}

	if format == models.TranscriptionFormatText {
		c.Set(fiber.HeaderContentType, fiber.MIMETextPlainCharsetUTF8)
		return c.SendString(text)
	}
	return c.JSON(models.TranscriptionResponse{Text: text})
}

func (h *audioHandler) transcribe(ctx context.Context, file formdata.Part, locale string) (string, error) {
	path, err := h.container.Scratch.Write(uploadExtension(file.Filename), file.Data)
	if err != nil {
		return "", err
	}
	defer scratch.Remove(ctx, path)

	return h.container.Recognizer.Recognize(ctx, path, locale)
}

func uploadExtension(filename string) string {
	ext := strings.TrimPrefix(filepath.Ext(filename), ".")
	if ext == "" {
		return defaultUploadExtension
	}
	for _, r := range ext {
		if !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9') {
			return defaultUploadExtension
		}
	}
	return ext
}

func (h *audioHandler) listModels(c *fiber.Ctx) error {
	return c.JSON(models.ModelList{
		Object: "list",
		Data: []models.Model{{
			ID:      apperr.AcceptedModel,
			Object:  "model",
			Created: startedAt.Unix(),
			OwnedBy: "system",
		}},
	})
}

var startedAt = time.Now()
