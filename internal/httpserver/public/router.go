package public

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ncecere/speech_gateway/internal/app"
)

// Register wires up the OpenAI-compatible public API routes.
func Register(app *fiber.App, container *app.Container) {
	group := app.Group("/v1")
	handler := &audioHandler{container: container}
	group.Get("/models", handler.listModels)
	group.Post("/audio/speech", handler.audioSpeech)
	group.Post("/audio/translations", handler.audioTranscription)
	group.Post("/audio/transcriptions", handler.audioTranscription)
}
