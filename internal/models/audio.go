package models

import (
	"strings"
	"unicode"

	"github.com/rivo/uniseg"

	"github.com/ncecere/speech_gateway/internal/apperr"
	"github.com/ncecere/speech_gateway/internal/audio"
)

// MaxSpeechInputChars bounds the text accepted by /v1/audio/speech, counted
// in user-perceived characters.
const MaxSpeechInputChars = 4096

// SpeechRequest is the JSON body of /v1/audio/speech.
type SpeechRequest struct {
	Input          string        `json:"input"`
	Model          string        `json:"model"`
	Voice          string        `json:"voice,omitempty"`
	ResponseFormat *audio.Format `json:"response_format,omitempty"`
}

// Validate checks the request before any tool runs. A valid request is left unchanged.
func (r SpeechRequest) Validate() error {
	if r.Input == "" {
		return apperr.InvalidInput("input must not be empty")
	}
	if uniseg.GraphemeClusterCount(r.Input) > MaxSpeechInputChars {
		return apperr.InvalidInput("input exceeds 4096 characters")
	}
	if r.Model != apperr.AcceptedModel {
		return apperr.InvalidModel(r.Model)
	}
	if !validVoice(r.Voice) {
		return apperr.InvalidVoice(r.Voice)
	}
	return nil
}

// Format resolves the requested output format, defaulting to mp3. Names are
// case-sensitive.
func (r SpeechRequest) Format() audio.Format {
	if r.ResponseFormat == nil || *r.ResponseFormat == "" {
		return audio.DefaultFormat
	}
	return *r.ResponseFormat
}

// Voices are passed to the synthesizer as a single argument, so they must not
// look like flags or carry control characters.
func validVoice(voice string) bool {
	if strings.HasPrefix(voice, "-") {
		return false
	}
	for _, r := range voice {
		if unicode.IsControl(r) {
			return false
		}
	}
	return true
}

// TranscriptionFormat is the response_format of the translations endpoint.
type TranscriptionFormat string

const (
	TranscriptionFormatJSON TranscriptionFormat = "json"
	TranscriptionFormatText TranscriptionFormat = "text"
)

// ParseTranscriptionFormat maps only the literal "text" to plain text.
func ParseTranscriptionFormat(value string) TranscriptionFormat {
	if value == string(TranscriptionFormatText) {
		return TranscriptionFormatText
	}
	return TranscriptionFormatJSON
}

// TranscriptionResponse is the JSON body returned for json transcriptions.
type TranscriptionResponse struct {
	Text string `json:"text"`
}

// Model is one entry of GET /v1/models.
type Model struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Created int64  `json:"created"`
	OwnedBy string `json:"owned_by"`
}

type ModelList struct {
	Object string  `json:"object"`
	Data   []Model `json:"data"`
}
