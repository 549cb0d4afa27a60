// Package audio holds the catalog of output formats the speech endpoint can
// produce and how each one is derived from the synthesizer's AIFF output.
package audio

import (
	"sort"
	"strings"
)

// Format is an OpenAI response_format value.
type Format string

const (
	FormatMP3  Format = "mp3"
	FormatOpus Format = "opus"
	FormatAAC  Format = "aac"
	FormatFLAC Format = "flac"
	FormatWAV  Format = "wav"
	FormatPCM  Format = "pcm"
	FormatAIFF Format = "aiff"

	// DefaultFormat applies when a request omits response_format.
	DefaultFormat = FormatMP3
	// NativeFormat is what the synthesizer writes.
	NativeFormat = FormatAIFF
)

// Strategy selects the conversion path for a target format.
type Strategy int

const (
	StrategyPassthrough Strategy = iota
	StrategyTranscode
	StrategyTable
	StrategyTwoStage
)

func (s Strategy) String() string {
	switch s {
	case StrategyPassthrough:
		return "passthrough"
	case StrategyTranscode:
		return "transcode"
	case StrategyTable:
		return "table"
	case StrategyTwoStage:
		return "two_stage"
	default:
		return "unknown"
	}
}

// Spec describes one catalog entry.
type Spec struct {
	Format      Format
	ContentType string
	Extension   string
	Supported   bool
	Strategy    Strategy
	// ConverterArgs are passed to the table-driven converter after the output path.
	ConverterArgs []string
	// CodecArgs are passed to the transcoder before the bitrate.
	CodecArgs []string
	// VBR enables variable bitrate on the transcoder.
	VBR bool
}

// WAVHeaderSize is the fixed RIFF header length stripped to produce raw PCM.
const WAVHeaderSize = 44

var wavArgs = []string{"-f", "WAVE", "-d", "LEI16@24000"}

var defaultSpecs = []Spec{
	{Format: FormatMP3, ContentType: "audio/mpeg", Extension: "mp3", Supported: true, Strategy: StrategyTranscode,
		CodecArgs: []string{"-codec:a", "libmp3lame"}},
	{Format: FormatOpus, ContentType: "audio/opus", Extension: "opus", Supported: true, Strategy: StrategyTranscode,
		CodecArgs: []string{"-codec:a", "libopus"}, VBR: true},
	{Format: FormatAAC, ContentType: "audio/aac", Extension: "aac", Supported: true, Strategy: StrategyTable,
		ConverterArgs: []string{"-f", "m4af", "-d", "aac"}},
	{Format: FormatFLAC, ContentType: "audio/flac", Extension: "flac", Supported: true, Strategy: StrategyTable,
		ConverterArgs: []string{"-f", "caff", "-d", "alac"}},
	{Format: FormatWAV, ContentType: "audio/wav", Extension: "wav", Supported: true, Strategy: StrategyTable,
		ConverterArgs: wavArgs},
	{Format: FormatPCM, ContentType: "audio/pcm", Extension: "pcm", Supported: true, Strategy: StrategyTwoStage,
		ConverterArgs: wavArgs},
	{Format: FormatAIFF, ContentType: "audio/aiff", Extension: "aiff", Supported: true, Strategy: StrategyPassthrough},
}

// Catalog is an immutable format lookup built once at startup.
type Catalog struct {
	specs map[Format]Spec
}

// NewCatalog returns the default catalog with the named formats marked unsupported.
func NewCatalog(disabled ...string) *Catalog {
	off := make(map[Format]struct{}, len(disabled))
	for _, name := range disabled {
		off[Format(strings.ToLower(strings.TrimSpace(name)))] = struct{}{}
	}
	specs := make(map[Format]Spec, len(defaultSpecs))
	for _, spec := range defaultSpecs {
		if _, ok := off[spec.Format]; ok {
			spec.Supported = false
		}
		specs[spec.Format] = spec
	}
	return &Catalog{specs: specs}
}

// Lookup returns the spec for format. Unknown formats report false.
func (c *Catalog) Lookup(format Format) (Spec, bool) {
	spec, ok := c.specs[format]
	return spec, ok
}

// Formats returns every known format in stable order.
func (c *Catalog) Formats() []Format {
	out := make([]Format, 0, len(c.specs))
	for f := range c.specs {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
