package audio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogEntries(t *testing.T) {
	catalog := NewCatalog()
	tests := []struct {
		format      Format
		contentType string
		strategy    Strategy
	}{
		{FormatMP3, "audio/mpeg", StrategyTranscode},
		{FormatOpus, "audio/opus", StrategyTranscode},
		{FormatAAC, "audio/aac", StrategyTable},
		{FormatFLAC, "audio/flac", StrategyTable},
		{FormatWAV, "audio/wav", StrategyTable},
		{FormatPCM, "audio/pcm", StrategyTwoStage},
		{FormatAIFF, "audio/aiff", StrategyPassthrough},
	}
	require.Len(t, catalog.Formats(), len(tests))

	for _, tc := range tests {
		t.Run(string(tc.format), func(t *testing.T) {
			spec, ok := catalog.Lookup(tc.format)
			require.True(t, ok)
			require.True(t, spec.Supported)
			require.Equal(t, tc.contentType, spec.ContentType)
			require.Equal(t, string(tc.format), spec.Extension)
			require.Equal(t, tc.strategy, spec.Strategy)
		})
	}
}

func TestConverterArgs(t *testing.T) {
	catalog := NewCatalog()

	aac, _ := catalog.Lookup(FormatAAC)
	require.Equal(t, []string{"-f", "m4af", "-d", "aac"}, aac.ConverterArgs)
	flac, _ := catalog.Lookup(FormatFLAC)
	require.Equal(t, []string{"-f", "caff", "-d", "alac"}, flac.ConverterArgs)
	wav, _ := catalog.Lookup(FormatWAV)
	pcm, _ := catalog.Lookup(FormatPCM)
	require.Equal(t, wav.ConverterArgs, pcm.ConverterArgs)

	opus, _ := catalog.Lookup(FormatOpus)
	require.True(t, opus.VBR)
	mp3, _ := catalog.Lookup(FormatMP3)
	require.False(t, mp3.VBR)
}

func TestDisabledFormats(t *testing.T) {
	catalog := NewCatalog(" PCM ", "flac")

	pcm, ok := catalog.Lookup(FormatPCM)
	require.True(t, ok)
	require.False(t, pcm.Supported)

	mp3, _ := catalog.Lookup(FormatMP3)
	require.True(t, mp3.Supported)

	_, ok = catalog.Lookup(Format("ogg"))
	require.False(t, ok)

	// Disabling on one catalog leaves fresh catalogs untouched.
	fresh, _ := NewCatalog().Lookup(FormatPCM)
	require.True(t, fresh.Supported)
}
