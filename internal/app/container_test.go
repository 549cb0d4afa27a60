package app

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/config"
	"github.com/ncecere/speech_gateway/internal/recognize"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		Tools: config.ToolsConfig{
			SayPath:       "/nonexistent/say",
			AfconvertPath: "/nonexistent/afconvert",
			FFmpegPath:    "/nonexistent/ffmpeg",
		},
		Audio:       config.AudioConfig{DisabledFormats: []string{"opus"}},
		Scratch:     config.ScratchConfig{Directory: t.TempDir()},
		Recognition: config.RecognitionConfig{Command: config.RecognitionCommandConfig{Path: "/nonexistent/recognize"}},
		Health:      config.HealthConfig{CheckInterval: time.Hour},
	}
	require.NoError(t, cfg.Validate())
	return cfg
}

func TestNewContainerWithoutRedis(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := NewContainer(ctx, testConfig(t), nil)
	require.NoError(t, err)

	require.Nil(t, container.Observability)
	require.Nil(t, container.Transcripts)
	require.NotNil(t, container.Generator)
	require.NotNil(t, container.Converter)
	require.IsType(t, &recognize.CommandRecognizer{}, container.Recognizer)

	opus, ok := container.Catalog.Lookup(audio.FormatOpus)
	require.True(t, ok)
	require.False(t, opus.Supported)

	container.HealthMon.CheckNow(ctx)
	require.Equal(t, []string{"afconvert", "ffmpeg", "recognizer", "say"}, container.HealthMon.Failing())
}

func TestNewContainerWithTranscriptCache(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := testConfig(t)
	cfg.Redis.URL = mr.Addr()
	cfg.Recognition.Cache.Enabled = true

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	container, err := NewContainer(ctx, cfg, client)
	require.NoError(t, err)

	require.NotNil(t, container.Transcripts)
	require.IsType(t, &recognize.Cached{}, container.Recognizer)

	container.HealthMon.CheckNow(ctx)
	require.True(t, container.HealthMon.Snapshot()["redis"].OK)
}

func TestNewContainerRequiresConfig(t *testing.T) {
	_, err := NewContainer(context.Background(), nil, nil)
	require.Error(t, err)
}
