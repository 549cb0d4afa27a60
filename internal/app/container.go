package app

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/cache"
	"github.com/ncecere/speech_gateway/internal/config"
	"github.com/ncecere/speech_gateway/internal/convert"
	"github.com/ncecere/speech_gateway/internal/health"
	"github.com/ncecere/speech_gateway/internal/observability"
	"github.com/ncecere/speech_gateway/internal/process"
	"github.com/ncecere/speech_gateway/internal/recognize"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
	"github.com/ncecere/speech_gateway/internal/synth"
)

// Generator synthesizes text into a native-format scratch file.
type Generator interface {
	Generate(ctx context.Context, text, voice string) (string, error)
}

// Converter turns a native-format file into the requested format.
type Converter interface {
	Convert(ctx context.Context, source string, target audio.Format) (string, error)
}

// Container aggregates runtime dependencies for handlers.
type Container struct {
	Config        *config.Config
	Catalog       *audio.Catalog
	Scratch       *scratch.Dir
	Runner        process.Runner
	Generator     Generator
	Converter     Converter
	Recognizer    recognize.Recognizer
	Redis         *redis.Client
	Transcripts   *cache.TranscriptCache
	HealthMon     *health.Monitor
	Observability *observability.Provider
}

// NewContainer wires the pipeline from cfg. redisClient may be nil.
func NewContainer(ctx context.Context, cfg *config.Config, redisClient *redis.Client) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	obsProvider, err := observability.Setup(ctx, cfg.Observability)
	if err != nil {
		return nil, fmt.Errorf("setup observability: %w", err)
	}

	dir, err := scratch.New(cfg.Scratch.Directory)
	if err != nil {
		return nil, err
	}

	catalog := audio.NewCatalog(cfg.Audio.DisabledFormats...)
	runner := process.NewExecRunner(cfg.Tools.Timeout, obsProvider)

	var transcripts *cache.TranscriptCache
	if redisClient != nil && cfg.Recognition.Cache.Enabled {
		transcripts = cache.NewTranscriptCache(redisClient, cfg.Recognition.Cache.TTL)
	}
	recognizer, err := recognize.New(cfg.Recognition, runner, transcripts, obsProvider)
	if err != nil {
		return nil, fmt.Errorf("init recognizer: %w", err)
	}

	monitor := health.NewMonitor(cfg.Health, healthChecks(cfg, redisClient)...)
	monitor.Start(ctx)

	return &Container{
		Config:    cfg,
		Catalog:   catalog,
		Scratch:   dir,
		Runner:    runner,
		Generator: synth.NewSayGenerator(runner, dir, cfg.Tools.SayPath, cfg.Speech.VoiceMap),
		Converter: convert.New(runner, dir, catalog, convert.Options{
			FFmpegPath:    cfg.Tools.FFmpegPath,
			AfconvertPath: cfg.Tools.AfconvertPath,
			Bitrate:       cfg.Tools.TranscodeBitrate,
		}, obsProvider),
		Recognizer:    recognizer,
		Redis:         redisClient,
		Transcripts:   transcripts,
		HealthMon:     monitor,
		Observability: obsProvider,
	}, nil
}

func healthChecks(cfg *config.Config, redisClient *redis.Client) []health.Check {
	tool := func(name, path string) health.Check {
		return health.Check{Name: name, Probe: func(context.Context) error { return process.Available(path) }}
	}
	checks := []health.Check{
		tool("say", cfg.Tools.SayPath),
		tool("afconvert", cfg.Tools.AfconvertPath),
		tool("ffmpeg", cfg.Tools.FFmpegPath),
	}
	if cfg.Recognition.Backend == config.RecognitionBackendCommand {
		checks = append(checks, tool("recognizer", cfg.Recognition.Command.Path))
	}
	if redisClient != nil {
		checks = append(checks, health.Check{Name: "redis", Probe: func(ctx context.Context) error {
			return redisClient.Ping(ctx).Err()
		}})
	}
	return checks
}
