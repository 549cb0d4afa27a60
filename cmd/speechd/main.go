package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ncecere/speech_gateway/internal/app"
	"github.com/ncecere/speech_gateway/internal/config"
	"github.com/ncecere/speech_gateway/internal/httpserver"
	"github.com/ncecere/speech_gateway/internal/redisclient"
	"github.com/ncecere/speech_gateway/internal/storage/scratch"
)

func main() {
	var opts config.Options
	pflag.StringVarP(&opts.ConfigFile, "config", "c", "", "path to a speechd config file")
	pflag.StringVar(&opts.EnvFile, "env-file", "", "path to a .env file")
	pflag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(opts)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	config.SetupLogging(cfg.Logging)

	redisClient, err := redisclient.Connect(ctx, cfg.Redis)
	if err != nil {
		log.Fatalf("connect redis: %v", err)
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	container, err := app.NewContainer(ctx, cfg, redisClient)
	if err != nil {
		log.Fatalf("build container: %v", err)
	}
	if container.Observability != nil {
		defer container.Observability.Shutdown(context.Background())
	}

	startScratchSweeper(ctx, container.Scratch, cfg.Scratch)

	server, err := httpserver.New(container)
	if err != nil {
		log.Fatalf("construct server: %v", err)
	}

	slog.Info("speechd listening", slog.String("addr", cfg.Server.ListenAddr()))
	if err := server.Listen(ctx); err != nil && err != context.Canceled {
		log.Fatalf("server stopped: %v", err)
	}
}

// startScratchSweeper removes scratch files orphaned by a crash or kill.
func startScratchSweeper(ctx context.Context, dir *scratch.Dir, cfg config.ScratchConfig) {
	if dir == nil || cfg.SweepInterval <= 0 {
		return
	}
	ticker := time.NewTicker(cfg.SweepInterval)
	go func() {
		defer ticker.Stop()
		run := func() {
			removed, err := dir.Sweep(ctx, cfg.MaxAge, time.Now())
			if err != nil {
				slog.Warn("scratch sweep failed", slog.Any("error", err))
				return
			}
			if removed > 0 {
				slog.Info("scratch sweep", slog.Int("removed", removed))
			}
		}
		run()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()
}
