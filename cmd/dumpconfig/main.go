package main

import (
	"fmt"
	"log"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/pflag"

	"github.com/ncecere/speech_gateway/internal/audio"
	"github.com/ncecere/speech_gateway/internal/config"
)

func main() {
	var opts config.Options
	pflag.StringVarP(&opts.ConfigFile, "config", "c", "", "path to a speechd config file")
	pflag.StringVar(&opts.EnvFile, "env-file", "", "path to a .env file")
	pflag.Parse()

	cfg, err := config.Load(opts)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	log.Printf("listen: %s", cfg.Server.ListenAddr())
	log.Printf("tools: say=%s afconvert=%s ffmpeg=%s bitrate=%s timeout=%s",
		cfg.Tools.SayPath, cfg.Tools.AfconvertPath, cfg.Tools.FFmpegPath, cfg.Tools.TranscodeBitrate, cfg.Tools.Timeout)
	log.Printf("recognition: backend=%s cache=%t", cfg.Recognition.Backend, cfg.Recognition.Cache.Enabled)
	log.Printf("scratch: %s (max age %s)", cfg.Scratch.Directory, cfg.Scratch.MaxAge)

	catalog := audio.NewCatalog(cfg.Audio.DisabledFormats...)
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "FORMAT\tCONTENT TYPE\tSTRATEGY\tSUPPORTED\tARGS")
	for _, format := range catalog.Formats() {
		spec, _ := catalog.Lookup(format)
		args := append(append([]string{}, spec.CodecArgs...), spec.ConverterArgs...)
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", format, spec.ContentType, spec.Strategy, spec.Supported, strings.Join(args, " "))
	}
	_ = w.Flush()
}
