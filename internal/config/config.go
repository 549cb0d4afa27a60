package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// Config captures the runtime configuration for the speech service.
type Config struct {
	Server        ServerConfig        `mapstructure:"server"`
	Tools         ToolsConfig         `mapstructure:"tools"`
	Speech        SpeechConfig        `mapstructure:"speech"`
	Audio         AudioConfig         `mapstructure:"audio"`
	Scratch       ScratchConfig       `mapstructure:"scratch"`
	Recognition   RecognitionConfig   `mapstructure:"recognition"`
	Redis         RedisConfig         `mapstructure:"redis"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Health        HealthConfig        `mapstructure:"health"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

type ServerConfig struct {
	Host                  string        `mapstructure:"host"`
	Port                  int           `mapstructure:"port"`
	BodyLimitMB           int           `mapstructure:"body_limit_mb"`
	ReadTimeout           time.Duration `mapstructure:"read_timeout"`
	IdleTimeout           time.Duration `mapstructure:"idle_timeout"`
	GracefulShutdownDelay time.Duration `mapstructure:"graceful_shutdown_delay"`
}

// ListenAddr joins host and port into a dialable address.
func (s ServerConfig) ListenAddr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ToolsConfig points at the external executables that do the audio work.
type ToolsConfig struct {
	SayPath          string        `mapstructure:"say_path"`
	AfconvertPath    string        `mapstructure:"afconvert_path"`
	FFmpegPath       string        `mapstructure:"ffmpeg_path"`
	TranscodeBitrate string        `mapstructure:"transcode_bitrate"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type SpeechConfig struct {
	VoiceMap map[string]string `mapstructure:"voice_map"`
}

type AudioConfig struct {
	DisabledFormats []string `mapstructure:"disabled_formats"`
}

type ScratchConfig struct {
	Directory     string        `mapstructure:"directory"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	MaxAge        time.Duration `mapstructure:"max_age"`
}

const (
	RecognitionBackendCommand = "command"
	RecognitionBackendOpenAI  = "openai"
)

type RecognitionConfig struct {
	Backend string                   `mapstructure:"backend"`
	Command RecognitionCommandConfig `mapstructure:"command"`
	OpenAI  RecognitionOpenAIConfig  `mapstructure:"openai"`
	Cache   RecognitionCacheConfig   `mapstructure:"cache"`
}

// RecognitionCommandConfig describes an executable that prints a transcript
// to stdout. Args may reference {file} and {locale}.
type RecognitionCommandConfig struct {
	Path string   `mapstructure:"path"`
	Args []string `mapstructure:"args"`
}

type RecognitionOpenAIConfig struct {
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type RecognitionCacheConfig struct {
	Enabled bool          `mapstructure:"enabled"`
	TTL     time.Duration `mapstructure:"ttl"`
}

type RedisConfig struct {
	URL      string `mapstructure:"url"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

type ObservabilityConfig struct {
	ServiceName   string `mapstructure:"service_name"`
	OTLPEndpoint  string `mapstructure:"otlp_endpoint"`
	EnableOTLP    bool   `mapstructure:"enable_otlp"`
	EnableMetrics bool   `mapstructure:"enable_metrics"`
}

type HealthConfig struct {
	CheckInterval time.Duration `mapstructure:"check_interval"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Options controls the config loader behavior.
type Options struct {
	ConfigFile string
	EnvFile    string
}

// Load returns the merged configuration sourced from YAML and environment variables.
func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)

	explicitFile := false
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		explicitFile = true
	} else if cfg := os.Getenv("SPEECHD_CONFIG_FILE"); cfg != "" {
		v.SetConfigFile(cfg)
		explicitFile = true
	}

	if !explicitFile {
		v.SetConfigName("speechd")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	v.SetEnvPrefix("SPEECHD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg, viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		timeStringToDurationHook(),
		mapstructure.StringToSliceHookFunc(","),
	))); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate ensures required configuration is present and fills derived defaults.
func (c *Config) Validate() error {
	if err := c.Server.validate(); err != nil {
		return err
	}
	if err := c.Tools.validate(); err != nil {
		return err
	}
	c.Audio.DisabledFormats = normalizeStringSlice(c.Audio.DisabledFormats)
	c.Speech.VoiceMap = normalizeVoiceMap(c.Speech.VoiceMap)
	c.Scratch.validate()
	if err := c.Recognition.validate(); err != nil {
		return err
	}
	if c.Recognition.Cache.Enabled && strings.TrimSpace(c.Redis.URL) == "" {
		return fmt.Errorf("recognition.cache.enabled requires redis.url")
	}
	if c.Observability.EnableOTLP && strings.TrimSpace(c.Observability.OTLPEndpoint) == "" {
		return fmt.Errorf("observability.otlp_endpoint is required when enable_otlp is set")
	}
	if strings.TrimSpace(c.Observability.ServiceName) == "" {
		c.Observability.ServiceName = "speechd"
	}
	if c.Health.CheckInterval <= 0 {
		c.Health.CheckInterval = time.Minute
	}
	return c.Logging.validate()
}

func (s *ServerConfig) validate() error {
	s.Host = strings.TrimSpace(s.Host)
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if s.BodyLimitMB <= 0 {
		s.BodyLimitMB = 50
	}
	if s.GracefulShutdownDelay <= 0 {
		s.GracefulShutdownDelay = 5 * time.Second
	}
	return nil
}

func (t *ToolsConfig) validate() error {
	var missing []string
	if strings.TrimSpace(t.SayPath) == "" {
		missing = append(missing, "tools.say_path")
	}
	if strings.TrimSpace(t.AfconvertPath) == "" {
		missing = append(missing, "tools.afconvert_path")
	}
	if strings.TrimSpace(t.FFmpegPath) == "" {
		missing = append(missing, "tools.ffmpeg_path")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	if strings.TrimSpace(t.TranscodeBitrate) == "" {
		t.TranscodeBitrate = "64k"
	}
	if t.Timeout < 0 {
		t.Timeout = 0
	}
	return nil
}

func (s *ScratchConfig) validate() {
	s.Directory = strings.TrimSpace(s.Directory)
	if s.Directory == "" {
		s.Directory = filepath.Join(os.TempDir(), "speechd")
	}
	if s.MaxAge <= 0 {
		s.MaxAge = time.Hour
	}
}

func (r *RecognitionConfig) validate() error {
	r.Backend = strings.ToLower(strings.TrimSpace(r.Backend))
	switch r.Backend {
	case "", RecognitionBackendCommand:
		r.Backend = RecognitionBackendCommand
		if strings.TrimSpace(r.Command.Path) == "" {
			return fmt.Errorf("recognition.command.path is required for the command backend")
		}
		if len(r.Command.Args) == 0 {
			r.Command.Args = []string{"{file}", "{locale}"}
		}
	case RecognitionBackendOpenAI:
		if strings.TrimSpace(r.OpenAI.BaseURL) == "" {
			return fmt.Errorf("recognition.openai.base_url is required for the openai backend")
		}
		if strings.TrimSpace(r.OpenAI.Model) == "" {
			r.OpenAI.Model = "whisper-1"
		}
	default:
		return fmt.Errorf("recognition.backend %q is not supported", r.Backend)
	}
	if r.Cache.TTL <= 0 {
		r.Cache.TTL = 24 * time.Hour
	}
	return nil
}

func (l *LoggingConfig) validate() error {
	l.Level = strings.ToLower(strings.TrimSpace(l.Level))
	if l.Level == "" {
		l.Level = "info"
	}
	l.Format = strings.ToLower(strings.TrimSpace(l.Format))
	switch l.Format {
	case "":
		l.Format = "text"
	case "text", "json":
	default:
		return fmt.Errorf("logging.format must be text or json")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.body_limit_mb", 50)
	v.SetDefault("server.read_timeout", "2m")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_shutdown_delay", "5s")

	v.SetDefault("tools.say_path", "/usr/bin/say")
	v.SetDefault("tools.afconvert_path", "/usr/bin/afconvert")
	v.SetDefault("tools.ffmpeg_path", "/opt/homebrew/bin/ffmpeg")
	v.SetDefault("tools.transcode_bitrate", "64k")
	v.SetDefault("tools.timeout", "0s")

	v.SetDefault("speech.voice_map", map[string]string{})
	v.SetDefault("audio.disabled_formats", []string{})

	v.SetDefault("scratch.directory", "")
	v.SetDefault("scratch.sweep_interval", "15m")
	v.SetDefault("scratch.max_age", "1h")

	v.SetDefault("recognition.backend", RecognitionBackendCommand)
	v.SetDefault("recognition.command.path", "/usr/local/bin/speech-recognize")
	v.SetDefault("recognition.command.args", []string{"{file}", "{locale}"})
	v.SetDefault("recognition.openai.base_url", "")
	v.SetDefault("recognition.openai.api_key", "")
	v.SetDefault("recognition.openai.model", "whisper-1")
	v.SetDefault("recognition.cache.enabled", false)
	v.SetDefault("recognition.cache.ttl", "24h")

	v.SetDefault("redis.url", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 0)

	v.SetDefault("observability.service_name", "speechd")
	v.SetDefault("observability.enable_otlp", false)
	v.SetDefault("observability.enable_metrics", true)
	v.SetDefault("observability.otlp_endpoint", "localhost:4317")

	v.SetDefault("health.check_interval", "60s")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
}

func normalizeStringSlice(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, value := range values {
		trimmed := strings.ToLower(strings.TrimSpace(value))
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}
		out = append(out, trimmed)
	}
	return out
}

func normalizeVoiceMap(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for name, voice := range in {
		name = strings.ToLower(strings.TrimSpace(name))
		voice = strings.TrimSpace(voice)
		if name == "" || voice == "" {
			continue
		}
		out[name] = voice
	}
	return out
}

func timeStringToDurationHook() mapstructure.DecodeHookFunc {
	return func(from reflect.Type, to reflect.Type, data interface{}) (interface{}, error) {
		if to != reflect.TypeOf(time.Duration(0)) {
			return data, nil
		}

		switch v := data.(type) {
		case time.Duration:
			return v, nil
		case string:
			d, err := time.ParseDuration(v)
			if err != nil {
				return nil, err
			}
			return d, nil
		default:
			return nil, fmt.Errorf("cannot decode %T into time.Duration", data)
		}
	}
}
