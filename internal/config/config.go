// Package config loads lektor settings from a YAML file and LEKTOR_*
// environment variables, with working defaults for everything.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/instytutkryptografii/lektor/internal/analyze"
	"github.com/instytutkryptografii/lektor/internal/auth"
	"github.com/instytutkryptografii/lektor/internal/transcribe"
	"github.com/instytutkryptografii/lektor/internal/utils"
	"github.com/spf13/viper"
)

// Config is the full application configuration.
type Config struct {
	OutputDir string        `mapstructure:"output_dir"`
	ChunkSize int64         `mapstructure:"chunk_size"`
	Timeout   time.Duration `mapstructure:"timeout"`
	Workers   int           `mapstructure:"workers"`
	Whisper   WhisperConfig `mapstructure:"whisper"`
	Analyze   AnalyzeConfig `mapstructure:"analyze"`
	Auth      auth.Config   `mapstructure:"auth"`
}

// WhisperConfig selects the transcription model and device.
type WhisperConfig struct {
	Model  string `mapstructure:"model"`
	Device string `mapstructure:"device"`
}

// AnalyzeConfig tunes the summarization stage.
type AnalyzeConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Model    string `mapstructure:"model"`
	MaxChars int    `mapstructure:"max_chars"`
	Overlap  int    `mapstructure:"overlap"`
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() Config {
	return Config{
		OutputDir: "dump",
		ChunkSize: utils.DefaultChunkSize,
		Timeout:   utils.DefaultRequestTimeout,
		Workers:   4,
		Whisper: WhisperConfig{
			Model:  transcribe.DefaultModel,
			Device: transcribe.DefaultDevice,
		},
		Analyze: AnalyzeConfig{
			Endpoint: analyze.DefaultEndpoint,
			Model:    analyze.DefaultModel,
			MaxChars: analyze.DefaultMaxChars,
			Overlap:  analyze.DefaultOverlap,
		},
		Auth: auth.Config{
			Method:     auth.MethodAWS,
			SecretName: auth.DefaultSecretName,
			Region:     auth.DefaultRegion,
		},
	}
}

// Load reads configuration from configPath when given, otherwise from
// lektor.yaml in the working directory or ~/.config/lektor. A missing file in
// the search path is fine; an explicitly named file must exist.
func Load(configPath string) (Config, error) {
	config := Default()

	v := viper.New()
	v.SetConfigType("yaml")
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("lektor")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/lektor")
	}

	v.SetEnvPrefix("LEKTOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only overrides keys viper already knows about, so seed
	// every key with its default before reading.
	v.SetDefault("output_dir", config.OutputDir)
	v.SetDefault("chunk_size", config.ChunkSize)
	v.SetDefault("timeout", config.Timeout)
	v.SetDefault("workers", config.Workers)
	v.SetDefault("whisper.model", config.Whisper.Model)
	v.SetDefault("whisper.device", config.Whisper.Device)
	v.SetDefault("analyze.endpoint", config.Analyze.Endpoint)
	v.SetDefault("analyze.model", config.Analyze.Model)
	v.SetDefault("analyze.max_chars", config.Analyze.MaxChars)
	v.SetDefault("analyze.overlap", config.Analyze.Overlap)
	v.SetDefault("auth.method", config.Auth.Method)
	v.SetDefault("auth.api_key", config.Auth.APIKey)
	v.SetDefault("auth.secret_name", config.Auth.SecretName)
	v.SetDefault("auth.region", config.Auth.Region)
	v.SetDefault("auth.profile", config.Auth.Profile)
	// The standard Anthropic variable works alongside the prefixed one.
	v.BindEnv("auth.api_key", "LEKTOR_AUTH_API_KEY", "ANTHROPIC_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return config, fmt.Errorf("error reading config file: %v", err)
		}
	}
	if err := v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("error parsing config: %v", err)
	}
	config.OutputDir = utils.ExpandPath(config.OutputDir)

	if err := validate(config); err != nil {
		return config, err
	}
	return config, nil
}

func validate(config Config) error {
	if config.OutputDir == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	if config.ChunkSize <= 0 {
		return fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", config.Workers)
	}
	if config.Analyze.Overlap >= config.Analyze.MaxChars {
		return fmt.Errorf("analyze overlap (%d) must be smaller than max chars (%d)", config.Analyze.Overlap, config.Analyze.MaxChars)
	}
	return nil
}
