package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Media       MediaConfig       `yaml:"media"`
	Transcriber TranscriberConfig `yaml:"transcriber"`
	Generator   GeneratorConfig   `yaml:"generator"`
	Paths       PathsConfig       `yaml:"paths"`
	Logging     LoggingConfig     `yaml:"logging"`
	Performance PerformanceConfig `yaml:"performance"`
	Server      ServerConfig      `yaml:"server"`
}

type MediaConfig struct {
	FFmpegPath      string `yaml:"ffmpeg_path"`
	FFprobePath     string `yaml:"ffprobe_path"`
	DurationMinutes int    `yaml:"duration_minutes"`
	SampleRate      int    `yaml:"sample_rate"`
}

type TranscriberConfig struct {
	Model   string `yaml:"model"`
	Retries int    `yaml:"retries"`
}

type GeneratorConfig struct {
	Backend      string           `yaml:"backend"` // openai | gemini | local
	Model        string           `yaml:"model"`
	MaxNewTokens int              `yaml:"max_new_tokens"`
	Local        LocalModelConfig `yaml:"local"`
}

type LocalModelConfig struct {
	BinaryPath  string `yaml:"binary_path"`
	ModelPath   string `yaml:"model_path"`
	ModelRepo   string `yaml:"model_repo"`
	RegistryCLI string `yaml:"registry_cli"`
}

type PathsConfig struct {
	Input  string `yaml:"input"`
	Output string `yaml:"output"`
	Temp   string `yaml:"temp"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type PerformanceConfig struct {
	MaxConcurrent int `yaml:"max_concurrent"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Load reads and validates a YAML config file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.Generator.Backend {
	case "", "openai", "gemini", "local":
	default:
		return fmt.Errorf("generator.backend must be openai, gemini, or local")
	}
	if c.Generator.Backend == "local" {
		if c.Generator.Local.BinaryPath == "" {
			return fmt.Errorf("generator.local.binary_path is required for the local backend")
		}
		if c.Generator.Local.ModelPath == "" {
			return fmt.Errorf("generator.local.model_path is required for the local backend")
		}
	}
	if c.Media.DurationMinutes < 0 {
		return fmt.Errorf("media.duration_minutes must not be negative")
	}
	if c.Generator.MaxNewTokens < 0 {
		return fmt.Errorf("generator.max_new_tokens must not be negative")
	}

	if c.Media.FFmpegPath == "" {
		c.Media.FFmpegPath = "ffmpeg"
	}
	if c.Media.FFprobePath == "" {
		c.Media.FFprobePath = "ffprobe"
	}
	if c.Media.DurationMinutes == 0 {
		c.Media.DurationMinutes = 20
	}
	if c.Media.SampleRate == 0 {
		c.Media.SampleRate = 16000
	}
	if c.Transcriber.Model == "" {
		c.Transcriber.Model = "whisper-1"
	}
	if c.Generator.Backend == "" {
		c.Generator.Backend = "openai"
	}
	if c.Generator.Model == "" {
		c.Generator.Model = defaultModel(c.Generator.Backend)
	}
	if c.Generator.MaxNewTokens == 0 {
		c.Generator.MaxNewTokens = 2000
	}
	if c.Generator.Local.RegistryCLI == "" {
		c.Generator.Local.RegistryCLI = "huggingface-cli"
	}
	if c.Paths.Input == "" {
		c.Paths.Input = "data/input"
	}
	if c.Paths.Output == "" {
		c.Paths.Output = "data/output"
	}
	if c.Paths.Temp == "" {
		c.Paths.Temp = "data/temp"
	}
	if c.Performance.MaxConcurrent == 0 {
		c.Performance.MaxConcurrent = 2
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}

	return nil
}

// MaxDurationSeconds returns the audio extraction cap in seconds.
func (c *Config) MaxDurationSeconds() int {
	return c.Media.DurationMinutes * 60
}

func defaultModel(backend string) string {
	switch backend {
	case "gemini":
		return "gemini-2.5-flash"
	case "local":
		return ""
	default:
		return "gpt-4o"
	}
}
