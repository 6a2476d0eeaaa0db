package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/gotify/configor"
	"github.com/joho/godotenv"
)

const defaultConfigFile = "anamnesa.yml"

// Config stores runtime configuration for the interview client and the development backend.
type Config struct {
	Backend   BackendConfig
	Audio     AudioConfig
	Deepgram  DeepgramConfig
	Summary   SummaryConfig
	Log       LogConfig
	Telemetry TelemetryConfig
	DevServer DevServerConfig
}

type BackendConfig struct {
	BaseURL        string `default:"http://127.0.0.1:5000" env:"ANAMNESA_BACKEND_URL"`
	StartPath      string `default:"/api/interview/start" env:"ANAMNESA_START_PATH"`
	StepPath       string `default:"/api/interview/step" env:"ANAMNESA_STEP_PATH"`
	FinishPath     string `default:"/api/interview/finish" env:"ANAMNESA_FINISH_PATH"`
	TimeoutSeconds int    `default:"120" env:"ANAMNESA_BACKEND_TIMEOUT_SECONDS"`
}

type AudioConfig struct {
	RecorderCommand string `default:"ffmpeg" env:"ANAMNESA_FFMPEG_COMMAND"`
	InputFormat     string `default:"pulse" env:"ANAMNESA_AUDIO_INPUT_FORMAT"`
	InputDevice     string `default:"default" env:"ANAMNESA_AUDIO_INPUT_DEVICE"`
	SampleRate      int    `default:"48000" env:"ANAMNESA_SAMPLE_RATE"`
	Channels        int    `default:"1" env:"ANAMNESA_CHANNELS"`
	Bitrate         string `default:"32k" env:"ANAMNESA_AUDIO_BITRATE"`
	ChunkSize       int    `default:"4096" env:"ANAMNESA_AUDIO_CHUNK_SIZE"`
}

type DeepgramConfig struct {
	APIKey         string `default:"" env:"DEEPGRAM_API_KEY"`
	APIBaseURL     string `default:"https://api.deepgram.com/v1" env:"DEEPGRAM_API_BASE"`
	Model          string `default:"nova-2" env:"DEEPGRAM_MODEL"`
	Language       string `default:"id" env:"DEEPGRAM_LANGUAGE"`
	SmartFormat    *bool  `default:"true" env:"DEEPGRAM_SMART_FORMAT"`
	LivePreview    *bool  `default:"true" env:"ANAMNESA_LIVE_PREVIEW"`
	PreviewGraceMS int    `default:"1000" env:"ANAMNESA_PREVIEW_GRACE_MS"`
}

type SummaryConfig struct {
	LayoutPath string `default:"" env:"ANAMNESA_SUMMARY_LAYOUT"`
}

type LogConfig struct {
	Level  string `default:"info" env:"ANAMNESA_LOG_LEVEL"`
	Format string `default:"json" env:"ANAMNESA_LOG_FORMAT"`
}

type TelemetryConfig struct {
	OTLPEndpoint string  `default:"" env:"ANAMNESA_OTLP_ENDPOINT"`
	Insecure     *bool   `default:"true" env:"ANAMNESA_OTLP_INSECURE"`
	ServiceName  string  `default:"anamnesa" env:"ANAMNESA_SERVICE_NAME"`
	SampleRate   float64 `default:"1" env:"ANAMNESA_TRACE_SAMPLE_RATE"`
}

type DevServerConfig struct {
	ListenAddr        string `default:":5000" env:"ANAMNESA_DEVSERVER_ADDR"`
	QuestionnairePath string `default:"" env:"ANAMNESA_QUESTIONNAIRE"`
}

// Load resolves configuration from an optional .env file, an optional YAML
// file and environment variables, in increasing priority.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	var files []string
	path := strings.TrimSpace(os.Getenv("ANAMNESA_CONFIG_FILE"))
	if path == "" {
		path = defaultConfigFile
	}
	if _, err := os.Stat(path); err == nil {
		files = append(files, path)
	}

	cfg := Config{}
	if err := configor.New(&configor.Config{}).Load(&cfg, files...); err != nil {
		return Config{}, fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	c.Backend.BaseURL = strings.TrimSpace(c.Backend.BaseURL)
	if c.Backend.TimeoutSeconds <= 0 {
		c.Backend.TimeoutSeconds = 120
	}
	if c.Audio.SampleRate <= 0 {
		c.Audio.SampleRate = 48000
	}
	if c.Audio.Channels <= 0 {
		c.Audio.Channels = 1
	}
	if c.Audio.ChunkSize < 256 {
		c.Audio.ChunkSize = 4096
	}
	if c.Deepgram.PreviewGraceMS < 0 {
		c.Deepgram.PreviewGraceMS = 1000
	}
	c.Deepgram.APIKey = strings.TrimSpace(c.Deepgram.APIKey)
	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		c.Telemetry.SampleRate = 1
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
}

// BackendTimeout is the per-request deadline for interview API calls.
func (c Config) BackendTimeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSeconds) * time.Second
}

// PreviewEnabled reports whether recorded audio should be streamed for a live transcript.
func (c Config) PreviewEnabled() bool {
	return c.Deepgram.APIKey != "" && boolValue(c.Deepgram.LivePreview, true)
}

func (c Config) PreviewGrace() time.Duration {
	return time.Duration(c.Deepgram.PreviewGraceMS) * time.Millisecond
}

func (c Config) SmartFormat() bool {
	return boolValue(c.Deepgram.SmartFormat, true)
}

func (c Config) TelemetryInsecure() bool {
	return boolValue(c.Telemetry.Insecure, true)
}

func boolValue(value *bool, fallback bool) bool {
	if value == nil {
		return fallback
	}
	return *value
}
