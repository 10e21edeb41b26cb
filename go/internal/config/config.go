package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when CONFIG_FILE is not set.
const DefaultPath = "config.yaml"

type Config struct {
	Server struct {
		Port            string        `yaml:"port"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`

	Game struct {
		MaxRounds    int           `yaml:"max_rounds"`
		AnswerPhase  time.Duration `yaml:"answer_phase"`
		TickInterval time.Duration `yaml:"tick_interval"`
	} `yaml:"game"`

	Prompts struct {
		File string `yaml:"file"`
	} `yaml:"prompts"`

	// NATS is optional; with an empty URL events go straight to local
	// WebSocket connections.
	NATS struct {
		URL           string `yaml:"url"`
		StreamName    string `yaml:"stream_name"`
		SubjectPrefix string `yaml:"subject_prefix"`
	} `yaml:"nats"`

	Log struct {
		Level  string `yaml:"level"`
		Pretty bool   `yaml:"pretty"`
	} `yaml:"log"`
}

// Default returns the built-in configuration.
func Default() *Config {
	var c Config
	c.Server.Port = "8080"
	c.Server.ShutdownTimeout = 10 * time.Second
	c.Game.MaxRounds = 5
	c.Game.AnswerPhase = 30 * time.Second
	c.Game.TickInterval = time.Second
	c.Prompts.File = "prompts.txt"
	c.NATS.StreamName = "BOTORNOT_EVENTS"
	c.NATS.SubjectPrefix = "botornot.events"
	c.Log.Level = "info"
	c.Log.Pretty = true
	return &c
}

// Load builds the configuration from defaults, the YAML file at path (if it
// exists) and environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			log.Debug().Str("path", path).Msg("no config file, using defaults")
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Game.MaxRounds = getEnvAsInt("MAX_ROUNDS", c.Game.MaxRounds)
	if secs := getEnvAsInt("ANSWER_PHASE_SECONDS", 0); secs > 0 {
		c.Game.AnswerPhase = time.Duration(secs) * time.Second
	}
	c.Prompts.File = getEnv("PROMPTS_FILE", c.Prompts.File)
	c.NATS.URL = getEnv("NATS_URL", c.NATS.URL)
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
}

func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return errors.New("server port is required")
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("shutdown_timeout must be positive, got %s", c.Server.ShutdownTimeout)
	}
	if c.Game.MaxRounds < 1 {
		return fmt.Errorf("max_rounds must be at least 1, got %d", c.Game.MaxRounds)
	}
	if c.Game.AnswerPhase <= 0 {
		return fmt.Errorf("answer_phase must be positive, got %s", c.Game.AnswerPhase)
	}
	if c.Game.TickInterval <= 0 {
		return fmt.Errorf("tick_interval must be positive, got %s", c.Game.TickInterval)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
		log.Warn().Str("key", key).Str("value", value).Msg("ignoring non-integer environment value")
	}
	return defaultValue
}
