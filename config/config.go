package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds the console configuration.
type Config struct {
	Library LibraryConfig
	Journal JournalConfig
	Logger  LoggerConfig
	Clock   ClockConfig
}

type LibraryConfig struct {
	Name     string
	SeedFile string // empty means the built-in community library
}

type JournalConfig struct {
	DSN string
}

type LoggerConfig struct {
	Level        string
	Mode         string
	Encoding     string
	ColorEnabled bool
}

type ClockConfig struct {
	FixedNow time.Time // zero means wall-clock time
}

const envPrefix = "CIRCULATION"

// Load reads configuration with viper. An explicit path must exist; otherwise
// config.yaml is searched in ./config and the working directory and may be absent.
// Environment variables such as CIRCULATION_JOURNAL_DSN override file values.
func Load(path string) (*Config, error) {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &Config{}
	cfg.Library.Name = v.GetString("library.name")
	cfg.Library.SeedFile = v.GetString("library.seed_file")
	cfg.Journal.DSN = v.GetString("journal.dsn")
	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Mode = v.GetString("logger.mode")
	cfg.Logger.Encoding = v.GetString("logger.encoding")
	cfg.Logger.ColorEnabled = v.GetBool("logger.color_enabled")

	if raw := strings.TrimSpace(v.GetString("clock.fixed_now")); raw != "" {
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("clock.fixed_now: %w", err)
		}
		cfg.Clock.FixedNow = t
	}

	if cfg.Journal.DSN == "" {
		return nil, errors.New("journal.dsn must not be empty")
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("library.name", "")
	v.SetDefault("library.seed_file", "")
	v.SetDefault("journal.dsn", "file:circulation?mode=memory&cache=shared")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.mode", "development")
	v.SetDefault("logger.encoding", "console")
	v.SetDefault("logger.color_enabled", true)
	v.SetDefault("clock.fixed_now", "")
}
