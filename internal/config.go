package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

type Config struct {
	Target         string `mapstructure:"target"`
	LogFile        string `mapstructure:"log_file"`
	UseExifTool    bool   `mapstructure:"use_exiftool"`
	SerialStrategy string `mapstructure:"serial_strategy"`
	DeleteSource   bool   `mapstructure:"delete_source"`
}

// DefaultPictureRoot is the library root used when neither the config file nor
// the command line names a target.
func DefaultPictureRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return filepath.Join(home, "Pictures")
}

// LoadConfig reads picsort.toml from the user config dir. A missing file is
// fine; defaults and PICSORT_* environment variables still apply.
func LoadConfig() (*Config, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to find user config dir: %w", err)
	}
	return loadConfigFrom(filepath.Join(configDir, "picsort"))
}

func loadConfigFrom(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("picsort")
	v.SetConfigType("toml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("picsort")
	v.AutomaticEnv()

	v.SetDefault("target", DefaultPictureRoot())
	v.SetDefault("log_file", "")
	v.SetDefault("use_exiftool", false)
	v.SetDefault("serial_strategy", SerialStrategyOffset)
	v.SetDefault("delete_source", false)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	switch cfg.SerialStrategy {
	case SerialStrategyOffset, SerialStrategyPattern:
	default:
		return nil, fmt.Errorf("unknown serial_strategy %q (want %q or %q)",
			cfg.SerialStrategy, SerialStrategyOffset, SerialStrategyPattern)
	}

	return &cfg, nil
}
