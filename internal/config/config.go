package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	configName     = "config"
	configType     = "toml"
	configDirName  = ".gchat"
	configFileName = "config.toml"
	configFileMode = 0o600
	configDirMode  = 0o700

	defaultServerURL           = "http://localhost:8000"
	defaultPollIntervalSeconds = 7
)

// Config holds the client settings. Every field can come from the
// config file or from a GCHAT_* environment variable.
type Config struct {
	ServerURL           string `mapstructure:"server_url" toml:"server_url"`
	PollIntervalSeconds int    `mapstructure:"poll_interval_seconds" toml:"poll_interval_seconds"`
	CredentialsDir      string `mapstructure:"credentials_dir" toml:"credentials_dir"`
	LogFile             string `mapstructure:"log_file" toml:"log_file"`
}

func (c Config) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSeconds) * time.Second
}

// Load reads ~/.gchat/config.toml, falling back to defaults and
// writing the default file on first run so users have something to
// edit. Environment variables override the file.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, configDirName)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(configDir)

	cfg.SetDefault("server_url", defaultServerURL)
	cfg.SetDefault("poll_interval_seconds", defaultPollIntervalSeconds)
	cfg.SetDefault("credentials_dir", filepath.Join(configDir, "credentials"))
	cfg.SetDefault("log_file", filepath.Join(configDir, "gchat.log"))

	_ = cfg.BindEnv("server_url", "GCHAT_SERVER_URL")
	_ = cfg.BindEnv("poll_interval_seconds", "GCHAT_POLL_INTERVAL_SECONDS")
	_ = cfg.BindEnv("credentials_dir", "GCHAT_CREDENTIALS_DIR")
	_ = cfg.BindEnv("log_file", "GCHAT_LOG_FILE")

	firstRun := false
	if err := cfg.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		firstRun = true
	}

	var loaded Config
	if err := cfg.Unmarshal(&loaded); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if loaded.ServerURL == "" {
		return Config{}, errors.New("server url is empty")
	}
	if loaded.PollIntervalSeconds <= 0 {
		return Config{}, fmt.Errorf("poll interval must be positive, got %d", loaded.PollIntervalSeconds)
	}

	if firstRun {
		if err := writeDefaultFile(configDir, loaded); err != nil {
			// Config is usable from defaults; a read-only home just
			// means no file gets seeded.
			return loaded, nil
		}
	}

	return loaded, nil
}

func writeDefaultFile(configDir string, cfg Config) error {
	if err := os.MkdirAll(configDir, configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	path := filepath.Join(configDir, configFileName)
	if err := os.WriteFile(path, encoded, configFileMode); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}
