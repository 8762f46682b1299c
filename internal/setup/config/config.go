package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/knadh/koanf/parsers/toml/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

var (
	ErrConfigFileNotFound    = errors.New("could not find config file in any config path")
	ErrConfigVersionMissing  = errors.New("config file is missing version field")
	ErrConfigVersionMismatch = errors.New("config file version mismatch")
)

// CurrentVersion of the config file.
const CurrentVersion = 1

// Config represents the entire application configuration.
type Config struct {
	// Version of the config file.
	Version    int        `koanf:"version"`
	Debug      Debug      `koanf:"debug"`
	PostgreSQL PostgreSQL `koanf:"postgresql"`
	Redis      Redis      `koanf:"redis"`
	Bot        Bot        `koanf:"bot"`
	Leveling   Leveling   `koanf:"leveling"`
}

// Debug contains debug-related configuration.
type Debug struct {
	// Logging level (debug, info, warn, error).
	LogLevel string `koanf:"log_level"`
	// Directory for log files; empty disables file logging.
	LogDir string `koanf:"log_dir"`
}

// PostgreSQL contains database connection configuration.
type PostgreSQL struct {
	Host         string `koanf:"host"`
	Port         int    `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	DBName       string `koanf:"db_name"`
	MaxOpenConns int    `koanf:"max_open_conns"`
	MaxIdleConns int    `koanf:"max_idle_conns"`
	// Connection lifetime limits in minutes.
	MaxLifetime int `koanf:"max_lifetime"`
	MaxIdleTime int `koanf:"max_idle_time"`
}

// Redis contains Redis connection configuration.
type Redis struct {
	Host     string `koanf:"host"`
	Port     int    `koanf:"port"`
	Username string `koanf:"username"`
	Password string `koanf:"password"`
	// SharedCooldown moves the XP cooldown gate into Redis so multiple bot
	// processes cannot double-grant inside one window.
	SharedCooldown bool `koanf:"shared_cooldown"`
}

// Bot contains Discord bot configuration.
type Bot struct {
	// Discord bot token.
	Token string `koanf:"token"`
}

// Leveling contains the XP accrual parameters.
type Leveling struct {
	// Minimum XP granted per qualifying message.
	BaseXP int64 `koanf:"base_xp"`
	// Upper bound (exclusive) of the random XP bonus per message.
	JitterRange int64 `koanf:"jitter_range"`
	// Cooldown between grants in milliseconds.
	CooldownMs int `koanf:"cooldown_ms"`
	// Role sync timeout in milliseconds.
	SyncTimeoutMs int `koanf:"sync_timeout_ms"`
	// Leaderboard page size.
	PageSize int `koanf:"page_size"`
}

// LoadConfig loads the configuration from the first bot.toml found in the
// search paths and validates its version.
func LoadConfig() (*Config, string, error) {
	k := koanf.New(".")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, "", fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		".quasar",
		homeDir + "/.quasar/config",
		"/etc/quasar/config",
		"/app/config",
		"config",
		".",
	}

	var usedConfigPath string

	for _, path := range configPaths {
		configPath := fmt.Sprintf("%s/bot.toml", path)
		if err := k.Load(file.Provider(configPath), toml.Parser()); err == nil {
			usedConfigPath = path
			break
		}
	}

	if usedConfigPath == "" {
		return nil, "", fmt.Errorf("%w: bot.toml", ErrConfigFileNotFound)
	}

	if !k.Exists("version") {
		return nil, "", ErrConfigVersionMissing
	}

	if version := k.Int("version"); version != CurrentVersion {
		return nil, "", fmt.Errorf("%w: expected version %d, got %d",
			ErrConfigVersionMismatch, CurrentVersion, version)
	}

	var config Config
	if err := k.Unmarshal("", &config); err != nil {
		return nil, "", fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	return &config, usedConfigPath, nil
}

// applyDefaults fills in the leveling parameters left unset in the file.
func applyDefaults(config *Config) {
	if config.Leveling.BaseXP == 0 {
		config.Leveling.BaseXP = 15
	}

	if config.Leveling.JitterRange == 0 {
		config.Leveling.JitterRange = 5
	}

	if config.Leveling.CooldownMs == 0 {
		config.Leveling.CooldownMs = 60000
	}

	if config.Leveling.SyncTimeoutMs == 0 {
		config.Leveling.SyncTimeoutMs = 10000
	}

	if config.Leveling.PageSize == 0 {
		config.Leveling.PageSize = 10
	}
}
