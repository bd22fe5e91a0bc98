package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "GREENLEAF"

// Options tunes where Load looks for settings.
type Options struct {
	// ConfigFile is an optional YAML/JSON/TOML file. When empty, Load looks
	// for config.yaml in the working directory.
	ConfigFile string

	// EnvFile is an optional dotenv file loaded before reading the
	// environment. Variables already set are not overwritten.
	EnvFile string
}

// keys lists every setting so environment variables bind even for keys
// without a default.
var keys = []string{
	"server.port",
	"server.log_level",
	"server.shutdown_timeout_seconds",
	"server.allowed_origins",
	"server.requests_per_minute",
	"server.auth_requests_per_minute",
	"database.url",
	"database.max_open_conns",
	"database.max_idle_conns",
	"auth.jwt_secret",
	"auth.bcrypt_cost",
	"auth.token_lifetime_minutes",
	"auth.refresh_token_lifetime_minutes",
	"auth.totp_issuer",
	"streak.day_boundary",
	"scheduler.enabled",
	"scheduler.streak_refresh_at",
	"worker.count",
	"worker.queue_size",
	"worker.task_timeout_seconds",
	"import.max_rows",
	"import.max_upload_bytes",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	v.SetDefault("server.shutdown_timeout_seconds", 10)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("server.requests_per_minute", 300)
	v.SetDefault("server.auth_requests_per_minute", 20)
	v.SetDefault("database.max_open_conns", 10)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.token_lifetime_minutes", 60)
	v.SetDefault("auth.refresh_token_lifetime_minutes", 10080)
	v.SetDefault("auth.totp_issuer", "Greenleaf")
	v.SetDefault("streak.day_boundary", DayBoundaryUTC)
	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.streak_refresh_at", "00:05")
	v.SetDefault("worker.count", 2)
	v.SetDefault("worker.queue_size", 256)
	v.SetDefault("worker.task_timeout_seconds", 30)
	v.SetDefault("import.max_rows", 5000)
	v.SetDefault("import.max_upload_bytes", 5<<20)
}

// Load reads configuration with the default options.
func Load() (*Config, error) {
	return LoadWithOptions(Options{EnvFile: ".env"})
}

// LoadWithOptions reads configuration from defaults, then the config file,
// then the dotenv file and environment. Later sources win.
func LoadWithOptions(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("error loading env file: %w", err)
		}
	}

	v := viper.New()
	setDefaults(v)

	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !(opts.ConfigFile == "" && errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("error binding env for %s: %w", key, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
