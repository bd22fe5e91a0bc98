package config

// Day boundary modes for streak accounting.
const (
	// DayBoundaryUTC counts calendar days in UTC for every user.
	DayBoundaryUTC = "utc"
	// DayBoundaryUser counts calendar days in the timezone stored on the
	// user's profile.
	DayBoundaryUser = "user"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"    validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"  validate:"required"`
	Auth      AuthConfig      `mapstructure:"auth"      validate:"required"`
	Streak    StreakConfig    `mapstructure:"streak"    validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Worker    WorkerConfig    `mapstructure:"worker"    validate:"required"`
	Import    ImportConfig    `mapstructure:"import"    validate:"required"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`

	ShutdownTimeoutSeconds int `mapstructure:"shutdown_timeout_seconds" validate:"gte=1"`

	// AllowedOrigins feeds the CORS middleware. "*" allows any origin.
	AllowedOrigins []string `mapstructure:"allowed_origins"`

	// RequestsPerMinute limits every client IP; AuthRequestsPerMinute
	// applies on top of it to the public auth endpoints.
	RequestsPerMinute     int `mapstructure:"requests_per_minute"      validate:"gte=1"`
	AuthRequestsPerMinute int `mapstructure:"auth_requests_per_minute" validate:"gte=1"`
}

// DatabaseConfig contains connection settings for PostgreSQL.
type DatabaseConfig struct {
	URL          string `mapstructure:"url"            validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gte=1"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains authentication settings.
type AuthConfig struct {
	JWTSecret                   string `mapstructure:"jwt_secret"                     validate:"required,min=32"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"gte=4,lte=31"`
	TokenLifetimeMinutes        int    `mapstructure:"token_lifetime_minutes"         validate:"gt=0,lt=44640"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"gt=0,lt=525600,gtfield=TokenLifetimeMinutes"`
	TOTPIssuer                  string `mapstructure:"totp_issuer"                    validate:"required"`
}

// StreakConfig controls streak accounting.
type StreakConfig struct {
	DayBoundary string `mapstructure:"day_boundary" validate:"required,oneof=utc user"`
}

// SchedulerConfig controls background jobs.
type SchedulerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// StreakRefreshAt is the daily UTC time (HH:MM) at which cached streak
	// values are recomputed for every user.
	StreakRefreshAt string `mapstructure:"streak_refresh_at" validate:"omitempty,datetime=15:04"`
}

// WorkerConfig sizes the background task pool that runs event handlers.
type WorkerConfig struct {
	Count              int `mapstructure:"count"                validate:"gte=1,lte=64"`
	QueueSize          int `mapstructure:"queue_size"           validate:"gte=1"`
	TaskTimeoutSeconds int `mapstructure:"task_timeout_seconds" validate:"gte=1"`
}

// ImportConfig bounds deck imports.
type ImportConfig struct {
	MaxRows        int   `mapstructure:"max_rows"         validate:"gt=0"`
	MaxUploadBytes int64 `mapstructure:"max_upload_bytes" validate:"gt=0"`
}
