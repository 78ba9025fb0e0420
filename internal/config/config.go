// Package config defines the application configuration structure and loading.
// The Config struct is built once at process start and handed to each
// component's constructor; nothing in this codebase reads configuration
// ambiently.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"   validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth"     validate:"required"`
	Expiry   ExpiryConfig   `mapstructure:"expiry"   validate:"required"`
	Relay    RelayConfig    `mapstructure:"relay"    validate:"required"`
	Notify   NotifyConfig   `mapstructure:"notify"   validate:"required"`
	Job      JobConfig      `mapstructure:"job"      validate:"required"`
}

// ServerConfig contains all HTTP-server-related settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// AuthConfig contains token issuance and password hashing settings.
// Access and refresh tokens are signed with distinct secrets so that a
// leak of one does not compromise the other token class.
type AuthConfig struct {
	AccessSecret                string `mapstructure:"access_secret"                  validate:"required,min=32"`
	RefreshSecret               string `mapstructure:"refresh_secret"                 validate:"required,min=32,nefield=AccessSecret"`
	AccessTokenLifetimeMinutes  int    `mapstructure:"access_token_lifetime_minutes"  validate:"required,gt=0"`
	RefreshTokenLifetimeMinutes int    `mapstructure:"refresh_token_lifetime_minutes" validate:"required,gt=0"`
	BcryptCost                  int    `mapstructure:"bcrypt_cost"                    validate:"required,gte=10,lte=31"`
}

// ExpiryConfig controls the inactivity-based account expiry.
type ExpiryConfig struct {
	InactivityDays int `mapstructure:"inactivity_days" validate:"required,gt=0"`
}

// RelayConfig locates the push-delivery endpoint that relays deletion
// notifications to users.
type RelayConfig struct {
	Host string `mapstructure:"host" validate:"required"`
	Port int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
}

// NotifyConfig controls notification fan-out behavior.
type NotifyConfig struct {
	RatePerMinute int `mapstructure:"rate_per_minute" validate:"required,gt=0"`
}

// JobConfig configures the background job scheduler.
type JobConfig struct {
	WorkerCount         int `mapstructure:"worker_count"          validate:"required,gt=0"`
	QueueSize           int `mapstructure:"queue_size"            validate:"required,gt=0"`
	PollIntervalSeconds int `mapstructure:"poll_interval_seconds" validate:"required,gt=0"`
	StuckAgeMinutes     int `mapstructure:"stuck_age_minutes"     validate:"required,gt=0"`
}
