package config

import (
	"time"
)

type DB struct {
	// Empty URL selects the in-memory store.
	Url             string        `envconfig:"URL"`
	MaxOpenConns    int           `envconfig:"MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"MAX_IDLE_CONNS" default:"25"`
	ConnMaxLifetime time.Duration `envconfig:"CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"AUTO_MIGRATE" default:"true"`
}

type Jwt struct {
	// Empty secret leaves the API unauthenticated.
	Secret string `envconfig:"SECRET"`
}

type Auth struct {
	Jwt *Jwt `envconfig:"JWT"`
}

type Redis struct {
	// Empty URL selects the in-memory cache.
	URL       string `envconfig:"URL"`
	KeyPrefix string `envconfig:"KEY_PREFIX" default:"accounts:"`
}

type Cache struct {
	TTL             time.Duration `envconfig:"TTL" default:"30s"`
	CleanupInterval time.Duration `envconfig:"CLEANUP_INTERVAL" default:"5m"`
}

type Lock struct {
	Wait      time.Duration `envconfig:"WAIT" default:"1s"`
	ProbeWait time.Duration `envconfig:"PROBE_WAIT" default:"1ms"`
}

type Account struct {
	NumberLength      int `envconfig:"NUMBER_LENGTH" default:"20"`
	MaxCreateAttempts int `envconfig:"MAX_CREATE_ATTEMPTS" default:"0"`
}

type RateLimit struct {
	MaxRequests int           `envconfig:"MAX_REQUESTS" default:"100"`
	Window      time.Duration `envconfig:"WINDOW" default:"1m"`
}

type Log struct {
	Level      int    `envconfig:"LEVEL" default:"0"`
	Format     string `envconfig:"FORMAT" default:"json"`
	TimeFormat string `envconfig:"TIME_FORMAT" default:"2006-01-02 15:04:05"`
	Prefix     string `envconfig:"PREFIX" default:"[accounts]"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"3000"`
}

type App struct {
	Env       string     `envconfig:"APP_ENV" default:"development"`
	Server    *Server    `envconfig:"SERVER"`
	Log       *Log       `envconfig:"LOG"`
	DB        *DB        `envconfig:"DATABASE"`
	Auth      *Auth      `envconfig:"AUTH"`
	Redis     *Redis     `envconfig:"REDIS"`
	Cache     *Cache     `envconfig:"CACHE"`
	Lock      *Lock      `envconfig:"LOCK"`
	Account   *Account   `envconfig:"ACCOUNT"`
	RateLimit *RateLimit `envconfig:"RATE_LIMIT"`
}
