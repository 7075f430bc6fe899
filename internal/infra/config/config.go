package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type AppConfig struct {
	App      AppSettings      `mapstructure:"app"`
	Postgres PostgresSettings `mapstructure:"postgres"`
	Redis    RedisSettings    `mapstructure:"redis"`
	Session  SessionSettings  `mapstructure:"session"`
}

type AppSettings struct {
	Name string `mapstructure:"name"`
	Env  string `mapstructure:"env"`
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type PostgresSettings struct {
	Host              string        `mapstructure:"host"`
	Port              int           `mapstructure:"port"`
	User              string        `mapstructure:"user"`
	Password          string        `mapstructure:"password"`
	Database          string        `mapstructure:"database"`
	SSLMode           string        `mapstructure:"ssl_mode"`
	MaxConns          int32         `mapstructure:"max_conns"`
	MinConns          int32         `mapstructure:"min_conns"`
	MaxConnLifetime   time.Duration `mapstructure:"max_conn_lifetime"`
	MaxConnIdleTime   time.Duration `mapstructure:"max_conn_idle_time"`
	HealthCheckPeriod time.Duration `mapstructure:"health_check_period"`
}

// RedisSettings configures the denylist backend.
type RedisSettings struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	DB             int    `mapstructure:"db"`
	Password       string `mapstructure:"password"`
	TLSEnabled     bool   `mapstructure:"tls_enabled"`
	DenylistPrefix string `mapstructure:"denylist_prefix"`
}

// SessionSettings configures credential issuance and verification.
type SessionSettings struct {
	// Secret signs every credential. Must be at least 32 bytes.
	Secret string `mapstructure:"secret"`
	// CookieName carries the credential for browser navigation.
	CookieName string `mapstructure:"cookie_name"`
	// TTL is the credential lifetime without "remember me".
	TTL time.Duration `mapstructure:"ttl"`
	// RememberMeTTL is the extended lifetime for remembered sessions.
	RememberMeTTL time.Duration `mapstructure:"remember_me_ttl"`
	// ClockSkew is the tolerance applied when checking expiry.
	ClockSkew time.Duration `mapstructure:"clock_skew"`
	// CookieSecure toggles the Secure attribute on the session cookie.
	CookieSecure bool `mapstructure:"cookie_secure"`
}

const minSessionSecretLength = 32

func Load() (*AppConfig, error) {
	v := viper.New()

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetEnvPrefix("RAILWAY")

	setDefaults(v)

	if err := bindEnvs(v, []string{
		"app.name",
		"app.env",
		"app.host",
		"app.port",
		"postgres.host",
		"postgres.port",
		"postgres.user",
		"postgres.password",
		"postgres.database",
		"postgres.ssl_mode",
		"postgres.max_conns",
		"postgres.min_conns",
		"postgres.max_conn_lifetime",
		"postgres.max_conn_idle_time",
		"postgres.health_check_period",
		"redis.host",
		"redis.port",
		"redis.db",
		"redis.password",
		"redis.tls_enabled",
		"redis.denylist_prefix",
		"session.secret",
		"session.cookie_name",
		"session.ttl",
		"session.remember_me_ttl",
		"session.clock_skew",
		"session.cookie_secure",
	}); err != nil {
		return nil, err
	}

	v.AutomaticEnv()

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate enforces startup invariants. A short signing secret is a hard
// failure, never a warning.
func (c *AppConfig) Validate() error {
	if len(c.Session.Secret) < minSessionSecretLength {
		return fmt.Errorf("session.secret must be at least %d bytes", minSessionSecretLength)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive")
	}
	if c.Session.RememberMeTTL < c.Session.TTL {
		return fmt.Errorf("session.remember_me_ttl must not be shorter than session.ttl")
	}
	if c.Session.CookieName == "" {
		return fmt.Errorf("session.cookie_name is required")
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "railway-registry")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.host", "0.0.0.0")
	v.SetDefault("app.port", 8080)

	v.SetDefault("postgres.host", "localhost")
	v.SetDefault("postgres.port", 5432)
	v.SetDefault("postgres.user", "railway")
	v.SetDefault("postgres.password", "railway_password")
	v.SetDefault("postgres.database", "railway")
	v.SetDefault("postgres.ssl_mode", "disable")
	v.SetDefault("postgres.max_conns", 10)
	v.SetDefault("postgres.min_conns", 2)
	v.SetDefault("postgres.max_conn_lifetime", "60m")
	v.SetDefault("postgres.max_conn_idle_time", "15m")
	v.SetDefault("postgres.health_check_period", "30s")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.tls_enabled", false)
	v.SetDefault("redis.denylist_prefix", "railway:revoked")

	v.SetDefault("session.cookie_name", "session")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.remember_me_ttl", "720h")
	v.SetDefault("session.clock_skew", "60s")
	v.SetDefault("session.cookie_secure", false)
}

func bindEnvs(v *viper.Viper, keys []string) error {
	for _, key := range keys {
		envKey := strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, "RAILWAY_"+envKey, envKey); err != nil {
			return fmt.Errorf("bind env for %s: %w", key, err)
		}
	}
	return nil
}
