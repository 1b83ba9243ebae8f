package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	Webhook      WebhookConfig
	FeatureFlags FeatureFlagsConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"BOOSTHQ_APP_ENV" required:"true"`
	Port         string `envconfig:"BOOSTHQ_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"BOOSTHQ_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"BOOSTHQ_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"BOOSTHQ_DB_DSN"`

	Host     string `envconfig:"BOOSTHQ_DB_HOST"`
	Port     int    `envconfig:"BOOSTHQ_DB_PORT" default:"5432"`
	User     string `envconfig:"BOOSTHQ_DB_USER"`
	Password string `envconfig:"BOOSTHQ_DB_PASSWORD"`
	Name     string `envconfig:"BOOSTHQ_DB_NAME"`
	SSLMode  string `envconfig:"BOOSTHQ_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"BOOSTHQ_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"BOOSTHQ_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"BOOSTHQ_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"BOOSTHQ_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

func (d *DBConfig) ensureDSN() error {
	if d.DSN != "" {
		return nil
	}
	if d.Host == "" || d.User == "" || d.Name == "" {
		return fmt.Errorf("either BOOSTHQ_DB_DSN or host/user/name parts are required")
	}
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	d.DSN = u.String()
	return nil
}

type RedisConfig struct {
	URL          string        `envconfig:"BOOSTHQ_REDIS_URL"`
	Address      string        `envconfig:"BOOSTHQ_REDIS_ADDR"`
	Password     string        `envconfig:"BOOSTHQ_REDIS_PASSWORD"`
	DB           int           `envconfig:"BOOSTHQ_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"BOOSTHQ_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"BOOSTHQ_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"BOOSTHQ_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"BOOSTHQ_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"BOOSTHQ_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"BOOSTHQ_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"BOOSTHQ_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"BOOSTHQ_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"BOOSTHQ_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"BOOSTHQ_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"BOOSTHQ_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"BOOSTHQ_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"BOOSTHQ_ARGON_KEY_LEN" default:"32"`
}

type WebhookConfig struct {
	// Shared secret the stock reporter bot must present. Empty disables the check.
	FruitSecret string        `envconfig:"BOOSTHQ_WEBHOOK_FRUIT_SECRET"`
	DedupeTTL   time.Duration `envconfig:"BOOSTHQ_WEBHOOK_DEDUPE_TTL" default:"10m"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"BOOSTHQ_AUTO_MIGRATE" default:"false"`
}
