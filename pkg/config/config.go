package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "TIENDA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvDBDSN  = "TIENDA_DB_DSN"
	EnvDBHost = "TIENDA_DB_HOST"
	EnvDBUser = "TIENDA_DB_USER"
	EnvDBName = "TIENDA_DB_NAME"
)

var partialDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App          AppConfig
	DB           DBConfig
	Redis        RedisConfig
	Auth         AuthConfig
	Storage      StorageConfig
	Panel        PanelConfig
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
	Env          string   `envconfig:"TIENDA_APP_ENV" required:"true"`
	Port         string   `envconfig:"TIENDA_APP_PORT" default:"8080"`
	LogLevel     string   `envconfig:"TIENDA_LOG_LEVEL" default:"info"`
	LogWarnStack bool     `envconfig:"TIENDA_LOG_WARN_STACK" default:"false"`
	CORSOrigins  []string `envconfig:"TIENDA_CORS_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN string `envconfig:"TIENDA_DB_DSN"`

	Host     string `envconfig:"TIENDA_DB_HOST"`
	Port     int    `envconfig:"TIENDA_DB_PORT" default:"5432"`
	User     string `envconfig:"TIENDA_DB_USER"`
	Password string `envconfig:"TIENDA_DB_PASSWORD"`
	Name     string `envconfig:"TIENDA_DB_NAME"`
	SSLMode  string `envconfig:"TIENDA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"TIENDA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"TIENDA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"TIENDA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"TIENDA_REDIS_URL"`
	Address      string        `envconfig:"TIENDA_REDIS_ADDR"`
	Password     string        `envconfig:"TIENDA_REDIS_PASSWORD"`
	DB           int           `envconfig:"TIENDA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"TIENDA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"TIENDA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"TIENDA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"TIENDA_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"TIENDA_REDIS_WRITE_TIMEOUT" default:"3s"`
}

// AuthConfig describes how access tokens minted by the hosted identity
// provider are verified. The secret is optional at boot so the panel listing
// endpoint can report a misconfiguration instead of the process refusing to start.
type AuthConfig struct {
	JWTSecret  string        `envconfig:"TIENDA_AUTH_JWT_SECRET"`
	Issuer     string        `envconfig:"TIENDA_AUTH_ISSUER"`
	Audience   string        `envconfig:"TIENDA_AUTH_AUDIENCE" default:"authenticated"`
	CookieName string        `envconfig:"TIENDA_AUTH_COOKIE_NAME" default:"sb-access-token"`
	Leeway     time.Duration `envconfig:"TIENDA_AUTH_LEEWAY" default:"30s"`
}

// Configured reports whether tokens can be verified at all.
func (a AuthConfig) Configured() bool {
	return strings.TrimSpace(a.JWTSecret) != ""
}

type StorageConfig struct {
	BucketURL       string        `envconfig:"TIENDA_STORAGE_BUCKET_URL" required:"true"`
	SignedURLExpiry time.Duration `envconfig:"TIENDA_STORAGE_SIGNED_URL_EXPIRY" default:"10m"`
	MaxUploadMB     int           `envconfig:"TIENDA_STORAGE_MAX_UPLOAD_MB" default:"10"`
}

// MaxUploadBytes returns the upload limit in bytes.
func (s StorageConfig) MaxUploadBytes() int64 {
	if s.MaxUploadMB <= 0 {
		return 0
	}
	return int64(s.MaxUploadMB) * 1024 * 1024
}

type PanelConfig struct {
	TransitionLockTTL     time.Duration `envconfig:"TIENDA_PANEL_TRANSITION_LOCK_TTL" default:"30s"`
	PublicRateLimitWindow time.Duration `envconfig:"TIENDA_PUBLIC_RATE_LIMIT_WINDOW" default:"1m"`
	PublicRateLimit       int           `envconfig:"TIENDA_PUBLIC_RATE_LIMIT" default:"120"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"TIENDA_AUTO_MIGRATE" default:"false"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	values := map[string]string{
		EnvDBHost: db.Host,
		EnvDBUser: db.User,
		EnvDBName: db.Name,
	}
	for _, env := range partialDBEnvVars {
		if values[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.User)
	if db.Password != "" {
		userInfo = url.UserPassword(db.User, db.Password)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.Host, db.Port),
		Path:   db.Name,
	}

	if db.SSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.SSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
