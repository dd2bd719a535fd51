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
	Cart         CartConfig
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Storefront   StorefrontConfig
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

// LoadStorefront reads only the shopper-side cart client settings.
func LoadStorefront() (*StorefrontConfig, error) {
	var cfg StorefrontConfig
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing storefront config: %w", err)
	}
	if _, err := url.ParseRequestURI(cfg.APIBaseURL); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", EnvStorefrontAPIBaseURL, err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"QUADRAMALL_APP_ENV" required:"true"`
	Port         string `envconfig:"QUADRAMALL_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"QUADRAMALL_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"QUADRAMALL_LOG_WARN_STACK" default:"false"`

	CORSAllowedOrigins []string `envconfig:"QUADRAMALL_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd) || strings.EqualFold(a.Env, "production")
}

type DBConfig struct {
	DSN    string `envconfig:"QUADRAMALL_DB_DSN"`
	Driver string `envconfig:"QUADRAMALL_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"QUADRAMALL_DB_HOST"`
	LegacyPort     int    `envconfig:"QUADRAMALL_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"QUADRAMALL_DB_USER"`
	LegacyPassword string `envconfig:"QUADRAMALL_DB_PASSWORD"`
	LegacyName     string `envconfig:"QUADRAMALL_DB_NAME"`
	LegacySSLMode  string `envconfig:"QUADRAMALL_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"QUADRAMALL_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"QUADRAMALL_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"QUADRAMALL_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"QUADRAMALL_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"QUADRAMALL_REDIS_URL"`
	Address      string        `envconfig:"QUADRAMALL_REDIS_ADDR"`
	Password     string        `envconfig:"QUADRAMALL_REDIS_PASSWORD"`
	DB           int           `envconfig:"QUADRAMALL_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"QUADRAMALL_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"QUADRAMALL_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"QUADRAMALL_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"QUADRAMALL_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"QUADRAMALL_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"QUADRAMALL_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"QUADRAMALL_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"QUADRAMALL_JWT_EXPIRATION_MINUTES" default:"60"`
}

// CartConfig tunes cart caching and per-item mutation coordination.
type CartConfig struct {
	ViewCacheTTL   time.Duration `envconfig:"QUADRAMALL_CART_VIEW_CACHE_TTL" default:"5m"`
	ItemLockTTL    time.Duration `envconfig:"QUADRAMALL_CART_ITEM_LOCK_TTL" default:"10s"`
	IdempotencyTTL time.Duration `envconfig:"QUADRAMALL_CART_IDEMPOTENCY_TTL" default:"24h"`
	EventDedupeTTL time.Duration `envconfig:"QUADRAMALL_CART_EVENT_DEDUPE_TTL" default:"72h"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"QUADRAMALL_AUTO_MIGRATE" default:"false"`
	CartCache   bool `envconfig:"QUADRAMALL_FEATURE_CART_CACHE" default:"true"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"QUADRAMALL_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	CatalogTopic        string `envconfig:"QUADRAMALL_PUBSUB_CATALOG_TOPIC" default:"qm-catalog-events"`
	CatalogSubscription string `envconfig:"QUADRAMALL_PUBSUB_CATALOG_SUBSCRIPTION" default:"qm-catalog-events-cart"`
}

// StorefrontConfig configures the shopper-side cart client.
type StorefrontConfig struct {
	APIBaseURL     string        `envconfig:"QUADRAMALL_STOREFRONT_API_BASE_URL" default:"http://localhost:8080"`
	RequestTimeout time.Duration `envconfig:"QUADRAMALL_STOREFRONT_REQUEST_TIMEOUT" default:"10s"`
	DeleteFanOut   int           `envconfig:"QUADRAMALL_STOREFRONT_DELETE_FAN_OUT" default:"4"`
}

func (db *DBConfig) ensureDSN() error {
	if db.DSN != "" {
		return nil
	}

	missing := []string{}
	legacyValues := map[string]string{
		EnvDBHost: db.LegacyHost,
		EnvDBUser: db.LegacyUser,
		EnvDBName: db.LegacyName,
	}
	for _, env := range legacyDBEnvVars {
		if legacyValues[env] == "" {
			missing = append(missing, env)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("either %s or %s are required", EnvDBDSN, strings.Join(missing, ", "))
	}

	userInfo := url.User(db.LegacyUser)
	if db.LegacyPassword != "" {
		userInfo = url.UserPassword(db.LegacyUser, db.LegacyPassword)
	}

	u := &url.URL{
		Scheme: "postgres",
		User:   userInfo,
		Host:   fmt.Sprintf("%s:%d", db.LegacyHost, db.LegacyPort),
		Path:   db.LegacyName,
	}

	if db.LegacySSLMode != "" {
		q := u.Query()
		q.Set("sslmode", db.LegacySSLMode)
		u.RawQuery = q.Encode()
	}

	db.DSN = u.String()
	return nil
}
