package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	FeatureFlags  FeatureFlagsConfig
	Subscription  SubscriptionConfig
	Billing       BillingConfig
	AuthRateLimit AuthRateLimitConfig
	CORS          CORSConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
}

// Load reads the process environment once; the resulting value is treated as
// immutable for the lifetime of the process.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(); err != nil {
		return nil, err
	}
	if err := cfg.Subscription.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WAREHUB_APP_ENV" required:"true"`
	Port         string `envconfig:"WAREHUB_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WAREHUB_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WAREHUB_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"WAREHUB_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"WAREHUB_DB_DSN"`
	Driver string `envconfig:"WAREHUB_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"WAREHUB_DB_HOST"`
	LegacyPort     int    `envconfig:"WAREHUB_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"WAREHUB_DB_USER"`
	LegacyPassword string `envconfig:"WAREHUB_DB_PASSWORD"`
	LegacyName     string `envconfig:"WAREHUB_DB_NAME"`
	LegacySSLMode  string `envconfig:"WAREHUB_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"WAREHUB_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"WAREHUB_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"WAREHUB_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"WAREHUB_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"WAREHUB_REDIS_URL" required:"true"`
	Address      string        `envconfig:"WAREHUB_REDIS_ADDR"`
	Password     string        `envconfig:"WAREHUB_REDIS_PASSWORD"`
	DB           int           `envconfig:"WAREHUB_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"WAREHUB_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"WAREHUB_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"WAREHUB_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"WAREHUB_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"WAREHUB_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WAREHUB_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WAREHUB_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"WAREHUB_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WAREHUB_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WAREHUB_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WAREHUB_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WAREHUB_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WAREHUB_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"WAREHUB_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"WAREHUB_AUTO_MIGRATE" default:"false"`
}

// SubscriptionConfig carries the payment-due policy. The 31/32/33 day
// thresholds are the contract the auto-block loop enforces; they are
// configuration, never per-call literals.
type SubscriptionConfig struct {
	DueAfterDays   int           `envconfig:"WAREHUB_SUBSCRIPTION_DUE_AFTER_DAYS" default:"31"`
	WarnAtDays     int           `envconfig:"WAREHUB_SUBSCRIPTION_WARN_AT_DAYS" default:"32"`
	BlockAfterDays int           `envconfig:"WAREHUB_SUBSCRIPTION_BLOCK_AFTER_DAYS" default:"33"`
	MonthlyAmount  string        `envconfig:"WAREHUB_SUBSCRIPTION_MONTHLY_AMOUNT" default:"300000"`
	ScanInterval   time.Duration `envconfig:"WAREHUB_SUBSCRIPTION_SCAN_INTERVAL" default:"24h"`
}

func (s SubscriptionConfig) validate() error {
	if s.DueAfterDays <= 0 || s.WarnAtDays <= s.DueAfterDays || s.BlockAfterDays <= s.WarnAtDays {
		return fmt.Errorf("subscription thresholds must satisfy due < warn < block, got %d/%d/%d",
			s.DueAfterDays, s.WarnAtDays, s.BlockAfterDays)
	}
	if _, err := decimal.NewFromString(s.MonthlyAmount); err != nil {
		return fmt.Errorf("invalid subscription monthly amount %q: %w", s.MonthlyAmount, err)
	}
	return nil
}

// DefaultMonthlyAmount returns the configured monthly payment as a decimal.
func (s SubscriptionConfig) DefaultMonthlyAmount() decimal.Decimal {
	amount, err := decimal.NewFromString(s.MonthlyAmount)
	if err != nil {
		return decimal.Zero
	}
	return amount
}

type BillingConfig struct {
	Currency string `envconfig:"WAREHUB_BILLING_CURRENCY" default:"UZS"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"WAREHUB_AUTH_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit    int           `envconfig:"WAREHUB_AUTH_LOGIN_IP_LIMIT" default:"30"`
	LoginEmailLimit int           `envconfig:"WAREHUB_AUTH_LOGIN_EMAIL_LIMIT" default:"10"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"WAREHUB_CORS_ALLOWED_ORIGINS" default:"http://localhost:3000"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"WAREHUB_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"WAREHUB_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"WAREHUB_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"WAREHUB_PUBSUB_NOTIFICATION_TOPIC" default:"warehub-notification-events"`
	NotificationSubscription string `envconfig:"WAREHUB_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
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
