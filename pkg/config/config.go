package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "DETAILSHOP"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv       = "DETAILSHOP_APP_ENV"
	EnvPort         = "DETAILSHOP_APP_PORT"
	EnvDBDSN        = "DETAILSHOP_DB_DSN"
	EnvDBHost       = "DETAILSHOP_DB_HOST"
	EnvDBUser       = "DETAILSHOP_DB_USER"
	EnvDBName       = "DETAILSHOP_DB_NAME"
	EnvRedisURL     = "DETAILSHOP_REDIS_URL"
	EnvJWTSecret    = "DETAILSHOP_JWT_SECRET"
	EnvJWTIssuer    = "DETAILSHOP_JWT_ISSUER"
	EnvSessionTTL   = "DETAILSHOP_SESSION_TTL_MINUTES"
	EnvStripeAPIKey = "DETAILSHOP_STRIPE_API_KEY"
	EnvWhatsApp     = "DETAILSHOP_STORE_WHATSAPP_NUMBER"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}

type Config struct {
	App           AppConfig
	Service       ServiceConfig
	DB            DBConfig
	Redis         RedisConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	FeatureFlags  FeatureFlagsConfig
	CORS          CORSConfig
	Store         StoreConfig
	GCP           GCPConfig
	PubSub        PubSubConfig
	Stripe        StripeConfig
	Sendgrid      SendgridConfig
	Cron          CronConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.DB.ensureDSN(cfg.FeatureFlags.UseSQLite); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env           string `envconfig:"DETAILSHOP_APP_ENV" required:"true"`
	Port          string `envconfig:"DETAILSHOP_APP_PORT" required:"true"`
	LogLevel      string `envconfig:"DETAILSHOP_LOG_LEVEL" default:"info"`
	LogWarnStack  bool   `envconfig:"DETAILSHOP_LOG_WARN_STACK" default:"false"`
	LogFormat     string `envconfig:"DETAILSHOP_LOG_FORMAT" default:"json"`
	PublicBaseURL string `envconfig:"DETAILSHOP_PUBLIC_BASE_URL" default:"http://localhost:5173"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"DETAILSHOP_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"DETAILSHOP_DB_DSN"`
	Driver string `envconfig:"DETAILSHOP_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"DETAILSHOP_DB_HOST"`
	LegacyPort     int    `envconfig:"DETAILSHOP_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"DETAILSHOP_DB_USER"`
	LegacyPassword string `envconfig:"DETAILSHOP_DB_PASSWORD"`
	LegacyName     string `envconfig:"DETAILSHOP_DB_NAME"`
	LegacySSLMode  string `envconfig:"DETAILSHOP_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"DETAILSHOP_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DETAILSHOP_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DETAILSHOP_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DETAILSHOP_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DETAILSHOP_REDIS_URL" required:"true"`
	Address      string        `envconfig:"DETAILSHOP_REDIS_ADDR"`
	Password     string        `envconfig:"DETAILSHOP_REDIS_PASSWORD"`
	DB           int           `envconfig:"DETAILSHOP_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DETAILSHOP_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DETAILSHOP_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DETAILSHOP_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DETAILSHOP_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DETAILSHOP_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DETAILSHOP_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"DETAILSHOP_JWT_ISSUER" required:"true"`
	SessionTTLMinutes int    `envconfig:"DETAILSHOP_SESSION_TTL_MINUTES" default:"1440"`
	CookieName        string `envconfig:"DETAILSHOP_SESSION_COOKIE_NAME" default:"detailshop_session"`
	CookieSecure      bool   `envconfig:"DETAILSHOP_SESSION_COOKIE_SECURE" default:"false"`
}

// SessionTTL returns the lifetime of a login session.
func (j JWTConfig) SessionTTL() time.Duration {
	if j.SessionTTLMinutes <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(j.SessionTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ScryptN int `envconfig:"DETAILSHOP_SCRYPT_N" default:"16384"`
	ScryptR int `envconfig:"DETAILSHOP_SCRYPT_R" default:"8"`
	ScryptP int `envconfig:"DETAILSHOP_SCRYPT_P" default:"1"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"DETAILSHOP_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit    int           `envconfig:"DETAILSHOP_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit       int           `envconfig:"DETAILSHOP_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
	RegisterWindow     time.Duration `envconfig:"DETAILSHOP_AUTH_RATE_LIMIT_REGISTER_WINDOW" default:"5m"`
	RegisterEmailLimit int           `envconfig:"DETAILSHOP_AUTH_RATE_LIMIT_REGISTER_EMAIL_LIMIT" default:"3"`
	RegisterIPLimit    int           `envconfig:"DETAILSHOP_AUTH_RATE_LIMIT_REGISTER_IP_LIMIT" default:"20"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"DETAILSHOP_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"DETAILSHOP_AUTO_MIGRATE" default:"false"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"DETAILSHOP_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173"`
}

type StoreConfig struct {
	WhatsAppNumber string `envconfig:"DETAILSHOP_STORE_WHATSAPP_NUMBER"`
	Name           string `envconfig:"DETAILSHOP_STORE_NAME" default:"Detail Shop"`
}

type GCPConfig struct {
	ProjectID string `envconfig:"DETAILSHOP_GCP_PROJECT_ID"`
}

type PubSubConfig struct {
	NotificationTopic        string `envconfig:"DETAILSHOP_PUBSUB_NOTIFICATION_TOPIC"`
	NotificationSubscription string `envconfig:"DETAILSHOP_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

// Enabled reports whether notifications should travel through Pub/Sub.
func (p PubSubConfig) Enabled() bool {
	return strings.TrimSpace(p.NotificationTopic) != ""
}

type StripeConfig struct {
	APIKey     string `envconfig:"DETAILSHOP_STRIPE_API_KEY"`
	Secret     string `envconfig:"DETAILSHOP_STRIPE_SECRET"`
	Env        string `envconfig:"DETAILSHOP_STRIPE_ENV" default:"test"`
	Currency   string `envconfig:"DETAILSHOP_STRIPE_CURRENCY" default:"brl"`
	SuccessURL string `envconfig:"DETAILSHOP_STRIPE_SUCCESS_URL"`
	CancelURL  string `envconfig:"DETAILSHOP_STRIPE_CANCEL_URL"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

// Configured reports whether enough settings exist to talk to Stripe.
func (s StripeConfig) Configured() bool {
	return strings.TrimSpace(s.APIKey) != ""
}

type SendgridConfig struct {
	APIKey      string `envconfig:"DETAILSHOP_SENDGRID_API_KEY"`
	DefaultFrom string `envconfig:"DETAILSHOP_SENDGRID_FROM_EMAIL" default:"no-reply@detailshop.local"`
	FromName    string `envconfig:"DETAILSHOP_SENDGRID_FROM_NAME" default:"Detail Shop"`
}

type CronConfig struct {
	Interval        time.Duration `envconfig:"DETAILSHOP_CRON_INTERVAL" default:"15m"`
	StaleOrderAfter time.Duration `envconfig:"DETAILSHOP_CRON_STALE_ORDER_AFTER" default:"1h"`
	JobTimeout      time.Duration `envconfig:"DETAILSHOP_CRON_JOB_TIMEOUT" default:"5m"`
	LockTTL         time.Duration `envconfig:"DETAILSHOP_CRON_LOCK_TTL" default:"10m"`
}

func (db *DBConfig) ensureDSN(sqlite bool) error {
	if db.DSN != "" {
		return nil
	}
	if sqlite {
		db.DSN = "detailshop.db"
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
