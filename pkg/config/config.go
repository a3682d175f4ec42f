package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App           AppConfig
	DB            DBConfig
	Redis         RedisConfig
	Admin         AdminConfig
	JWT           JWTConfig
	Password      PasswordConfig
	AuthRateLimit AuthRateLimitConfig
	Stripe        StripeConfig
	Email         EmailConfig
	GCP           GCPConfig
	GCS           GCSConfig
	Site          SiteConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"DST_APP_ENV" required:"true"`
	Port         string `envconfig:"DST_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"DST_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"DST_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"DST_DB_DSN" required:"true"`
	Driver string `envconfig:"DST_DB_DRIVER" default:"postgres"`

	MaxOpenConns    int           `envconfig:"DST_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"DST_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"DST_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"DST_DB_CONN_MAX_IDLE_TIME" default:"10m"`

	AutoMigrate bool `envconfig:"DST_DB_AUTO_MIGRATE" default:"false"`
}

type RedisConfig struct {
	URL          string        `envconfig:"DST_REDIS_URL"`
	Address      string        `envconfig:"DST_REDIS_ADDR"`
	Password     string        `envconfig:"DST_REDIS_PASSWORD"`
	DB           int           `envconfig:"DST_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"DST_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"DST_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"DST_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"DST_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"DST_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// AdminConfig holds the shared secret that gates the blog and gallery
// dashboards. Session tokens are signed with the same value.
type AdminConfig struct {
	SecurityCode string        `envconfig:"DST_ADMIN_SECURITY_CODE"`
	SessionTTL   time.Duration `envconfig:"DST_ADMIN_SESSION_TTL" default:"24h"`
	CookieSecure bool          `envconfig:"DST_ADMIN_COOKIE_SECURE" default:"true"`
}

type JWTConfig struct {
	Secret            string `envconfig:"DST_JWT_SECRET"`
	Issuer            string `envconfig:"DST_JWT_ISSUER" default:"soccertraining"`
	ExpirationMinutes int    `envconfig:"DST_JWT_EXPIRATION_MINUTES" default:"1440"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"DST_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"DST_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"DST_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"DST_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"DST_ARGON_KEY_LEN" default:"32"`
}

type AuthRateLimitConfig struct {
	LoginWindow     time.Duration `envconfig:"DST_AUTH_RATE_LIMIT_LOGIN_WINDOW" default:"1m"`
	LoginEmailLimit int           `envconfig:"DST_AUTH_RATE_LIMIT_LOGIN_EMAIL_LIMIT" default:"5"`
	LoginIPLimit    int           `envconfig:"DST_AUTH_RATE_LIMIT_LOGIN_IP_LIMIT" default:"20"`
}

type StripeConfig struct {
	APIKey        string        `envconfig:"DST_STRIPE_API_KEY"`
	WebhookSecret string        `envconfig:"DST_STRIPE_WEBHOOK_SECRET"`
	Env           string        `envconfig:"DST_STRIPE_ENV" default:"test"`
	EventTTL      time.Duration `envconfig:"DST_STRIPE_EVENT_TTL" default:"72h"`
}

// Environment returns the normalized Stripe environment (test/live).
func (s StripeConfig) Environment() string {
	env := strings.TrimSpace(strings.ToLower(s.Env))
	if env == "" {
		return "test"
	}
	return env
}

type EmailConfig struct {
	ResendAPIKey string `envconfig:"DST_RESEND_API_KEY"`
	FromAddress  string `envconfig:"DST_EMAIL_FROM"`
	OwnerAddress string `envconfig:"DST_EMAIL_OWNER"`
	ContactTo    string `envconfig:"DST_EMAIL_CONTACT_TO"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"DST_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"DST_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"DST_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName  string `envconfig:"DST_GCS_BUCKET_NAME"`
	MaxUploadMB int    `envconfig:"DST_GCS_MAX_UPLOAD_MB" default:"20"`
}

type SiteConfig struct {
	BaseURL  string `envconfig:"DST_SITE_BASE_URL" default:"http://localhost:3000"`
	TimeZone string `envconfig:"DST_SITE_TIME_ZONE" default:"America/Phoenix"`
}
