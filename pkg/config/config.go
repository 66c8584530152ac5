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
	Service      ServiceConfig
	DB           DBConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Password     PasswordConfig
	FeatureFlags FeatureFlagsConfig
	Checkout     CheckoutConfig
	UPI          UPIConfig
	GCP          GCPConfig
	GCS          GCSConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Cron         CronConfig
	AuthRL       AuthRateLimitConfig
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
	Env          string `envconfig:"GREENBASKET_APP_ENV" required:"true"`
	Port         string `envconfig:"GREENBASKET_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"GREENBASKET_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"GREENBASKET_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"GREENBASKET_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN    string `envconfig:"GREENBASKET_DB_DSN"`
	Driver string `envconfig:"GREENBASKET_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"GREENBASKET_DB_HOST"`
	LegacyPort     int    `envconfig:"GREENBASKET_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"GREENBASKET_DB_USER"`
	LegacyPassword string `envconfig:"GREENBASKET_DB_PASSWORD"`
	LegacyName     string `envconfig:"GREENBASKET_DB_NAME"`
	LegacySSLMode  string `envconfig:"GREENBASKET_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"GREENBASKET_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"GREENBASKET_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"GREENBASKET_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"GREENBASKET_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"GREENBASKET_REDIS_URL" required:"true"`
	Address      string        `envconfig:"GREENBASKET_REDIS_ADDR"`
	Password     string        `envconfig:"GREENBASKET_REDIS_PASSWORD"`
	DB           int           `envconfig:"GREENBASKET_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"GREENBASKET_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"GREENBASKET_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"GREENBASKET_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"GREENBASKET_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"GREENBASKET_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret                 string `envconfig:"GREENBASKET_JWT_SECRET" required:"true"`
	Issuer                 string `envconfig:"GREENBASKET_JWT_ISSUER" required:"true"`
	ExpirationMinutes      int    `envconfig:"GREENBASKET_JWT_EXPIRATION_MINUTES" required:"true"`
	RefreshTokenTTLMinutes int    `envconfig:"GREENBASKET_REFRESH_TOKEN_TTL_MINUTES" default:"43200"`
}

// RefreshTokenTTL returns the refresh token TTL configured in minutes.
func (j JWTConfig) RefreshTokenTTL() time.Duration {
	if j.RefreshTokenTTLMinutes <= 0 {
		return 0
	}
	return time.Duration(j.RefreshTokenTTLMinutes) * time.Minute
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"GREENBASKET_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"GREENBASKET_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"GREENBASKET_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"GREENBASKET_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"GREENBASKET_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	UseSQLite   bool `envconfig:"GREENBASKET_USE_SQLITE" default:"false"`
	AutoMigrate bool `envconfig:"GREENBASKET_AUTO_MIGRATE" default:"false"`
}

// CheckoutConfig tunes order creation; the default agent capacity applies
// when an agent record predates the max_deliveries column.
type CheckoutConfig struct {
	DefaultAgentCapacity int `envconfig:"GREENBASKET_DEFAULT_AGENT_CAPACITY" default:"10"`
}

type UPIConfig struct {
	PayeeAddress string `envconfig:"GREENBASKET_UPI_PAYEE_ADDRESS"`
	PayeeName    string `envconfig:"GREENBASKET_UPI_PAYEE_NAME"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"GREENBASKET_GCP_PROJECT_ID"`
	CredentialsJSON        string `envconfig:"GREENBASKET_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"GREENBASKET_GOOGLE_APPLICATION_CREDENTIALS"`
}

type GCSConfig struct {
	BucketName        string        `envconfig:"GREENBASKET_GCS_BUCKET_NAME"`
	UploadURLExpiry   time.Duration `envconfig:"GREENBASKET_GCS_UPLOAD_URL_EXPIRY" default:"15m"`
	DownloadURLExpiry time.Duration `envconfig:"GREENBASKET_GCS_DOWNLOAD_URL_EXPIRY" default:"1h"`
}

type PubSubConfig struct {
	OrdersTopic              string `envconfig:"GREENBASKET_PUBSUB_ORDERS_TOPIC" default:"gb-order-events"`
	OrdersSubscription       string `envconfig:"GREENBASKET_PUBSUB_ORDERS_SUBSCRIPTION"`
	NotificationTopic        string `envconfig:"GREENBASKET_PUBSUB_NOTIFICATION_TOPIC" default:"gb-notification-events"`
	NotificationSubscription string `envconfig:"GREENBASKET_PUBSUB_NOTIFICATION_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int           `envconfig:"GREENBASKET_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int           `envconfig:"GREENBASKET_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int           `envconfig:"GREENBASKET_OUTBOX_MAX_ATTEMPTS" default:"10"`
	IdempotencyTTL time.Duration `envconfig:"GREENBASKET_OUTBOX_IDEMPOTENCY_TTL" default:"72h"`
}

type CronConfig struct {
	Interval time.Duration `envconfig:"GREENBASKET_CRON_INTERVAL" default:"5m"`
}

type AuthRateLimitConfig struct {
	LoginWindow        time.Duration `envconfig:"GREENBASKET_RL_LOGIN_WINDOW" default:"5m"`
	LoginIPLimit       int           `envconfig:"GREENBASKET_RL_LOGIN_IP_LIMIT" default:"20"`
	LoginEmailLimit    int           `envconfig:"GREENBASKET_RL_LOGIN_EMAIL_LIMIT" default:"10"`
	RegisterWindow     time.Duration `envconfig:"GREENBASKET_RL_REGISTER_WINDOW" default:"1h"`
	RegisterIPLimit    int           `envconfig:"GREENBASKET_RL_REGISTER_IP_LIMIT" default:"10"`
	RegisterEmailLimit int           `envconfig:"GREENBASKET_RL_REGISTER_EMAIL_LIMIT" default:"5"`
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
