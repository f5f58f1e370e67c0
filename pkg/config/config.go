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
	FeatureFlags FeatureFlagsConfig
	GCP          GCPConfig
	PubSub       PubSubConfig
	Outbox       OutboxConfig
	Realtime     RealtimeConfig
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
	Env          string `envconfig:"KRISHIMITRA_APP_ENV" required:"true"`
	Port         string `envconfig:"KRISHIMITRA_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"KRISHIMITRA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"KRISHIMITRA_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	DSN    string `envconfig:"KRISHIMITRA_DB_DSN"`
	Driver string `envconfig:"KRISHIMITRA_DB_DRIVER" default:"postgres"`

	LegacyHost     string `envconfig:"KRISHIMITRA_DB_HOST"`
	LegacyPort     int    `envconfig:"KRISHIMITRA_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"KRISHIMITRA_DB_USER"`
	LegacyPassword string `envconfig:"KRISHIMITRA_DB_PASSWORD"`
	LegacyName     string `envconfig:"KRISHIMITRA_DB_NAME"`
	LegacySSLMode  string `envconfig:"KRISHIMITRA_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"KRISHIMITRA_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"KRISHIMITRA_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"KRISHIMITRA_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"KRISHIMITRA_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"KRISHIMITRA_REDIS_URL" required:"true"`
	Address      string        `envconfig:"KRISHIMITRA_REDIS_ADDR"`
	Password     string        `envconfig:"KRISHIMITRA_REDIS_PASSWORD"`
	DB           int           `envconfig:"KRISHIMITRA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"KRISHIMITRA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"KRISHIMITRA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"KRISHIMITRA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"KRISHIMITRA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"KRISHIMITRA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type JWTConfig struct {
	Secret            string `envconfig:"KRISHIMITRA_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"KRISHIMITRA_JWT_ISSUER" required:"true"`
	ExpirationMinutes int    `envconfig:"KRISHIMITRA_JWT_EXPIRATION_MINUTES" required:"true"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"KRISHIMITRA_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"KRISHIMITRA_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"KRISHIMITRA_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"KRISHIMITRA_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"KRISHIMITRA_ARGON_KEY_LEN" default:"32"`
}

type FeatureFlagsConfig struct {
	AutoMigrate   bool `envconfig:"KRISHIMITRA_AUTO_MIGRATE" default:"false"`
	SeedDemoDeals bool `envconfig:"KRISHIMITRA_SEED_DEMO_DEALS" default:"false"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"KRISHIMITRA_GCP_PROJECT_ID" required:"true"`
	CredentialsJSON        string `envconfig:"KRISHIMITRA_GCP_CREDENTIALS_JSON"`
	ApplicationCredentials string `envconfig:"KRISHIMITRA_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	AgreementsTopic        string `envconfig:"KRISHIMITRA_PUBSUB_AGREEMENTS_TOPIC" default:"km-agreement-requests"`
	AgreementsSubscription string `envconfig:"KRISHIMITRA_PUBSUB_AGREEMENTS_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"KRISHIMITRA_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"KRISHIMITRA_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"KRISHIMITRA_OUTBOX_MAX_ATTEMPTS" default:"10"`
}

type RealtimeConfig struct {
	DealsChannel     string        `envconfig:"KRISHIMITRA_REALTIME_DEALS_CHANNEL" default:"km:deals:changed"`
	KeepAliveSeconds int           `envconfig:"KRISHIMITRA_REALTIME_KEEPALIVE_SECONDS" default:"25"`
	SnapshotLimit    int           `envconfig:"KRISHIMITRA_REALTIME_SNAPSHOT_LIMIT" default:"200"`
	WriteTimeout     time.Duration `envconfig:"KRISHIMITRA_REALTIME_WRITE_TIMEOUT" default:"10s"`
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
