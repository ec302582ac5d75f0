package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App     AppConfig
	Service ServiceConfig
	DB      DBConfig
	Redis   RedisConfig
	Flags   FeatureFlagsConfig
	Cron    CronConfig
	ERP     ERPConfig
	GCP     GCPConfig
	PubSub  PubSubConfig
	Outbox  OutboxConfig
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
	Env          string `envconfig:"PICKSYNC_APP_ENV" required:"true"`
	Port         string `envconfig:"PICKSYNC_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"PICKSYNC_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"PICKSYNC_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type ServiceConfig struct {
	Kind string `envconfig:"PICKSYNC_SERVICE_KIND" default:"api"`
}

type DBConfig struct {
	DSN string `envconfig:"PICKSYNC_DB_DSN"`

	LegacyHost     string `envconfig:"PICKSYNC_DB_HOST"`
	LegacyPort     int    `envconfig:"PICKSYNC_DB_PORT" default:"5432"`
	LegacyUser     string `envconfig:"PICKSYNC_DB_USER"`
	LegacyPassword string `envconfig:"PICKSYNC_DB_PASSWORD"`
	LegacyName     string `envconfig:"PICKSYNC_DB_NAME"`
	LegacySSLMode  string `envconfig:"PICKSYNC_DB_SSLMODE" default:"disable"`

	MaxOpenConns    int           `envconfig:"PICKSYNC_DB_MAX_OPEN_CONNS" default:"20"`
	MaxIdleConns    int           `envconfig:"PICKSYNC_DB_MAX_IDLE_CONNS" default:"10"`
	ConnMaxLifetime time.Duration `envconfig:"PICKSYNC_DB_CONN_MAX_LIFETIME" default:"1h"`
	ConnMaxIdleTime time.Duration `envconfig:"PICKSYNC_DB_CONN_MAX_IDLE_TIME" default:"10m"`
}

type RedisConfig struct {
	URL          string        `envconfig:"PICKSYNC_REDIS_URL" required:"true"`
	Address      string        `envconfig:"PICKSYNC_REDIS_ADDR"`
	Password     string        `envconfig:"PICKSYNC_REDIS_PASSWORD"`
	DB           int           `envconfig:"PICKSYNC_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"PICKSYNC_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"PICKSYNC_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"PICKSYNC_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"PICKSYNC_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"PICKSYNC_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type FeatureFlagsConfig struct {
	AutoMigrate bool `envconfig:"PICKSYNC_AUTO_MIGRATE" default:"false"`
}

type CronConfig struct {
	Interval           time.Duration `envconfig:"PICKSYNC_CRON_INTERVAL" default:"24h"`
	LockTTL            time.Duration `envconfig:"PICKSYNC_CRON_LOCK_TTL" default:"25h"`
	QueueRetentionDays int           `envconfig:"PICKSYNC_CRON_QUEUE_RETENTION_DAYS" default:"14"`
}

type ERPConfig struct {
	BaseURL string `envconfig:"PICKSYNC_ERP_BASE_URL" required:"true"`
	Token   string `envconfig:"PICKSYNC_ERP_TOKEN"`
}

type GCPConfig struct {
	ProjectID              string `envconfig:"PICKSYNC_GCP_PROJECT_ID"`
	ApplicationCredentials string `envconfig:"PICKSYNC_GOOGLE_APPLICATION_CREDENTIALS"`
}

type PubSubConfig struct {
	DomainTopic        string `envconfig:"PICKSYNC_PUBSUB_DOMAIN_TOPIC" default:"picksync-domain-events"`
	DomainSubscription string `envconfig:"PICKSYNC_PUBSUB_DOMAIN_SUBSCRIPTION"`
}

type OutboxConfig struct {
	BatchSize      int `envconfig:"PICKSYNC_OUTBOX_PUBLISH_BATCH_SIZE" default:"50"`
	PollIntervalMS int `envconfig:"PICKSYNC_OUTBOX_PUBLISH_POLL_MS" default:"500"`
	MaxAttempts    int `envconfig:"PICKSYNC_OUTBOX_MAX_ATTEMPTS" default:"10"`
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
