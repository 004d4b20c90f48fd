package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix = "washtrack"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvAppEnv          = "WASHTRACK_APP_ENV"
	EnvPort            = "WASHTRACK_APP_PORT"
	EnvDBPath          = "WASHTRACK_DB_PATH"
	EnvJWTSecret       = "WASHTRACK_JWT_SECRET"
	EnvJWTIssuer       = "WASHTRACK_JWT_ISSUER"
	EnvJWTExpMins      = "WASHTRACK_JWT_EXPIRATION_MINUTES"
	EnvAdminDefaultPwd = "WASHTRACK_ADMIN_DEFAULT_PASSWORD"
)

type Config struct {
	App      AppConfig
	DB       DBConfig
	JWT      JWTConfig
	Password PasswordConfig
	Ledger   LedgerConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"WASHTRACK_APP_ENV" required:"true"`
	Port         string `envconfig:"WASHTRACK_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"WASHTRACK_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"WASHTRACK_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type DBConfig struct {
	Path        string        `envconfig:"WASHTRACK_DB_PATH" default:"data/washtrack.db"`
	BusyTimeout time.Duration `envconfig:"WASHTRACK_DB_BUSY_TIMEOUT" default:"5s"`
	AutoMigrate bool          `envconfig:"WASHTRACK_AUTO_MIGRATE" default:"true"`
}

type JWTConfig struct {
	Secret            string `envconfig:"WASHTRACK_JWT_SECRET" required:"true"`
	Issuer            string `envconfig:"WASHTRACK_JWT_ISSUER" default:"washtrack"`
	ExpirationMinutes int    `envconfig:"WASHTRACK_JWT_EXPIRATION_MINUTES" default:"720"`
}

type PasswordConfig struct {
	ArgonMemoryKB    int `envconfig:"WASHTRACK_ARGON_MEMORY_KB" default:"65536"`
	ArgonTime        int `envconfig:"WASHTRACK_ARGON_TIME" default:"3"`
	ArgonParallelism int `envconfig:"WASHTRACK_ARGON_PARALLELISM" default:"2"`
	ArgonSaltLen     int `envconfig:"WASHTRACK_ARGON_SALT_LEN" default:"16"`
	ArgonKeyLen      int `envconfig:"WASHTRACK_ARGON_KEY_LEN" default:"32"`
}

type LedgerConfig struct {
	AdminDefaultPassword string `envconfig:"WASHTRACK_ADMIN_DEFAULT_PASSWORD" default:"admin123"`
	MaxAttachmentMB      int    `envconfig:"WASHTRACK_MAX_ATTACHMENT_MB" default:"5"`
}

// MaxAttachmentBytes returns the per-attachment size cap in bytes.
func (l LedgerConfig) MaxAttachmentBytes() int64 {
	if l.MaxAttachmentMB <= 0 {
		return 0
	}
	return int64(l.MaxAttachmentMB) * 1024 * 1024
}
