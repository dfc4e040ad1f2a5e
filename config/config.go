package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	pkgerrors "github.com/pkg/errors"
)

const (
	ActivePolicyAllow  = "allow"
	ActivePolicyReject = "reject"
)

type Env struct {
	AppEnv string `env:"APP_ENV" envDefault:"production"`
	Port   string `env:"PORT" envDefault:"3001"`

	DBDriver   string `env:"DB_DRIVER" envDefault:"postgres"`
	DBPath     string `env:"DB_PATH" envDefault:"mold_tracker.db"`
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"mold_tracker"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD"`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	JWTSecret string        `env:"JWT_SECRET"`
	JWTTTL    time.Duration `env:"JWT_TTL" envDefault:"8h"`
	// JWTRefreshTTL bounds how long a login can be kept alive by refreshing.
	JWTRefreshTTL time.Duration `env:"JWT_REFRESH_TTL" envDefault:"168h"`

	GPSAccuracyThreshold float64       `env:"GPS_ACCURACY_THRESHOLD" envDefault:"50"`
	ScanSessionTTL       time.Duration `env:"SCAN_SESSION_TTL" envDefault:"8h"`
	ScanActivePolicy     string        `env:"SCAN_ACTIVE_POLICY" envDefault:"allow"`

	CORSOrigin string `env:"CORS_ORIGIN" envDefault:"http://localhost:3000"`
	GeoIPURL   string `env:"GEOIP_URL" envDefault:"http://ip-api.com/json"`

	LogFile       string `env:"LOG_FILE"`
	LogMaxSize    int    `env:"LOG_MAX_SIZE" envDefault:"50"`
	LogMaxBackups int    `env:"LOG_MAX_BACKUPS" envDefault:"5"`
	LogMaxAge     int    `env:"LOG_MAX_AGE" envDefault:"28"`
	LogCompress   bool   `env:"LOG_COMPRESS" envDefault:"false"`
}

// LoadEnv reads an optional .env file and parses the process environment.
func LoadEnv() (*Env, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, pkgerrors.Wrap(err, "load .env")
	}

	var cfg Env
	if err := env.Parse(&cfg); err != nil {
		return nil, pkgerrors.Wrap(err, "parse env")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (e *Env) validate() error {
	if e.JWTSecret == "" {
		return pkgerrors.New("JWT_SECRET is required")
	}
	if e.GPSAccuracyThreshold <= 0 {
		return pkgerrors.Errorf("GPS_ACCURACY_THRESHOLD must be positive, got %v", e.GPSAccuracyThreshold)
	}
	if e.JWTTTL <= 0 || e.JWTRefreshTTL < e.JWTTTL {
		return pkgerrors.Errorf("JWT_REFRESH_TTL (%s) must be at least JWT_TTL (%s)", e.JWTRefreshTTL, e.JWTTTL)
	}
	if e.ScanSessionTTL <= 0 {
		return pkgerrors.Errorf("SCAN_SESSION_TTL must be positive, got %s", e.ScanSessionTTL)
	}
	switch e.DBDriver {
	case "postgres", "sqlite":
	default:
		return pkgerrors.Errorf("DB_DRIVER must be postgres or sqlite, got %q", e.DBDriver)
	}
	switch e.ScanActivePolicy {
	case ActivePolicyAllow, ActivePolicyReject:
	default:
		return pkgerrors.Errorf("SCAN_ACTIVE_POLICY must be %q or %q, got %q", ActivePolicyAllow, ActivePolicyReject, e.ScanActivePolicy)
	}
	return nil
}

func (e *Env) IsDevelopment() bool {
	return e.AppEnv == "development"
}

func (e *Env) PostgresDSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		e.DBHost, e.DBUser, e.DBPassword, e.DBName, e.DBPort, e.DBSSLMode)
}
