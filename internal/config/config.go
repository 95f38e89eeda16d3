package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv  string
	AppPort string

	DBDriver   string // mysql | sqlite
	MySQLHost  string
	MySQLPort  string
	MySQLDB    string
	MySQLUser  string
	MySQLPass  string
	SQLitePath string

	RedisAddr string
	RedisPass string
	RedisDB   int

	IdempTTLSecs int

	AuthSecret   string
	AuthIssuer   string
	AuthAudience string

	LogLevel  string
	GormLevel string

	AllowSaleWhilePawned bool
}

func getenv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

// LoadDotEnv reads .env (or the given files) outside production.
// A missing file is not an error.
func LoadDotEnv(files ...string) error {
	if os.Getenv("APP_ENV") == "production" {
		return nil
	}
	err := godotenv.Load(files...)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

func Load() (*Config, error) {
	c := &Config{
		AppEnv:     getenv("APP_ENV", "development"),
		AppPort:    getenv("APP_PORT", "8080"),
		DBDriver:   getenv("DB_DRIVER", "mysql"),
		MySQLHost:  getenv("MYSQL_HOST", "mysql"),
		MySQLPort:  getenv("MYSQL_PORT", "3306"),
		MySQLDB:    getenv("MYSQL_DB", "autoempeno"),
		MySQLUser:  getenv("MYSQL_USER", "autoempeno"),
		MySQLPass:  getenv("MYSQL_PASS", "autoempeno"),
		SQLitePath: getenv("SQLITE_PATH", "autoempeno.db"),

		RedisAddr:    getenv("REDIS_ADDR", "redis:6379"),
		RedisPass:    os.Getenv("REDIS_PASS"),
		IdempTTLSecs: 300,

		AuthSecret:   os.Getenv("AUTH_SECRET"),
		AuthIssuer:   getenv("AUTH_ISSUER", "autoempeno-auth"),
		AuthAudience: getenv("AUTH_AUDIENCE", "autoempeno-api"),

		LogLevel:  getenv("LOG_LEVEL", "info"),
		GormLevel: getenv("GORM_LOG_LEVEL", "warn"),
	}

	var errs []error
	if v := os.Getenv("REDIS_DB"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("REDIS_DB %q: %w", v, err))
		}
		c.RedisDB = n
	}
	if v := os.Getenv("IDEMPOTENCY_TTL_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("IDEMPOTENCY_TTL_SECONDS %q: %w", v, err))
		}
		c.IdempTTLSecs = n
	}
	if v := os.Getenv("ALLOW_SALE_WHILE_PAWNED"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("ALLOW_SALE_WHILE_PAWNED %q: %w", v, err))
		}
		c.AllowSaleWhilePawned = b
	}
	return c, errors.Join(errs...)
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case "mysql":
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		// ensure port is valid
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case "sqlite":
		if strings.TrimSpace(c.SQLitePath) == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("invalid DB_DRIVER %q (mysql|sqlite)", c.DBDriver)
	}
	if c.RedisAddr == "" {
		return errors.New("missing REDIS_ADDR")
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	if len(c.AuthSecret) < 32 {
		return errors.New("AUTH_SECRET must be at least 32 bytes")
	}
	if c.AuthIssuer == "" || c.AuthAudience == "" {
		return errors.New("missing AUTH_ISSUER/AUTH_AUDIENCE")
	}
	return nil
}

func (c *Config) Production() bool { return c.AppEnv == "production" }

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// parseTime needed for DATETIME; loc=UTC keeps pledge dates on the civil UTC day
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=true&loc=UTC&charset=utf8mb4,utf8",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the data source for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == "sqlite" {
		return c.SQLitePath
	}
	return c.MySQLDSN()
}
