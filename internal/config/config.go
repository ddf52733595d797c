package config

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	mysqldriver "github.com/go-sql-driver/mysql"
	"github.com/spf13/viper"
)

// Supported database drivers.
const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DefaultDatabaseName is the database the service writes submissions into.
const DefaultDatabaseName = "userdb"

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	GRPC      GRPCConfig
	Logger    LoggerConfig
}

// DatabaseConfig holds configuration for the database
type DatabaseConfig struct {
	Driver              string `mapstructure:"DB_DRIVER"`
	Host                string `mapstructure:"DB_HOST"`
	Port                string `mapstructure:"DB_PORT"`
	User                string `mapstructure:"DB_USER"`
	Password            string `mapstructure:"DB_PASS"`
	Name                string `mapstructure:"DB_NAME"`
	SSLMode             string `mapstructure:"DB_SSLMODE"`
	SQLitePath          string `mapstructure:"DB_SQLITE_PATH"`
	MaxOpenConns        int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns        int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime     int    `mapstructure:"DB_CONN_MAX_LIFETIME"`  // seconds
	ConnMaxIdleTime     int    `mapstructure:"DB_CONN_MAX_IDLE_TIME"` // seconds
	AutoMigrate         bool   `mapstructure:"DB_AUTO_MIGRATE"`
	QueryTimeoutSeconds int    `mapstructure:"DB_QUERY_TIMEOUT_SECONDS"`
	ConnectTimeout      int    `mapstructure:"DB_CONNECT_TIMEOUT_SECONDS"`
}

// AppConfig holds configuration for the HTTP surface
type AppConfig struct {
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	StaticIndexPath        string `mapstructure:"STATIC_INDEX_PATH"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`
	RequireFields          bool   `mapstructure:"FORM_REQUIRE_FIELDS"`
	SwaggerEnabled         bool   `mapstructure:"SWAGGER_ENABLED"`
	SwaggerSpecPath        string `mapstructure:"SWAGGER_SPEC_PATH"`
}

// RedisConfig holds configuration for the Redis backing the rate limiter
type RedisConfig struct {
	Host        string `mapstructure:"REDIS_HOST"`
	Port        string `mapstructure:"REDIS_PORT"`
	Password    string `mapstructure:"REDIS_PASSWORD"`
	DB          int    `mapstructure:"REDIS_DB"`
	MaxRetries  int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize    int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConn int    `mapstructure:"REDIS_MIN_IDLE_CONN"`
}

// RateLimitConfig holds configuration for submission rate limiting
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY"`
}

// GRPCConfig holds configuration for the gRPC health endpoint
type GRPCConfig struct {
	Enabled               bool   `mapstructure:"GRPC_ENABLED"`
	Port                  string `mapstructure:"GRPC_PORT"`
	HealthIntervalSeconds int    `mapstructure:"GRPC_HEALTH_INTERVAL_SECONDS"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from an optional app.env file in path,
// overridden by environment variables.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.AutomaticEnv() // Environment variables win over app.env and defaults
	setDefaults(v)

	v.AddConfigPath(path)
	v.SetConfigName("app") // Look for app.env
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	config.DB.Driver = strings.ToLower(v.GetString("DB_DRIVER"))
	config.DB.Host = v.GetString("DB_HOST")
	config.DB.Port = v.GetString("DB_PORT")
	config.DB.User = v.GetString("DB_USER")
	config.DB.Password = v.GetString("DB_PASS")
	config.DB.Name = v.GetString("DB_NAME")
	config.DB.SSLMode = v.GetString("DB_SSLMODE")
	config.DB.SQLitePath = v.GetString("DB_SQLITE_PATH")
	config.DB.MaxOpenConns = v.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = v.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = v.GetInt("DB_CONN_MAX_LIFETIME")
	config.DB.ConnMaxIdleTime = v.GetInt("DB_CONN_MAX_IDLE_TIME")
	config.DB.AutoMigrate = v.GetBool("DB_AUTO_MIGRATE")
	config.DB.QueryTimeoutSeconds = v.GetInt("DB_QUERY_TIMEOUT_SECONDS")
	config.DB.ConnectTimeout = v.GetInt("DB_CONNECT_TIMEOUT_SECONDS")

	config.App.HTTPPort = v.GetString("HTTP_PORT")
	config.App.StaticIndexPath = v.GetString("STATIC_INDEX_PATH")
	config.App.ShutdownTimeoutSeconds = v.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.RequireFields = v.GetBool("FORM_REQUIRE_FIELDS")
	config.App.SwaggerEnabled = v.GetBool("SWAGGER_ENABLED")
	config.App.SwaggerSpecPath = v.GetString("SWAGGER_SPEC_PATH")

	config.Redis.Host = v.GetString("REDIS_HOST")
	config.Redis.Port = v.GetString("REDIS_PORT")
	config.Redis.Password = v.GetString("REDIS_PASSWORD")
	config.Redis.DB = v.GetInt("REDIS_DB")
	config.Redis.MaxRetries = v.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = v.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConn = v.GetInt("REDIS_MIN_IDLE_CONN")

	config.RateLimit.Enabled = v.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = v.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = v.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.GRPC.Enabled = v.GetBool("GRPC_ENABLED")
	config.GRPC.Port = v.GetString("GRPC_PORT")
	config.GRPC.HealthIntervalSeconds = v.GetInt("GRPC_HEALTH_INTERVAL_SECONDS")

	config.Logger.Level = v.GetString("LOG_LEVEL")
	config.Logger.Format = v.GetString("LOG_FORMAT")
	config.Logger.OutputPath = v.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = v.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = v.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = v.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = v.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("DB_DRIVER", DriverMySQL)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "")
	v.SetDefault("DB_USER", "root")
	v.SetDefault("DB_PASS", "")
	v.SetDefault("DB_NAME", DefaultDatabaseName)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_SQLITE_PATH", "userdb.sqlite")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_AUTO_MIGRATE", true)
	v.SetDefault("DB_QUERY_TIMEOUT_SECONDS", 5)
	v.SetDefault("DB_CONNECT_TIMEOUT_SECONDS", 5)

	v.SetDefault("HTTP_PORT", "3000")
	v.SetDefault("STATIC_INDEX_PATH", "web/index.html")
	v.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 15)
	v.SetDefault("FORM_REQUIRE_FIELDS", false)
	v.SetDefault("SWAGGER_SPEC_PATH", "api/swagger/form.swagger.json")

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("REDIS_MAX_RETRIES", 3)
	v.SetDefault("REDIS_POOL_SIZE", 10)
	v.SetDefault("REDIS_MIN_IDLE_CONN", 2)

	v.SetDefault("RATE_LIMIT_ENABLED", false)
	v.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 5.0)
	v.SetDefault("RATE_LIMIT_BURST_CAPACITY", 10)

	v.SetDefault("GRPC_ENABLED", false)
	v.SetDefault("GRPC_PORT", "50051")
	v.SetDefault("GRPC_HEALTH_INTERVAL_SECONDS", 10)

	// Logger and docs defaults depend on the environment
	env := v.GetString("APP_ENV")
	if env == "production" {
		v.SetDefault("LOG_LEVEL", "info")
		v.SetDefault("LOG_FORMAT", "json")
		v.SetDefault("LOG_ENABLE_SAMPLING", true)
		v.SetDefault("SWAGGER_ENABLED", false)
	} else {
		v.SetDefault("LOG_LEVEL", "debug")
		v.SetDefault("LOG_FORMAT", "console")
		v.SetDefault("LOG_ENABLE_SAMPLING", false)
		v.SetDefault("SWAGGER_ENABLED", true)
	}
	v.SetDefault("LOG_OUTPUT_PATH", "stdout")
	v.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	v.SetDefault("SERVICE_NAME", "user-form-service")
	v.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the configuration for values the service cannot start with.
func (c *Config) Validate() error {
	var errs []error

	switch c.DB.Driver {
	case DriverMySQL, DriverPostgres:
		if c.DB.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.DB.Name == "" {
			errs = append(errs, errors.New("DB_NAME is required"))
		}
	case DriverSQLite:
		if c.DB.SQLitePath == "" {
			errs = append(errs, errors.New("DB_SQLITE_PATH is required for the sqlite driver"))
		}
	default:
		errs = append(errs, fmt.Errorf("unsupported DB_DRIVER %q", c.DB.Driver))
	}

	if c.DB.MaxOpenConns <= 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS must be positive"))
	}
	if c.DB.MaxIdleConns < 0 {
		errs = append(errs, errors.New("DB_MAX_IDLE_CONNS must not be negative"))
	}
	if c.DB.QueryTimeoutSeconds < 0 {
		errs = append(errs, errors.New("DB_QUERY_TIMEOUT_SECONDS must not be negative"))
	}

	if c.App.HTTPPort == "" {
		errs = append(errs, errors.New("HTTP_PORT is required"))
	}
	if c.App.StaticIndexPath == "" {
		errs = append(errs, errors.New("STATIC_INDEX_PATH is required"))
	}
	if c.App.ShutdownTimeoutSeconds <= 0 {
		errs = append(errs, errors.New("SHUTDOWN_TIMEOUT_SECONDS must be positive"))
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.RequestsPerSecond <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_REQUESTS_PER_SECOND must be positive"))
		}
		if c.RateLimit.BurstCapacity <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_BURST_CAPACITY must be positive"))
		}
		if c.Redis.Host == "" || c.Redis.Port == "" {
			errs = append(errs, errors.New("REDIS_HOST and REDIS_PORT are required when rate limiting is enabled"))
		}
	}

	if c.GRPC.Enabled {
		if c.GRPC.Port == "" {
			errs = append(errs, errors.New("GRPC_PORT is required when gRPC is enabled"))
		}
		if c.GRPC.HealthIntervalSeconds <= 0 {
			errs = append(errs, errors.New("GRPC_HEALTH_INTERVAL_SECONDS must be positive"))
		}
	}

	return errors.Join(errs...)
}

// port returns the configured port or the driver's well-known default.
func (c *DatabaseConfig) port() string {
	if c.Port != "" {
		return c.Port
	}
	if c.Driver == DriverPostgres {
		return "5432"
	}
	return "3306"
}

// MySQLDSN returns the MySQL Data Source Name
func (c *DatabaseConfig) MySQLDSN() string {
	dsn := mysqldriver.NewConfig()
	dsn.User = c.User
	dsn.Passwd = c.Password
	dsn.Net = "tcp"
	dsn.Addr = net.JoinHostPort(c.Host, c.port())
	dsn.DBName = c.Name
	dsn.ParseTime = true
	dsn.Params = map[string]string{"charset": "utf8mb4"}
	if c.ConnectTimeout > 0 {
		dsn.Timeout = time.Duration(c.ConnectTimeout) * time.Second
	}
	return dsn.FormatDSN()
}

// PostgresDSN returns the PostgreSQL connection URL.
// Credentials and database name are URL-escaped, so empty or spaced values survive parsing.
func (c *DatabaseConfig) PostgresDSN() string {
	query := url.Values{}
	if c.SSLMode != "" {
		query.Set("sslmode", c.SSLMode)
	}
	if c.ConnectTimeout > 0 {
		query.Set("connect_timeout", strconv.Itoa(c.ConnectTimeout))
	}

	dsn := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     net.JoinHostPort(c.Host, c.port()),
		Path:     "/" + c.Name,
		RawQuery: query.Encode(),
	}
	return dsn.String()
}
