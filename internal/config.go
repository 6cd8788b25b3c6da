package internal

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"http_server"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Security      SecurityConfig      `mapstructure:"security" validate:"required"`
	OAuth         OAuthConfig         `mapstructure:"oauth"`
	Mail          MailConfig          `mapstructure:"mail"`
	Storage       StorageConfig       `mapstructure:"storage"`
	RateLimit     RateLimitConfig     `mapstructure:"rate_limit"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

type AppConfig struct {
	Env         string `mapstructure:"env" validate:"omitempty,oneof=development production test"`
	FrontendURL string `mapstructure:"frontend_url" validate:"required,url"`
}

type ServerConfig struct {
	Port              int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	BaseURL           string        `mapstructure:"base_url"`
	AllowedOrigins    string        `mapstructure:"allowed_origins"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout"`
	ReadTimeout       time.Duration `mapstructure:"read_timeout"`
	IdleTimeout       time.Duration `mapstructure:"idle_timeout"`
	WriteTimeout      time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	MaxOpenConns    int           `mapstructure:"max_open_conns" validate:"required,min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns" validate:"required,min=1"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime" validate:"required,min=1m"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time" validate:"required,min=1m"`
	Source          string        `mapstructure:"source" validate:"required"`
}

type SecurityConfig struct {
	JWTSecret    string        `mapstructure:"jwt_secret" validate:"required,min=16"`
	TokenTTL     time.Duration `mapstructure:"token_ttl" validate:"required,min=1m"`
	ResetTTL     time.Duration `mapstructure:"reset_ttl" validate:"required,min=1m"`
	BCryptCost   int           `mapstructure:"bcrypt_cost" validate:"required,min=4,max=15"`
	CookieName   string        `mapstructure:"cookie_name" validate:"required"`
	CookieSecure bool          `mapstructure:"cookie_secure"`
	StateHashKey string        `mapstructure:"state_hash_key" validate:"required,min=32"`
}

type OAuthConfig struct {
	GoogleClientID     string `mapstructure:"google_client_id"`
	GoogleClientSecret string `mapstructure:"google_client_secret"`
	RedirectURL        string `mapstructure:"redirect_url" validate:"omitempty,url"`
}

type MailConfig struct {
	Host         string        `mapstructure:"host" validate:"required"`
	Port         int           `mapstructure:"port" validate:"required,min=1,max=65535"`
	Username     string        `mapstructure:"username"`
	Password     string        `mapstructure:"password"`
	From         string        `mapstructure:"from" validate:"required"`
	Workers      int           `mapstructure:"workers" validate:"min=0"`
	QueueSize    int           `mapstructure:"queue_size" validate:"min=0"`
	MaxAttempts  int           `mapstructure:"max_attempts" validate:"min=0"`
	RetryBackoff time.Duration `mapstructure:"retry_backoff"`
	SendTimeout  time.Duration `mapstructure:"send_timeout"`
}

type StorageConfig struct {
	Driver    string      `mapstructure:"driver" validate:"required,oneof=local minio"`
	LocalPath string      `mapstructure:"local_path" validate:"required_if=Driver local"`
	MaxBytes  int64       `mapstructure:"max_bytes" validate:"min=0"`
	Minio     MinioConfig `mapstructure:"minio"`
}

type MinioConfig struct {
	Endpoint  string `mapstructure:"endpoint"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Bucket    string `mapstructure:"bucket"`
	UseSSL    bool   `mapstructure:"use_ssl"`
}

type RateLimitConfig struct {
	PerMinute int `mapstructure:"per_minute" validate:"min=0"`
	Burst     int `mapstructure:"burst" validate:"min=0"`
}

type ObservabilityConfig struct {
	Metrics MetricsConfig `mapstructure:"metrics"`
	Logging LoggingConfig `mapstructure:"logging"`
}

type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path" validate:"required_if=Enabled true"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"omitempty,oneof=json text"`
}

// LoadConfigFromEnv builds the config from process environment. The short
// variable names (JWT_SECRET, SMTP_USER, PORT...) are the ones the deployment
// has always used; the rest fall back to sensible defaults.
func LoadConfigFromEnv() *Config {
	return &Config{
		App: AppConfig{
			Env:         getEnv("APP_ENV", "production"),
			FrontendURL: getEnv("FRONTEND_ENDPOINT", "http://localhost:3000"),
		},
		Server: ServerConfig{
			Port:              getEnvAsInt("PORT", 8080),
			BaseURL:           getEnv("BASE_URL", "http://localhost:8080"),
			AllowedOrigins:    getEnv("ALLOWED_ORIGINS", getEnv("FRONTEND_ENDPOINT", "")),
			ReadHeaderTimeout: getEnvAsDuration("READ_HEADER_TIMEOUT", 5*time.Second),
			ReadTimeout:       getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			IdleTimeout:       getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			WriteTimeout:      getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
		},
		Database: DatabaseConfig{
			MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			ConnMaxIdleTime: getEnvAsDuration("DB_CONN_MAX_IDLE_TIME", 5*time.Minute),
			Source:          getEnv("DATABASE_URL", ""),
		},
		Security: SecurityConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			TokenTTL:     getEnvAsDuration("TOKEN_TTL", 7*24*time.Hour),
			ResetTTL:     getEnvAsDuration("RESET_TTL", time.Hour),
			BCryptCost:   getEnvAsInt("BCRYPT_COST", 10),
			CookieName:   getEnv("COOKIE_NAME", "mastersight-access"),
			CookieSecure: getEnvAsBool("COOKIE_SECURE", true),
			StateHashKey: getEnv("STATE_HASH_KEY", ""),
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("GOOGLE_CLIENT_SECRET", ""),
			RedirectURL:        getEnv("GOOGLE_REDIRECT_URL", ""),
		},
		Mail: MailConfig{
			Host:         getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:         getEnvAsInt("SMTP_PORT", 587),
			Username:     getEnv("SMTP_USER", ""),
			Password:     getEnv("SMTP_PASS", ""),
			From:         getEnv("SMTP_FROM", `"MasterSight" <noreply@mastersight.com>`),
			Workers:      getEnvAsInt("MAIL_WORKERS", 4),
			QueueSize:    getEnvAsInt("MAIL_QUEUE_SIZE", 100),
			MaxAttempts:  getEnvAsInt("MAIL_MAX_ATTEMPTS", 5),
			RetryBackoff: getEnvAsDuration("MAIL_RETRY_BACKOFF", 2*time.Second),
			SendTimeout:  getEnvAsDuration("MAIL_SEND_TIMEOUT", 15*time.Second),
		},
		Storage: StorageConfig{
			Driver:    getEnv("STORAGE_DRIVER", "local"),
			LocalPath: getEnv("CDN_PATH", "./cdn"),
			MaxBytes:  int64(getEnvAsInt("UPLOAD_MAX_BYTES", 5<<20)),
			Minio: MinioConfig{
				Endpoint:  getEnv("MINIO_ENDPOINT", ""),
				AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
				SecretKey: getEnv("MINIO_SECRET_KEY", ""),
				Bucket:    getEnv("MINIO_BUCKET", "mastersight"),
				UseSSL:    getEnvAsBool("MINIO_USE_SSL", false),
			},
		},
		RateLimit: RateLimitConfig{
			PerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 10),
			Burst:     getEnvAsInt("RATE_LIMIT_BURST", 5),
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: getEnvAsBool("METRICS_ENABLED", true),
				Path:    getEnv("METRICS_PATH", "/metrics"),
			},
			Logging: LoggingConfig{
				Level:  getEnv("LOG_LEVEL", "info"),
				Format: getEnv("LOG_FORMAT", "json"),
			},
		},
	}
}

// ----------------- HELPERS -----------------

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultVal
}

// ----------------- VALIDATION -----------------

var configValidator = validator.New(validator.WithRequiredStructEnabled())

func (c *Config) Validate() error {
	var errs []string

	if err := configValidator.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs = append(errs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
		} else {
			errs = append(errs, err.Error())
		}
	}

	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	if err := c.Database.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("database config: %v", err))
	}

	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

func (c *ServerConfig) Validate() error {
	if c.AllowedOrigins != "" {
		for _, origin := range c.Origins() {
			if origin == "*" {
				continue
			}
			if _, err := url.Parse(origin); err != nil {
				return fmt.Errorf("invalid allowed origin %s: %w", origin, err)
			}
		}
	}
	if c.ReadTimeout < c.ReadHeaderTimeout {
		return errors.New("read_timeout must be >= read_header_timeout")
	}
	return nil
}

// Origins splits the comma separated allow-list.
func (c *ServerConfig) Origins() []string {
	var out []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			out = append(out, origin)
		}
	}
	return out
}

func (c *DatabaseConfig) Validate() error {
	if c.MaxIdleConns > c.MaxOpenConns {
		return errors.New("max_idle_conns cannot be greater than max_open_conns")
	}
	return nil
}

func (c *DatabaseConfig) GetDSN() string {
	return c.Source
}

func (c *StorageConfig) Validate() error {
	if c.Driver != "minio" {
		return nil
	}
	if c.Minio.Endpoint == "" || c.Minio.Bucket == "" {
		return errors.New("minio driver requires endpoint and bucket")
	}
	return nil
}

// GoogleEnabled reports whether Google login can be offered.
func (c *OAuthConfig) GoogleEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}
