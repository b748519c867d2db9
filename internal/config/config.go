package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/clinicsched/internal/domain/calendar"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Log       LogConfig
	Tracing   TracingConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Metrics   MetricsConfig
	Clinic    ClinicConfig
}

type AppConfig struct {
	Name        string
	Environment string
	Version     string
}

type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

func (s ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver string
	// Path is the SQLite database file. ":memory:" keeps everything in memory.
	Path string

	Host               string
	Port               int
	Name               string
	User               string
	Password           string
	SSLMode            string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
}

func (d DatabaseConfig) DSN() string {
	if d.Driver == DriverSQLite {
		return d.Path
	}
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%d sslmode=%s TimeZone=UTC",
		d.Host, d.User, d.Password, d.Name, d.Port, d.SSLMode,
	)
}

type LogConfig struct {
	Level      string
	Format     string
	OutputPath string
}

type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
	SampleRate  float64
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
	MaxAge         time.Duration
}

type RateLimitConfig struct {
	// Per client IP.
	RequestsPerSecond float64
	BurstSize         int
}

type MetricsConfig struct {
	Enabled bool
	Path    string
}

// ClinicConfig holds the scheduling rules shared by every doctor.
type ClinicConfig struct {
	WorkdayStart       string
	WorkdayEnd         string
	DefaultSlotMinutes int
	OnDelete           domain.DeletePolicy
	RecentActivity     int
}

// Workday returns the clinic-wide working window. Only valid after Load.
func (c ClinicConfig) Workday() calendar.Interval {
	start, _ := calendar.ParseClock(c.WorkdayStart)
	end, _ := calendar.ParseClock(c.WorkdayEnd)
	return calendar.NewInterval(start, end)
}

// Load reads configuration from defaults, an optional clinicsched.yaml in
// the working directory or ./config, and the environment, in increasing
// order of precedence.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("clinicsched")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := &Config{
		App: AppConfig{
			Name:        v.GetString("APP_NAME"),
			Environment: v.GetString("APP_ENV"),
			Version:     v.GetString("APP_VERSION"),
		},
		Server: ServerConfig{
			Host:            v.GetString("SERVER_HOST"),
			Port:            v.GetInt("SERVER_PORT"),
			ReadTimeout:     v.GetDuration("SERVER_READ_TIMEOUT"),
			WriteTimeout:    v.GetDuration("SERVER_WRITE_TIMEOUT"),
			IdleTimeout:     v.GetDuration("SERVER_IDLE_TIMEOUT"),
			ShutdownTimeout: v.GetDuration("SERVER_SHUTDOWN_TIMEOUT"),
		},
		Database: DatabaseConfig{
			Driver:             strings.ToLower(v.GetString("DB_DRIVER")),
			Path:               v.GetString("DB_PATH"),
			Host:               v.GetString("DB_HOST"),
			Port:               v.GetInt("DB_PORT"),
			Name:               v.GetString("DB_NAME"),
			User:               v.GetString("DB_USER"),
			Password:           v.GetString("DB_PASSWORD"),
			SSLMode:            v.GetString("DB_SSLMODE"),
			MaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
			MaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
			ConnMaxIdleTime:    v.GetDuration("DB_CONN_MAX_IDLE_TIME"),
			SlowQueryThreshold: v.GetDuration("DB_SLOW_QUERY_THRESHOLD"),
		},
		Log: LogConfig{
			Level:      v.GetString("LOG_LEVEL"),
			Format:     v.GetString("LOG_FORMAT"),
			OutputPath: v.GetString("LOG_OUTPUT"),
		},
		Tracing: TracingConfig{
			Enabled:     v.GetBool("TRACING_ENABLED"),
			ServiceName: v.GetString("TRACING_SERVICE_NAME"),
			Endpoint:    v.GetString("TRACING_ENDPOINT"),
			SampleRate:  v.GetFloat64("TRACING_SAMPLE_RATE"),
		},
		CORS: CORSConfig{
			AllowedOrigins: getSlice(v, "CORS_ALLOWED_ORIGINS"),
			AllowedMethods: getSlice(v, "CORS_ALLOWED_METHODS"),
			AllowedHeaders: getSlice(v, "CORS_ALLOWED_HEADERS"),
			MaxAge:         v.GetDuration("CORS_MAX_AGE"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			BurstSize:         v.GetInt("RATE_LIMIT_BURST"),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("METRICS_ENABLED"),
			Path:    v.GetString("METRICS_PATH"),
		},
		Clinic: ClinicConfig{
			WorkdayStart:       v.GetString("CLINIC_WORKDAY_START"),
			WorkdayEnd:         v.GetString("CLINIC_WORKDAY_END"),
			DefaultSlotMinutes: v.GetInt("CLINIC_DEFAULT_SLOT_MINUTES"),
			OnDelete:           domain.DeletePolicy(strings.ToLower(v.GetString("CLINIC_ON_DELETE"))),
			RecentActivity:     v.GetInt("CLINIC_RECENT_ACTIVITY"),
		},
	}

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "clinicsched")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_VERSION", "0.0.0")

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("SERVER_READ_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_WRITE_TIMEOUT", 15*time.Second)
	v.SetDefault("SERVER_IDLE_TIMEOUT", 60*time.Second)
	v.SetDefault("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second)

	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DB_PATH", "clinic.db")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_NAME", "clinicsched")
	v.SetDefault("DB_USER", "clinicsched")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_SSLMODE", "require")
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 30*time.Minute)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 5*time.Minute)
	v.SetDefault("DB_SLOW_QUERY_THRESHOLD", 200*time.Millisecond)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_OUTPUT", "stdout")

	v.SetDefault("TRACING_ENABLED", false)
	v.SetDefault("TRACING_SERVICE_NAME", "clinicsched")
	v.SetDefault("TRACING_ENDPOINT", "localhost:4318")
	v.SetDefault("TRACING_SAMPLE_RATE", 0.1)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "GET,POST,PUT,DELETE,OPTIONS")
	v.SetDefault("CORS_ALLOWED_HEADERS", "Content-Type,X-Request-ID")
	v.SetDefault("CORS_MAX_AGE", 12*time.Hour)

	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	v.SetDefault("METRICS_ENABLED", true)
	v.SetDefault("METRICS_PATH", "/metrics")

	v.SetDefault("CLINIC_WORKDAY_START", "09:00")
	v.SetDefault("CLINIC_WORKDAY_END", "17:00")
	v.SetDefault("CLINIC_DEFAULT_SLOT_MINUTES", 30)
	v.SetDefault("CLINIC_ON_DELETE", string(domain.DeleteRetain))
	v.SetDefault("CLINIC_RECENT_ACTIVITY", 5)
}

// getSlice accepts both a YAML list and a comma separated string.
func getSlice(v *viper.Viper, key string) []string {
	var result []string
	for _, item := range v.GetStringSlice(key) {
		for _, p := range strings.Split(item, ",") {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
	}
	return result
}

func validate(cfg *Config) error {
	var errs []string

	switch cfg.Database.Driver {
	case DriverSQLite:
		if cfg.Database.Path == "" {
			errs = append(errs, "DB_PATH is required for the sqlite driver")
		}
	case DriverPostgres:
		if cfg.Database.Password == "" && cfg.App.Environment != "development" {
			errs = append(errs, "DB_PASSWORD is required in non-development environments")
		}
		if cfg.Database.SSLMode == "disable" && cfg.App.Environment == "production" {
			errs = append(errs, "DB_SSLMODE=disable is not allowed in production")
		}
	default:
		errs = append(errs, fmt.Sprintf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, cfg.Database.Driver))
	}

	start, startErr := calendar.ParseClock(cfg.Clinic.WorkdayStart)
	if startErr != nil {
		errs = append(errs, fmt.Sprintf("CLINIC_WORKDAY_START: %v", startErr))
	}
	end, endErr := calendar.ParseClock(cfg.Clinic.WorkdayEnd)
	if endErr != nil {
		errs = append(errs, fmt.Sprintf("CLINIC_WORKDAY_END: %v", endErr))
	}
	if startErr == nil && endErr == nil && start >= end {
		errs = append(errs, "CLINIC_WORKDAY_START must be before CLINIC_WORKDAY_END")
	}

	if cfg.Clinic.DefaultSlotMinutes <= 0 {
		errs = append(errs, "CLINIC_DEFAULT_SLOT_MINUTES must be positive")
	}
	if !cfg.Clinic.OnDelete.IsValid() {
		errs = append(errs, fmt.Sprintf("CLINIC_ON_DELETE must be %q or %q, got %q",
			domain.DeleteRetain, domain.DeleteCascade, cfg.Clinic.OnDelete))
	}
	if cfg.Clinic.RecentActivity <= 0 {
		errs = append(errs, "CLINIC_RECENT_ACTIVITY must be positive")
	}

	if cfg.RateLimit.RequestsPerSecond <= 0 || cfg.RateLimit.BurstSize <= 0 {
		errs = append(errs, "RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration errors:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
