package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/robotics-academy/grading-service/internal/gradebook"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level
	LogFile     string

	DatabaseURL    string
	DBMaxOpenConns int
	DBMaxIdleConns int
	DBConnMaxLife  time.Duration
	AutoMigrate    bool
	RedisURL       string

	Casdoor   CasdoorConfig
	Kafka     KafkaConfig
	Tracing   TracingConfig
	Grading   GradingConfig
	RateLimit RateLimitConfig
}

type CasdoorConfig struct {
	Endpoint     string `mapstructure:"endpoint"`
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	Cert         string `mapstructure:"cert"`
	Organization string `mapstructure:"organization"`
	Application  string `mapstructure:"application"`
}

type KafkaConfig struct {
	Enabled bool     `mapstructure:"enabled"`
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

type TracingConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	JaegerEndpoint string `mapstructure:"jaeger_endpoint"`
	ServiceName    string `mapstructure:"service_name"`
}

type GradingConfig struct {
	EmptyGradePolicy  gradebook.EmptyGradePolicy `mapstructure:"empty_grade_policy"`
	GradebookCacheTTL time.Duration              `mapstructure:"gradebook_cache_ttl"`
}

type RateLimitConfig struct {
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// LoadConfig reads .env (if present), then config.yaml (if CONFIG_FILE is set),
// then environment variables, in increasing order of precedence.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if file := v.GetString("config_file"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", file, err)
		}
	}

	cfg := &Config{
		Port:           v.GetString("port"),
		Environment:    v.GetString("environment"),
		LogLevel:       parseLogLevel(v.GetString("log_level")),
		LogFile:        v.GetString("log_file"),
		DatabaseURL:    v.GetString("database_url"),
		DBMaxOpenConns: v.GetInt("db_max_open_conns"),
		DBMaxIdleConns: v.GetInt("db_max_idle_conns"),
		DBConnMaxLife:  v.GetDuration("db_conn_max_lifetime"),
		AutoMigrate:    v.GetBool("auto_migrate"),
		RedisURL:       v.GetString("redis_url"),
		Casdoor: CasdoorConfig{
			Endpoint:     v.GetString("casdoor.endpoint"),
			ClientID:     v.GetString("casdoor.client_id"),
			ClientSecret: v.GetString("casdoor.client_secret"),
			Cert:         v.GetString("casdoor.cert"),
			Organization: v.GetString("casdoor.organization"),
			Application:  v.GetString("casdoor.application"),
		},
		Kafka: KafkaConfig{
			Enabled: v.GetBool("kafka.enabled"),
			Brokers: stringList(v, "kafka.brokers"),
			Topic:   v.GetString("kafka.topic"),
		},
		Tracing: TracingConfig{
			Enabled:        v.GetBool("tracing.enabled"),
			JaegerEndpoint: v.GetString("tracing.jaeger_endpoint"),
			ServiceName:    v.GetString("tracing.service_name"),
		},
		Grading: GradingConfig{
			EmptyGradePolicy:  gradebook.EmptyGradePolicy(strings.ToLower(v.GetString("grading.empty_grade_policy"))),
			GradebookCacheTTL: v.GetDuration("grading.gradebook_cache_ttl"),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("rate_limit.requests"),
			Window:   v.GetDuration("rate_limit.window"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("environment", "development")
	v.SetDefault("log_level", "info")
	v.SetDefault("db_max_open_conns", 25)
	v.SetDefault("db_max_idle_conns", 10)
	v.SetDefault("db_conn_max_lifetime", time.Hour)
	v.SetDefault("auto_migrate", false)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "lms.grading.events")
	v.SetDefault("tracing.enabled", false)
	v.SetDefault("tracing.service_name", "grading-service")
	v.SetDefault("grading.empty_grade_policy", string(gradebook.EmptyGradeZero))
	v.SetDefault("grading.gradebook_cache_ttl", 5*time.Minute)
	v.SetDefault("rate_limit.requests", 120)
	v.SetDefault("rate_limit.window", time.Minute)
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, errors.New("DATABASE_URL is required"))
	}
	if !c.Grading.EmptyGradePolicy.IsValid() {
		errs = append(errs, fmt.Errorf("GRADING_EMPTY_GRADE_POLICY must be %q or %q, got %q",
			gradebook.EmptyGradeZero, gradebook.EmptyGradeFull, c.Grading.EmptyGradePolicy))
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		errs = append(errs, errors.New("KAFKA_BROKERS is required when Kafka is enabled"))
	}
	if c.Tracing.Enabled && c.Tracing.JaegerEndpoint == "" {
		errs = append(errs, errors.New("TRACING_JAEGER_ENDPOINT is required when tracing is enabled"))
	}
	if c.RateLimit.Requests < 0 {
		errs = append(errs, errors.New("RATE_LIMIT_REQUESTS must not be negative"))
	}
	return errors.Join(errs...)
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func parseLogLevel(s string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// stringList accepts both a YAML list and a comma separated env value
func stringList(v *viper.Viper, key string) []string {
	raw := v.Get(key)
	var parts []string
	switch val := raw.(type) {
	case string:
		parts = strings.Split(val, ",")
	default:
		parts = v.GetStringSlice(key)
	}
	var out []string
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
