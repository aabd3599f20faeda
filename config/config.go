package config

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

type Settings struct {
	Server  ServerSettings
	Data    DataSettings
	DB      DatabaseSettings
	Session SessionSettings
	Orders  OrderSettings
	Cart    CartSettings
	Redis   RedisSettings
	Kafka   KafkaSettings
	Log     LogSettings
}

type ServerSettings struct {
	Addr            string
	PublicBaseURL   string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type DataSettings struct {
	Source       string // "http" or "postgres"
	URL          string
	File         string
	SeedFile     string
	DatasetName  string
	FetchTimeout time.Duration
}

type DatabaseSettings struct {
	Host     string
	Port     string
	Name     string
	User     string
	Password string
	SSLMode  string
}

// DSN is the lib/pq connection string.
func (d DatabaseSettings) DSN() string {
	return "host=" + d.Host + " port=" + d.Port + " user=" + d.User +
		" password=" + d.Password + " dbname=" + d.Name + " sslmode=" + d.SSLMode
}

const defaultJWTSecret = "changeme"

type SessionSettings struct {
	JWTSecret string
	TTL       time.Duration
}

type OrderSettings struct {
	StrictTransitions bool
}

type CartSettings struct {
	EnforceSameRestaurant bool
}

type RedisSettings struct {
	Addr string
}

type KafkaSettings struct {
	Broker     string
	OrderTopic string
}

type LogSettings struct {
	Level  string
	Format string
}

// Load reads settings from the environment. A .env file in the working
// directory is applied first when present.
func Load() (*Settings, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	s := &Settings{
		Server: ServerSettings{
			Addr:            getEnv("HTTP_ADDR", ":8081"),
			PublicBaseURL:   getEnv("PUBLIC_BASE_URL", "http://localhost:8081"),
			ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Data: DataSettings{
			Source:       strings.ToLower(getEnv("DATA_SOURCE", "http")),
			URL:          getEnv("DATA_URL", "http://localhost:8081/api/data.json"),
			File:         getEnv("DATA_FILE", "storefront-svc/data/data.json"),
			SeedFile:     os.Getenv("DATA_SEED_FILE"),
			DatasetName:  getEnv("DATASET_NAME", "storefront"),
			FetchTimeout: getEnvAsDuration("DATA_FETCH_TIMEOUT", 10*time.Second),
		},
		DB: DatabaseSettings{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
			User:     os.Getenv("DB_USER"),
			Password: os.Getenv("DB_PASSWORD"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Session: SessionSettings{
			JWTSecret: getEnv("JWT_SECRET", defaultJWTSecret),
			TTL:       getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		},
		Orders: OrderSettings{
			StrictTransitions: getEnvAsBool("ORDER_STRICT_TRANSITIONS", true),
		},
		Cart: CartSettings{
			EnforceSameRestaurant: getEnvAsBool("CART_ENFORCE_SAME_RESTAURANT", false),
		},
		Redis: RedisSettings{
			Addr: redisAddr(),
		},
		Kafka: KafkaSettings{
			Broker:     os.Getenv("KAFKA_BROKER"),
			OrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders"),
		},
		Log: LogSettings{
			Level:  strings.ToLower(getEnv("LOG_LEVEL", "info")),
			Format: strings.ToLower(getEnv("LOG_FORMAT", "json")),
		},
	}

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if s.UsesDefaultSecret() {
		log.Warn().Msg("JWT_SECRET not set, session tokens are signed with the built-in default")
	}
	return s, nil
}

func (s *Settings) UsesDefaultSecret() bool {
	return s.Session.JWTSecret == defaultJWTSecret
}

func (s *Settings) Validate() error {
	if s.Server.Addr == "" {
		return fmt.Errorf("HTTP_ADDR is required")
	}
	switch s.Data.Source {
	case "http":
		if s.Data.URL == "" {
			return fmt.Errorf("DATA_URL is required when DATA_SOURCE=http")
		}
	case "postgres":
		if s.DB.Host == "" || s.DB.Name == "" || s.DB.User == "" {
			return fmt.Errorf("DB_HOST, DB_NAME and DB_USER are required when DATA_SOURCE=postgres")
		}
	default:
		return fmt.Errorf("invalid DATA_SOURCE: %s (must be http or postgres)", s.Data.Source)
	}
	if s.Session.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if s.Session.TTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive")
	}
	if _, err := zerolog.ParseLevel(s.Log.Level); err != nil || s.Log.Level == "" {
		return fmt.Errorf("invalid log level: %s", s.Log.Level)
	}
	return nil
}

// InitLogger configures the global zerolog logger.
func InitLogger(ls LogSettings) {
	level, err := zerolog.ParseLevel(ls.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if ls.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
		return
	}
	log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
}

func MustInitPostgres(settings DatabaseSettings) *sql.DB {
	db, err := sql.Open("postgres", settings.DSN())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if err = db.Ping(); err != nil {
		log.Fatal().Err(err).Str("host", settings.Host).Str("db", settings.Name).Msg("failed to ping database")
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	return db
}

func MustInitRedis(addr string) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		log.Fatal().Err(err).Str("addr", addr).Msg("failed to connect to redis")
	}

	return client
}

func NewKafkaWriter(broker, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:     kafka.TCP(broker),
		Topic:    topic,
		Balancer: &kafka.LeastBytes{},
	}
}

func redisAddr() string {
	host := os.Getenv("REDIS_HOST")
	if host == "" {
		return ""
	}
	return host + ":" + getEnv("REDIS_PORT", "6379")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(valueStr); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}
