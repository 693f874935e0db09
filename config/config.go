package config

import (
	"log"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	HttpServer    HttpServerConfig
	Database      DatabaseConfig
	Redis         RedisConfig
	MessageStream MessageStreamConfig
	HttpClient    HttpClientConfig
	UserService   UserServiceConfig
	Gateway       GatewayConfig
	Reservation   ReservationConfig
}

type HttpServerConfig struct {
	Port string `envconfig:"HTTP_SERVER_PORT" default:"3000"`
}

type DatabaseConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name     string `envconfig:"DB_NAME" default:"ticketing"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConns int    `envconfig:"DB_MAX_CONNS" default:"20"`
}

type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     string `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

type MessageStreamConfig struct {
	Host     string `envconfig:"AMQP_HOST" default:"localhost"`
	Port     string `envconfig:"AMQP_PORT" default:"5672"`
	User     string `envconfig:"AMQP_USER" default:"guest"`
	Password string `envconfig:"AMQP_PASSWORD" default:"guest"`
}

type HttpClientConfig struct {
	Type                string        `envconfig:"HTTP_CLIENT_BREAKER_TYPE" default:"consecutive"`
	Timeout             time.Duration `envconfig:"HTTP_CLIENT_TIMEOUT" default:"10s"`
	Threshold           int64         `envconfig:"HTTP_CLIENT_THRESHOLD" default:"10"`
	ConsecutiveFailures int64         `envconfig:"HTTP_CLIENT_CONSECUTIVE_FAILURES" default:"5"`
	ErrorRate           float64       `envconfig:"HTTP_CLIENT_ERROR_RATE" default:"0.65"`
	MinimumSamples      int64         `envconfig:"HTTP_CLIENT_MINIMUM_SAMPLES" default:"100"`
}

type UserServiceConfig struct {
	Host string `envconfig:"USER_SERVICE_HOST" default:"localhost"`
	Port string `envconfig:"USER_SERVICE_PORT" default:"8081"`
}

type GatewayConfig struct {
	BaseURL       string        `envconfig:"GATEWAY_BASE_URL" default:"http://localhost:8090"`
	MerchantID    string        `envconfig:"GATEWAY_MERCHANT_ID" default:""`
	SecretKey     string        `envconfig:"GATEWAY_SECRET_KEY" default:""`
	WebhookSecret string        `envconfig:"GATEWAY_WEBHOOK_SECRET" default:""`
	Currency      string        `envconfig:"GATEWAY_CURRENCY" default:"USD"`
	Timeout       time.Duration `envconfig:"GATEWAY_TIMEOUT" default:"10s"`
}

type ReservationConfig struct {
	HoldDuration     time.Duration `envconfig:"RESERVATION_HOLD_DURATION" default:"15m"`
	SweepInterval    time.Duration `envconfig:"RESERVATION_SWEEP_INTERVAL" default:"1m"`
	MaxItemsPerOrder int           `envconfig:"RESERVATION_MAX_ITEMS_PER_ORDER" default:"10"`
}

func InitConfig() *Config {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		log.Fatalf("error load config: %v", err)
	}
	return &cfg
}
