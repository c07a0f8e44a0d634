package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/SeakMengs/AutoSign/internal/env"
)

type Config struct {
	Port        string
	ENV         string
	FrontendURL string
	DB          DatabaseConfig
	RateLimiter RateLimiterConfig
	Mail        MailConfig
	Auth        AuthConfig
	Minio       MinioConfig
	RabbitMQ    RabbitMQConfig
	Redis       RedisConfig
	Signing     SigningConfig
	CORS        CORSConfig
}

type RateLimiterConfig struct {
	RequestsPerTimeFrame int
	TimeFrame            time.Duration
	Enabled              bool
	// Tighter budget for the public signer endpoints, keyed by client ip
	SignerRequestsPerTimeFrame int
}

type AuthConfig struct {
	JWT_SECRET string
}

type DatabaseConfig struct {
	DB_HOST      string
	DB_PORT      string
	DB_DATABASE  string
	DB_USERNAME  string
	DB_PASSWORD  string
	DB_SSLMODE   string
	MaxOpenConns int
	MaxIdleConns int
	MaxIdleTime  string
}

type MailConfig struct {
	// sendgrid | gmail
	PROVIDER           string
	SEND_GRID          SendGridConfig
	FROM_EMAIL         string
	GMAIL_USERNAME     string
	GMAIL_APP_PASSWORD string
}

type SendGridConfig struct {
	API_KEY string
}

type MinioConfig struct {
	ENDPOINT   string
	ACCESS_KEY string
	SECRET_KEY string
	BUCKET     string
	USE_SSL    bool
}

type RabbitMQConfig struct {
	// When disabled invitations are mailed inline by the api process
	Enabled  bool
	HOST     string
	PORT     string
	USERNAME string
	PASSWORD string
}

func (r RabbitMQConfig) GetConnectionString() string {
	return fmt.Sprintf("amqp://%s:%s@%s:%s/", r.USERNAME, r.PASSWORD, r.HOST, r.PORT)
}

type RedisConfig struct {
	// When disabled the rate limiter keeps its windows in memory
	Enabled  bool
	ADDR     string
	PASSWORD string
	DB       int
}

type SigningConfig struct {
	// Base of the public link mailed to signers, the token is appended
	LinkBaseURL string
	// Timezone used when pre-filling date fields
	Timezone string
}

func (s SigningConfig) Location() *time.Location {
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (s SigningConfig) SigningLink(token string) string {
	return strings.TrimRight(s.LinkBaseURL, "/") + "/" + token
}

type CORSConfig struct {
	AllowOrigins []string
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.ENV, "production")
}

func GetConfig() Config {
	frontendURL := env.GetString("FRONTEND_URL", "http://localhost:3000")

	return Config{
		Port:        env.GetString("PORT", "8080"),
		ENV:         env.GetString("ENV", "development"),
		FrontendURL: frontendURL,
		DB: DatabaseConfig{
			DB_HOST:      env.GetString("DB_HOST", "127.0.0.1"),
			DB_PORT:      env.GetString("DB_PORT", "5432"),
			DB_USERNAME:  env.GetString("DB_USERNAME", "root"),
			DB_PASSWORD:  env.GetString("DB_PASSWORD", ""),
			DB_DATABASE:  env.GetString("DB_DATABASE", "autosign"),
			DB_SSLMODE:   env.GetString("DB_SSLMODE", "disable"),
			MaxOpenConns: env.GetInt("DB_MAX_OPEN_CONNS", 30),
			MaxIdleConns: env.GetInt("DB_MAX_IDLE_CONNS", 30),
			MaxIdleTime:  env.GetString("DB_MAX_IDLE_TIME", "15m"),
		},
		// By default if not specified, we allow 5000 requests per minute on all routes
		RateLimiter: RateLimiterConfig{
			RequestsPerTimeFrame:       env.GetInt("RATE_LIMIT_REQUESTS_PER_TIME_FRAME", 5000),
			TimeFrame:                  env.GetDuration("RATE_LIMIT_TIME_FRAME", time.Minute),
			Enabled:                    env.GetBool("RATE_LIMIT_ENABLED", true),
			SignerRequestsPerTimeFrame: env.GetInt("RATE_LIMIT_SIGNER_REQUESTS_PER_TIME_FRAME", 120),
		},
		Mail: MailConfig{
			PROVIDER:   env.GetString("MAIL_PROVIDER", "sendgrid"),
			FROM_EMAIL: env.GetString("MAIL_FROM_MAIL", ""),
			SEND_GRID: SendGridConfig{
				API_KEY: env.GetString("MAIL_SEND_GRID_API_KEY", ""),
			},
			GMAIL_USERNAME:     env.GetString("MAIL_GMAIL_USERNAME", ""),
			GMAIL_APP_PASSWORD: env.GetString("MAIL_GMAIL_APP_PASSWORD", ""),
		},
		Auth: AuthConfig{
			JWT_SECRET: env.GetString("AUTH_JWT_SECRET", ""),
		},
		Minio: MinioConfig{
			ENDPOINT:   env.GetString("MINIO_ENDPOINT", "127.0.0.1:9000"),
			ACCESS_KEY: env.GetString("MINIO_ACCESS_KEY", ""),
			SECRET_KEY: env.GetString("MINIO_SECRET_KEY", ""),
			BUCKET:     env.GetString("MINIO_BUCKET", "autosign"),
			USE_SSL:    env.GetBool("MINIO_USE_SSL", false),
		},
		RabbitMQ: RabbitMQConfig{
			Enabled:  env.GetBool("RABBITMQ_ENABLED", false),
			HOST:     env.GetString("RABBITMQ_HOST", "127.0.0.1"),
			PORT:     env.GetString("RABBITMQ_PORT", "5672"),
			USERNAME: env.GetString("RABBITMQ_USERNAME", "guest"),
			PASSWORD: env.GetString("RABBITMQ_PASSWORD", "guest"),
		},
		Redis: RedisConfig{
			Enabled:  env.GetBool("REDIS_ENABLED", false),
			ADDR:     env.GetString("REDIS_ADDR", "127.0.0.1:6379"),
			PASSWORD: env.GetString("REDIS_PASSWORD", ""),
			DB:       env.GetInt("REDIS_DB", 0),
		},
		Signing: SigningConfig{
			LinkBaseURL: env.GetString("SIGNING_LINK_BASE_URL", strings.TrimRight(frontendURL, "/")+"/sign"),
			Timezone:    env.GetString("SIGNING_TIMEZONE", "UTC"),
		},
		CORS: CORSConfig{
			AllowOrigins: env.GetStrings("CORS_ALLOW_ORIGINS", []string{"*"}),
		},
	}
}
