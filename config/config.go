package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	JWTSecret  string
	ServerPort string

	RedisAddr     string
	RedisPassword string

	MediaBaseURL string
	MediaAPIKey  string

	MailAPIKey  string
	MailSender  string
	FrontendURL string

	PaymentBaseURL       string
	PaymentAPIKey        string
	PaymentWebhookSecret string
}

func LoadConfig() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, using environment variables")
	}

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "course_platform"),
		JWTSecret:  getEnv("JWT_SECRET", "secret"),
		ServerPort: getEnv("SERVER_PORT", "8080"),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		MediaBaseURL: getEnv("MEDIA_BASE_URL", "https://media.example.com"),
		MediaAPIKey:  getEnv("MEDIA_API_KEY", ""),

		MailAPIKey:  getEnv("MAIL_API_KEY", ""),
		MailSender:  getEnv("MAIL_SENDER", "no-reply@courseplatform.io"),
		FrontendURL: getEnv("FRONTEND_URL", "http://localhost:3000"),

		PaymentBaseURL:       getEnv("PAYMENT_BASE_URL", "https://pay.example.com"),
		PaymentAPIKey:        getEnv("PAYMENT_API_KEY", ""),
		PaymentWebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}
