package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	ServerPort      string
	BackendBaseURL  string
	DatabaseType    string
	DatabasePath    string
	DatabaseURL     string
	MigrationsPath  string
	TemplatesPath   string
	StaticFilesPath string

	// Visitor token signing
	VisitorTokenSecret string
	VisitorTokenTTL    time.Duration

	// Daily submission allowance per practice type
	DailySubmissionLimit int

	// Lead notification email (Amazon SES)
	AWSRegion    string
	SESFromEmail string
	SESFromName  string
	LeadToEmail  string
}

// Load reads configuration from environment variables with sensible defaults.
// A .env file in the working directory is loaded first if present.
func Load() *Config {
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded configuration overrides from .env")
	}

	return &Config{
		ServerPort:      getEnv("PORT", "8080"),
		BackendBaseURL:  getEnv("BACKEND_BASE_URL", "https://chatbotbackend.mentorslearning.com"),
		DatabaseType:    getEnv("DB_TYPE", "sqlite"),
		DatabasePath:    getEnv("DB_PATH", "./practice.db"),
		DatabaseURL:     getEnv("DB_URL", ""),
		MigrationsPath:  getEnv("MIGRATIONS_PATH", "./migrations"),
		TemplatesPath:   getEnv("TEMPLATES_PATH", "./internal/templates"),
		StaticFilesPath: getEnv("STATIC_PATH", "./static"),

		VisitorTokenSecret: getEnv("VISITOR_TOKEN_SECRET", "dev-only-insecure-secret"),
		VisitorTokenTTL:    365 * 24 * time.Hour,

		DailySubmissionLimit: getEnvInt("DAILY_SUBMISSION_LIMIT", 2),

		AWSRegion:    getEnv("AWS_REGION", "eu-west-1"),
		SESFromEmail: getEnv("SES_FROM_EMAIL", ""),
		SESFromName:  getEnv("SES_FROM_NAME", "Mentors' Practice"),
		LeadToEmail:  getEnv("LEAD_TO_EMAIL", ""),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt reads an integer environment variable or returns a default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Invalid value for %s: %q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}
