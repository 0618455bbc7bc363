package config

import (
	"os"
	"strconv"
	"time"
)

type S3 struct {
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	PublicURL string
}

type Config struct {
	AppEnv             string
	Port               string
	PostgresURI        string
	JWTSecret          string
	XAPIKey            string
	XAPISecret         string
	XAccessToken       string
	XAccessTokenSecret string
	XTestMode          bool
	AWSRegion          string
	SESSender          string
	SESRecipient       string
	UploadDir          string
	BaseURL            string
	SchedulerInterval  time.Duration
	SchedulerAdvance   time.Duration
	S3                 S3
	OpenAIAPIKey       string
	AdminUsername      string
	AdminPassword      string
}

func LoadConfig() *Config {
	return &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		Port:               getEnv("PORT", "8000"),
		PostgresURI:        getEnv("POSTGRES_URI", ""),
		JWTSecret:          getEnv("JWT_SECRET", ""),
		XAPIKey:            getEnv("X_API_KEY", ""),
		XAPISecret:         getEnv("X_API_SECRET", ""),
		XAccessToken:       getEnv("X_ACCESS_TOKEN", ""),
		XAccessTokenSecret: getEnv("X_ACCESS_TOKEN_SECRET", ""),
		XTestMode:          getEnvBool("X_TEST_MODE", false),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		SESSender:          getEnv("SES_SENDER", ""),
		SESRecipient:       getEnv("SES_RECIPIENT", ""),
		UploadDir:          getEnv("UPLOAD_DIR", "uploads"),
		BaseURL:            getEnv("BASE_URL", "http://localhost:8000"),
		SchedulerInterval:  getEnvMinutes("SCHEDULER_INTERVAL_MINUTES", 1),
		SchedulerAdvance:   getEnvMinutes("SCHEDULER_ADVANCE_MINUTES", 1),
		S3: S3{
			Region:    getEnv("S3_REGION", "us-east-1"),
			AccessKey: getEnv("S3_ACCESS_KEY", ""),
			SecretKey: getEnv("S3_SECRET_KEY", ""),
			Bucket:    getEnv("S3_BUCKET", ""),
			PublicURL: getEnv("S3_PUBLIC_URL", ""),
		},
		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		AdminUsername: getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword: getEnv("ADMIN_PASSWORD", "admin"),
	}
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return parsed
}

func getEnvMinutes(key string, defaultValue int) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return time.Duration(defaultValue) * time.Minute
	}
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed < 1 {
		return time.Duration(defaultValue) * time.Minute
	}
	return time.Duration(parsed) * time.Minute
}
