package config

import (
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string
	DBDriver   string
	AppPort    string
	AppEnv     string

	// Optional infrastructure. Empty values select the in-process fallback.
	RedisAddr    string
	KafkaBrokers []string
	KafkaTopic   string

	PolicyFile string
	Policies   Policies
}

func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		DBHost:       os.Getenv("DB_HOST"),
		DBUser:       os.Getenv("DB_USER"),
		DBPassword:   os.Getenv("DB_PASSWORD"),
		DBName:       os.Getenv("DB_NAME"),
		DBPort:       os.Getenv("DB_PORT"),
		DBDriver:     getenv("DB_DRIVER", "postgres"),
		AppPort:      getenv("APP_PORT", "8080"),
		AppEnv:       os.Getenv("APP_ENV"),
		RedisAddr:    os.Getenv("REDIS_ADDR"),
		KafkaBrokers: splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:   getenv("KAFKA_TOPIC", "fastfood.events"),
		PolicyFile:   os.Getenv("POLICY_FILE"),
	}

	if cfg.DBHost == "" {
		log.Fatal("Environment variables not loaded properly")
	}

	policies, err := LoadPolicies(cfg.PolicyFile)
	if err != nil {
		log.Fatalf("Failed to load policy file: %v", err)
	}
	cfg.Policies = policies

	return cfg
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
