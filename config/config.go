package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

var SecretKey []byte

type Database struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func Init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	secret := os.Getenv("JWT_SECRET_KEY")
	if secret == "" {
		log.Fatal("JWT secret key not set")
	}
	SecretKey = []byte(secret)
}

func DatabaseConfig() Database {
	return Database{
		Host:     getEnv("DB_HOST", "localhost"),
		Port:     getEnvInt("DB_PORT", 5432),
		User:     getEnv("DB_USER", "postgres"),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", "cafepos"),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}
}

func Port() string {
	return ":" + getEnv("PORT", "4000")
}

func MigrationsDir() string {
	return getEnv("MIGRATIONS_DIR", "database/migrations")
}

func UploadDir() string {
	return getEnv("UPLOAD_DIR", "uploads")
}

func BaseURL() string {
	return getEnv("BASE_URL", "http://localhost:4000")
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
