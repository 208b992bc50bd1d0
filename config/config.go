package config

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port          string
	MongoURI      string
	DBName        string
	JWTSecret     string
	CloudinaryURL string
	ClientOrigin  string
	GinMode       string
}

// Load reads a .env file if one is present, then the environment.
// JWT_SECRET is the only hard requirement.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:          getenv("PORT", "8080"),
		MongoURI:      getenv("MONGODB_URI", "mongodb://127.0.0.1:27017"),
		DBName:        getenv("MONGODB_DB", "blognest"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		CloudinaryURL: os.Getenv("CLOUDINARY_URL"),
		ClientOrigin:  getenv("CLIENT_URL", "http://localhost:3000"),
		GinMode:       os.Getenv("GIN_MODE"),
	}

	if cfg.JWTSecret == "" {
		return Config{}, errors.New("JWT_SECRET must be set")
	}
	return cfg, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
