package app

import (
	"github.com/mentora-app/mentora-backend/internal/logger"
	"github.com/mentora-app/mentora-backend/internal/utils"
)

type Config struct {
	JWTSecretKey string
	ServerPort   string
	Environment  string
	Version      string
}

func LoadConfig(log *logger.Logger) Config {
	return Config{
		JWTSecretKey: utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log),
		ServerPort:   utils.GetEnv("SERVER_PORT", "8080", log),
		Environment:  utils.GetEnv("ENVIRONMENT", "development", log),
		Version:      utils.GetEnv("SERVICE_VERSION", "dev", log),
	}
}
