package config

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// LoadEnv loads environment variables from a .env file in the current or
// parent directory, if one exists. It returns the file loaded, if any.
// Variables already set in the environment are not overridden.
func LoadEnv(logger *logrus.Logger) string {
	envFile := ".env"
	if _, err := os.Stat(envFile); os.IsNotExist(err) {
		envFile = filepath.Join("..", ".env")
		if _, err := os.Stat(envFile); os.IsNotExist(err) {
			logger.Debug("No .env file found, using environment variables")
			return ""
		}
	}

	if err := godotenv.Load(envFile); err != nil {
		logger.Warnf("Error loading .env file: %v", err)
		return ""
	}
	logger.Debugf("Loaded environment variables from %s", envFile)
	return envFile
}
