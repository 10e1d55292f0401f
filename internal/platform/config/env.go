package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// EnvFileKey names the variable that points at an optional dotenv file.
const EnvFileKey = "USERCLIENT_ENV_FILE"

const defaultEnvFile = ".env"

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// LoadDotEnv loads variables from the dotenv file named by USERCLIENT_ENV_FILE
// (".env" when unset). Variables already present in the process environment
// win over the file. A missing file is not an error.
func LoadDotEnv() error {
	path := strings.TrimSpace(os.Getenv(EnvFileKey))
	if path == "" {
		path = defaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}
