package config

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
)

// LoadEnvFile exports the variables of a dotenv file so that Load picks up
// VRPTW_ overrides from it. Variables already set in the environment win.
// An empty path reads ".env" and ignores it when missing.
func LoadEnvFile(path string) error {
	if path != "" {
		return godotenv.Load(path)
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
