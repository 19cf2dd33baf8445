package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
)

// readDotEnv merges KEY=VALUE pairs from a dotenv file into v.
// A missing file is not an error; production should use real env injection.
func readDotEnv(v *viper.Viper, path string) error {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}

	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	return nil
}
