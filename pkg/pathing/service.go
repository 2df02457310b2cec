package pathing

import (
	"os"
	"path/filepath"
)

const (
	dataDirEnv   = "HCC_DATA_DIR"
	configDirEnv = "HCC_CONFIG_DIR"
)

// EnsureDirs creates the data and config directories. Call it on startup.
func EnsureDirs() error {
	// Directories that must exist:
	dirs := []string{
		GetDataDir(),
		GetConfigDir(),
	}

	for _, dir := range dirs {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return err
			}
		}
	}
	return nil
}

func GetClimateDbPath() string {
	return filepath.Join(GetDataDir(), "hcc-climate.db")
}

func GetDataDir() string {
	if dir := os.Getenv(dataDirEnv); dir != "" {
		return dir
	}
	return "/var/lib/home_climate_control"
}

func GetConfigDir() string {
	if dir := os.Getenv(configDirEnv); dir != "" {
		return dir
	}
	return "/etc/home_climate_control"
}
