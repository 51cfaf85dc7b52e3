package main

import (
	"os"
	"path/filepath"

	"github.com/unknwon/goconfig"
)

// cliConfig holds the settings a flag can override. Values come from an
// optional INI file, falling back to defaults.
type cliConfig struct {
	CachePath string
	RootID    string
	Workers   int
	PageSize  int
}

func defaultConfig() cliConfig {
	return cliConfig{
		CachePath: defaultCachePath(),
		RootID:    "root",
		Workers:   4,
		PageSize:  1000,
	}
}

func defaultCachePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".drivels_cache.db"
	}
	return filepath.Join(home, ".drivels_cache.db")
}

// loadConfig reads the INI file at path. A missing file is not an error; the
// defaults apply.
func loadConfig(path string) (cliConfig, error) {
	cfg := defaultConfig()
	gc, err := goconfig.LoadConfigFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	cfg.CachePath = gc.MustValue("drivels", "cache", cfg.CachePath)
	cfg.RootID = gc.MustValue("drivels", "root_id", cfg.RootID)
	cfg.Workers = gc.MustInt("drivels", "workers", cfg.Workers)
	cfg.PageSize = gc.MustInt("drivels", "page_size", cfg.PageSize)
	return cfg, nil
}
