package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type APICfg struct {
	BaseURL         string
	TimeoutSec      int
	RetryElapsedSec int
}

type UICfg struct {
	PageSize         int
	NotifyTTLSec     int
	SearchDebounceMs int
}

type SessionCfg struct{ Path string }

type Cfg struct {
	API     APICfg
	UI      UICfg
	Session SessionCfg
}

// Load reads configuration from a .env file (if present) and the process
// environment. The API base URL is the only required setting.
func Load() (Cfg, error) {
	_ = godotenv.Load() // silently ignore if .env doesn't exist

	viper.AutomaticEnv()
	viper.SetDefault("BOQ_API_TIMEOUT_SEC", 15)
	viper.SetDefault("BOQ_RETRY_ELAPSED_SEC", 20)
	viper.SetDefault("BOQ_PAGE_SIZE", 50)
	viper.SetDefault("BOQ_NOTIFY_TTL_SEC", 5)
	viper.SetDefault("BOQ_SEARCH_DEBOUNCE_MS", 0)
	viper.SetDefault("BOQ_SESSION_PATH", "")

	cfg := Cfg{
		API: APICfg{
			BaseURL:         strings.TrimRight(viper.GetString("BOQ_API_BASE_URL"), "/"),
			TimeoutSec:      viper.GetInt("BOQ_API_TIMEOUT_SEC"),
			RetryElapsedSec: viper.GetInt("BOQ_RETRY_ELAPSED_SEC"),
		},
		UI: UICfg{
			PageSize:         viper.GetInt("BOQ_PAGE_SIZE"),
			NotifyTTLSec:     viper.GetInt("BOQ_NOTIFY_TTL_SEC"),
			SearchDebounceMs: viper.GetInt("BOQ_SEARCH_DEBOUNCE_MS"),
		},
		Session: SessionCfg{Path: viper.GetString("BOQ_SESSION_PATH")},
	}

	if cfg.API.BaseURL == "" {
		return Cfg{}, fmt.Errorf("BOQ_API_BASE_URL is required")
	}
	if cfg.UI.PageSize <= 0 {
		cfg.UI.PageSize = 50
	}
	if cfg.Session.Path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return Cfg{}, fmt.Errorf("resolve home dir for session path: %w", err)
		}
		cfg.Session.Path = filepath.Join(home, ".boqtrack", "session.json")
	}
	return cfg, nil
}
