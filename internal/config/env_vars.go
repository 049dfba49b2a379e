package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	appNameVar     = "APP_NAME"
	baseURLVar     = "API_BASE_URL"
	dataFolderVar  = "DATA_FOLDER"
	pageSizeVar    = "PAGE_SIZE"
	httpTimeoutVar = "HTTP_TIMEOUT_SECONDS"
)

type EnvVars struct{}

var _ EnvConfig = EnvVars{}

func (EnvVars) GetAppName() string {
	return GetEnv(appNameVar, "Storefront")
}

func (EnvVars) GetBaseURL() string {
	return GetEnv(baseURLVar, "http://localhost:8080")
}

func (EnvVars) GetDataFolder() string {
	if folder := GetEnv(dataFolderVar, ""); folder != "" {
		return folder
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".storefront"
	}
	return filepath.Join(home, ".storefront")
}

func (EnvVars) GetPageSize() int {
	size, err := strconv.Atoi(GetEnv(pageSizeVar, "12"))
	if err != nil || size < 1 {
		return 12
	}
	return size
}

func (EnvVars) GetHTTPTimeout() time.Duration {
	seconds, err := strconv.Atoi(GetEnv(httpTimeoutVar, "30"))
	if err != nil || seconds < 1 {
		return 30 * time.Second
	}
	return time.Duration(seconds) * time.Second
}

func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}
