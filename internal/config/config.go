// Package config handles platform configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	HTTPAddr            string
	DBPath              string
	CaptureRate         float64 // frames per second
	MetadataRate        float64 // metadata polls per second
	FrameDiffThreshold  float64
	IdleCoalesceSeconds float64
	ExcludedApps        []string
	SaveThumbnails      bool
	ThumbnailMaxWidth   int
	ThumbnailDir        string
	SummarizerURL       string
}

func Load() *Config {
	return &Config{
		HTTPAddr:            getEnv("HTTP_ADDR", ":8400"),
		DBPath:              getEnv("DB_PATH", defaultDBPath()),
		CaptureRate:         getEnvFloat("CAPTURE_RATE", 1.0),
		MetadataRate:        getEnvFloat("METADATA_RATE", 1.0),
		FrameDiffThreshold:  getEnvFloat("FRAME_DIFF_THRESHOLD", 0.05),
		IdleCoalesceSeconds: getEnvFloat("IDLE_COALESCE_SECONDS", 30.0),
		ExcludedApps:        getEnvList("EXCLUDED_APPS", nil),
		SaveThumbnails:      getEnvBool("SAVE_THUMBNAILS", false),
		ThumbnailMaxWidth:   getEnvInt("THUMBNAIL_MAX_WIDTH", 320),
		ThumbnailDir:        getEnv("THUMBNAIL_DIR", defaultThumbnailDir()),
		SummarizerURL:       getEnv("SUMMARIZER_URL", ""),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "glimpse.db"
	}
	return filepath.Join(home, ".glimpse", "glimpse.db")
}

func defaultThumbnailDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "thumbnails"
	}
	return filepath.Join(home, ".glimpse", "thumbnails")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvList(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if t := strings.TrimSpace(p); t != "" {
				result = append(result, t)
			}
		}
		return result
	}
	return def
}
