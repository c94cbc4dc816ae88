package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"

	"github.com/cyberarena/tournament-bot/utils"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL string
	ServerPort  int

	BotToken string

	ProviderBaseURL      string
	ProviderClientID     string
	ProviderClientSecret string
	ProviderUsername     string

	DefaultRegion string

	// AdminExternalIDs are granted the admin role on first contact.
	AdminExternalIDs []int64

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

const defaultProviderBaseURL = "https://api.challonge.com/v1"

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	// Загружаем .env файл, если он есть. Ошибку не считаем фатальной.
	_ = godotenv.Load()

	cfg := &Config{
		DatabaseURL:          os.Getenv("DATABASE_URL"),
		BotToken:             os.Getenv("BOT_TOKEN"),
		ProviderBaseURL:      os.Getenv("PROVIDER_BASE_URL"),
		ProviderClientID:     os.Getenv("PROVIDER_CLIENT_ID"),
		ProviderClientSecret: os.Getenv("PROVIDER_CLIENT_SECRET"),
		ProviderUsername:     os.Getenv("PROVIDER_USERNAME"),
		DefaultRegion:        os.Getenv("DEFAULT_REGION"),
		R2AccountID:          os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:        os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:    os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:         os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:      os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	required := map[string]string{
		"DATABASE_URL":           cfg.DatabaseURL,
		"BOT_TOKEN":              cfg.BotToken,
		"PROVIDER_CLIENT_ID":     cfg.ProviderClientID,
		"PROVIDER_CLIENT_SECRET": cfg.ProviderClientSecret,
		"PROVIDER_USERNAME":      cfg.ProviderUsername,
		"DEFAULT_REGION":         cfg.DefaultRegion,
	}
	for name, value := range required {
		if value == "" {
			return nil, fmt.Errorf("%s environment variable is not set", name)
		}
	}

	if cfg.ProviderBaseURL == "" {
		cfg.ProviderBaseURL = defaultProviderBaseURL
	}

	portStr := utils.GetEnvOrDefault("SERVER_PORT", "8080")
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}
	cfg.ServerPort = port

	if raw := os.Getenv("ADMIN_IDS"); raw != "" {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseInt(part, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("invalid ADMIN_IDS entry %q: %w", part, err)
			}
			cfg.AdminExternalIDs = append(cfg.AdminExternalIDs, id)
		}
	}

	return cfg, nil
}
