package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type notionProperties struct {
	title    string
	status   string
	progress string
	priority string
	category string
	start    string
	deadline string
}

type config struct {
	addr           string
	uploadDir      string
	maxUploadBytes int64
	logLevel       string

	modelProvider    string
	modelMaxTokens   int
	modelTimeout     time.Duration
	anthropicAPIKey  string
	anthropicModel   string
	anthropicBaseURL string
	geminiAPIKey     string
	geminiModel      string

	notionToken      string
	notionDatabaseID string
	notionBaseURL    string
	notionPageSize   int
	notionTimeout    time.Duration
	notionProps      notionProperties

	historyDBPath string

	redisAddr     string
	redisPassword string
	redisDB       int
	queueName     string
	concurrency   int
}

func (c config) jobsEnabled() bool {
	return strings.TrimSpace(c.redisAddr) != ""
}

func newViper(envFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("PORT", 8000)
	v.SetDefault("UPLOAD_FOLDER", "uploads")
	v.SetDefault("MAX_CONTENT_LENGTH", 16*1024*1024)
	v.SetDefault("LOG_LEVEL", "info")

	v.SetDefault("MODEL_PROVIDER", "anthropic")
	v.SetDefault("ANTHROPIC_MODEL", "claude-3-5-sonnet-20241022")
	v.SetDefault("ANTHROPIC_BASE_URL", "https://api.anthropic.com/v1")
	v.SetDefault("ANTHROPIC_MAX_TOKENS", 2000)
	v.SetDefault("GEMINI_MODEL", "gemini-2.5-flash")
	v.SetDefault("MODEL_TIMEOUT", "3m")

	v.SetDefault("NOTION_BASE_URL", "https://api.notion.com/v1")
	v.SetDefault("NOTION_PAGE_SIZE", 100)
	v.SetDefault("NOTION_TIMEOUT", "30s")
	v.SetDefault("NOTION_PROP_TITLE", "업무티켓명")
	v.SetDefault("NOTION_PROP_STATUS", "상태")
	v.SetDefault("NOTION_PROP_PROGRESS", "진행률")
	v.SetDefault("NOTION_PROP_PRIORITY", "우선순위")
	v.SetDefault("NOTION_PROP_CATEGORY", "세부범주")
	v.SetDefault("NOTION_PROP_START", "발제일")
	v.SetDefault("NOTION_PROP_DEADLINE", "목표기한")

	v.SetDefault("HISTORY_DB_PATH", "data/history.db")

	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ASYNQ_QUEUE", "default")
	v.SetDefault("ASYNQ_CONCURRENCY", 2)

	v.AutomaticEnv()

	envFile = strings.TrimSpace(envFile)
	if envFile == "" {
		return v, nil
	}
	if _, err := os.Stat(envFile); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return v, nil
		}
		return nil, fmt.Errorf("stat env file %s: %w", envFile, err)
	}
	v.SetConfigFile(envFile)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read env file %s: %w", envFile, err)
	}
	return v, nil
}

func loadConfig(envFile string) (config, error) {
	v, err := newViper(envFile)
	if err != nil {
		return config{}, err
	}

	port := strings.TrimSpace(v.GetString("PORT"))
	if port == "" {
		port = "8000"
	}
	addr := port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}

	cfg := config{
		addr:           addr,
		uploadDir:      v.GetString("UPLOAD_FOLDER"),
		maxUploadBytes: v.GetInt64("MAX_CONTENT_LENGTH"),
		logLevel:       v.GetString("LOG_LEVEL"),

		modelProvider:    strings.ToLower(strings.TrimSpace(v.GetString("MODEL_PROVIDER"))),
		modelMaxTokens:   v.GetInt("ANTHROPIC_MAX_TOKENS"),
		modelTimeout:     v.GetDuration("MODEL_TIMEOUT"),
		anthropicAPIKey:  strings.TrimSpace(v.GetString("ANTHROPIC_API_KEY")),
		anthropicModel:   v.GetString("ANTHROPIC_MODEL"),
		anthropicBaseURL: strings.TrimRight(v.GetString("ANTHROPIC_BASE_URL"), "/"),
		geminiAPIKey:     strings.TrimSpace(v.GetString("GEMINI_API_KEY")),
		geminiModel:      v.GetString("GEMINI_MODEL"),

		notionToken:      strings.TrimSpace(v.GetString("NOTION_TOKEN")),
		notionDatabaseID: strings.TrimSpace(v.GetString("NOTION_DATABASE_ID")),
		notionBaseURL:    strings.TrimRight(v.GetString("NOTION_BASE_URL"), "/"),
		notionPageSize:   v.GetInt("NOTION_PAGE_SIZE"),
		notionTimeout:    v.GetDuration("NOTION_TIMEOUT"),
		notionProps: notionProperties{
			title:    v.GetString("NOTION_PROP_TITLE"),
			status:   v.GetString("NOTION_PROP_STATUS"),
			progress: v.GetString("NOTION_PROP_PROGRESS"),
			priority: v.GetString("NOTION_PROP_PRIORITY"),
			category: v.GetString("NOTION_PROP_CATEGORY"),
			start:    v.GetString("NOTION_PROP_START"),
			deadline: v.GetString("NOTION_PROP_DEADLINE"),
		},

		historyDBPath: v.GetString("HISTORY_DB_PATH"),

		redisAddr:     strings.TrimSpace(v.GetString("REDIS_ADDR")),
		redisPassword: v.GetString("REDIS_PASSWORD"),
		redisDB:       v.GetInt("REDIS_DB"),
		queueName:     v.GetString("ASYNQ_QUEUE"),
		concurrency:   v.GetInt("ASYNQ_CONCURRENCY"),
	}

	if cfg.maxUploadBytes <= 0 {
		return config{}, fmt.Errorf("MAX_CONTENT_LENGTH must be positive, got %d", cfg.maxUploadBytes)
	}
	if cfg.notionPageSize <= 0 || cfg.notionPageSize > 100 {
		return config{}, fmt.Errorf("NOTION_PAGE_SIZE must be between 1 and 100, got %d", cfg.notionPageSize)
	}
	switch cfg.modelProvider {
	case "anthropic", "gemini":
	default:
		return config{}, fmt.Errorf("unknown MODEL_PROVIDER %q", cfg.modelProvider)
	}
	if cfg.concurrency <= 0 {
		cfg.concurrency = 1
	}
	return cfg, nil
}
