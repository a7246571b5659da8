package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port             string
	CRMBaseURL       string
	ChannelBaseURL   string
	CountryCode      string
	LocalDigits      int
	SessionWindow    time.Duration
	DefaultTemplate  string
	TemplateLanguage string
	LeadSource       string
	ScratchpadPath   string
	ChainTimeout     time.Duration
}

func NewConfig() *Config {
	// .env is optional; deployments usually set the environment directly
	_ = godotenv.Load()

	return &Config{
		Port:             getEnv("PORT", "8081"),
		CRMBaseURL:       getEnv("CRM_BASE_URL", "http://localhost:5000/api"),
		ChannelBaseURL:   getEnv("CHANNEL_BASE_URL", "http://localhost:5100/api"),
		CountryCode:      getEnv("DEFAULT_COUNTRY_CODE", "91"),
		LocalDigits:      getEnvInt("LOCAL_SIGNIFICANT_DIGITS", 10),
		SessionWindow:    time.Duration(getEnvInt("SESSION_WINDOW_HOURS", 24)) * time.Hour,
		DefaultTemplate:  getEnv("DEFAULT_TEMPLATE_NAME", "resume_conversation"),
		TemplateLanguage: getEnv("TEMPLATE_LANGUAGE_CODE", "en"),
		LeadSource:       getEnv("LEAD_SOURCE_TAG", "whatsapp"),
		ScratchpadPath:   getEnv("SCRATCHPAD_PATH", "leadflow-scratchpad.db"),
		ChainTimeout:     time.Duration(getEnvInt("CHAIN_TIMEOUT_SECONDS", 30)) * time.Second,
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
