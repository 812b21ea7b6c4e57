package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr      string
	Port            string
	GinMode         string
	LogLevel        string
	Environment     string
	SentryDSN       string
	DatabaseURL     string
	DatabasePath    string
	SessionSecret   string
	SiteBaseURL     string
	SiteTitle       string
	SiteDescription string
	ContentDir      string
	TemplateDir     string
	AuthURL         string
	AuthAnonKey     string
	AuthJWTSecret   string
	AdminUsername   string
	AdminPassword   string
	TrustedProxies  []string
	ShutdownGrace   time.Duration
}

const defaultShutdownGrace = 10 * time.Second

// HostedAuthEnabled reports whether a hosted auth service is configured.
func (c AppConfig) HostedAuthEnabled() bool {
	return c.AuthURL != "" && c.AuthAnonKey != "" && c.AuthJWTSecret != ""
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
func Load() (AppConfig, error) {
	port := getEnv("PORT", "8080")

	listenAddr := getEnv("LISTEN_ADDR", "")
	if listenAddr == "" {
		listenAddr = fmt.Sprintf(":%s", port)
	}

	cfg := AppConfig{
		ListenAddr:      listenAddr,
		Port:            port,
		GinMode:         getEnv("GIN_MODE", "release"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		Environment:     getEnv("ENV", "development"),
		SentryDSN:       getEnv("SENTRY_DSN", ""),
		DatabaseURL:     getEnv("DATABASE_URL", ""),
		DatabasePath:    getEnv("DATABASE_PATH", "devmarkblog.db"),
		SessionSecret:   getEnv("SESSION_SECRET", "devmarkblog-dev-secret"),
		SiteBaseURL:     strings.TrimRight(getEnv("SITE_URL", "https://example.com"), "/"),
		SiteTitle:       getEnv("SITE_TITLE", "DevMarkBlog"),
		SiteDescription: getEnv("SITE_DESCRIPTION", "A minimal, developer-friendly blog written in Markdown"),
		ContentDir:      getEnv("CONTENT_DIR", "content/posts"),
		TemplateDir:     getEnv("TEMPLATE_DIR", "web/template"),
		AuthURL:         strings.TrimRight(getEnv("AUTH_URL", ""), "/"),
		AuthAnonKey:     getEnv("AUTH_ANON_KEY", ""),
		AuthJWTSecret:   getEnv("AUTH_JWT_SECRET", ""),
		AdminUsername:   getEnv("ADMIN_USERNAME", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		TrustedProxies:  splitList(getEnv("TRUSTED_PROXIES", "")),
		ShutdownGrace:   defaultShutdownGrace,
	}

	if raw := getEnv("SHUTDOWN_GRACE", ""); raw != "" {
		grace, err := time.ParseDuration(raw)
		if err != nil {
			return AppConfig{}, eris.Wrapf(err, "invalid SHUTDOWN_GRACE value: %s", raw)
		}
		if grace <= 0 {
			return AppConfig{}, eris.Errorf("SHUTDOWN_GRACE must be positive, got %s", raw)
		}
		cfg.ShutdownGrace = grace
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

// splitList 拆分逗号分隔的配置项，忽略空白元素
func splitList(raw string) []string {
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
