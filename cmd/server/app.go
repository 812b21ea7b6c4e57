package main

import (
	"context"
	"strings"

	"github.com/devmarkblog/internal/auth"
	"github.com/devmarkblog/internal/config"
	"github.com/devmarkblog/internal/content"
	"github.com/devmarkblog/internal/db"
	"github.com/devmarkblog/internal/feed"
	"github.com/devmarkblog/internal/handler"
	"github.com/devmarkblog/internal/logging"
	"github.com/devmarkblog/internal/router"
	"github.com/devmarkblog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// runtime 汇总一次命令执行共享的配置、日志与数据库连接。
type runtime struct {
	cfg    config.AppConfig
	logger *logrus.Logger
	db     *gorm.DB
	flush  func()
}

func bootstrap(ctx context.Context) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, eris.Wrap(err, "failure loading configuration")
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, eris.Wrap(err, "failure initialising logger")
	}

	flush, err := logging.InitSentry(logger, logging.SentrySettings{
		DSN:         cfg.SentryDSN,
		Environment: cfg.Environment,
	})
	if err != nil {
		return nil, eris.Wrap(err, "failure initialising sentry")
	}

	gdb, err := db.Open(db.Options{
		URL:    cfg.DatabaseURL,
		Path:   cfg.DatabasePath,
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		flush()
		return nil, eris.Wrap(err, "opening database")
	}

	if err := db.EnsureSchema(ctx, gdb); err != nil {
		_ = db.Close(gdb)
		flush()
		return nil, eris.Wrap(err, "running migrations")
	}

	return &runtime{cfg: cfg, logger: logger, db: gdb, flush: flush}, nil
}

func (r *runtime) Close() {
	if err := db.Close(r.db); err != nil {
		r.logger.WithError(err).Error("closing database")
	}
	r.flush()
}

// newAuthenticator 优先使用托管认证服务，未配置时回退到本地账号表。
func newAuthenticator(cfg config.AppConfig, gdb *gorm.DB) (auth.Authenticator, error) {
	if cfg.HostedAuthEnabled() {
		return auth.NewHostedAuthenticator(auth.HostedConfig{
			BaseURL:   cfg.AuthURL,
			AnonKey:   cfg.AuthAnonKey,
			JWTSecret: cfg.AuthJWTSecret,
		})
	}

	signer, err := auth.NewTokenSigner(cfg.SessionSecret, "devmarkblog", 0)
	if err != nil {
		return nil, eris.Wrap(err, "building token signer")
	}
	return auth.NewLocalAuthenticator(gdb, signer), nil
}

func newEngine(cfg config.AppConfig, logger *logrus.Logger, gdb *gorm.DB, authenticator auth.Authenticator) *gin.Engine {
	posts := service.NewPostService(gdb)

	var fallback content.Source
	if dir := strings.TrimSpace(cfg.ContentDir); dir != "" {
		fallback = content.NewMarkdownSource(dir)
	}

	api := handler.NewAPI(handler.Options{
		Posts:      posts,
		Categories: service.NewCategoryService(gdb),
		Content:    content.NewResolver(content.NewDatabaseSource(posts), fallback, logger),
		Feed: feed.NewBuilder(feed.Channel{
			SiteURL:     cfg.SiteBaseURL,
			Title:       cfg.SiteTitle,
			Description: cfg.SiteDescription,
		}),
		Auth:   authenticator,
		Logger: logger,
		Site: handler.SiteInfo{
			Title:       cfg.SiteTitle,
			Description: cfg.SiteDescription,
			BaseURL:     cfg.SiteBaseURL,
		},
	})

	return router.SetupRouter(router.Options{
		API:            api,
		Logger:         logger,
		SessionSecret:  cfg.SessionSecret,
		SecureCookies:  strings.HasPrefix(cfg.SiteBaseURL, "https://") && cfg.Environment == "production",
		TemplateDir:    cfg.TemplateDir,
		StaticDir:      "web/static",
		TrustedProxies: cfg.TrustedProxies,
	})
}
