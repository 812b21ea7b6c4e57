package handler

import (
	"strings"
	"time"

	"github.com/devmarkblog/internal/auth"
	"github.com/devmarkblog/internal/content"
	"github.com/devmarkblog/internal/feed"
	"github.com/devmarkblog/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// SiteInfo 是模板与 RSS 共用的站点信息。
type SiteInfo struct {
	Title       string
	Description string
	BaseURL     string
}

// Options wires the dependencies of an API.
type Options struct {
	Posts      *service.PostService
	Categories *service.CategoryService
	Content    *content.Resolver
	Feed       *feed.Builder
	Auth       auth.Authenticator
	Logger     logrus.FieldLogger
	Site       SiteInfo
}

// API bundles shared dependencies for HTTP handlers.
type API struct {
	posts      *service.PostService
	categories *service.CategoryService
	content    *content.Resolver
	feed       *feed.Builder
	auth       auth.Authenticator
	logger     logrus.FieldLogger
	site       SiteInfo
	now        func() time.Time
}

// NewAPI constructs a handler set with shared services.
func NewAPI(opts Options) *API {
	logger := opts.Logger
	if logger == nil {
		nop := logrus.New()
		nop.SetLevel(logrus.PanicLevel)
		logger = nop
	}

	site := opts.Site
	site.BaseURL = strings.TrimRight(strings.TrimSpace(site.BaseURL), "/")
	if strings.TrimSpace(site.Title) == "" {
		site.Title = "DevMarkBlog"
	}

	builder := opts.Feed
	if builder == nil {
		builder = feed.NewBuilder(feed.Channel{
			SiteURL:     site.BaseURL,
			Title:       site.Title,
			Description: site.Description,
		})
	}

	return &API{
		posts:      opts.Posts,
		categories: opts.Categories,
		content:    opts.Content,
		feed:       builder,
		auth:       opts.Auth,
		logger:     logger,
		site:       site,
		now:        time.Now,
	}
}

func (a *API) renderHTML(c *gin.Context, status int, template string, data gin.H) {
	payload := gin.H{}
	for key, value := range data {
		payload[key] = value
	}

	if _, exists := payload["site"]; !exists {
		payload["site"] = gin.H{
			"title":       a.site.Title,
			"description": a.site.Description,
			"url":         a.site.BaseURL,
		}
	}
	if _, exists := payload["currentUser"]; !exists {
		if user, ok := currentUser(c); ok {
			payload["currentUser"] = user
		}
	}
	if _, exists := payload["year"]; !exists {
		payload["year"] = a.now().Year()
	}

	c.HTML(status, template, payload)
}

func (a *API) requestLogger(c *gin.Context) logrus.FieldLogger {
	return a.logger.WithFields(logrus.Fields{
		"method": c.Request.Method,
		"path":   c.Request.URL.Path,
	})
}
