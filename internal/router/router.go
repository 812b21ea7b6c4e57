package router

import (
	"fmt"
	"html/template"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/devmarkblog/internal/handler"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const (
	sessionName   = "devmarkblog_session"
	sessionMaxAge = 12 * time.Hour
)

// Options 汇总构建路由所需的依赖。
type Options struct {
	API           *handler.API
	Logger        logrus.FieldLogger
	SessionSecret string
	SecureCookies bool
	TemplateDir   string
	StaticDir     string
	LoginLimiter  *handler.LoginLimiter

	// 为空时只认直连地址，X-Forwarded-For 不参与 ClientIP
	TrustedProxies []string
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	if err := r.SetTrustedProxies(opts.TrustedProxies); err != nil {
		if opts.Logger != nil {
			opts.Logger.WithError(err).Warn("invalid trusted proxies, ignoring forwarded headers")
		}
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(gin.Recovery())
	if opts.Logger != nil {
		r.Use(handler.RequestLogger(opts.Logger))
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(opts.SessionSecret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   int(sessionMaxAge.Seconds()),
		HttpOnly: true,
		Secure:   opts.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(sessionName, store))

	// 加载模板并添加自定义函数
	r.SetFuncMap(templateFuncs())
	if opts.TemplateDir != "" {
		pattern := filepath.Join(opts.TemplateDir, "*.html")
		if matches, err := filepath.Glob(pattern); err == nil && len(matches) > 0 {
			r.LoadHTMLGlob(pattern)
		}
	}

	if opts.StaticDir != "" {
		if info, err := os.Stat(opts.StaticDir); err == nil && info.IsDir() {
			r.Static("/static", opts.StaticDir)
		}
	}

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	api := opts.API
	limiter := opts.LoginLimiter
	if limiter == nil {
		limiter = handler.NewLoginLimiter(time.Minute, 5)
	}

	// 公开页面
	r.GET("/", api.ShowHome)
	r.GET("/blog", api.ShowBlogList)
	r.GET("/blog/:slug", api.ShowPostDetail)
	r.GET("/api/rss", api.RSS)

	// 认证
	r.GET("/admin/login", api.ShowLoginPage)
	r.POST("/admin/login", limiter.Middleware(), api.Login)
	r.GET("/api/auth/callback", api.AuthCallback)
	r.POST("/api/auth/callback", api.AuthCallback)
	r.POST("/api/auth/signout", api.SignOut)

	// 后台管理路由
	admin := r.Group("/admin")
	admin.Use(api.AuthRequired())
	{
		admin.GET("", api.ShowDashboard)
		admin.GET("/posts", api.ShowPostList)
		admin.GET("/posts/new", api.ShowPostNew)
		admin.GET("/posts/:id", api.ShowPostEdit)
		admin.GET("/categories", api.ShowCategoryList)
		admin.GET("/categories/new", api.ShowCategoryNew)
		admin.GET("/categories/:id", api.ShowCategoryEdit)
	}

	// API路由
	apiGroup := r.Group("/api")
	apiGroup.Use(api.APIAuthRequired())
	{
		apiGroup.POST("/posts/create", api.CreatePost)
		apiGroup.POST("/posts/update", api.UpdatePost)
		apiGroup.POST("/posts/delete", api.DeletePost)

		apiGroup.POST("/categories/create", api.CreateCategory)
		apiGroup.POST("/categories/update", api.UpdateCategory)
		apiGroup.POST("/categories/delete", api.DeleteCategory)
	}

	r.NoRoute(api.NotFound)

	return r
}

func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"formatDatePtr": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.Format("January 2, 2006")
		},
		"datetimeLocal": func(t *time.Time) string {
			if t == nil || t.IsZero() {
				return ""
			}
			return t.UTC().Format("2006-01-02T15:04")
		},
		"timeAgo": func(t time.Time) string {
			return formatRelativeTime(time.Now(), t)
		},
		"deref": func(s *string) string {
			if s == nil {
				return ""
			}
			return *s
		},
	}
}

// formatRelativeTime 把时间格式化为 "3 days ago" 这类相对描述。
func formatRelativeTime(now, t time.Time) string {
	if t.IsZero() {
		return ""
	}

	diff := now.Sub(t)
	if diff < time.Minute {
		return "just now"
	}

	switch {
	case diff < time.Hour:
		return plural(int(diff/time.Minute), "minute")
	case diff < 24*time.Hour:
		return plural(int(diff/time.Hour), "hour")
	case diff < 30*24*time.Hour:
		return plural(int(diff/(24*time.Hour)), "day")
	case diff < 365*24*time.Hour:
		return plural(int(diff/(30*24*time.Hour)), "month")
	default:
		return plural(int(diff/(365*24*time.Hour)), "year")
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s ago", unit)
	}
	return fmt.Sprintf("%d %ss ago", n, unit)
}
