package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/devmarkblog/internal/auth"
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
)

const (
	sessionTokenKey = "access_token"
	sessionUserKey  = "user_id"
	sessionEmailKey = "user_email"
	currentUserKey  = "__current_user"

	loginPath = "/admin/login"
)

// ShowLoginPage 渲染登录页面，已登录时直接进入后台。
func (a *API) ShowLoginPage(c *gin.Context) {
	if a.authenticate(c) {
		c.Redirect(http.StatusFound, "/admin")
		return
	}

	a.renderHTML(c, http.StatusOK, "login.html", gin.H{
		"title": "Admin login",
		"error": strings.TrimSpace(c.Query("error")),
	})
}

// Login 处理表单登录，成功后把访问令牌写入会话。
func (a *API) Login(c *gin.Context) {
	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")

	if a.auth == nil {
		a.renderHTML(c, http.StatusServiceUnavailable, "login.html", gin.H{
			"title": "Admin login",
			"email": email,
			"error": "Authentication is not configured",
		})
		return
	}

	session, err := a.auth.SignIn(c.Request.Context(), email, password)
	if err != nil {
		status := http.StatusUnauthorized
		message := "Invalid email or password"
		if !errors.Is(err, auth.ErrInvalidCredentials) {
			a.requestLogger(c).WithError(err).Error("sign in failed")
			status = http.StatusInternalServerError
			message = "Sign in failed, please try again"
		}
		a.renderHTML(c, status, "login.html", gin.H{
			"title": "Admin login",
			"email": email,
			"error": message,
		})
		return
	}

	if err := a.storeSession(c, session); err != nil {
		a.requestLogger(c).WithError(err).Error("failed to save session")
		a.renderHTML(c, http.StatusInternalServerError, "login.html", gin.H{
			"title": "Admin login",
			"email": email,
			"error": "Failed to save session",
		})
		return
	}

	a.requestLogger(c).WithField("user", session.User.Email).Info("admin signed in")
	c.Redirect(http.StatusSeeOther, "/admin")
}

// AuthCallback exchanges a one-time code for a session and enters the console.
func (a *API) AuthCallback(c *gin.Context) {
	code := strings.TrimSpace(c.Query("code"))
	if code == "" || a.auth == nil {
		c.Redirect(http.StatusSeeOther, "/admin")
		return
	}

	session, err := a.auth.ExchangeCode(c.Request.Context(), code)
	if err != nil {
		a.requestLogger(c).WithError(err).Warn("auth code exchange failed")
		c.Redirect(http.StatusSeeOther, loginPath)
		return
	}

	if err := a.storeSession(c, session); err != nil {
		a.requestLogger(c).WithError(err).Error("failed to save session")
		c.Redirect(http.StatusSeeOther, loginPath)
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin")
}

// SignOut 注销当前会话并回到首页。
func (a *API) SignOut(c *gin.Context) {
	session := sessions.Default(c)

	if token, _ := session.Get(sessionTokenKey).(string); token != "" && a.auth != nil {
		if err := a.auth.SignOut(c.Request.Context(), token); err != nil {
			a.requestLogger(c).WithError(err).Warn("remote sign out failed")
		}
	}

	session.Clear()
	if err := session.Save(); err != nil {
		a.requestLogger(c).WithError(err).Warn("failed to clear session")
	}

	c.Redirect(http.StatusSeeOther, "/")
}

// ShowDashboard 渲染后台主面板
func (a *API) ShowDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	counts, err := a.posts.Counts(ctx)
	if err != nil {
		a.requestLogger(c).WithError(err).Error("failed to count posts")
		a.renderHTML(c, http.StatusInternalServerError, "dashboard.html", gin.H{
			"title": "Dashboard",
			"error": "Failed to load statistics",
		})
		return
	}

	categoryCount, err := a.categories.Count(ctx)
	if err != nil {
		a.requestLogger(c).WithError(err).Error("failed to count categories")
		a.renderHTML(c, http.StatusInternalServerError, "dashboard.html", gin.H{
			"title": "Dashboard",
			"error": "Failed to load statistics",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "dashboard.html", gin.H{
		"title":          "Dashboard",
		"publishedCount": counts.Published,
		"draftCount":     counts.Draft,
		"categoryCount":  categoryCount,
	})
}

// AuthRequired 保护后台页面，未登录时跳转到登录页。
func (a *API) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			c.Redirect(http.StatusFound, loginPath)
			c.Abort()
			return
		}
		c.Next()
	}
}

// APIAuthRequired 保护 JSON 接口，未登录时返回 401。
func (a *API) APIAuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !a.authenticate(c) {
			respondError(c, http.StatusUnauthorized, "Unauthorized")
			c.Abort()
			return
		}
		c.Next()
	}
}

// authenticate verifies the session token and caches the user on the context.
func (a *API) authenticate(c *gin.Context) bool {
	if _, ok := currentUser(c); ok {
		return true
	}
	if a.auth == nil {
		return false
	}

	session := sessions.Default(c)
	token, _ := session.Get(sessionTokenKey).(string)
	if token == "" {
		return false
	}

	user, err := a.auth.Verify(c.Request.Context(), token)
	if err != nil {
		session.Clear()
		_ = session.Save()
		return false
	}

	c.Set(currentUserKey, *user)
	return true
}

func (a *API) storeSession(c *gin.Context, s *auth.Session) error {
	session := sessions.Default(c)
	session.Clear()
	session.Set(sessionTokenKey, s.AccessToken)
	session.Set(sessionUserKey, s.User.ID)
	session.Set(sessionEmailKey, s.User.Email)
	return session.Save()
}

func currentUser(c *gin.Context) (auth.User, bool) {
	value, exists := c.Get(currentUserKey)
	if !exists {
		return auth.User{}, false
	}
	user, ok := value.(auth.User)
	return user, ok
}
