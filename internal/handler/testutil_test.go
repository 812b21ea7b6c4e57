package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/devmarkblog/internal/auth"
	"github.com/devmarkblog/internal/content"
	"github.com/devmarkblog/internal/db"
	"github.com/devmarkblog/internal/service"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ginOnce sync.Once

type stubHTMLRender struct {
	mu   sync.Mutex
	name string
	data interface{}
}

type stubHTMLInstance struct {
	name string
	data interface{}
}

func (r *stubHTMLRender) Instance(name string, data interface{}) render.Render {
	r.mu.Lock()
	r.name = name
	r.data = data
	r.mu.Unlock()
	return &stubHTMLInstance{name: name, data: data}
}

func (r *stubHTMLRender) last() (string, gin.H) {
	r.mu.Lock()
	defer r.mu.Unlock()
	data, _ := r.data.(gin.H)
	return r.name, data
}

func (r *stubHTMLInstance) Render(http.ResponseWriter) error {
	return nil
}

func (r *stubHTMLInstance) WriteContentType(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
}

const testAccessToken = "valid-token"

type stubAuthenticator struct {
	signedOut []string
}

var testUser = auth.User{ID: "author-1", Email: "admin@example.com"}

func (s *stubAuthenticator) SignIn(_ context.Context, email, password string) (*auth.Session, error) {
	if email != testUser.Email || password != "correct" {
		return nil, auth.ErrInvalidCredentials
	}
	return &auth.Session{AccessToken: testAccessToken, ExpiresAt: time.Now().Add(time.Hour), User: testUser}, nil
}

func (s *stubAuthenticator) ExchangeCode(_ context.Context, code string) (*auth.Session, error) {
	if code != "good-code" {
		return nil, errors.New("invalid code")
	}
	return &auth.Session{AccessToken: testAccessToken, ExpiresAt: time.Now().Add(time.Hour), User: testUser}, nil
}

func (s *stubAuthenticator) Verify(_ context.Context, token string) (*auth.User, error) {
	if token != testAccessToken {
		return nil, auth.ErrInvalidToken
	}
	user := testUser
	return &user, nil
}

func (s *stubAuthenticator) SignOut(_ context.Context, token string) error {
	s.signedOut = append(s.signedOut, token)
	return nil
}

type handlerTestEnv struct {
	api    *API
	db     *gorm.DB
	router *gin.Engine
	html   *stubHTMLRender
	auth   *stubAuthenticator
}

func setupHandlerTestEnv(t *testing.T, fallback content.Source) *handlerTestEnv {
	t.Helper()

	ginOnce.Do(func() {
		gin.SetMode(gin.TestMode)
	})

	dsn := fmt.Sprintf("file:handler-%d?mode=memory&cache=shared&_foreign_keys=1", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := db.EnsureSchema(context.Background(), gdb); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close(gdb)
	})

	posts := service.NewPostService(gdb)
	authenticator := &stubAuthenticator{}
	api := NewAPI(Options{
		Posts:      posts,
		Categories: service.NewCategoryService(gdb),
		Content:    content.NewResolver(content.NewDatabaseSource(posts), fallback, nil),
		Auth:       authenticator,
		Site:       SiteInfo{Title: "Test Blog", Description: "testing", BaseURL: "https://blog.test/"},
	})

	html := &stubHTMLRender{}
	r := gin.New()
	r.HTMLRender = html
	r.Use(sessions.Sessions("devmarkblog_session", cookie.NewStore([]byte("test-secret"))))

	r.GET("/", api.ShowHome)
	r.GET("/blog", api.ShowBlogList)
	r.GET("/blog/:slug", api.ShowPostDetail)
	r.GET("/api/rss", api.RSS)
	r.GET("/admin/login", api.ShowLoginPage)
	r.POST("/admin/login", api.Login)
	r.GET("/api/auth/callback", api.AuthCallback)
	r.POST("/api/auth/signout", api.SignOut)

	admin := r.Group("/admin", api.AuthRequired())
	admin.GET("", api.ShowDashboard)
	admin.GET("/posts", api.ShowPostList)
	admin.GET("/posts/new", api.ShowPostNew)
	admin.GET("/posts/:id", api.ShowPostEdit)
	admin.GET("/categories", api.ShowCategoryList)
	admin.GET("/categories/new", api.ShowCategoryNew)
	admin.GET("/categories/:id", api.ShowCategoryEdit)

	apiGroup := r.Group("/api", api.APIAuthRequired())
	apiGroup.POST("/posts/create", api.CreatePost)
	apiGroup.POST("/posts/update", api.UpdatePost)
	apiGroup.POST("/posts/delete", api.DeletePost)
	apiGroup.POST("/categories/create", api.CreateCategory)
	apiGroup.POST("/categories/update", api.UpdateCategory)
	apiGroup.POST("/categories/delete", api.DeleteCategory)

	r.NoRoute(api.NotFound)

	return &handlerTestEnv{api: api, db: gdb, router: r, html: html, auth: authenticator}
}

func (e *handlerTestEnv) login(t *testing.T) []*http.Cookie {
	t.Helper()

	form := url.Values{"email": {testUser.Email}, "password": {"correct"}}
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	if w.Code != http.StatusSeeOther {
		t.Fatalf("expected login to redirect, got %d", w.Code)
	}
	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected session cookie after login")
	}
	return cookies
}

func (e *handlerTestEnv) do(method, target string, body interface{}, cookies []*http.Cookie) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	switch v := body.(type) {
	case nil:
		reader = bytes.NewReader(nil)
	case string:
		reader = bytes.NewReader([]byte(v))
	default:
		raw, _ := json.Marshal(v)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var payload map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response %q: %v", w.Body.String(), err)
	}
	return payload
}

func mustCreatePost(t *testing.T, gdb *gorm.DB, input service.PostInput) *db.Post {
	t.Helper()
	post, err := service.NewPostService(gdb).Create(context.Background(), input)
	if err != nil {
		t.Fatalf("failed to create post: %v", err)
	}
	return post
}
