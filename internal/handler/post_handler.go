package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/devmarkblog/internal/service"
	"github.com/gin-gonic/gin"
)

// postRequest 是后台编辑器提交的文章 JSON。
type postRequest struct {
	Title       string  `json:"title"`
	Slug        string  `json:"slug"`
	Content     string  `json:"content"`
	Excerpt     *string `json:"excerpt"`
	Status      string  `json:"status"`
	PublishedAt *string `json:"published_at"`
	CategoryID  *string `json:"category_id"`
}

var errInvalidPublishedAt = errors.New("published_at must be an ISO 8601 date")

var publishedAtLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func (r postRequest) toInput() (service.PostInput, error) {
	input := service.PostInput{
		Title:      r.Title,
		Slug:       r.Slug,
		Content:    r.Content,
		Excerpt:    r.Excerpt,
		Status:     r.Status,
		CategoryID: r.CategoryID,
	}

	if r.PublishedAt != nil {
		raw := strings.TrimSpace(*r.PublishedAt)
		if raw != "" {
			parsed, ok := parsePublishedAt(raw)
			if !ok {
				return input, errInvalidPublishedAt
			}
			input.PublishedAt = &parsed
		}
	}

	return input, nil
}

func parsePublishedAt(raw string) (time.Time, bool) {
	for _, layout := range publishedAtLayouts {
		if parsed, err := time.Parse(layout, raw); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// CreatePost 创建新文章
func (a *API) CreatePost(c *gin.Context) {
	var req postRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	if user, ok := currentUser(c); ok && user.ID != "" {
		authorID := user.ID
		input.AuthorID = &authorID
	}

	post, err := a.posts.Create(c.Request.Context(), input)
	if err != nil {
		a.handlePostError(c, err, "failed to create post")
		return
	}

	c.JSON(http.StatusCreated, gin.H{"post": post, "message": "Post created successfully"})
}

// UpdatePost 更新文章
func (a *API) UpdatePost(c *gin.Context) {
	id, ok := queryID(c, "Post ID is required")
	if !ok {
		return
	}

	// 先确认文章存在，未知 id 一律 404
	if _, err := a.posts.Find(c.Request.Context(), id); err != nil {
		a.handlePostError(c, err, "failed to load post")
		return
	}

	var req postRequest
	if !bindJSON(c, &req, "Invalid request body") {
		return
	}

	input, err := req.toInput()
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	post, err := a.posts.Update(c.Request.Context(), id, input)
	if err != nil {
		a.handlePostError(c, err, "failed to update post")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "message": "Post updated successfully"})
}

// DeletePost 删除文章后回到文章列表
func (a *API) DeletePost(c *gin.Context) {
	id, ok := queryID(c, "Post ID is required")
	if !ok {
		return
	}

	if err := a.posts.Delete(c.Request.Context(), id); err != nil {
		a.handlePostError(c, err, "failed to delete post")
		return
	}

	c.Redirect(http.StatusSeeOther, "/admin/posts")
}

// ShowPostList 渲染后台文章列表
func (a *API) ShowPostList(c *gin.Context) {
	posts, err := a.posts.ListAll(c.Request.Context())
	if err != nil {
		a.requestLogger(c).WithError(err).Error("failed to list posts")
		a.renderHTML(c, http.StatusInternalServerError, "post_list.html", gin.H{
			"title": "Posts",
			"error": "Failed to load posts",
		})
		return
	}

	a.renderHTML(c, http.StatusOK, "post_list.html", gin.H{
		"title": "Posts",
		"posts": posts,
	})
}

// ShowPostNew 渲染新建文章页面
func (a *API) ShowPostNew(c *gin.Context) {
	a.showPostEditor(c, "New post", nil)
}

// ShowPostEdit 渲染文章编辑页面，文章不存在时返回 404
func (a *API) ShowPostEdit(c *gin.Context) {
	post, err := a.posts.Find(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			a.NotFound(c)
			return
		}
		a.requestLogger(c).WithError(err).Error("failed to load post")
		a.renderHTML(c, http.StatusInternalServerError, "post_edit.html", gin.H{
			"title": "Edit post",
			"error": "Failed to load post",
		})
		return
	}

	a.showPostEditor(c, "Edit post", post)
}

func (a *API) showPostEditor(c *gin.Context, title string, post any) {
	categories, err := a.categories.List(c.Request.Context())
	if err != nil {
		a.requestLogger(c).WithError(err).Error("failed to list categories")
		a.renderHTML(c, http.StatusInternalServerError, "post_edit.html", gin.H{
			"title": title,
			"error": "Failed to load categories",
		})
		return
	}

	data := gin.H{
		"title":      title,
		"categories": categories,
	}
	if post != nil {
		data["post"] = post
	}
	a.renderHTML(c, http.StatusOK, "post_edit.html", data)
}

func (a *API) handlePostError(c *gin.Context, err error, logMessage string) {
	switch {
	case errors.Is(err, service.ErrPostNotFound):
		respondError(c, http.StatusNotFound, "Post not found")
	case errors.Is(err, service.ErrTitleRequired):
		respondError(c, http.StatusBadRequest, "Title is required")
	case errors.Is(err, service.ErrSlugRequired):
		respondError(c, http.StatusBadRequest, "Slug is required")
	case errors.Is(err, service.ErrContentRequired):
		respondError(c, http.StatusBadRequest, "Content is required")
	case errors.Is(err, service.ErrInvalidStatus):
		respondError(c, http.StatusBadRequest, "Status must be draft or published")
	case errors.Is(err, service.ErrCategoryMismatch):
		respondError(c, http.StatusBadRequest, "Category does not exist")
	default:
		a.respondInternalError(c, err, logMessage)
	}
}
