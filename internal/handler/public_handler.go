package handler

import (
	"errors"
	"html/template"
	"net/http"

	"github.com/devmarkblog/internal/content"
	"github.com/devmarkblog/internal/feed"
	"github.com/gin-gonic/gin"
)

const homeRecentLimit = 3

// ShowHome renders the site intro and the most recent posts.
func (a *API) ShowHome(c *gin.Context) {
	entries := a.resolvedEntries(c)
	if len(entries) > homeRecentLimit {
		entries = entries[:homeRecentLimit]
	}

	a.renderHTML(c, http.StatusOK, "home.html", gin.H{
		"title": a.site.Title,
		"posts": entries,
	})
}

// ShowBlogList renders every published post, newest first.
func (a *API) ShowBlogList(c *gin.Context) {
	a.renderHTML(c, http.StatusOK, "blog_list.html", gin.H{
		"title": "Blog",
		"posts": a.resolvedEntries(c),
	})
}

// ShowPostDetail renders a single post as sanitized HTML.
func (a *API) ShowPostDetail(c *gin.Context) {
	slug := c.Param("slug")
	if a.content == nil {
		a.NotFound(c)
		return
	}

	entry, err := a.content.Get(c.Request.Context(), slug)
	if err != nil {
		if !errors.Is(err, content.ErrNotFound) {
			a.requestLogger(c).WithError(err).WithField("slug", slug).Error("failed to resolve post")
		}
		a.NotFound(c)
		return
	}

	htmlContent, err := renderMarkdown(entry.Content)
	if err != nil {
		a.requestLogger(c).WithError(err).WithField("slug", slug).Error("failed to render markdown")
		htmlContent = template.HTML(template.HTMLEscapeString(entry.Content))
	}

	a.renderHTML(c, http.StatusOK, "post_detail.html", gin.H{
		"title":   entry.Title,
		"post":    entry,
		"content": htmlContent,
	})
}

// RSS serves the feed of published posts.
func (a *API) RSS(c *gin.Context) {
	entries := []content.Entry{}
	if a.content != nil {
		resolved, err := a.content.List(c.Request.Context())
		if err != nil {
			a.respondInternalError(c, err, "failed to list posts for rss")
			return
		}
		entries = resolved
	}

	body, err := a.feed.Build(entries)
	if err != nil {
		a.respondInternalError(c, err, "failed to build rss")
		return
	}

	c.Data(http.StatusOK, feed.ContentType, body)
}

// NotFound renders the not-found page.
func (a *API) NotFound(c *gin.Context) {
	a.renderHTML(c, http.StatusNotFound, "not_found.html", gin.H{
		"title": "Page not found",
	})
}

// resolvedEntries lists posts for public pages; failures are logged and shown as empty.
func (a *API) resolvedEntries(c *gin.Context) []content.Entry {
	if a.content == nil {
		return []content.Entry{}
	}

	entries, err := a.content.List(c.Request.Context())
	if err != nil {
		a.requestLogger(c).WithError(err).Error("failed to resolve posts")
		return []content.Entry{}
	}
	return entries
}
