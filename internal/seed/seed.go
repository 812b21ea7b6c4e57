// Package seed fills an empty database with sample categories and posts.
package seed

import (
	"context"
	"time"

	"github.com/devmarkblog/internal/db"
	"github.com/devmarkblog/internal/service"
	"github.com/rotisserie/eris"
	"github.com/sirupsen/logrus"
)

// Result 记录本次生成的数据量。
type Result struct {
	Categories int
	Posts      int
	Skipped    bool
}

type samplePost struct {
	title    string
	slug     string
	excerpt  string
	content  string
	category string
	status   string
	ageDays  int
}

var sampleCategories = []service.CategoryInput{
	{Name: "Go", Slug: "go"},
	{Name: "Web Development", Slug: "web-development"},
	{Name: "Databases", Slug: "databases"},
	{Name: "Notes", Slug: "notes"},
}

var samplePosts = []samplePost{
	{
		title:    "Building fast web services in Go",
		slug:     "building-fast-web-services-in-go",
		excerpt:  "Framework choice, profiling and a few patterns that keep latency low.",
		content:  "## Why Go\n\nGoroutines and a small standard library make Go a good fit for HTTP services.\n\n```go\nr := gin.New()\nr.GET(\"/ping\", func(c *gin.Context) { c.String(200, \"pong\") })\n```\n",
		category: "go",
		status:   db.PostStatusPublished,
		ageDays:  21,
	},
	{
		title:    "Writing posts in Markdown",
		slug:     "writing-posts-in-markdown",
		excerpt:  "Front matter, headings and code blocks.",
		content:  "Posts are plain Markdown. Use `#` for headings, fenced blocks for code and `---` front matter for metadata.\n",
		category: "web-development",
		status:   db.PostStatusPublished,
		ageDays:  14,
	},
	{
		title:    "SQLite tuning notes",
		slug:     "sqlite-tuning-notes",
		excerpt:  "Indexes, WAL mode and busy timeouts.",
		content:  "1. Index the columns you filter on.\n2. Enable WAL for concurrent readers.\n3. Set a busy timeout.\n",
		category: "databases",
		status:   db.PostStatusPublished,
		ageDays:  7,
	},
	{
		title:    "GORM tips",
		slug:     "gorm-tips",
		excerpt:  "Preloading, sessions and transactions.",
		content:  "Use `Preload` for associations, `Session` to reuse conditions and `Transaction` for multi-step writes.\n",
		category: "go",
		status:   db.PostStatusPublished,
		ageDays:  3,
	},
	{
		title:    "Draft: gin middleware in practice",
		slug:     "gin-middleware-in-practice",
		content:  "Work in progress.\n",
		category: "web-development",
		status:   db.PostStatusDraft,
	},
}

// Run 在数据库没有文章时写入示例分类与文章；已有文章则跳过。
func Run(ctx context.Context, posts *service.PostService, categories *service.CategoryService, logger logrus.FieldLogger, now time.Time) (Result, error) {
	counts, err := posts.Counts(ctx)
	if err != nil {
		return Result{}, eris.Wrap(err, "counting existing posts")
	}
	if counts.Published+counts.Draft > 0 {
		logger.Info("posts already exist, skipping seed")
		return Result{Skipped: true}, nil
	}

	var result Result
	categoryIDs := make(map[string]string, len(sampleCategories))

	existing, err := categories.List(ctx)
	if err != nil {
		return Result{}, eris.Wrap(err, "listing categories")
	}
	for _, category := range existing {
		categoryIDs[category.Slug] = category.ID
	}

	for _, input := range sampleCategories {
		if _, ok := categoryIDs[input.Slug]; ok {
			continue
		}
		category, err := categories.Create(ctx, input)
		if err != nil {
			return result, eris.Wrapf(err, "creating category %s", input.Slug)
		}
		categoryIDs[category.Slug] = category.ID
		result.Categories++
	}

	for _, sample := range samplePosts {
		input := service.PostInput{
			Title:   sample.title,
			Slug:    sample.slug,
			Content: sample.content,
			Status:  sample.status,
		}
		if sample.excerpt != "" {
			excerpt := sample.excerpt
			input.Excerpt = &excerpt
		}
		if id, ok := categoryIDs[sample.category]; ok {
			categoryID := id
			input.CategoryID = &categoryID
		}
		if sample.status == db.PostStatusPublished {
			publishedAt := now.AddDate(0, 0, -sample.ageDays)
			input.PublishedAt = &publishedAt
		}

		if _, err := posts.Create(ctx, input); err != nil {
			return result, eris.Wrapf(err, "creating post %s", sample.slug)
		}
		result.Posts++
	}

	logger.WithFields(logrus.Fields{
		"categories": result.Categories,
		"posts":      result.Posts,
	}).Info("seeded sample content")
	return result, nil
}
