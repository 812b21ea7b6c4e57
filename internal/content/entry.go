// Package content resolves public blog posts from the database and from a
// directory of Markdown files, normalizing both into one display shape.
package content

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by a Source when no published post has the slug.
var ErrNotFound = errors.New("content not found")

const (
	SourceDatabase = "database"
	SourceMarkdown = "markdown"
)

// Entry is the normalized shape rendered by public pages and the feed.
type Entry struct {
	Title       string
	Slug        string
	Date        time.Time
	Description string
	Tags        []string
	Content     string
	Category    string
	Source      string
}

// Source yields published entries, newest first.
type Source interface {
	List(ctx context.Context) ([]Entry, error)
	Get(ctx context.Context, slug string) (*Entry, error)
}
