package content

import (
	"context"
	"errors"

	"github.com/devmarkblog/internal/db"
	"github.com/devmarkblog/internal/service"
)

// PublishedPosts is the subset of the post repository used for public reads.
type PublishedPosts interface {
	ListPublished(ctx context.Context) ([]db.Post, error)
	FindPublishedBySlug(ctx context.Context, slug string) (*db.Post, error)
}

// DatabaseSource reads published posts from the relational store.
type DatabaseSource struct {
	posts PublishedPosts
}

// NewDatabaseSource wraps a post repository.
func NewDatabaseSource(posts PublishedPosts) *DatabaseSource {
	return &DatabaseSource{posts: posts}
}

// List returns every published post.
func (s *DatabaseSource) List(ctx context.Context) ([]Entry, error) {
	posts, err := s.posts.ListPublished(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(posts))
	for _, post := range posts {
		entries = append(entries, entryFromPost(post))
	}
	return entries, nil
}

// Get returns the published post with the given slug.
func (s *DatabaseSource) Get(ctx context.Context, slug string) (*Entry, error) {
	post, err := s.posts.FindPublishedBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	entry := entryFromPost(*post)
	return &entry, nil
}

func entryFromPost(post db.Post) Entry {
	entry := Entry{
		Title:       post.Title,
		Slug:        post.Slug,
		Date:        post.DisplayDate(),
		Description: post.ExcerptText(),
		Tags:        []string{},
		Content:     post.Content,
		Source:      SourceDatabase,
	}
	if post.Category != nil {
		entry.Category = post.Category.Name
		entry.Tags = append(entry.Tags, post.Category.Name)
	}
	return entry
}
