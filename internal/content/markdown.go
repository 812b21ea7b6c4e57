package content

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

const frontMatterDelimiter = "---"

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	time.RFC1123,
	time.RFC1123Z,
}

type frontMatter struct {
	Title       string `yaml:"title"`
	Date        any    `yaml:"date"`
	Slug        string `yaml:"slug"`
	Description string `yaml:"description"`
	Tags        any    `yaml:"tags"`
	Draft       bool   `yaml:"draft"`
}

// MarkdownSource reads *.md files with YAML front matter from a directory.
// The directory is re-read on every call and never written.
type MarkdownSource struct {
	dir string
}

// NewMarkdownSource returns a source rooted at dir.
func NewMarkdownSource(dir string) *MarkdownSource {
	return &MarkdownSource{dir: dir}
}

// List parses every Markdown file, skipping drafts, newest first.
// A missing directory yields an empty list; duplicate slugs are an error.
func (s *MarkdownSource) List(ctx context.Context) ([]Entry, error) {
	files, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Entry{}, nil
		}
		return nil, eris.Wrapf(err, "reading content directory %s", s.dir)
	}

	entries := make([]Entry, 0, len(files))
	seen := make(map[string]string, len(files))

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if file.IsDir() || !strings.EqualFold(filepath.Ext(file.Name()), ".md") {
			continue
		}

		path := filepath.Join(s.dir, file.Name())
		entry, draft, err := ParseMarkdownFile(path)
		if err != nil {
			return nil, err
		}
		if draft {
			continue
		}

		if previous, exists := seen[entry.Slug]; exists {
			return nil, eris.Errorf("duplicate slug %q in %s and %s", entry.Slug, previous, file.Name())
		}
		seen[entry.Slug] = file.Name()
		entries = append(entries, entry)
	}

	slices.SortStableFunc(entries, func(a, b Entry) int {
		if c := b.Date.Compare(a.Date); c != 0 {
			return c
		}
		return strings.Compare(a.Slug, b.Slug)
	})

	return entries, nil
}

// Get returns the entry with the given slug.
func (s *MarkdownSource) Get(ctx context.Context, slug string) (*Entry, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range entries {
		if entries[i].Slug == slug {
			return &entries[i], nil
		}
	}
	return nil, ErrNotFound
}

// ParseMarkdownFile reads one post file. Title and slug default to the file
// name, the date to the file's modification time.
func ParseMarkdownFile(path string) (Entry, bool, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, false, eris.Wrapf(err, "reading %s", path)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Entry{}, false, eris.Wrapf(err, "stat %s", path)
	}

	meta, body, err := splitFrontMatter(raw)
	if err != nil {
		return Entry{}, false, eris.Wrapf(err, "parsing front matter of %s", path)
	}

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))

	entry := Entry{
		Title:       strings.TrimSpace(meta.Title),
		Slug:        strings.TrimSpace(meta.Slug),
		Description: strings.TrimSpace(meta.Description),
		Tags:        normalizeTags(meta.Tags),
		Content:     body,
		Source:      SourceMarkdown,
	}
	if entry.Title == "" {
		entry.Title = name
	}
	if entry.Slug == "" {
		entry.Slug = name
	}

	entry.Date = info.ModTime().UTC()
	if !dateMissing(meta.Date) {
		date, ok := parseDate(meta.Date)
		if !ok {
			return Entry{}, false, eris.Errorf("unsupported date %v in %s", meta.Date, path)
		}
		entry.Date = date
	}

	return entry, meta.Draft, nil
}

func splitFrontMatter(raw []byte) (frontMatter, string, error) {
	var meta frontMatter

	text := strings.TrimPrefix(string(raw), "\ufeff")
	text = strings.ReplaceAll(text, "\r\n", "\n")

	lines := strings.Split(text, "\n")
	if len(lines) == 0 || strings.TrimSpace(lines[0]) != frontMatterDelimiter {
		return meta, text, nil
	}

	closing := -1
	for i := 1; i < len(lines); i++ {
		if strings.TrimSpace(lines[i]) == frontMatterDelimiter {
			closing = i
			break
		}
	}
	if closing < 0 {
		return meta, "", eris.New("front matter is not terminated")
	}

	header := strings.Join(lines[1:closing], "\n")
	if err := yaml.Unmarshal([]byte(header), &meta); err != nil {
		return meta, "", err
	}

	body := strings.Join(lines[closing+1:], "\n")
	return meta, strings.TrimLeft(body, "\n"), nil
}

func dateMissing(value any) bool {
	if value == nil {
		return true
	}
	str, ok := value.(string)
	return ok && strings.TrimSpace(str) == ""
}

func parseDate(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v.UTC(), true
	case string:
		trimmed := strings.TrimSpace(v)
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, trimmed); err == nil {
				return parsed.UTC(), true
			}
		}
	}
	return time.Time{}, false
}

func normalizeTags(value any) []string {
	tags := []string{}
	switch v := value.(type) {
	case string:
		for _, part := range strings.Split(v, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	case []any:
		for _, item := range v {
			if trimmed := strings.TrimSpace(fmt.Sprint(item)); trimmed != "" {
				tags = append(tags, trimmed)
			}
		}
	}
	return tags
}
