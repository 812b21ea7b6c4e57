package feed

import (
	"encoding/xml"
	"testing"
	"time"

	"github.com/devmarkblog/internal/content"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type parsedFeed struct {
	Version string `xml:"version,attr"`
	Channel struct {
		Title         string `xml:"title"`
		Link          string `xml:"link"`
		Language      string `xml:"language"`
		LastBuildDate string `xml:"lastBuildDate"`
		Items         []struct {
			Title string `xml:"title"`
			Link  string `xml:"link"`
			GUID  struct {
				IsPermaLink string `xml:"isPermaLink,attr"`
				Value       string `xml:",chardata"`
			} `xml:"guid"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

func TestBuildRendersOneItemPerEntry(t *testing.T) {
	builder := NewBuilder(Channel{SiteURL: "https://blog.example.com/", Title: "Dev Blog", Description: "notes"})
	builder.now = func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) }

	shanghai := time.FixedZone("CST", 8*3600)
	entries := []content.Entry{
		{Title: "Go & Generics", Slug: "go-generics", Description: "<b>types</b>", Date: time.Date(2024, 5, 2, 8, 0, 0, 0, shanghai)},
		{Title: "Hello", Slug: "hello", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	raw, err := builder.Build(entries)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `<?xml version="1.0" encoding="UTF-8"?>`)
	assert.Contains(t, string(raw), `<atom:link href="https://blog.example.com/api/rss" rel="self" type="application/rss+xml"></atom:link>`)

	var parsed parsedFeed
	require.NoError(t, xml.Unmarshal(raw, &parsed))

	assert.Equal(t, "2.0", parsed.Version)
	assert.Equal(t, "Dev Blog", parsed.Channel.Title)
	assert.Equal(t, "https://blog.example.com", parsed.Channel.Link)
	assert.Equal(t, "en-us", parsed.Channel.Language)
	assert.Equal(t, "Sat, 01 Jun 2024 12:00:00 +0000", parsed.Channel.LastBuildDate)

	require.Len(t, parsed.Channel.Items, 2)
	first := parsed.Channel.Items[0]
	assert.Equal(t, "Go & Generics", first.Title)
	assert.Equal(t, "https://blog.example.com/blog/go-generics", first.Link)
	assert.Equal(t, "true", first.GUID.IsPermaLink)
	assert.Equal(t, first.Link, first.GUID.Value)
	assert.Equal(t, "<b>types</b>", first.Description)
	assert.Equal(t, "Thu, 02 May 2024 00:00:00 +0000", first.PubDate)

	pub, err := time.Parse(time.RFC1123Z, parsed.Channel.Items[1].PubDate)
	require.NoError(t, err)
	assert.True(t, pub.Equal(entries[1].Date))
}

func TestBuildEmptyFeed(t *testing.T) {
	raw, err := NewBuilder(Channel{SiteURL: "https://example.com", Title: "Empty"}).Build(nil)
	require.NoError(t, err)

	var parsed parsedFeed
	require.NoError(t, xml.Unmarshal(raw, &parsed))
	assert.Empty(t, parsed.Channel.Items)
	assert.Equal(t, "Empty", parsed.Channel.Title)
}

func TestPostURL(t *testing.T) {
	builder := NewBuilder(Channel{SiteURL: " https://example.com// "})
	assert.Equal(t, "https://example.com/blog/first-post", builder.PostURL("first-post"))
}
