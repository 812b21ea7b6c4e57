// Package feed renders resolved posts as an RSS 2.0 document.
package feed

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/devmarkblog/internal/content"
	"github.com/rotisserie/eris"
)

const (
	ContentType = "application/xml; charset=utf-8"
	FeedPath    = "/api/rss"

	atomNamespace = "http://www.w3.org/2005/Atom"
	defaultLang   = "en-us"
)

type rssDocument struct {
	XMLName xml.Name   `xml:"rss"`
	Version string     `xml:"version,attr"`
	AtomNS  string     `xml:"xmlns:atom,attr"`
	Channel rssChannel `xml:"channel"`
}

type rssChannel struct {
	Title         string    `xml:"title"`
	Link          string    `xml:"link"`
	Description   string    `xml:"description"`
	Language      string    `xml:"language"`
	LastBuildDate string    `xml:"lastBuildDate"`
	AtomLink      atomLink  `xml:"atom:link"`
	Items         []rssItem `xml:"item"`
}

type atomLink struct {
	Href string `xml:"href,attr"`
	Rel  string `xml:"rel,attr"`
	Type string `xml:"type,attr"`
}

type rssItem struct {
	Title       string  `xml:"title"`
	Link        string  `xml:"link"`
	GUID        rssGUID `xml:"guid"`
	Description string  `xml:"description"`
	PubDate     string  `xml:"pubDate"`
}

type rssGUID struct {
	IsPermaLink bool   `xml:"isPermaLink,attr"`
	Value       string `xml:",chardata"`
}

// Channel describes the site the feed belongs to.
type Channel struct {
	SiteURL     string
	Title       string
	Description string
	Language    string
}

// Builder turns resolved entries into RSS.
type Builder struct {
	channel Channel
	now     func() time.Time
}

// NewBuilder 创建 RSS 生成器，SiteURL 末尾的斜杠会被去掉。
func NewBuilder(channel Channel) *Builder {
	channel.SiteURL = strings.TrimRight(strings.TrimSpace(channel.SiteURL), "/")
	if channel.Language == "" {
		channel.Language = defaultLang
	}
	return &Builder{channel: channel, now: time.Now}
}

// PostURL returns the absolute link of a post.
func (b *Builder) PostURL(slug string) string {
	return b.channel.SiteURL + "/blog/" + slug
}

// Build renders one item per entry, in the given order.
func (b *Builder) Build(entries []content.Entry) ([]byte, error) {
	doc := rssDocument{
		Version: "2.0",
		AtomNS:  atomNamespace,
		Channel: rssChannel{
			Title:         b.channel.Title,
			Link:          b.channel.SiteURL,
			Description:   b.channel.Description,
			Language:      b.channel.Language,
			LastBuildDate: formatDate(b.now()),
			AtomLink: atomLink{
				Href: b.channel.SiteURL + FeedPath,
				Rel:  "self",
				Type: "application/rss+xml",
			},
			Items: make([]rssItem, 0, len(entries)),
		},
	}

	for _, entry := range entries {
		link := b.PostURL(entry.Slug)
		doc.Channel.Items = append(doc.Channel.Items, rssItem{
			Title:       entry.Title,
			Link:        link,
			GUID:        rssGUID{IsPermaLink: true, Value: link},
			Description: entry.Description,
			PubDate:     formatDate(entry.Date),
		})
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, eris.Wrap(err, "encoding rss feed")
	}

	return append([]byte(xml.Header), body...), nil
}

func formatDate(t time.Time) string {
	return t.UTC().Format(time.RFC1123Z)
}
