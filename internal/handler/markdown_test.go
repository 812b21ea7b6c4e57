package handler

import (
	"strings"
	"testing"
)

func TestRenderMarkdown_YouTubeEmbeds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		markdown string
		wantSrc  string
	}{
		{name: "watch", markdown: "https://www.youtube.com/watch?v=dQw4w9WgXcQ", wantSrc: "youtube-nocookie.com/embed/dQw4w9WgXcQ?rel=0"},
		{name: "short link with start", markdown: "https://youtu.be/dQw4w9WgXcQ?t=1m30s", wantSrc: "start=90"},
		{name: "angle brackets", markdown: "<https://www.youtube.com/shorts/dQw4w9WgXcQ>", wantSrc: "embed/dQw4w9WgXcQ"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			rendered, err := renderMarkdown("Intro\n\n" + tt.markdown + "\n\nOutro")
			if err != nil {
				t.Fatalf("render markdown: %v", err)
			}

			html := string(rendered)
			if !strings.Contains(html, "<iframe") {
				t.Fatalf("expected iframe in output, got: %s", html)
			}
			if !strings.Contains(html, tt.wantSrc) {
				t.Fatalf("expected src containing %q, got: %s", tt.wantSrc, html)
			}
			if !strings.Contains(html, `class="video-embed"`) {
				t.Fatalf("expected embed wrapper, got: %s", html)
			}
		})
	}
}

func TestRenderMarkdown_LeavesOtherLinksAlone(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"inside fence":  "```\nhttps://www.youtube.com/watch?v=dQw4w9WgXcQ\n```",
		"inline":        "watch https://www.youtube.com/watch?v=dQw4w9WgXcQ now",
		"other host":    "https://vimeo.com/123456",
		"missing id":    "https://www.youtube.com/watch",
		"indented code": "    https://youtu.be/dQw4w9WgXcQ",
	}

	for name, markdown := range cases {
		markdown := markdown
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			rendered, err := renderMarkdown(markdown)
			if err != nil {
				t.Fatalf("render markdown: %v", err)
			}
			if strings.Contains(string(rendered), "<iframe") {
				t.Fatalf("expected no iframe, got: %s", rendered)
			}
		})
	}
}

func TestRenderMarkdown_StripsUntrustedHTML(t *testing.T) {
	t.Parallel()

	source := "# Title\n\n<script>alert(1)</script>\n\n<iframe src=\"https://evil.example.com/\"></iframe>\n\n<a href=\"javascript:alert(1)\">x</a>"
	rendered, err := renderMarkdown(source)
	if err != nil {
		t.Fatalf("render markdown: %v", err)
	}

	html := string(rendered)
	if !strings.Contains(html, "<h1") {
		t.Fatalf("expected heading, got: %s", html)
	}
	for _, forbidden := range []string{"<script", "evil.example.com", "javascript:"} {
		if strings.Contains(html, forbidden) {
			t.Fatalf("expected %q to be stripped, got: %s", forbidden, html)
		}
	}
}
