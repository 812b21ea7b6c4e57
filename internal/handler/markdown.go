package handler

import (
	"bytes"
	"fmt"
	htmlstd "html"
	"html/template"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// 原始 HTML 交给 goldmark 输出，由 bluemonday 统一清洗
var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML(), html.WithUnsafe()),
	)
	sanitizer = buildContentSanitizer()
)

var (
	videoLinePattern  = regexp.MustCompile(`^<?(https?://\S+?)>?$`)
	videoEmbedPattern = regexp.MustCompile(`^https://www\.youtube-nocookie\.com/embed/[A-Za-z0-9_-]+(\?[^"'\s]*)?$`)
	videoIDPattern    = regexp.MustCompile(`^[A-Za-z0-9_-]{6,64}$`)
	videoTimePattern  = regexp.MustCompile(`(?i)(\d+)([hms])`)
)

func renderMarkdown(source string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(applyVideoEmbeds(source)), &buf); err != nil {
		return "", err
	}
	safe := sanitizer.SanitizeBytes(buf.Bytes())
	return template.HTML(safe), nil
}

// buildContentSanitizer 在 UGC 策略上只放行 YouTube 播放器 iframe
func buildContentSanitizer() *bluemonday.Policy {
	policy := bluemonday.UGCPolicy()
	policy.AllowElements("iframe")
	policy.AllowAttrs("class", "data-video-source").OnElements("div")
	policy.AllowAttrs("src").Matching(videoEmbedPattern).OnElements("iframe")
	policy.AllowAttrs("title", "allow", "allowfullscreen", "loading", "referrerpolicy").OnElements("iframe")
	return policy
}

// applyVideoEmbeds 把独占一行的 YouTube 链接替换成播放器，代码块内的行保持原样。
func applyVideoEmbeds(markdown string) string {
	if !strings.Contains(markdown, "youtu") {
		return markdown
	}

	lines := strings.Split(markdown, "\n")
	fence := ""
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			switch {
			case fence == "":
				fence = trimmed[:3]
			case strings.HasPrefix(trimmed, fence):
				fence = ""
			}
			continue
		}
		if fence != "" || strings.HasPrefix(line, "    ") || strings.HasPrefix(line, "\t") {
			continue
		}

		match := videoLinePattern.FindStringSubmatch(trimmed)
		if match == nil {
			continue
		}
		if embed, ok := youTubeEmbedURL(match[1]); ok {
			lines[i] = videoEmbedHTML(match[1], embed)
		}
	}
	return strings.Join(lines, "\n")
}

func youTubeEmbedURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	path := strings.Trim(u.Path, "/")
	var id string
	switch host {
	case "youtu.be":
		id = path
	case "youtube.com", "m.youtube.com":
		switch {
		case path == "watch":
			id = u.Query().Get("v")
		case strings.HasPrefix(path, "shorts/"), strings.HasPrefix(path, "embed/"), strings.HasPrefix(path, "live/"):
			id = path[strings.Index(path, "/")+1:]
		}
	}
	if i := strings.Index(id, "/"); i >= 0 {
		id = id[:i]
	}
	if !videoIDPattern.MatchString(id) {
		return "", false
	}

	values := url.Values{}
	values.Set("rel", "0")
	if start := youTubeStart(u.Query()); start > 0 {
		values.Set("start", strconv.Itoa(start))
	}
	return "https://www.youtube-nocookie.com/embed/" + id + "?" + values.Encode(), true
}

// youTubeStart 解析 t/start 参数，支持 "90" 与 "1m30s" 两种写法
func youTubeStart(query url.Values) int {
	value := strings.TrimSpace(query.Get("start"))
	if value == "" {
		value = strings.TrimSpace(query.Get("t"))
	}
	if value == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return max(seconds, 0)
	}

	total := 0
	for _, m := range videoTimePattern.FindAllStringSubmatch(value, -1) {
		n, _ := strconv.Atoi(m[1])
		switch strings.ToLower(m[2]) {
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		default:
			total += n
		}
	}
	return total
}

func videoEmbedHTML(source, embedURL string) string {
	return fmt.Sprintf(
		`<div class="video-embed" data-video-source="%s"><iframe src="%s" title="YouTube video player" loading="lazy" allow="encrypted-media; picture-in-picture; web-share" allowfullscreen referrerpolicy="strict-origin-when-cross-origin"></iframe></div>`,
		htmlstd.EscapeString(source),
		htmlstd.EscapeString(embedURL),
	)
}
