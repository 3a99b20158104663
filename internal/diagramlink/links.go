// Package diagramlink recognizes diagram-tool share links, reads Draw.io
// files and packages uploaded diagram files for storage.
package diagramlink

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/kfcain/CMMC-L2-Assessment-Tool-sub004/internal/domain"
)

var (
	ErrEmptyURL        = errors.New("url is required")
	ErrNotFigmaURL     = errors.New("not a Figma file, design, prototype or board link")
	ErrNotLucidURL     = errors.New("not a LucidChart document link")
	ErrNotLinkedSource = errors.New("diagram source is not link based")
)

var (
	figmaPattern = regexp.MustCompile(`^https://(?:www\.)?figma\.com/(file|design|proto|board)/([A-Za-z0-9]{10,})(?:/([^?#]*))?`)
	lucidPattern = []*regexp.Regexp{
		regexp.MustCompile(`^https://lucid\.app/lucidchart/([A-Za-z0-9-]+)/(?:edit|view)`),
		regexp.MustCompile(`^https://lucid\.app/documents/(?:view|embedded|embeddedchart)/([A-Za-z0-9-]+)`),
		regexp.MustCompile(`^https://lucid\.app/publicSegments/view/([A-Za-z0-9-]+)`),
		regexp.MustCompile(`^https://(?:www\.)?lucidchart\.com/documents/(?:edit|view|embeddedchart)/([A-Za-z0-9-]+)`),
	}
)

type FigmaLink struct {
	URL      string
	Kind     string
	FileKey  string
	FileName string
	NodeID   string
	EmbedURL string
}

type LucidLink struct {
	URL        string
	DocumentID string
	EmbedURL   string
}

func ParseFigmaURL(raw string) (FigmaLink, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return FigmaLink{}, ErrEmptyURL
	}
	m := figmaPattern.FindStringSubmatch(trimmed)
	if m == nil {
		return FigmaLink{}, ErrNotFigmaURL
	}

	link := FigmaLink{
		URL:      trimmed,
		Kind:     m[1],
		FileKey:  m[2],
		EmbedURL: "https://www.figma.com/embed?embed_host=share&url=" + url.QueryEscape(trimmed),
	}
	if name := strings.Trim(m[3], "/"); name != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
		link.FileName = strings.ReplaceAll(name, "-", " ")
	}
	if u, err := url.Parse(trimmed); err == nil {
		link.NodeID = u.Query().Get("node-id")
	}
	return link, nil
}

func ParseLucidChartURL(raw string) (LucidLink, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return LucidLink{}, ErrEmptyURL
	}
	for _, pattern := range lucidPattern {
		if m := pattern.FindStringSubmatch(trimmed); m != nil {
			return LucidLink{
				URL:        trimmed,
				DocumentID: m[1],
				EmbedURL:   "https://lucid.app/documents/embedded/" + m[1],
			}, nil
		}
	}
	return LucidLink{}, ErrNotLucidURL
}

// ValidateSourceURL checks a link against the parser for its diagram source
// and returns the embeddable URL.
func ValidateSourceURL(source domain.DiagramSource, raw string) (string, error) {
	switch source {
	case domain.SourceFigma:
		link, err := ParseFigmaURL(raw)
		if err != nil {
			return "", fmt.Errorf("figma: %w", err)
		}
		return link.EmbedURL, nil
	case domain.SourceLucidChart:
		link, err := ParseLucidChartURL(raw)
		if err != nil {
			return "", fmt.Errorf("lucidchart: %w", err)
		}
		return link.EmbedURL, nil
	default:
		return "", ErrNotLinkedSource
	}
}
