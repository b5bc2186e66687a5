package text

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// TextExtractor turns raw markup into plain prose.
type TextExtractor interface {
	ExtractText(content, source string) (string, error)
}

type ReadabilityExtractor struct{}

func NewReadabilityExtractor() *ReadabilityExtractor {
	return &ReadabilityExtractor{}
}

func (re *ReadabilityExtractor) ExtractText(content, source string) (string, error) {
	pageURL, err := url.Parse(source)
	if err != nil {
		return "", fmt.Errorf("failed to parse source url: %w", err)
	}

	article, err := readability.FromReader(strings.NewReader(content), pageURL)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(article.TextContent), nil
}

// ContentExtractor collects the visible text of block elements, dropping
// scripts, styles and page chrome.
type ContentExtractor struct{}

func NewContentExtractor() *ContentExtractor {
	return &ContentExtractor{}
}

func (ce *ContentExtractor) ExtractText(content, _ string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return "", err
	}

	doc.Find("script, style, noscript, nav, header, footer, aside").Remove()

	var texts []string
	doc.Find("h1, h2, h3, h4, h5, h6, p, li, blockquote, pre").Each(func(_ int, s *goquery.Selection) {
		if text := strings.TrimSpace(s.Text()); text != "" {
			texts = append(texts, text)
		}
	})

	if len(texts) == 0 {
		texts = append(texts, strings.TrimSpace(doc.Find("body").Text()))
	}

	return strings.Join(strings.Fields(strings.Join(texts, " ")), " "), nil
}
