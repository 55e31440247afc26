package devto

import (
	"fmt"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"devimport/internal/models"
)

// EnsureMarkdown fills BodyMarkdown from BodyHTML when only the rendered body
// is available, as with summary records kept after a failed detail fetch.
func EnsureMarkdown(article *models.Article) error {
	if strings.TrimSpace(article.BodyMarkdown) != "" || strings.TrimSpace(article.BodyHTML) == "" {
		return nil
	}

	markdown, err := HTMLToMarkdown(article.BodyHTML)
	if err != nil {
		return err
	}

	article.BodyMarkdown = markdown

	return nil
}

// HTMLToMarkdown converts a dev.to rendered body back to markdown.
func HTMLToMarkdown(body string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}

	// dev.to wraps every body image in a link to the full-size original.
	doc.Find("a.article-body-image-wrapper").Each(func(_ int, s *goquery.Selection) {
		s.Children().Unwrap()
	})

	// Heading permalinks are empty anchors.
	doc.Find("a.anchor").Remove()

	html, err := doc.Find("body").Html()
	if err != nil {
		return "", fmt.Errorf("failed to render HTML: %w", err)
	}

	converter := md.NewConverter("", true, nil)

	markdown, err := converter.ConvertString(html)
	if err != nil {
		return "", fmt.Errorf("failed to convert HTML to Markdown: %w", err)
	}

	return strings.TrimSpace(markdown), nil
}
