// Package tool_webfetch fetches web content for the model, converting HTML
// to plain text or markdown.
package tool_webfetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/cadenzr/turnpike/src/toolkit"
)

const Name = "web_fetch"

const description = `Fetches content from a URL and returns it in the requested format.

Usage:
- Provide the URL to fetch and the output format: text, markdown, or html
- text strips HTML down to readable text; markdown converts HTML structure
- Only http and https URLs are supported
- Responses larger than 5MB are truncated`

const maxResponseSize = 5 << 20

// WebFetchInput are the parameters for web_fetch.
type WebFetchInput struct {
	URL     string `json:"url" required:"true" description:"The URL to fetch content from"`
	Format  string `json:"format,omitempty" description:"Output format: text, markdown, or html (default text)"`
	Timeout int    `json:"timeout,omitempty" description:"Request timeout in seconds (max 120, default 30)"`
}

// WebFetchOutput is the response from web_fetch.
type WebFetchOutput struct {
	Content     string `json:"content" description:"The fetched content in the requested format"`
	StatusCode  int    `json:"status_code" description:"HTTP status code"`
	URL         string `json:"url" description:"The final URL after redirects"`
	ContentType string `json:"content_type,omitempty" description:"Content-Type of the response"`
}

// Tool builds the web_fetch tool using the default HTTP transport.
func Tool() (toolkit.Tool, error) {
	return toolkit.NewFuncTool(Name, description, makeHandler(nil))
}

func makeHandler(client *http.Client) func(ctx context.Context, input WebFetchInput) (WebFetchOutput, error) {
	return func(ctx context.Context, input WebFetchInput) (WebFetchOutput, error) {
		if input.URL == "" {
			return WebFetchOutput{}, fmt.Errorf("url parameter is required")
		}
		if !strings.HasPrefix(input.URL, "http://") && !strings.HasPrefix(input.URL, "https://") {
			return WebFetchOutput{}, fmt.Errorf("url must start with http:// or https://")
		}

		format := strings.ToLower(input.Format)
		if format == "" {
			format = "text"
		}
		switch format {
		case "text", "markdown", "html":
		default:
			return WebFetchOutput{}, fmt.Errorf("format must be one of: text, markdown, html")
		}

		timeout := input.Timeout
		if timeout <= 0 {
			timeout = 30
		} else if timeout > 120 {
			timeout = 120
		}

		httpClient := client
		if httpClient == nil {
			httpClient = &http.Client{Timeout: time.Duration(timeout) * time.Second}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, input.URL, nil)
		if err != nil {
			return WebFetchOutput{}, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("User-Agent", "turnpike/1.0")
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

		resp, err := httpClient.Do(req)
		if err != nil {
			return WebFetchOutput{}, fmt.Errorf("failed to fetch url: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return WebFetchOutput{}, fmt.Errorf("request failed with status code: %d", resp.StatusCode)
		}

		body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
		if err != nil {
			return WebFetchOutput{}, fmt.Errorf("failed to read response: %w", err)
		}

		content := string(body)
		contentType := resp.Header.Get("Content-Type")
		isHTML := strings.Contains(contentType, "text/html")

		var processed string
		switch {
		case format == "text" && isHTML:
			if text, err := extractText(content); err == nil {
				processed = text
			} else {
				processed = content
			}
		case format == "markdown" && isHTML:
			if markdown, err := toMarkdown(content); err == nil {
				processed = markdown
			} else {
				processed = "```html\n" + content + "\n```"
			}
		case format == "markdown":
			processed = "```\n" + content + "\n```"
		default:
			processed = content
		}

		return WebFetchOutput{
			Content:     processed,
			StatusCode:  resp.StatusCode,
			URL:         resp.Request.URL.String(),
			ContentType: contentType,
		}, nil
	}
}

// extractText strips markup and scripts from an HTML document.
func extractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("failed to parse HTML: %w", err)
	}
	doc.Find("script, style, noscript").Remove()

	var lines []string
	for _, line := range strings.Split(doc.Text(), "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			lines = append(lines, trimmed)
		}
	}
	return strings.Join(lines, "\n"), nil
}

// toMarkdown converts an HTML document to markdown.
func toMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(html)
}
