// Package devto fetches articles and their assets from the dev.to API.
package devto

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"devimport/internal/config"
	"devimport/internal/logger"
	"devimport/internal/models"
	"devimport/pkg/utils"
)

// Client errors.
var (
	ErrUnexpectedStatusCode = errors.New("unexpected status code")
	ErrEmptyURL             = errors.New("empty url")
)

// Client talks to the dev.to REST API. Calls are sequential and never retried.
type Client struct {
	httpClient *http.Client
	headers    *utils.HTTPHelper
	logger     *logger.Logger
	baseURL    string
	perPage    int
	maxBody    int64
}

// NewClient creates a client from the API configuration.
func NewClient(cfg config.APIConfig, log *logger.Logger) *Client {
	return NewClientWithHTTP(cfg, &http.Client{Timeout: cfg.Timeout()}, log)
}

// NewClientWithHTTP creates a client using the given http.Client (useful for testing).
func NewClientWithHTTP(cfg config.APIConfig, httpClient *http.Client, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Discard()
	}

	maxBody := cfg.MaxBodyBytes()
	if maxBody <= 0 {
		maxBody = 50 * 1024 * 1024
	}

	return &Client{
		httpClient: httpClient,
		headers:    utils.NewHTTPHelper(cfg.UserAgent, cfg.APIKey),
		logger:     log,
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		perPage:    cfg.PerPage,
		maxBody:    maxBody,
	}
}

// ListArticles returns the published articles of username as summary records.
func (c *Client) ListArticles(ctx context.Context, username string) ([]models.Article, error) {
	query := url.Values{}
	query.Set("username", username)

	if c.perPage > 0 {
		query.Set("per_page", strconv.Itoa(c.perPage))
	}

	var list []models.Article
	if err := c.getJSON(ctx, c.baseURL+"/articles?"+query.Encode(), &list); err != nil {
		return nil, fmt.Errorf("failed to fetch articles: %w", err)
	}

	return list, nil
}

// GetArticle returns the full record of a single article.
func (c *Client) GetArticle(ctx context.Context, id int64) (*models.Article, error) {
	var article models.Article
	if err := c.getJSON(ctx, fmt.Sprintf("%s/articles/%d", c.baseURL, id), &article); err != nil {
		return nil, fmt.Errorf("failed to fetch article %d: %w", id, err)
	}

	return &article, nil
}

// FetchArticles lists the user's articles and enriches each one with its
// detail record. A failed detail fetch keeps the summary record. Only the list
// call is fatal.
func (c *Client) FetchArticles(ctx context.Context, username string) ([]models.Article, error) {
	list, err := c.ListArticles(ctx, username)
	if err != nil {
		return nil, err
	}

	detailed := make([]models.Article, 0, len(list))

	for _, meta := range list {
		article := meta

		full, err := c.GetArticle(ctx, meta.ID)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}

			c.logger.Warn("failed to enrich article", "id", meta.ID, "error", err)
		} else {
			article = *full
		}

		if err := EnsureMarkdown(&article); err != nil {
			c.logger.Warn("failed to convert html body", "id", article.ID, "error", err)
		}

		detailed = append(detailed, article)
	}

	return detailed, nil
}

// Download fetches rawURL and returns the response body.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	if strings.TrimSpace(rawURL) == "" {
		return nil, ErrEmptyURL
	}

	return c.get(ctx, rawURL, map[string]string{"Accept": "*/*"})
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	body, err := c.get(ctx, target, nil)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

func (c *Client) get(ctx context.Context, target string, extra map[string]string) (body []byte, err error) {
	c.logger.Debug("GET", "url", target)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header = c.headers.BuildHeaders(extra)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close response body: %w", closeErr)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatusCode, resp.Status)
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}
