// Package leetcode looks up problem metadata from the public LeetCode
// catalogue so the web app can prefill a problem from a number or URL.
package leetcode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	apperrors "github.com/atinroy/leetly-web/internal/errors"
)

const defaultCatalogURL = "https://leetcode.com/api/problems/algorithms/"

// catalogTTL is how long a fetched catalogue is served from memory before
// it is re-fetched. The catalogue changes rarely; an hour keeps lookups
// cheap without going stale.
const catalogTTL = time.Hour

var difficultyNames = map[int]string{1: "EASY", 2: "MEDIUM", 3: "HARD"}

var problemURLPattern = regexp.MustCompile(`(?i)leetcode\.com/problems/([\w-]+)`)

// Problem is the metadata returned to the problem form.
type Problem struct {
	LeetcodeID int    `json:"leetcodeId"`
	Title      string `json:"title"`
	Difficulty string `json:"difficulty"`
	URL        string `json:"url"`
}

// Query selects a problem by frontend id or by title slug.
type Query struct {
	Param string // "id" or "slug"
	Value string
}

// ParseProblemInput turns free-form user input (a problem number or a
// problem URL) into a lookup query.
func ParseProblemInput(input string) (*Query, error) {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil, apperrors.ErrInvalidProblem
	}
	if _, err := strconv.Atoi(trimmed); err == nil {
		return &Query{Param: "id", Value: trimmed}, nil
	}
	if match := problemURLPattern.FindStringSubmatch(trimmed); match != nil {
		return &Query{Param: "slug", Value: match[1]}, nil
	}
	return nil, apperrors.ErrInvalidProblem
}

// catalogue wire types
type catalogEntry struct {
	Stat struct {
		FrontendQuestionID int    `json:"frontend_question_id"`
		QuestionTitle      string `json:"question__title"`
		QuestionTitleSlug  string `json:"question__title_slug"`
	} `json:"stat"`
	Difficulty struct {
		Level int `json:"level"`
	} `json:"difficulty"`
}

type catalogResponse struct {
	StatStatusPairs []catalogEntry `json:"stat_status_pairs"`
}

// Client fetches and caches the LeetCode algorithms catalogue.
type Client struct {
	catalogURL string
	httpClient *http.Client

	mu        sync.RWMutex
	catalog   []catalogEntry
	fetchedAt time.Time

	// group deduplicates concurrent catalogue fetches
	group singleflight.Group
}

// ClientOption defines a function type to modify the Client instance.
type ClientOption func(*Client)

// WithCatalogURL overrides the catalogue endpoint (primarily for testing)
func WithCatalogURL(catalogURL string) ClientOption {
	return func(c *Client) {
		c.catalogURL = catalogURL
	}
}

func NewClient(options ...ClientOption) *Client {
	c := &Client{
		catalogURL: defaultCatalogURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Lookup resolves a query against the cached catalogue.
func (c *Client) Lookup(ctx context.Context, q *Query) (*Problem, error) {
	catalog, err := c.fetchCatalog(ctx)
	if err != nil {
		return nil, err
	}

	for _, entry := range catalog {
		switch q.Param {
		case "id":
			id, err := strconv.Atoi(q.Value)
			if err != nil {
				return nil, apperrors.ErrInvalidProblem
			}
			if entry.Stat.FrontendQuestionID != id {
				continue
			}
		case "slug":
			if entry.Stat.QuestionTitleSlug != q.Value {
				continue
			}
		default:
			return nil, apperrors.ErrInvalidProblem
		}

		difficulty, ok := difficultyNames[entry.Difficulty.Level]
		if !ok {
			difficulty = "MEDIUM"
		}
		return &Problem{
			LeetcodeID: entry.Stat.FrontendQuestionID,
			Title:      entry.Stat.QuestionTitle,
			Difficulty: difficulty,
			URL:        fmt.Sprintf("https://leetcode.com/problems/%s/", entry.Stat.QuestionTitleSlug),
		}, nil
	}

	return nil, apperrors.ErrProblemNotFound
}

// fetchCatalog serves the catalogue from memory while fresh, otherwise
// re-fetches it. Concurrent refetches collapse into one request.
func (c *Client) fetchCatalog(ctx context.Context) ([]catalogEntry, error) {
	c.mu.RLock()
	if c.catalog != nil && time.Since(c.fetchedAt) < catalogTTL {
		catalog := c.catalog
		c.mu.RUnlock()
		return catalog, nil
	}
	c.mu.RUnlock()

	result, err, _ := c.group.Do("catalog", func() (interface{}, error) {
		// Double-check after acquiring the singleflight slot.
		c.mu.RLock()
		if c.catalog != nil && time.Since(c.fetchedAt) < catalogTTL {
			catalog := c.catalog
			c.mu.RUnlock()
			return catalog, nil
		}
		c.mu.RUnlock()

		return c.doFetchCatalog(ctx)
	})
	if err != nil {
		return nil, err
	}
	return result.([]catalogEntry), nil
}

func (c *Client) doFetchCatalog(ctx context.Context) ([]catalogEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.catalogURL, nil)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Client doFetchCatalog] create request")
	}
	// The public endpoint rejects requests without a browser user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrapf(err, "[Client doFetchCatalog] catalogue request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("[Client doFetchCatalog] catalogue unavailable: status %d", resp.StatusCode)
	}

	var parsed catalogResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperrors.Wrapf(err, "[Client doFetchCatalog] parse catalogue")
	}

	c.mu.Lock()
	c.catalog = parsed.StatStatusPairs
	c.fetchedAt = time.Now()
	c.mu.Unlock()

	return parsed.StatStatusPairs, nil
}
