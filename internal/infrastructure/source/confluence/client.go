package confluence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/kpetrov/docsqa/internal/core/domain"
	"github.com/kpetrov/docsqa/internal/core/ports"
	"github.com/kpetrov/docsqa/internal/infrastructure/resilience"
)

const defaultPageLimit = 50

var _ ports.PageSource = (*Client)(nil)

type Config struct {
	BaseURL  string
	SpaceKey string
	Email    string
	APIToken string

	// PageLimit is the page size for the content listing endpoint.
	PageLimit int
}

// Client fetches the corpus from a Confluence-style wiki over its REST API,
// walking the start/limit pagination until the space is exhausted.
type Client struct {
	cfg        Config
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, executor *resilience.Executor) *Client {
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if cfg.PageLimit <= 0 {
		cfg.PageLimit = defaultPageLimit
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		executor:   executor,
	}
}

func (c *Client) FetchPages(ctx context.Context) ([]domain.RawPage, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	pages := make([]domain.RawPage, 0, c.cfg.PageLimit)
	for start := 0; ; start += c.cfg.PageLimit {
		batch, err := c.fetchBatch(ctx, start)
		if err != nil {
			return nil, err
		}
		pages = append(pages, batch...)
		if len(batch) < c.cfg.PageLimit {
			return pages, nil
		}
	}
}

func (c *Client) validate() error {
	missing := ""
	switch {
	case c.cfg.BaseURL == "":
		missing = "CONFLUENCE_BASE_URL"
	case c.cfg.SpaceKey == "":
		missing = "CONFLUENCE_SPACE_KEY"
	case c.cfg.APIToken == "":
		missing = "CONFLUENCE_API_TOKEN"
	}
	if missing != "" {
		return domain.WrapError(domain.ErrConfiguration, "fetch pages", fmt.Errorf("%s is required", missing))
	}
	return nil
}

type contentResponse struct {
	Results []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
		Body  struct {
			Storage struct {
				Value string `json:"value"`
			} `json:"storage"`
		} `json:"body"`
		Version struct {
			Number int `json:"number"`
		} `json:"version"`
		Links struct {
			WebUI string `json:"webui"`
		} `json:"_links"`
	} `json:"results"`
	Links struct {
		Base string `json:"base"`
	} `json:"_links"`
}

func (c *Client) fetchBatch(ctx context.Context, start int) ([]domain.RawPage, error) {
	query := url.Values{}
	query.Set("type", "page")
	query.Set("spaceKey", c.cfg.SpaceKey)
	query.Set("expand", "body.storage,version")
	query.Set("limit", strconv.Itoa(c.cfg.PageLimit))
	query.Set("start", strconv.Itoa(start))
	endpoint := c.cfg.BaseURL + "/rest/api/content?" + query.Encode()

	var decoded contentResponse
	fetch := func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
		if err != nil {
			return fmt.Errorf("create content request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if c.cfg.Email != "" {
			req.SetBasicAuth(c.cfg.Email, c.cfg.APIToken)
		} else {
			req.Header.Set("Authorization", "Bearer "+c.cfg.APIToken)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("content request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 300 {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
			return &statusError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Body:       strings.TrimSpace(string(body)),
			}
		}

		decoded = contentResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return fmt.Errorf("decode content response: %w", err)
		}
		return nil
	}

	var err error
	if c.executor != nil {
		err = c.executor.Execute(ctx, "confluence_fetch", fetch, classifyFetchError)
	} else {
		err = fetch(ctx)
	}
	if err != nil {
		var statusErr *statusError
		if errors.As(err, &statusErr) && (statusErr.StatusCode == http.StatusUnauthorized || statusErr.StatusCode == http.StatusForbidden) {
			return nil, domain.WrapError(domain.ErrConfiguration, "fetch pages", err)
		}
		return nil, fmt.Errorf("fetch pages at start=%d: %w", start, err)
	}

	linkBase := strings.TrimRight(decoded.Links.Base, "/")
	if linkBase == "" {
		linkBase = c.cfg.BaseURL
	}

	pages := make([]domain.RawPage, 0, len(decoded.Results))
	for _, result := range decoded.Results {
		pages = append(pages, domain.RawPage{
			ID:      result.ID,
			Title:   result.Title,
			URL:     linkBase + result.Links.WebUI,
			Version: result.Version.Number,
			Body:    result.Body.Storage.Value,
		})
	}
	return pages, nil
}

type statusError struct {
	StatusCode int
	Status     string
	Body       string
}

func (e *statusError) Error() string {
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("confluence content status: %s", e.Status)
	}
	return fmt.Sprintf("confluence content status: %s: %s", e.Status, e.Body)
}

func classifyFetchError(err error) resilience.ErrorClassification {
	if err == nil {
		return resilience.ErrorClassification{}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return resilience.ErrorClassification{Retryable: false, RecordFailure: false}
	}

	var statusErr *statusError
	if errors.As(err, &statusErr) {
		retryable := statusErr.StatusCode == http.StatusTooManyRequests || statusErr.StatusCode >= 500
		return resilience.ErrorClassification{Retryable: retryable, RecordFailure: retryable}
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return resilience.ErrorClassification{Retryable: true, RecordFailure: true}
	}

	return resilience.ErrorClassification{Retryable: false, RecordFailure: true}
}
