package pagesource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/dshills/wikipath-mcp/pkg/types"
)

// Wikipedia defaults
const (
	DefaultEndpoint          = "https://en.wikipedia.org/w/api.php"
	DefaultUserAgent         = "wikipath/1.0 (https://github.com/dshills/wikipath-mcp)"
	DefaultRequestsPerSecond = 10.0
	DefaultBurst             = 5
	DefaultHTTPTimeout       = 30 * time.Second

	// mainNamespace holds encyclopedia articles
	mainNamespace = "0"
)

// WikipediaConfig configures the MediaWiki Action API client
type WikipediaConfig struct {
	Endpoint          string
	UserAgent         string
	RequestsPerSecond float64
	Burst             int
	HTTPTimeout       time.Duration
	AllNamespaces     bool // Include Category:, Help: and other non-article links
	Retry             RetryConfig
}

// Wikipedia implements Source using the MediaWiki Action API
type Wikipedia struct {
	cfg        WikipediaConfig
	httpClient *http.Client
	limiter    *rate.Limiter
	rarity     RarityLookup
	logger     *slog.Logger
}

// NewWikipedia creates a MediaWiki client. rarity may be nil, in which case
// every word has rarity 0.
func NewWikipedia(cfg WikipediaConfig, rarity RarityLookup, logger *slog.Logger) *Wikipedia {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = DefaultRequestsPerSecond
	}
	if cfg.Burst <= 0 {
		cfg.Burst = DefaultBurst
	}
	if cfg.HTTPTimeout <= 0 {
		cfg.HTTPTimeout = DefaultHTTPTimeout
	}
	if cfg.Retry.MaxRetries <= 0 {
		cfg.Retry = DefaultRetryConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Wikipedia{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.Burst),
		rarity:  rarity,
		logger:  logger,
	}
}

// apiPage is a page entry of a formatversion=2 query response
type apiPage struct {
	PageID  int64  `json:"pageid"`
	NS      int    `json:"ns"`
	Title   string `json:"title"`
	Missing bool   `json:"missing"`
	Invalid bool   `json:"invalid"`
	Links   []struct {
		NS    int    `json:"ns"`
		Title string `json:"title"`
	} `json:"links"`
	Extract string `json:"extract"`
}

// apiResponse is the subset of the query response wikipath reads
type apiResponse struct {
	Continue map[string]string `json:"continue"`
	Query    struct {
		Pages []apiPage `json:"pages"`
	} `json:"query"`
	Error *struct {
		Code string `json:"code"`
		Info string `json:"info"`
	} `json:"error"`
}

// PageExists reports whether title resolves, following redirects
func (w *Wikipedia) PageExists(ctx context.Context, title string) (bool, error) {
	params := url.Values{}
	params.Set("prop", "info")
	params.Set("titles", title)

	resp, err := w.query(ctx, params)
	if err != nil {
		return false, err
	}
	page, err := firstPage(resp, title)
	if err != nil {
		return false, err
	}
	return !page.Missing && !page.Invalid, nil
}

// Outlinks returns every link of the page, paging through plcontinue
func (w *Wikipedia) Outlinks(ctx context.Context, title string) ([]string, error) {
	params := url.Values{}
	params.Set("prop", "links")
	params.Set("titles", title)
	params.Set("pllimit", "max")
	if !w.cfg.AllNamespaces {
		params.Set("plnamespace", mainNamespace)
	}

	links := make([]string, 0)
	for {
		resp, err := w.query(ctx, params)
		if err != nil {
			return nil, err
		}

		page, err := firstPage(resp, title)
		if err != nil {
			return nil, err
		}
		if page.Missing || page.Invalid {
			return nil, fmt.Errorf("%w: %s", types.ErrPageNotFound, title)
		}

		for _, link := range page.Links {
			links = append(links, link.Title)
		}

		if len(resp.Continue) == 0 {
			break
		}
		for k, v := range resp.Continue {
			params.Set(k, v)
		}
	}

	w.logger.Debug("fetched outlinks", "title", title, "count", len(links))
	return links, nil
}

// Text returns the plain text extract of the page
func (w *Wikipedia) Text(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("prop", "extracts")
	params.Set("titles", title)
	params.Set("explaintext", "1")
	params.Set("exsectionformat", "plain")

	resp, err := w.query(ctx, params)
	if err != nil {
		return "", err
	}
	page, err := firstPage(resp, title)
	if err != nil {
		return "", err
	}
	if page.Missing || page.Invalid {
		return "", fmt.Errorf("%w: %s", types.ErrPageNotFound, title)
	}
	return page.Extract, nil
}

// WordRarity delegates to the configured lookup
func (w *Wikipedia) WordRarity(ctx context.Context, word string) (float64, error) {
	if w.rarity == nil {
		return 0, nil
	}
	return w.rarity.WordRarity(ctx, word)
}

// Close releases idle HTTP connections
func (w *Wikipedia) Close() error {
	w.httpClient.CloseIdleConnections()
	return nil
}

// query runs one rate-limited, retried API request
func (w *Wikipedia) query(ctx context.Context, params url.Values) (*apiResponse, error) {
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("formatversion", "2")
	params.Set("redirects", "1")

	return retryWithBackoff(ctx, w.cfg.Retry, func() (*apiResponse, error) {
		if err := w.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		return w.callAPI(ctx, params)
	})
}

func (w *Wikipedia) callAPI(ctx context.Context, params url.Values) (*apiResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.cfg.Endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %w", types.ErrPageFetch, errPermanent)
	}
	req.Header.Set("User-Agent", w.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: api call: %v", types.ErrPageFetch, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		apiErr := fmt.Errorf("%w: api error %d: %s", types.ErrPageFetch, resp.StatusCode, string(bodyBytes))
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, apiErr
		}
		return nil, fmt.Errorf("%w (%w)", apiErr, errPermanent)
	}

	var apiResp apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", types.ErrPageFetch, err)
	}

	if apiResp.Error != nil {
		return nil, fmt.Errorf("%w: %s: %s (%w)", types.ErrPageFetch, apiResp.Error.Code, apiResp.Error.Info, errPermanent)
	}

	return &apiResp, nil
}

// firstPage returns the single page a titles= query resolves to
func firstPage(resp *apiResponse, title string) (*apiPage, error) {
	if len(resp.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: no page returned for %s", types.ErrPageFetch, title)
	}
	return &resp.Query.Pages[0], nil
}
