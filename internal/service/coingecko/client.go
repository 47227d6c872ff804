package coingecko

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	drepo "CoinCast/internal/domain/repository"
	xhttp "CoinCast/pkg/http"
)

// ErrInvalidEndpoint is returned for proxy paths that could escape the API base.
var ErrInvalidEndpoint = errors.New("invalid endpoint")

// Client implements a MarketSource backed by the CoinGecko REST API.
type Client struct {
	baseURL string
	apiKey  string
	http    *xhttp.Client
}

// New creates a CoinGecko client. An empty apiKey sends no key header.
func New(baseURL, apiKey string, hc *xhttp.Client) drepo.MarketSource {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    hc,
	}
}

// MarketChart returns the raw market_chart body for coin.
func (c *Client) MarketChart(ctx context.Context, coin, currency, days string) ([]byte, error) {
	body, err := c.http.Fetch(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     fmt.Sprintf("%s/coins/%s/market_chart", c.baseURL, url.PathEscape(coin)),
		Headers: c.headers(),
		QueryParams: map[string][]string{
			"vs_currency": {currency},
			"days":        {days},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko market_chart %s: %w", coin, err)
	}
	return body, nil
}

// Get forwards an arbitrary API path such as "/simple/price?ids=bitcoin".
func (c *Client) Get(ctx context.Context, endpoint string) ([]byte, error) {
	path, err := NormalizeEndpoint(endpoint)
	if err != nil {
		return nil, err
	}
	body, err := c.http.Fetch(ctx, &xhttp.RequestOptions{
		Method:  xhttp.MethodGet,
		URL:     c.baseURL + path,
		Headers: c.headers(),
	})
	if err != nil {
		return nil, fmt.Errorf("coingecko %s: %w", path, err)
	}
	return body, nil
}

func (c *Client) headers() map[string]string {
	if c.apiKey == "" {
		return nil
	}
	return map[string]string{"x-cg-demo-api-key": c.apiKey}
}

// NormalizeEndpoint forces a leading slash and rejects absolute URLs and
// parent traversal.
func NormalizeEndpoint(endpoint string) (string, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return "", ErrInvalidEndpoint
	}
	if strings.Contains(endpoint, "://") || strings.HasPrefix(endpoint, "//") {
		return "", fmt.Errorf("%w: absolute url", ErrInvalidEndpoint)
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	path := endpoint
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	if unescaped, err := url.PathUnescape(path); err == nil {
		path = unescaped
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == ".." {
			return "", fmt.Errorf("%w: parent traversal", ErrInvalidEndpoint)
		}
	}
	return endpoint, nil
}
