package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"golang.org/x/time/rate"
)

const (
	engineShopping = "google_shopping"

	noTitle  = "No title available"
	noPrice  = "No price available"
	noLink   = "No link available"
	noSource = "Unknown source"
)

// Client — клиент SerpAPI (движок Google Shopping) с ограничением частоты запросов.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	limiter    *rate.Limiter
	timeout    time.Duration
	logger     logger.Logger
}

func NewClient(httpClient *http.Client, baseURL, apiKey string, ratePerSecond float64, timeout time.Duration, logger logger.Logger) *Client {
	limit := rate.Inf
	if ratePerSecond > 0 {
		limit = rate.Limit(ratePerSecond)
	}

	return &Client{
		httpClient: httpClient,
		baseURL:    baseURL,
		apiKey:     apiKey,
		limiter:    rate.NewLimiter(limit, 1),
		timeout:    timeout,
		logger:     logger,
	}
}

type shoppingResult struct {
	Title       *string `json:"title"`
	Price       *string `json:"price"`
	ProductLink *string `json:"product_link"`
	Source      *string `json:"source"`
}

type searchResponse struct {
	Error           string           `json:"error"`
	ShoppingResults []shoppingResult `json:"shopping_results"`
}

// Search возвращает не более limit товаров по запросу. Отсутствующие поля заменяются заглушками.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.Alternative, error) {
	const op = "Client.Search"

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, e.WrapTimeout(op, e.ErrSearch, err)
	}

	res, err := c.do(ctx, query)
	if err != nil {
		return nil, e.WrapTimeout(op, e.ErrSearch, err)
	}

	alternatives := make([]domain.Alternative, 0, len(res.ShoppingResults))
	for _, item := range res.ShoppingResults {
		alternatives = append(alternatives, domain.Alternative{
			Title:  field(item.Title, noTitle),
			Price:  field(item.Price, noPrice),
			Link:   field(item.ProductLink, noLink),
			Source: field(item.Source, noSource),
		})
	}

	if limit > 0 && len(alternatives) > limit {
		alternatives = alternatives[:limit]
	}

	c.logger.Debugf("search returned %d alternatives", len(alternatives))

	return alternatives, nil
}

func (c *Client) do(ctx context.Context, query string) (*searchResponse, error) {
	params := url.Values{}
	params.Set("engine", engineShopping)
	params.Set("q", query)
	params.Set("api_key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out searchResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 4<<20)).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode response (status %d): %w", resp.StatusCode, err)
	}

	if out.Error != "" {
		return nil, fmt.Errorf("serpapi error (status %d): %s", resp.StatusCode, out.Error)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	return &out, nil
}

func field(v *string, placeholder string) string {
	if v == nil {
		return placeholder
	}

	return strings.TrimSpace(*v)
}
