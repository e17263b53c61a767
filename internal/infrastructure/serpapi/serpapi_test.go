package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const shoppingJSON = `{
  "shopping_results": [
    {"title": " Navy Blazer ", "price": "$49.99", "product_link": "https://shop/navy", "source": "Store"},
    {"title": "Grey Blazer"},
    {"title": "Third", "price": "$10", "product_link": "https://shop/3", "source": "S3"}
  ]
}`

func TestClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "google_shopping", q.Get("engine"))
		assert.Equal(t, "Search for affordable alternatives of: a wool jacket.", q.Get("q"))
		assert.Equal(t, "secret", q.Get("api_key"))
		_, _ = w.Write([]byte(shoppingJSON))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "secret", 0, time.Second, logger.NewNop())

	got, err := c.Search(context.Background(), "Search for affordable alternatives of: a wool jacket.", 2)
	require.NoError(t, err)
	assert.Equal(t, []domain.Alternative{
		{Title: "Navy Blazer", Price: "$49.99", Link: "https://shop/navy", Source: "Store"},
		{Title: "Grey Blazer", Price: "No price available", Link: "No link available", Source: "Unknown source"},
	}, got)
}

func TestClient_SearchNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"search_metadata": {}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.Client(), srv.URL, "k", 0, time.Second, logger.NewNop())

	got, err := c.Search(context.Background(), "q", 5)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_SearchErrors(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
		wantErr error
	}{
		{
			name: "api error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusUnauthorized)
				_, _ = w.Write([]byte(`{"error": "Invalid API key."}`))
			},
			wantErr: e.ErrSearch,
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`<html>`))
			},
			wantErr: e.ErrSearch,
		},
		{
			name: "timeout",
			handler: func(w http.ResponseWriter, r *http.Request) {
				select {
				case <-r.Context().Done():
				case <-time.After(time.Second):
				}
			},
			wantErr: e.ErrTimeout,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			c := NewClient(srv.Client(), srv.URL, "k", 0, 30*time.Millisecond, logger.NewNop())
			_, err := c.Search(context.Background(), "q", 5)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

type mapCache struct {
	data   map[string][]domain.Alternative
	getErr error
}

func (m *mapCache) Get(_ context.Context, query string) ([]domain.Alternative, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	v, ok := m.data[query]
	return v, ok, nil
}

func (m *mapCache) Set(_ context.Context, query string, alternatives []domain.Alternative) error {
	m.data[query] = alternatives
	return nil
}

type countingSearcher struct {
	calls int
}

func (c *countingSearcher) Search(_ context.Context, query string, _ int) ([]domain.Alternative, error) {
	c.calls++
	return []domain.Alternative{{Title: query}}, nil
}

func TestCachedSearcher(t *testing.T) {
	next := &countingSearcher{}
	cache := &mapCache{data: map[string][]domain.Alternative{}}
	s := NewCachedSearcher(next, cache, logger.NewNop())

	first, err := s.Search(context.Background(), "jacket", 5)
	require.NoError(t, err)
	second, err := s.Search(context.Background(), "jacket", 5)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, next.calls)

	cache.getErr = assert.AnError
	_, err = s.Search(context.Background(), "jacket", 5)
	require.NoError(t, err)
	assert.Equal(t, 2, next.calls)
}
