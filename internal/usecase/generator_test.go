package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testItems() []domain.CatalogEntry {
	return []domain.CatalogEntry{
		{ItemName: "Wool Blazer", Price: domain.NewPrice("120.5"), Link: "https://shop/blazer", ImageURL: "img1"},
		{ItemName: "Boots", Price: domain.NewPrice("N/A"), Link: "https://shop/boots", ImageURL: "img1"},
	}
}

func TestBuildItemsDescription(t *testing.T) {
	got := BuildItemsDescription(testItems())
	assert.Equal(t, "- Wool Blazer ($120.5): https://shop/blazer\n- Boots ($N/A): https://shop/boots", got)
}

func TestBuildItemsDescription_PriceAsInCatalog(t *testing.T) {
	items := []domain.CatalogEntry{
		{ItemName: "Shirt", Price: domain.NewPrice("19.90"), Link: "l"},
		{ItemName: "Bag", Price: domain.NewPrice("1e2"), Link: "l"},
		{ItemName: "Hat", Price: domain.NewPrice(" $0.50 "), Link: "l"},
	}

	got := BuildItemsDescription(items)
	assert.Equal(t, "- Shirt ($19.90): l\n- Bag ($1e2): l\n- Hat ($0.50): l", got)
}

func TestBuildPrompt_BranchMarkers(t *testing.T) {
	confident := BuildPrompt("- A ($1): l", true)
	assert.Contains(t, confident, "ITEM DETAILS")
	assert.NotContains(t, confident, "SIMILAR ITEMS")
	assert.Contains(t, confident, "- A ($1): l")

	approximate := BuildPrompt("- A ($1): l", false)
	assert.Contains(t, approximate, "SIMILAR ITEMS")
	assert.NotContains(t, approximate, "ITEM DETAILS")
	assert.Contains(t, approximate, "similar but not exact")
}

func TestResponseGenerator_Generate(t *testing.T) {
	long := strings.Repeat("The look combines tailored layers. ", 5)
	items := testItems()
	itemsDescription := BuildItemsDescription(items)

	tests := []struct {
		name     string
		score    float64
		answer   string
		err      error
		want     string
		contains []string
	}{
		{
			name:   "complete answer is returned as is",
			score:  0.9,
			answer: long + "\nITEM DETAILS:\n" + itemsDescription,
			want:   long + "\nITEM DETAILS:\n" + itemsDescription,
		},
		{
			name:   "short answer replaced with basic response",
			score:  0.9,
			answer: "Too short.",
			want:   "# Fashion Analysis\n\nThis outfit features a collection of carefully coordinated pieces.\n\nITEM DETAILS:\n" + itemsDescription,
		},
		{
			name:   "missing section appended with approximate marker",
			score:  0.5,
			answer: long,
			want:   long + "\n\nSIMILAR ITEMS:\n" + itemsDescription,
		},
		{
			name:     "model error becomes inline text",
			score:    0.9,
			err:      errors.New("connection refused"),
			contains: []string{"ITEM DETAILS:", itemsDescription},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			llm := &mockLLM{DescribeFunc: func(ctx context.Context, imageBase64, prompt string) (string, error) {
				assert.Equal(t, "aW1n", imageBase64)
				return tt.answer, tt.err
			}}
			g := NewResponseGenerator(llm, 0.8, logger.NewNop())

			got := g.Generate(context.Background(), "aW1n", items, tt.score)
			require.Len(t, llm.prompts, 1)
			if tt.want != "" {
				assert.Equal(t, tt.want, got)
			}
			for _, c := range tt.contains {
				assert.Contains(t, got, c)
			}
		})
	}
}

func TestResponseGenerator_ErrorTextFlowsDownstream(t *testing.T) {
	msg := strings.Repeat("x", 120)
	llm := &mockLLM{DescribeFunc: func(context.Context, string, string) (string, error) {
		return "", errors.New(msg)
	}}
	g := NewResponseGenerator(llm, 0.8, logger.NewNop())

	got := g.Generate(context.Background(), "", testItems(), 0.95)
	assert.True(t, strings.HasPrefix(got, "Error generating response: "+msg))
	assert.Contains(t, got, "\n\nITEM DETAILS:\n")
}
