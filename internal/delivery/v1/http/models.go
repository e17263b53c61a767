package http

import (
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/usecase"
)

type AnalyzeURLRequest struct {
	URL          string `json:"url"`
	Alternatives bool   `json:"alternatives"`
}

type MatchResponse struct {
	ItemName  string  `json:"item_name"`
	ImageURL  string  `json:"image_url"`
	Score     float64 `json:"score"`
	Confident bool    `json:"confident"`
}

type ItemResponse struct {
	ItemName string       `json:"item_name"`
	Price    domain.Price `json:"price" swaggertype:"string"`
	Link     string       `json:"link"`
	ImageURL string       `json:"image_url"`
}

type ItemAlternativesResponse struct {
	Item         string               `json:"item"`
	Description  string               `json:"description"`
	Alternatives []domain.Alternative `json:"alternatives"`
}

// AnalyzeResponse — ответ анализа. Failure пуст при успехе.
type AnalyzeResponse struct {
	RequestID    string                     `json:"request_id"`
	Markdown     string                     `json:"markdown"`
	Failure      string                     `json:"failure,omitempty"`
	Match        *MatchResponse             `json:"match,omitempty"`
	Items        []ItemResponse             `json:"items,omitempty"`
	Alternatives []ItemAlternativesResponse `json:"alternatives,omitempty"`
	DurationMs   int64                      `json:"duration_ms"`
}

type HealthResponse struct {
	Status       string `json:"status"`
	CatalogItems int    `json:"catalog_items"`
}

func ToAnalyzeResponse(res *usecase.AnalyzeRes) *AnalyzeResponse {
	out := &AnalyzeResponse{
		RequestID:  res.RequestID,
		Markdown:   res.Markdown,
		Failure:    string(res.Failure),
		DurationMs: res.Duration.Milliseconds(),
	}

	if res.Match != nil {
		out.Match = &MatchResponse{
			ItemName:  res.Match.Entry.ItemName,
			ImageURL:  res.Match.Entry.ImageURL,
			Score:     res.Match.Score,
			Confident: res.Confident,
		}
	}

	for _, item := range res.Items {
		out.Items = append(out.Items, ItemResponse{
			ItemName: item.ItemName,
			Price:    item.Price,
			Link:     item.Link,
			ImageURL: item.ImageURL,
		})
	}

	for _, alt := range res.Alternatives {
		out.Alternatives = append(out.Alternatives, ItemAlternativesResponse{
			Item:         alt.Item.Name,
			Description:  alt.Item.Description,
			Alternatives: alt.Alternatives,
		})
	}

	return out
}
