package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/logger"
)

const (
	searchQueryTemplate = "Search for affordable alternatives of: %s"

	alternativesFallbackResponse = "## Fashion Analysis Results\n\nHere are the items detected in your image:"
	alternativesHeading          = "\n\n## Similar Items Found\n\n"
	alternativesIntroConfident   = "Here are some similar items we found:\n"
	alternativesIntroApproximate = "Here are some visually similar items:\n"
	noAlternativesLine           = "- No alternatives found.\n"
)

// Отказы, при которых ответ модели не показывается рядом с альтернативами.
var alternativesRejectionPhrases = []string{
	"I'm not able to provide",
	"I cannot",
	"I apologize, but",
	"I don't feel comfortable",
}

// AlternativesLimits ограничивает размер секции с альтернативами.
type AlternativesLimits struct {
	TopN     int // результатов поиска на вещь
	PerItem  int // строк на вещь в ответе
	MaxTotal int // строк во всём ответе
}

// AlternativesFinder ищет более доступные аналоги для каждой описанной моделью вещи.
type AlternativesFinder struct {
	searcher ShoppingSearcher
	limits   AlternativesLimits
	logger   logger.Logger
}

func NewAlternativesFinder(searcher ShoppingSearcher, limits AlternativesLimits, logger logger.Logger) *AlternativesFinder {
	return &AlternativesFinder{
		searcher: searcher,
		limits:   limits,
		logger:   logger,
	}
}

// Find выполняет по одному запросу на вещь, последовательно. Ошибка поиска по одной вещи
// даёт для неё пустой список и не прерывает остальные.
func (f *AlternativesFinder) Find(ctx context.Context, items []domain.ItemDescription) []domain.ItemAlternatives {
	res := make([]domain.ItemAlternatives, 0, len(items))

	for _, item := range items {
		query := fmt.Sprintf(searchQueryTemplate, item.Description)

		found, err := f.searcher.Search(ctx, query, f.limits.TopN)
		if err != nil {
			f.logger.Errorf(err, "Error searching alternatives for %s", item.Name)
			found = nil
		} else if len(found) == 0 {
			f.logger.Infof("No shopping results found for %s alternative", item.Name)
		}

		if len(found) > f.limits.TopN && f.limits.TopN > 0 {
			found = found[:f.limits.TopN]
		}

		res = append(res, domain.ItemAlternatives{Item: item, Alternatives: found})
	}

	return res
}

// FormatAlternatives дописывает к ответу секцию с альтернативами.
// Пустой ответ или ответ с отказом заменяется нейтральным заголовком.
func FormatAlternatives(response string, alternatives []domain.ItemAlternatives, confident bool, limits AlternativesLimits) string {
	if response == "" || containsAny(response, alternativesRejectionPhrases) {
		response = alternativesFallbackResponse
	}

	var b strings.Builder
	b.WriteString(response)
	b.WriteString(alternativesHeading)
	if confident {
		b.WriteString(alternativesIntroConfident)
	} else {
		b.WriteString(alternativesIntroApproximate)
	}

	added := 0
	for _, item := range alternatives {
		fmt.Fprintf(&b, "\n### %s:\n", item.Item.Name)

		if len(item.Alternatives) == 0 {
			b.WriteString(noAlternativesLine)
			continue
		}

		for i, alt := range item.Alternatives {
			if i >= limits.PerItem || added >= limits.MaxTotal {
				break
			}

			fmt.Fprintf(&b, "- %s for %s from %s ([Buy it here](%s))\n",
				escapeDollars(alt.Title), escapeDollars(alt.Price), escapeDollars(alt.Source), alt.Link)
			added++
		}
	}

	return b.String()
}

func containsAny(s string, phrases []string) bool {
	for _, phrase := range phrases {
		if strings.Contains(s, phrase) {
			return true
		}
	}

	return false
}
