package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/logger"
)

const (
	minResponseLen       = 100
	truncatedResponseLen = 7900

	basicResponseIntro = "# Fashion Analysis\n\nThis outfit features a collection of carefully coordinated pieces."
)

// ResponseGenerator готовит промпт по найденным вещам и получает описание образа от мультимодальной модели.
type ResponseGenerator struct {
	llm       VisionLLM
	threshold float64
	logger    logger.Logger
}

func NewResponseGenerator(llm VisionLLM, threshold float64, logger logger.Logger) *ResponseGenerator {
	return &ResponseGenerator{
		llm:       llm,
		threshold: threshold,
		logger:    logger,
	}
}

// Generate всегда возвращает текст: ошибка модели превращается в строку "Error generating response: ...".
// Слишком короткий ответ заменяется базовым, а отсутствующая секция с вещами дописывается в конец.
func (g *ResponseGenerator) Generate(ctx context.Context, imageBase64 string, items []domain.CatalogEntry, score float64) string {
	itemsDescription := BuildItemsDescription(items)
	marker := g.marker(score)

	response := g.generate(ctx, imageBase64, BuildPrompt(itemsDescription, score >= g.threshold))

	switch {
	case len(response) < minResponseLen:
		g.logger.Infof("Response appears incomplete (length: %d), creating basic response", len(response))
		response = fmt.Sprintf("%s\n\n%s\n%s", basicResponseIntro, marker, itemsDescription)
	case !strings.Contains(response, MarkerItemDetails) && !strings.Contains(response, MarkerSimilarItems):
		g.logger.Infof("Item details section missing from response")
		response += fmt.Sprintf("\n\n%s\n%s", marker, itemsDescription)
	}

	return response
}

func (g *ResponseGenerator) generate(ctx context.Context, imageBase64, prompt string) string {
	g.logger.Infof("Sending request to LLM with prompt length: %d", len(prompt))

	content, err := g.llm.Describe(ctx, imageBase64, prompt)
	if err != nil {
		g.logger.Errorf(err, "Error generating response")
		return fmt.Sprintf("Error generating response: %v", err)
	}

	g.logger.Infof("Received response with length: %d", len(content))
	if len(content) >= truncatedResponseLen {
		g.logger.Warnf("Response may be truncated (length: %d)", len(content))
	}

	return content
}

func (g *ResponseGenerator) marker(score float64) string {
	if score >= g.threshold {
		return MarkerItemDetails
	}

	return MarkerSimilarItems
}

// BuildItemsDescription формирует список вида "- Название ($цена): ссылка", по строке на вещь.
func BuildItemsDescription(items []domain.CatalogEntry) string {
	lines := make([]string, 0, len(items))
	for _, item := range items {
		lines = append(lines, fmt.Sprintf("- %s ($%s): %s", item.ItemName, item.Price.String(), item.Link))
	}

	return strings.Join(lines, "\n")
}

// BuildPrompt выбирает шаблон по уверенности совпадения. Оба шаблона требуют
// воспроизвести список вещей после маркера секции.
func BuildPrompt(itemsDescription string, confident bool) string {
	const intro = "You're conducting a professional retail catalog analysis. " +
		"This image shows standard clothing items available in department stores. " +
		"Focus exclusively on professional fashion analysis for a clothing retailer. "
	const outro = "This is for a professional retail catalog. Use formal, clinical language."

	if confident {
		return intro +
			"ITEM DETAILS (always include this section in your response):\n" + itemsDescription + "\n\n" +
			"Please:\n" +
			"1. Identify and describe the clothing items objectively (colors, patterns, materials)\n" +
			"2. Categorize the overall style (business, casual, etc.)\n" +
			"3. Include the ITEM DETAILS section at the end\n\n" +
			outro
	}

	return intro +
		"SIMILAR ITEMS (always include this section in your response):\n" + itemsDescription + "\n\n" +
		"Please:\n" +
		"1. Note these are similar but not exact items\n" +
		"2. Identify clothing elements objectively (colors, patterns, materials) and the overall style\n" +
		"3. Include the SIMILAR ITEMS section at the end\n\n" +
		outro
}
