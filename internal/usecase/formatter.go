package usecase

import (
	"regexp"
	"strings"
)

const (
	MarkerItemDetails  = "ITEM DETAILS:"
	MarkerSimilarItems = "SIMILAR ITEMS:"

	headingItemDetails  = "## Item Details"
	headingSimilarItems = "## Similar Items"
	headingAnalysis     = "# Fashion Analysis\n\n"

	emptyAnalysisResponse = "# Fashion Analysis\n\nNo detailed analysis was generated. Please refer to the item details below."
	salvagePrefix         = "# Fashion Analysis\n\nHere are the items detected in your image:\n\n"
)

// Фразы, по которым ответ модели считается отказом.
var rejectionPhrases = []string{
	"I'm not able to provide",
	"I cannot provide",
	"I apologize, but I cannot",
	"I don't feel comfortable",
	"violated our content policy",
}

var bulletRe = regexp.MustCompile(`(?m)^\* `)

// ProcessResponse приводит ответ модели к безопасному Markdown.
//
// Пустой ответ заменяется заглушкой. При отказе модели из текста спасается секция
// с перечнем вещей, остальная проза отбрасывается. В обычном случае маркеры секций
// заменяются подзаголовками, добавляется заголовок, «$» экранируется.
// Повторный вызов на собственном результате ничего не меняет.
func ProcessResponse(response string) string {
	if response == "" {
		return emptyAnalysisResponse
	}

	if IsRejection(response) {
		if section, ok := salvageItems(response); ok {
			return salvagePrefix + normalizeBullets(escapeDollars(section))
		}

		return escapeDollars(response)
	}

	processed := escapeDollars(response)
	processed = strings.ReplaceAll(processed, MarkerItemDetails, headingItemDetails)
	processed = strings.ReplaceAll(processed, MarkerSimilarItems, headingSimilarItems)

	if !strings.HasPrefix(processed, "#") {
		processed = headingAnalysis + processed
	}

	return normalizeBullets(processed)
}

// IsRejection сообщает, содержит ли ответ одну из фраз отказа (с учётом регистра).
func IsRejection(response string) bool {
	return containsAny(response, rejectionPhrases)
}

// salvageItems вырезает текст между первым маркером секции и следующим таким же маркером.
func salvageItems(response string) (string, bool) {
	for _, s := range []struct {
		marker  string
		heading string
	}{
		{MarkerItemDetails, headingItemDetails},
		{MarkerSimilarItems, headingSimilarItems},
	} {
		if !strings.Contains(response, s.marker) {
			continue
		}

		parts := strings.SplitN(response, s.marker, 3)
		return s.heading + "\n\n" + strings.TrimSpace(parts[1]), true
	}

	return "", false
}

// escapeDollars экранирует «$», ещё не экранированные обратным слэшем.
func escapeDollars(s string) string {
	if !strings.Contains(s, "$") {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && (i == 0 || s[i-1] != '\\') {
			b.WriteByte('\\')
		}
		b.WriteByte(s[i])
	}

	return b.String()
}

func normalizeBullets(s string) string {
	return bulletRe.ReplaceAllString(s, "- ")
}
