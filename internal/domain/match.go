package domain

// MatchResult — ближайшая позиция каталога и её косинусная близость к запросу.
type MatchResult struct {
	Entry CatalogEntry
	Score float64
}

func NewMatchResult(entry CatalogEntry, score float64) *MatchResult {
	return &MatchResult{
		Entry: entry,
		Score: score,
	}
}

// IsConfident сообщает, считается ли совпадение «точным» для заданного порога.
func (m *MatchResult) IsConfident(threshold float64) bool {
	return m.Score >= threshold
}
