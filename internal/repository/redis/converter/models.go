package converter

import "time"

type AlternativeRedisModel struct {
	Title  string `json:"title"`
	Price  string `json:"price"`
	Link   string `json:"link"`
	Source string `json:"source"`
}

// SearchEntryRedisModel — закэшированная выдача по одному запросу.
type SearchEntryRedisModel struct {
	Query        string                  `json:"query"`
	Alternatives []AlternativeRedisModel `json:"alternatives"`
	CachedAt     time.Time               `json:"cached_at"`
}
