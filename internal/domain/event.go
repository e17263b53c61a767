package domain

import "time"

// AnalysisEvent публикуется после каждого успешного анализа.
type AnalysisEvent struct {
	EventID         string
	RequestID       string
	MatchedItem     string
	MatchedImageURL string
	Score           float64
	Confident       bool
	ItemsCount      int
	Alternatives    int
	Duration        time.Duration
	CreatedAt       time.Time
}
