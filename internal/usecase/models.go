package usecase

import (
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
)

// FailureReason — причина деградированного ответа анализа.
type FailureReason string

const (
	FailureNone    FailureReason = ""
	FailureImage   FailureReason = "image_processing"
	FailureMatch   FailureReason = "no_match"
	FailureNoItems FailureReason = "no_items"
)

// Сообщения, которые видит пользователь при деградации.
const (
	MsgImageFailure = "Error: Unable to process the image. Please try another image."
	MsgMatchFailure = "Error: Unable to find a match. Please try another image."
	MsgNoItems      = "Error: No items found for the matched image."
)

// STYLE USECASE

// AnalyzeReq — запрос на анализ изображения.
type AnalyzeReq struct {
	RequestID    string
	Image        domain.ImageSource
	Alternatives bool // дополнительно искать доступные аналоги
}

// AnalyzeRes — результат анализа. Failure пуст при успехе; Markdown заполнен всегда.
type AnalyzeRes struct {
	RequestID    string
	Markdown     string
	Failure      FailureReason
	Match        *domain.MatchResult
	Confident    bool
	Items        []domain.CatalogEntry
	Alternatives []domain.ItemAlternatives
	Duration     time.Duration
}

// StyleConfig — неизменяемые параметры пайплайна.
type StyleConfig struct {
	SimilarityThreshold float64
	Limits              AlternativesLimits
}

// MAPPERS

func NewAnalyzeReq(requestID string, image domain.ImageSource, alternatives bool) *AnalyzeReq {
	return &AnalyzeReq{
		RequestID:    requestID,
		Image:        image,
		Alternatives: alternatives,
	}
}

func NewFailedAnalyzeRes(requestID string, reason FailureReason, message string) *AnalyzeRes {
	return &AnalyzeRes{
		RequestID: requestID,
		Markdown:  message,
		Failure:   reason,
	}
}

func NewAnalyzeRes(requestID, markdown string, match *domain.MatchResult, confident bool, items []domain.CatalogEntry) *AnalyzeRes {
	return &AnalyzeRes{
		RequestID: requestID,
		Markdown:  markdown,
		Match:     match,
		Confident: confident,
		Items:     items,
	}
}

func NewAnalysisEvent(eventID string, res *AnalyzeRes, createdAt time.Time) *domain.AnalysisEvent {
	alternatives := 0
	for _, item := range res.Alternatives {
		alternatives += len(item.Alternatives)
	}

	return &domain.AnalysisEvent{
		EventID:         eventID,
		RequestID:       res.RequestID,
		MatchedItem:     res.Match.Entry.ItemName,
		MatchedImageURL: res.Match.Entry.ImageURL,
		Score:           res.Match.Score,
		Confident:       res.Confident,
		ItemsCount:      len(res.Items),
		Alternatives:    alternatives,
		Duration:        res.Duration,
		CreatedAt:       createdAt,
	}
}
