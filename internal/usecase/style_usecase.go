package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/google/uuid"
)

const publishTimeout = 2 * time.Second

// StyleUseCase выполняет пайплайн анализа: эмбеддинг → ближайшее совпадение → вещи
// изображения → описание моделью → форматирование → (опционально) альтернативы.
// Шаги выполняются последовательно в рамках одного запроса.
type StyleUseCase struct {
	encoder      ImageEncoder
	catalog      CatalogRepository
	generator    *ResponseGenerator
	alternatives *AlternativesFinder // nil, если поиск альтернатив выключен
	events       EventPublisher      // nil, если события выключены
	cfg          StyleConfig
	logger       logger.Logger
	inflight     sync.WaitGroup // фоновые публикации событий
}

func NewStyleUC(
	encoder ImageEncoder,
	catalog CatalogRepository,
	generator *ResponseGenerator,
	alternatives *AlternativesFinder,
	events EventPublisher,
	cfg StyleConfig,
	logger logger.Logger,
) *StyleUseCase {
	return &StyleUseCase{
		encoder:      encoder,
		catalog:      catalog,
		generator:    generator,
		alternatives: alternatives,
		events:       events,
		cfg:          cfg,
		logger:       logger,
	}
}

// Analyze возвращает ошибку только для некорректного запроса. Сбои на любом шаге
// дают деградированный, но валидный ответ с заполненным Failure.
func (s *StyleUseCase) Analyze(ctx context.Context, req *AnalyzeReq) (*AnalyzeRes, error) {
	const op = "StyleUseCase.Analyze"

	if req == nil || (len(req.Image.Data) == 0 && strings.TrimSpace(req.Image.Location) == "") {
		return nil, e.Wrap(op, e.ErrImageRequired)
	}

	requestID := req.RequestID
	if requestID == "" {
		requestID = uuid.NewString()
	}
	log := s.logger.With("request_id", requestID)
	start := time.Now()

	// Шаг 1: эмбеддинг изображения
	encoded, err := s.encoder.Encode(ctx, req.Image)
	if err != nil {
		log.Errorf(e.Wrap(op, err), "Unable to encode image")
		return NewFailedAnalyzeRes(requestID, FailureImage, MsgImageFailure), nil
	}

	// Шаг 2: ближайшая позиция каталога
	match, err := s.catalog.FindClosest(ctx, encoded.Vector)
	if err != nil {
		log.Errorf(e.Wrap(op, err), "Unable to find closest match")
		return NewFailedAnalyzeRes(requestID, FailureMatch, MsgMatchFailure), nil
	}
	log.Infof("Closest match: %s with similarity score %.2f", match.Entry.ItemName, match.Score)

	// Шаг 3: все вещи с найденного изображения
	items, err := s.catalog.ItemsForImage(ctx, match.Entry.ImageURL)
	if err != nil {
		log.Errorf(e.Wrap(op, err), "Unable to load items for image %s", match.Entry.ImageURL)
		return NewFailedAnalyzeRes(requestID, FailureNoItems, MsgNoItems), nil
	}
	if len(items) == 0 {
		log.Warnf("No items found for image %s", match.Entry.ImageURL)
		return NewFailedAnalyzeRes(requestID, FailureNoItems, MsgNoItems), nil
	}
	log.Infof("Found %d items related to image URL: %s", len(items), match.Entry.ImageURL)

	// Шаг 4: описание образа и приведение к Markdown
	confident := match.IsConfident(s.cfg.SimilarityThreshold)
	raw := s.generator.Generate(ctx, encoded.Base64, items, match.Score)
	if IsRejection(raw) {
		log.Warnf("Model rejected the request, extracting item details")
	}

	res := NewAnalyzeRes(requestID, ProcessResponse(raw), match, confident, items)

	// Шаг 5: альтернативы по описаниям из исходного текста модели
	if req.Alternatives && s.alternatives != nil {
		descriptions := ExtractItemDescriptions(raw)
		log.Infof("Searching alternatives for %d described items", len(descriptions))

		res.Alternatives = s.alternatives.Find(ctx, descriptions)
		res.Markdown = FormatAlternatives(res.Markdown, res.Alternatives, confident, s.cfg.Limits)
	}

	res.Duration = time.Since(start)
	s.publish(res)

	return res, nil
}

// publish отправляет событие анализа в фоне; ошибки только логируются.
func (s *StyleUseCase) publish(res *AnalyzeRes) {
	const op = "StyleUseCase.publish"

	if s.events == nil {
		return
	}

	event := NewAnalysisEvent(uuid.NewString(), res, time.Now().UTC())
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()

		bgCtx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()

		if err := s.events.PublishAnalysis(bgCtx, event); err != nil {
			s.logger.Warnf("Failed to publish analysis event: %v", e.Wrap(op, err))
		}
	}()
}

// Close дожидается фоновых публикаций событий. Вызывается до закрытия продьюсера.
func (s *StyleUseCase) Close(ctx context.Context) error {
	const op = "StyleUseCase.Close"

	done := make(chan struct{})
	go func() {
		s.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return e.Wrap(op, ctx.Err())
	}
}
