package llm

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DRSN-tech/style-finder/internal/cfg"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/sony/gobreaker"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

const (
	projectHeader   = "X-Project-Id"
	imageDataPrefix = "data:image/jpeg;base64,"
)

// Params — параметры семплирования модели.
type Params struct {
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// VisionModel отправляет в мультимодальную модель один ход пользователя: текст и изображение.
// Вызовы проходят через circuit breaker; при открытом breaker запрос не отправляется.
type VisionModel struct {
	model   llms.Model
	breaker *gobreaker.CircuitBreaker
	params  Params
	logger  logger.Logger
}

func NewVisionModel(model llms.Model, params Params, logger logger.Logger) *VisionModel {
	settings := gobreaker.Settings{
		Name:        "vision-llm",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warnf("circuit breaker %s state change: %s -> %s", name, from, to)
		},
	}

	return &VisionModel{
		model:   model,
		breaker: gobreaker.NewCircuitBreaker(settings),
		params:  params,
		logger:  logger,
	}
}

// NewOpenAIModel создаёт клиента OpenAI-совместимого chat API по конфигурации.
func NewOpenAIModel(c *cfg.LLMCfg) (llms.Model, error) {
	const op = "NewOpenAIModel"

	token := c.APIKey
	if token == "" {
		token = "none"
	}

	client := &http.Client{
		Timeout:   c.Timeout,
		Transport: &projectTransport{project: c.ProjectID, next: http.DefaultTransport},
	}

	model, err := openai.New(
		openai.WithBaseURL(c.BaseURL),
		openai.WithToken(token),
		openai.WithModel(c.ModelID),
		openai.WithHTTPClient(client),
	)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return model, nil
}

// Describe возвращает текст первого варианта ответа модели.
func (v *VisionModel) Describe(ctx context.Context, imageBase64, prompt string) (string, error) {
	const op = "VisionModel.Describe"

	if v.params.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, v.params.Timeout)
		defer cancel()
	}

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(prompt),
				llms.ImageURLPart(imageDataPrefix + imageBase64),
			},
		},
	}

	result, err := v.breaker.Execute(func() (interface{}, error) {
		resp, err := v.model.GenerateContent(ctx, content,
			llms.WithTemperature(v.params.Temperature),
			llms.WithTopP(v.params.TopP),
			llms.WithMaxTokens(v.params.MaxTokens),
		)
		if err != nil {
			return nil, err
		}

		if len(resp.Choices) == 0 {
			return nil, e.ErrEmptyAnswer
		}

		return resp.Choices[0].Content, nil
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", e.Wrap(op, errors.Join(e.ErrGeneration, err))
		}
		return "", e.WrapTimeout(op, e.ErrGeneration, err)
	}

	return result.(string), nil
}

// projectTransport добавляет идентификатор проекта к каждому запросу.
type projectTransport struct {
	project string
	next    http.RoundTripper
}

func (t *projectTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.project == "" {
		return t.next.RoundTrip(req)
	}

	req = req.Clone(req.Context())
	req.Header.Set(projectHeader, t.project)

	return t.next.RoundTrip(req)
}
