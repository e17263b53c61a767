package ml_service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/jitter"
	"github.com/DRSN-tech/style-finder/pkg/logger"
)

const datatypeFP32 = "FP32"

// MLService — клиент vision backbone по протоколу инференса KServe v2 (REST).
type MLService struct {
	client     *http.Client
	inferURL   string
	inputName  string
	timeout    time.Duration
	maxRetries int
	logger     logger.Logger
}

func NewMLService(client *http.Client, baseURL, model, inputName string, timeout time.Duration, maxRetries int, logger logger.Logger) *MLService {
	return &MLService{
		client:     client,
		inferURL:   fmt.Sprintf("%s/v2/models/%s/infer", strings.TrimRight(baseURL, "/"), model),
		inputName:  inputName,
		timeout:    timeout,
		maxRetries: maxRetries,
		logger:     logger,
	}
}

type inferTensor struct {
	Name     string    `json:"name"`
	Shape    []int64   `json:"shape"`
	Datatype string    `json:"datatype"`
	Data     []float32 `json:"data"`
}

type inferRequest struct {
	Inputs []inferTensor `json:"inputs"`
}

type inferResponse struct {
	ModelName    string        `json:"model_name"`
	ModelVersion string        `json:"model_version"`
	Outputs      []inferTensor `json:"outputs"`
}

// Infer прогоняет тензор через backbone и возвращает выход, развёрнутый в плоский вектор.
// Сбои сети и ответы 5xx повторяются с экспоненциальной задержкой, 4xx — нет.
func (m *MLService) Infer(ctx context.Context, tensor domain.Tensor) ([]float32, error) {
	const (
		op         = "MLService.Infer"
		baseJitter = 200 * time.Millisecond
		maxJitter  = 5 * time.Second
	)

	body, err := json.Marshal(inferRequest{Inputs: []inferTensor{{
		Name:     m.inputName,
		Shape:    tensor.Shape,
		Datatype: datatypeFP32,
		Data:     tensor.Data,
	}}})
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	var vector []float32
	err = jitter.Retry(ctx, jitter.Policy{MaxAttempts: m.maxRetries, Base: baseJitter, Max: maxJitter},
		func(ctx context.Context) error {
			var callErr error
			vector, callErr = m.infer(ctx, body)
			return callErr
		},
		func(attempt int, wait time.Duration, err error) {
			m.logger.Warnf("inference failed, retrying in %v (attempt %d): %v", wait, attempt, err)
		},
	)
	if err != nil {
		return nil, e.WrapTimeout(op, e.ErrInference, err)
	}

	if len(vector) == 0 {
		return nil, e.Wrap(op, e.ErrEmptyVector)
	}

	return vector, nil
}

func (m *MLService) infer(ctx context.Context, body []byte) ([]float32, error) {
	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.inferURL, bytes.NewReader(body))
	if err != nil {
		return nil, jitter.Permanent(err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		err := fmt.Errorf("backbone returned %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
		if resp.StatusCode < http.StatusInternalServerError {
			return nil, jitter.Permanent(err)
		}
		return nil, err
	}

	var out inferResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, jitter.Permanent(fmt.Errorf("decode inference response: %w", err))
	}

	if len(out.Outputs) == 0 {
		return nil, nil
	}

	return out.Outputs[0].Data, nil
}
