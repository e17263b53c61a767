package e

import (
	"context"
	"errors"
	"fmt"
)

var (
	// Ошибки извлечения эмбеддинга
	ErrImageRequired = fmt.Errorf("image source is required")
	ErrImageFetch    = fmt.Errorf("failed to fetch image")
	ErrImageDecode   = fmt.Errorf("failed to decode image")
	ErrInference     = fmt.Errorf("vision backbone inference failed")
	ErrEmptyVector   = fmt.Errorf("vision backbone returned empty vector")

	// Ошибки поиска ближайшего совпадения
	ErrEmptyCatalog      = fmt.Errorf("catalog is empty")
	ErrNoEmbeddings      = fmt.Errorf("catalog has no embeddings")
	ErrDimensionMismatch = fmt.Errorf("vector dimension mismatch")
	ErrNumeric           = fmt.Errorf("non-finite value in vector")
	ErrRowNotFound       = fmt.Errorf("matched row not found in catalog")

	// Ошибки загрузки каталога
	ErrCatalogNotFound = fmt.Errorf("catalog source not found")
	ErrCatalogInvalid  = fmt.Errorf("catalog is invalid")
	ErrUnknownSource   = fmt.Errorf("unknown catalog source")

	// Ошибки внешних сервисов
	ErrGeneration  = fmt.Errorf("response generation failed")
	ErrEmptyAnswer = fmt.Errorf("model returned no choices")
	ErrSearch      = fmt.Errorf("shopping search failed")
	ErrTimeout     = fmt.Errorf("operation timed out")

	// Конфигурация
	ErrIncorrectEnvVariable = fmt.Errorf("incorrect environment variable")

	// 400 Bad Request
	ErrStatusBadRequest     = fmt.Errorf("bad request")
	ErrExpectedMultipart    = fmt.Errorf("expected multipart/form-data")
	ErrUnsupportedMediaType = fmt.Errorf("unsupported media type")
	ErrFileTooLarge         = fmt.Errorf("file is too large")
	ErrInvalidURL           = fmt.Errorf("invalid image url")

	// 500
	ErrInternalServerError = fmt.Errorf("internal server error")
)

// Wrap оборачивает ошибку
func Wrap(msg string, err error) error {
	return fmt.Errorf("%s: %w", msg, err)
}

// WrapTimeout помечает ошибку как ErrTimeout, если она вызвана истечением дедлайна контекста.
// Остальные ошибки оборачиваются переданным kind.
func WrapTimeout(op string, kind error, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w: %w", op, ErrTimeout, err)
	}

	return fmt.Errorf("%s: %w: %w", op, kind, err)
}
