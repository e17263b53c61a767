package http

import (
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/DRSN-tech/style-finder/internal/infrastructure"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/jimlawless/whereami"
)

type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

func NewErrorResponse(code int, message string) *ErrorResponse {
	return &ErrorResponse{
		Code:    code,
		Message: message,
	}
}

func ToHTTPResponse(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrStatusBadRequest):
		return http.StatusBadRequest, e.ErrStatusBadRequest.Error()
	case errors.Is(err, e.ErrExpectedMultipart):
		return http.StatusBadRequest, e.ErrExpectedMultipart.Error()
	case errors.Is(err, e.ErrImageRequired):
		return http.StatusBadRequest, e.ErrImageRequired.Error()
	case errors.Is(err, e.ErrInvalidURL):
		return http.StatusBadRequest, e.ErrInvalidURL.Error()
	case errors.Is(err, e.ErrUnsupportedMediaType):
		return http.StatusUnsupportedMediaType, e.ErrUnsupportedMediaType.Error()
	case errors.Is(err, e.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge, e.ErrFileTooLarge.Error()
	default:
		return http.StatusInternalServerError, e.ErrInternalServerError.Error()
	}
}

func WriteError(w http.ResponseWriter, err error) {
	code, msg := ToHTTPResponse(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(NewErrorResponse(code, msg))
}

func WriteSuccess(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func ensureMultipartForm(r *http.Request, maxMemory int64) error {
	if !strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return e.Wrap(whereami.WhereAmI(), e.ErrExpectedMultipart)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return e.Wrap(whereami.WhereAmI(), e.ErrFileTooLarge)
		}
		return e.Wrap(whereami.WhereAmI(), errors.Join(e.ErrStatusBadRequest, err))
	}

	return nil
}

// parseBoolField трактует пустое значение как false.
func parseBoolField(value string) (bool, error) {
	if value == "" {
		return false, nil
	}

	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, e.Wrap("alternatives="+value, e.ErrStatusBadRequest)
	}

	return b, nil
}

// saveUpload сохраняет загруженный файл во временный файл с расширением по MIME-типу.
// Удалять файл должен вызывающий.
func saveUpload(fh *multipart.FileHeader, maxSize int64) (string, error) {
	if fh.Size > maxSize {
		return "", e.Wrap(fh.Filename, e.ErrFileTooLarge)
	}

	src, err := fh.Open()
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), e.ErrInternalServerError)
	}
	defer src.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", e.Wrap(whereami.WhereAmI(), e.ErrInternalServerError)
	}
	head = head[:n]

	ext, err := infrastructure.GetExtensionFromMIME(http.DetectContentType(head))
	if err != nil {
		return "", e.Wrap(fh.Filename, err)
	}

	tmp, err := os.CreateTemp("", "style-upload-*."+ext)
	if err != nil {
		return "", e.Wrap(whereami.WhereAmI(), e.ErrInternalServerError)
	}
	defer tmp.Close()

	_, err = tmp.Write(head)
	if err == nil {
		_, err = io.Copy(tmp, src)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", e.Wrap(whereami.WhereAmI(), e.ErrInternalServerError)
	}

	return tmp.Name(), nil
}

func validateImageURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return e.Wrap(raw, e.ErrInvalidURL)
	}

	return nil
}
