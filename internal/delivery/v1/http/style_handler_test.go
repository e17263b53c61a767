package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/usecase"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockStyleUC struct {
	AnalyzeFunc func(ctx context.Context, req *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error)
}

func (m *mockStyleUC) Analyze(ctx context.Context, req *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error) {
	return m.AnalyzeFunc(ctx, req)
}

type staticCatalog int

func (c staticCatalog) Len() int { return int(c) }

func newTestRouter(uc usecase.StyleUC) http.Handler {
	mux := chi.NewRouter()
	NewRouter(mux, logger.NewNop(), "8080", 1<<20).Init(uc, staticCatalog(3))
	return mux
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(1, 1, color.RGBA{R: 200, A: 255})

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func multipartBody(t *testing.T, field string, data []byte, alternatives string) (*bytes.Buffer, string) {
	t.Helper()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		fw, err := mw.CreateFormFile(field, "look.png")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	if alternatives != "" {
		require.NoError(t, mw.WriteField("alternatives", alternatives))
	}
	require.NoError(t, mw.Close())

	return &body, mw.FormDataContentType()
}

func successRes() *usecase.AnalyzeRes {
	entry := domain.CatalogEntry{ItemName: "Linen Blazer", Price: domain.NewPrice("129.99"), ImageURL: "img1"}
	return &usecase.AnalyzeRes{
		RequestID: "req-1",
		Markdown:  "## Item Details\n\n- Linen Blazer",
		Match:     domain.NewMatchResult(entry, 0.93),
		Confident: true,
		Items:     []domain.CatalogEntry{entry},
		Alternatives: []domain.ItemAlternatives{{
			Item:         domain.ItemDescription{Name: "Blazer", Description: "a relaxed linen blazer"},
			Alternatives: []domain.Alternative{{Title: "Blazer", Price: "$89", Link: "https://shop", Source: "Shop"}},
		}},
		Duration: 1200 * time.Millisecond,
	}
}

func TestAnalyzeUpload(t *testing.T) {
	var (
		gotReq  *usecase.AnalyzeReq
		tmpPath string
	)
	uc := &mockStyleUC{AnalyzeFunc: func(_ context.Context, req *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error) {
		gotReq = req
		tmpPath = req.Image.Location
		_, err := os.Stat(tmpPath)
		require.NoError(t, err)
		return successRes(), nil
	}}

	body, contentType := multipartBody(t, "image", pngBytes(t), "true")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()

	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotReq)
	assert.True(t, gotReq.Alternatives)
	assert.Equal(t, "req-1", gotReq.RequestID)
	assert.False(t, gotReq.Image.IsURL)
	assert.True(t, strings.HasSuffix(tmpPath, ".png"))

	_, err := os.Stat(tmpPath)
	assert.True(t, os.IsNotExist(err), "temporary upload must be removed")

	var res AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, "req-1", res.RequestID)
	assert.Empty(t, res.Failure)
	require.NotNil(t, res.Match)
	assert.Equal(t, "Linen Blazer", res.Match.ItemName)
	assert.True(t, res.Match.Confident)
	require.Len(t, res.Items, 1)
	assert.Equal(t, "129.99", res.Items[0].Price.String())
	require.Len(t, res.Alternatives, 1)
	assert.Equal(t, "Blazer", res.Alternatives[0].Item)
	assert.Equal(t, int64(1200), res.DurationMs)
}

func TestAnalyzeUpload_RemovesTempFileOnFailure(t *testing.T) {
	tests := []struct {
		name     string
		analyze  func() (*usecase.AnalyzeRes, error)
		wantCode int
	}{
		{
			name:     "usecase error",
			analyze:  func() (*usecase.AnalyzeRes, error) { return nil, errors.New("pipeline broken") },
			wantCode: http.StatusInternalServerError,
		},
		{
			name:     "usecase panic",
			analyze:  func() (*usecase.AnalyzeRes, error) { panic("nil catalog") },
			wantCode: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var tmpPath string
			uc := &mockStyleUC{AnalyzeFunc: func(_ context.Context, req *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error) {
				tmpPath = req.Image.Location
				return tt.analyze()
			}}

			body, contentType := multipartBody(t, "image", pngBytes(t), "")
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestRouter(uc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			require.NotEmpty(t, tmpPath)
			_, err := os.Stat(tmpPath)
			assert.True(t, os.IsNotExist(err), "temporary upload must be removed")
		})
	}
}

func TestAnalyzeUpload_Rejections(t *testing.T) {
	uc := &mockStyleUC{AnalyzeFunc: func(context.Context, *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error) {
		t.Fatal("usecase must not be called")
		return nil, nil
	}}

	tests := []struct {
		name     string
		body     func() (*bytes.Buffer, string)
		wantCode int
	}{
		{
			name:     "not multipart",
			body:     func() (*bytes.Buffer, string) { return bytes.NewBufferString("{}"), "application/json" },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "missing image",
			body:     func() (*bytes.Buffer, string) { return multipartBody(t, "image", nil, "") },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "unsupported media",
			body:     func() (*bytes.Buffer, string) { return multipartBody(t, "image", []byte("plain text, not an image"), "") },
			wantCode: http.StatusUnsupportedMediaType,
		},
		{
			name:     "bad alternatives flag",
			body:     func() (*bytes.Buffer, string) { return multipartBody(t, "image", pngBytes(t), "maybe") },
			wantCode: http.StatusBadRequest,
		},
		{
			name:     "too large",
			body:     func() (*bytes.Buffer, string) { return multipartBody(t, "image", bytes.Repeat([]byte{0x89}, 3<<20), "") },
			wantCode: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := tt.body()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			newTestRouter(uc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantCode, rec.Code)
			var res ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
			assert.Equal(t, tt.wantCode, res.Code)
		})
	}
}

func TestAnalyzeURL(t *testing.T) {
	var gotReq *usecase.AnalyzeReq
	uc := &mockStyleUC{AnalyzeFunc: func(_ context.Context, req *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error) {
		gotReq = req
		return usecase.NewFailedAnalyzeRes("req-2", usecase.FailureMatch, usecase.MsgMatchFailure), nil
	}}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/url",
		strings.NewReader(`{"url":"https://cdn.example.com/look.jpg"}`))
	rec := httptest.NewRecorder()

	newTestRouter(uc).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, gotReq)
	assert.True(t, gotReq.Image.IsURL)
	assert.Equal(t, "https://cdn.example.com/look.jpg", gotReq.Image.Location)
	assert.False(t, gotReq.Alternatives)

	var res AnalyzeResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, string(usecase.FailureMatch), res.Failure)
	assert.Equal(t, usecase.MsgMatchFailure, res.Markdown)
	assert.Nil(t, res.Match)
}

func TestAnalyzeURL_Invalid(t *testing.T) {
	uc := &mockStyleUC{AnalyzeFunc: func(context.Context, *usecase.AnalyzeReq) (*usecase.AnalyzeRes, error) {
		return nil, e.ErrImageRequired
	}}

	for _, body := range []string{`not json`, `{"url":"ftp://host/a.jpg"}`, `{"url":""}`} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/url", strings.NewReader(body))
		rec := httptest.NewRecorder()

		newTestRouter(uc).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestHealth(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(&mockStyleUC{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var res HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &res))
	assert.Equal(t, HealthResponse{Status: "ok", CatalogItems: 3}, res)
}
