package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"os"

	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/usecase"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
)

type StyleHandler struct {
	styleUsecase usecase.StyleUC
	logger       logger.Logger
	maxUpload    int64
}

func NewStyleHandler(styleUsecase usecase.StyleUC, logger logger.Logger, maxUpload int64) *StyleHandler {
	return &StyleHandler{styleUsecase: styleUsecase, logger: logger, maxUpload: maxUpload}
}

// analyzeUpload
//
//	@Summary		Анализ загруженного изображения
//	@Description	Находит ближайший образ в каталоге, описывает вещи и, по запросу, подбирает аналоги
//	@Tags			analyze
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			image			formData	file			true	"Фотография образа"
//	@Param			alternatives	formData	bool			false	"Искать доступные аналоги"
//	@Success		200				{object}	AnalyzeResponse	"Результат анализа"
//	@Failure		400				{object}	ErrorResponse	"Ошибка валидации"
//	@Failure		413				{object}	ErrorResponse	"Файл слишком большой"
//	@Failure		415				{object}	ErrorResponse	"Неподдерживаемый формат"
//	@Router			/analyze [post]
func (h *StyleHandler) analyzeUpload(w http.ResponseWriter, r *http.Request) {
	const maxMemory = 32 << 20

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload+(1<<20))

	if err := ensureMultipartForm(r, maxMemory); err != nil {
		h.logger.Warnf("%d %s: %s", http.StatusBadRequest, e.ErrStatusBadRequest.Error(), err.Error())
		WriteError(w, err)
		return
	}

	alternatives, err := parseBoolField(r.FormValue("alternatives"))
	if err != nil {
		WriteError(w, err)
		return
	}

	files := r.MultipartForm.File["image"]
	if len(files) == 0 {
		WriteError(w, e.ErrImageRequired)
		return
	}

	path, err := saveUpload(files[0], h.maxUpload)
	if err != nil {
		h.logger.Warnf("upload rejected: %s", err.Error())
		WriteError(w, err)
		return
	}
	defer os.Remove(path)

	h.analyze(w, r, usecase.NewAnalyzeReq("", domain.ImageSource{Location: path}, alternatives))
}

// analyzeURL
//
//	@Summary		Анализ изображения по ссылке
//	@Tags			analyze
//	@Accept			json
//	@Produce		json
//	@Param			request	body		AnalyzeURLRequest	true	"Ссылка на изображение"
//	@Success		200		{object}	AnalyzeResponse		"Результат анализа"
//	@Failure		400		{object}	ErrorResponse		"Ошибка валидации"
//	@Router			/analyze/url [post]
func (h *StyleHandler) analyzeURL(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeURLRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
		WriteError(w, e.Wrap("decode body", e.ErrStatusBadRequest))
		return
	}

	if err := validateImageURL(req.URL); err != nil {
		WriteError(w, err)
		return
	}

	h.analyze(w, r, usecase.NewAnalyzeReq("", domain.ImageSource{Location: req.URL, IsURL: true}, req.Alternatives))
}

func (h *StyleHandler) analyze(w http.ResponseWriter, r *http.Request, req *usecase.AnalyzeReq) {
	req.RequestID = r.Header.Get("X-Request-Id")

	res, err := h.styleUsecase.Analyze(r.Context(), req)
	if err != nil {
		if !errors.Is(err, e.ErrImageRequired) {
			h.logger.Errorf(err, "analyze failed")
		}
		WriteError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, ToAnalyzeResponse(res))
}

// CatalogStats отдаёт размер загруженного каталога.
type CatalogStats interface {
	Len() int
}

type HealthHandler struct {
	catalog CatalogStats
}

func NewHealthHandler(catalog CatalogStats) *HealthHandler {
	return &HealthHandler{catalog: catalog}
}

// health
//
//	@Summary	Проверка готовности
//	@Tags		health
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/health [get]
func (h *HealthHandler) health(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, http.StatusOK, HealthResponse{Status: "ok", CatalogItems: h.catalog.Len()})
}
