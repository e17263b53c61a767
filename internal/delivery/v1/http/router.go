package http

import (
	"fmt"

	_ "github.com/DRSN-tech/style-finder/docs" // Регистрация swagger-спецификации
	"github.com/DRSN-tech/style-finder/internal/usecase"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpSwagger "github.com/swaggo/http-swagger/v2"
)

type Router struct {
	router    *chi.Mux
	logger    logger.Logger
	port      string
	maxUpload int64
}

func NewRouter(router *chi.Mux, logger logger.Logger, port string, maxUpload int64) *Router {
	return &Router{router: router, logger: logger, port: port, maxUpload: maxUpload}
}

func (r *Router) Init(styleUC usecase.StyleUC, catalog CatalogStats) {
	r.router.Use(middleware.Recoverer)

	r.router.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%s/swagger/doc.json", r.port)),
	))

	r.router.Route("/api/v1", func(v1 chi.Router) {
		registerStyleRoutes(v1, NewStyleHandler(styleUC, r.logger, r.maxUpload))
		v1.Get("/health", NewHealthHandler(catalog).health)
	})
}

func registerStyleRoutes(router chi.Router, handler *StyleHandler) {
	router.Route("/analyze", func(ar chi.Router) {
		ar.Post("/", handler.analyzeUpload)
		ar.Post("/url", handler.analyzeURL)
	})
}
