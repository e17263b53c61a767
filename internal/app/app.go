package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	config "github.com/DRSN-tech/style-finder/internal/cfg"
	v1Grpc "github.com/DRSN-tech/style-finder/internal/delivery/v1/grpc"
	v1Http "github.com/DRSN-tech/style-finder/internal/delivery/v1/http"
	"github.com/DRSN-tech/style-finder/internal/domain"
	"github.com/DRSN-tech/style-finder/internal/infrastructure/imaging"
	"github.com/DRSN-tech/style-finder/internal/infrastructure/kafka"
	"github.com/DRSN-tech/style-finder/internal/infrastructure/llm"
	ml_service "github.com/DRSN-tech/style-finder/internal/infrastructure/ml-service"
	"github.com/DRSN-tech/style-finder/internal/infrastructure/serpapi"
	"github.com/DRSN-tech/style-finder/internal/repository/badgerdb"
	"github.com/DRSN-tech/style-finder/internal/repository/catalog"
	"github.com/DRSN-tech/style-finder/internal/repository/memory"
	s3Repo "github.com/DRSN-tech/style-finder/internal/repository/minio"
	"github.com/DRSN-tech/style-finder/internal/repository/pgdb"
	qdrantRepo "github.com/DRSN-tech/style-finder/internal/repository/qdrant"
	"github.com/DRSN-tech/style-finder/internal/repository/redis"
	"github.com/DRSN-tech/style-finder/internal/usecase"
	"github.com/DRSN-tech/style-finder/pkg/clients"
	"github.com/DRSN-tech/style-finder/pkg/closer"
	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/DRSN-tech/style-finder/pkg/postgres"
	"github.com/go-chi/chi/v5"
	"github.com/jimlawless/whereami"
)

const (
	initTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

// CatalogLoader читает каталог из настроенного источника.
type CatalogLoader interface {
	Load(ctx context.Context) ([]domain.CatalogEntry, error)
}

// App владеет загруженным каталогом, собранным пайплайном и всеми внешними клиентами.
type App struct {
	cfg     *config.Config
	logger  logger.Logger
	closer  *closer.Closer
	catalog *memory.CatalogRepo
	dim     int
	qdrant  *qdrantRepo.CatalogRepo // nil, пока не нужен
	styleUC *usecase.StyleUseCase
}

// NewApp загружает и проверяет каталог. Ошибка каталога фатальна.
func NewApp(ctx context.Context, cfg *config.Config, log logger.Logger) (*App, error) {
	a := &App{
		cfg:    cfg,
		logger: log,
		closer: closer.NewCloser(0),
	}

	initCtx, cancel := context.WithTimeout(ctx, initTimeout)
	defer cancel()

	loader, err := a.catalogLoader(initCtx)
	if err != nil {
		a.closeQuietly()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	entries, err := loader.Load(initCtx)
	if err != nil {
		a.closeQuietly()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if a.dim, err = catalog.Validate(entries); err != nil {
		a.closeQuietly()
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	a.catalog = memory.NewCatalogRepo(entries)
	log.Infof("catalog loaded from %s: %d rows, embedding dim %d", cfg.Catalog.Source, a.catalog.Len(), a.dim)

	return a, nil
}

// Build собирает пайплайн анализа. Для бэкенда qdrant каталог синхронизируется в коллекцию.
func (a *App) Build(ctx context.Context) error {
	var matcher usecase.CatalogRepository = a.catalog
	if a.cfg.Catalog.MatcherBackend == config.MatcherBackendQdrant {
		repo, err := a.qdrantMatcher(ctx)
		if err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		if _, err := repo.Sync(ctx, a.catalog.Entries()); err != nil {
			return e.Wrap(whereami.WhereAmI(), err)
		}
		matcher = repo
	}

	encoder, err := a.imageEncoder()
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	model, err := llm.NewOpenAIModel(a.cfg.LLM)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}
	vision := llm.NewVisionModel(model, llm.Params{
		Temperature: a.cfg.LLM.Temperature,
		TopP:        a.cfg.LLM.TopP,
		MaxTokens:   a.cfg.LLM.MaxTokens,
		Timeout:     a.cfg.LLM.Timeout,
	}, a.logger)

	limits := usecase.AlternativesLimits{
		TopN:     a.cfg.Search.TopN,
		PerItem:  a.cfg.Search.PerItemLimit,
		MaxTotal: a.cfg.Search.MaxTotal,
	}

	finder, err := a.alternativesFinder(ctx, limits)
	if err != nil {
		return e.Wrap(whereami.WhereAmI(), err)
	}

	a.styleUC = usecase.NewStyleUC(
		encoder,
		matcher,
		usecase.NewResponseGenerator(vision, a.cfg.Catalog.SimilarityThreshold, a.logger),
		finder,
		a.eventPublisher(),
		usecase.StyleConfig{SimilarityThreshold: a.cfg.Catalog.SimilarityThreshold, Limits: limits},
		a.logger,
	)
	// Закрывается раньше продьюсера (LIFO), чтобы фоновые события успели уйти.
	a.closer.Add("style usecase", a.styleUC.Close)

	return nil
}

// Run запускает HTTP и gRPC серверы и блокируется до сигнала или ошибки сервера.
func (a *App) Run() error {
	grpcSrv := v1Grpc.NewGRPCServer(a.cfg.Grpc, a.logger)
	grpcSrv.SetServing()
	a.closer.Add("grpc server", grpcSrv.Stop)

	grpcErrCh := make(chan error, 1)
	go func() {
		a.logger.Infof("gRPC server starting on %s:%s", a.cfg.Grpc.NetworkMode, a.cfg.Grpc.Port)
		if err := grpcSrv.Start(); err != nil {
			a.logger.Errorf(err, "gRPC server failed")
			grpcErrCh <- err
		}
	}()

	r := chi.NewRouter()
	router := v1Http.NewRouter(r, a.logger, a.cfg.Http.Port, a.cfg.Http.MaxUpload)
	router.Init(a.styleUC, a.catalog)

	httpSrv := v1Http.NewServer(r, a.cfg.Http)
	a.closer.Add("http server", httpSrv.Stop)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Infof("HTTP server started on port %s", a.cfg.Http.Port)
		if err := httpSrv.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Errorf(err, "HTTP server failed: %v", err)
			errCh <- err
		}
	}()

	// === Ожидание сигнала или ошибки ===
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	var appErr error
	select {
	case appErr = <-errCh:
		a.logger.Errorf(appErr, "HTTP server fatal error")
	case appErr = <-grpcErrCh:
		a.logger.Errorf(appErr, "gRPC server fatal error")
	case <-shutdown:
		a.logger.Infof("Received shutdown signal, stopping gracefully...")
	}

	// === Graceful shutdown ===
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := a.Close(shutdownCtx); err != nil {
		a.logger.Warnf("%v", err)
	}

	a.logger.Infof("Application shutdown complete")

	return appErr
}

// Analyze прогоняет одно изображение через пайплайн без поднятия серверов.
func (a *App) Analyze(ctx context.Context, src domain.ImageSource, alternatives bool) (*usecase.AnalyzeRes, error) {
	if a.styleUC == nil {
		return nil, e.Wrap(whereami.WhereAmI(), fmt.Errorf("pipeline is not built"))
	}

	return a.styleUC.Analyze(ctx, usecase.NewAnalyzeReq("", src, alternatives))
}

// Index синхронизирует эмбеддинги каталога в коллекцию Qdrant.
func (a *App) Index(ctx context.Context) (int, error) {
	repo, err := a.qdrantMatcher(ctx)
	if err != nil {
		return 0, e.Wrap(whereami.WhereAmI(), err)
	}

	return repo.Sync(ctx, a.catalog.Entries())
}

func (a *App) Close(ctx context.Context) error {
	return a.closer.Close(ctx)
}

func (a *App) closeQuietly() {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := a.closer.Close(ctx); err != nil {
		a.logger.Warnf("%v", err)
	}
}

func (a *App) catalogLoader(ctx context.Context) (CatalogLoader, error) {
	switch a.cfg.Catalog.Source {
	case config.CatalogSourceFile:
		return catalog.NewFileRepo(a.cfg.Catalog.Path), nil

	case config.CatalogSourceMinio:
		minioClient, err := clients.NewMinIOClient(a.cfg.Minio)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		if err := clients.CheckBucket(ctx, minioClient, a.cfg.Minio.BucketName); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		return s3Repo.NewCatalogRepo(minioClient, a.cfg.Minio, a.cfg.Catalog.Object), nil

	case config.CatalogSourcePostgres:
		db, err := initPGDB(ctx, a.logger, a.cfg)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddErr("postgres", func() error {
			db.Close()
			return nil
		})
		return pgdb.NewCatalogRepo(db.Pool), nil

	default:
		return nil, e.Wrap(a.cfg.Catalog.Source, e.ErrUnknownSource)
	}
}

func (a *App) qdrantMatcher(ctx context.Context) (*qdrantRepo.CatalogRepo, error) {
	if a.qdrant != nil {
		return a.qdrant, nil
	}

	qdrantClient, err := clients.NewQdrantClient(a.cfg.Qdrant)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}
	a.closer.AddErr("qdrant", qdrantClient.Close)

	if a.cfg.Qdrant.VectorSize != 0 && a.cfg.Qdrant.VectorSize != uint64(a.dim) {
		a.logger.Warnf("QDRANT_VECTOR_SIZE=%d differs from catalog dim %d, using catalog dim", a.cfg.Qdrant.VectorSize, a.dim)
	}

	qdrantCtx, qdrantCancel := context.WithTimeout(ctx, 10*time.Second)
	defer qdrantCancel()
	if err := clients.EnsureCollection(qdrantCtx, qdrantClient, uint64(a.dim)); err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	a.qdrant = qdrantRepo.NewCatalogRepo(qdrantClient.Client, a.catalog, a.cfg.Qdrant, a.logger)
	return a.qdrant, nil
}

func (a *App) imageEncoder() (*ml_service.ImageEncoder, error) {
	vc := a.cfg.Vision

	processor := imaging.NewProcessor(
		&http.Client{Timeout: vc.FetchTimeout},
		vc.MaxImageBytes,
		imaging.Options{
			Size:        vc.ImageSize,
			Mean:        vc.Mean,
			Std:         vc.Std,
			JPEGQuality: vc.JPEGQuality,
		},
	)

	backbone := ml_service.NewMLService(&http.Client{}, vc.BaseURL, vc.Model, vc.InputName, vc.Timeout, vc.MaxRetries, a.logger)

	return ml_service.NewImageEncoder(processor, backbone, vc.CacheSize, a.logger)
}

// alternativesFinder возвращает nil, если поиск альтернатив выключен.
func (a *App) alternativesFinder(ctx context.Context, limits usecase.AlternativesLimits) (*usecase.AlternativesFinder, error) {
	sc := a.cfg.Search
	if !sc.Enabled {
		a.logger.Infof("alternatives search disabled")
		return nil, nil
	}

	var searcher usecase.ShoppingSearcher = serpapi.NewClient(&http.Client{}, sc.BaseURL, sc.APIKey, sc.RatePerSecond, sc.Timeout, a.logger)

	switch sc.CacheBackend {
	case config.SearchCacheRedis:
		redisClient := clients.NewRedisClient(a.cfg.Redis)
		redisCtx, redisCancel := context.WithTimeout(ctx, 5*time.Second)
		defer redisCancel()
		if err := redisClient.Ping(redisCtx); err != nil {
			redisClient.Close()
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddErr("redis", redisClient.Close)
		searcher = serpapi.NewCachedSearcher(searcher, redis.NewCacheRepo(redisClient, sc.CacheTTL, a.logger), a.logger)

	case config.SearchCacheBadger:
		cache, err := badgerdb.Open(a.cfg.Badger, sc.CacheTTL, a.logger)
		if err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
		a.closer.AddErr("badger", cache.Close)
		searcher = serpapi.NewCachedSearcher(searcher, cache, a.logger)
	}

	return usecase.NewAlternativesFinder(searcher, limits, a.logger), nil
}

// eventPublisher возвращает nil-интерфейс, если события выключены.
func (a *App) eventPublisher() usecase.EventPublisher {
	if !a.cfg.Kafka.Enabled {
		return nil
	}

	producer := kafka.NewProducer(a.logger, a.cfg.Kafka)
	if err := producer.EnsureTopic(10 * time.Second); err != nil {
		a.logger.Warnf("failed to ensure kafka topic %s: %v", a.cfg.Kafka.Topic, err)
	}
	a.closer.AddErr("kafka producer", producer.Close)

	return producer
}

func initPGDB(ctx context.Context, logger logger.Logger, cfg *config.Config) (*postgres.PgDatabase, error) {
	db, err := postgres.Connect(ctx, cfg.Db)
	if err != nil {
		logger.Errorf(err, "failed to connect to database")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	if err := db.RunMigrations(logger); err != nil {
		db.Close()
		logger.Errorf(err, "failed to run migrations")
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	return db, nil
}
