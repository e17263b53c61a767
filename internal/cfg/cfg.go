package cfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/DRSN-tech/style-finder/pkg/e"
	"github.com/DRSN-tech/style-finder/pkg/logger"
	"github.com/jimlawless/whereami"
	"github.com/joho/godotenv"
)

const (
	CatalogSourceFile     = "file"
	CatalogSourceMinio    = "minio"
	CatalogSourcePostgres = "postgres"

	MatcherBackendMemory = "memory"
	MatcherBackendQdrant = "qdrant"

	SearchCacheNone   = "none"
	SearchCacheRedis  = "redis"
	SearchCacheBadger = "badger"
)

type Config struct {
	Http    *HTTPConfig
	Grpc    *GRPCConfig
	Catalog *CatalogCfg
	Vision  *VisionCfg
	LLM     *LLMCfg
	Search  *SearchCfg
	Redis   *RedisCfg
	Badger  *BadgerCfg
	Minio   *MinIOCfg
	Qdrant  *QdrantCfg
	Db      *PGDBCfg
	Kafka   *KafkaCfg
}

type HTTPConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
	MaxUpload    int64 // Максимальный размер загружаемого изображения в байтах
}

type GRPCConfig struct {
	Port        string
	NetworkMode string
}

// CatalogCfg описывает источник каталога и параметры сопоставления.
type CatalogCfg struct {
	Source              string  // file | minio | postgres
	Path                string  // путь к JSON-файлу каталога (Source = file)
	Object              string  // ключ объекта в MinIO (Source = minio)
	MatcherBackend      string  // memory | qdrant
	SimilarityThreshold float64 // порог «точного» совпадения
}

// VisionCfg описывает предобработку изображения и подключение к vision backbone.
type VisionCfg struct {
	BaseURL       string
	Model         string
	InputName     string
	ImageSize     int
	Mean          [3]float32
	Std           [3]float32
	JPEGQuality   int
	MaxImageBytes int64
	Timeout       time.Duration
	FetchTimeout  time.Duration
	MaxRetries    int
	CacheSize     int
}

// LLMCfg описывает мультимодальную модель.
type LLMCfg struct {
	ModelID     string
	ProjectID   string
	Region      string
	BaseURL     string
	APIKey      string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
}

// SearchCfg описывает поиск альтернатив через SerpAPI.
type SearchCfg struct {
	Enabled       bool
	APIKey        string
	BaseURL       string
	TopN          int
	PerItemLimit  int
	MaxTotal      int
	Timeout       time.Duration
	RatePerSecond float64
	CacheBackend  string
	CacheTTL      time.Duration
}

type RedisCfg struct {
	Addr        string
	Password    string
	User        string
	DB          int
	MaxRetries  int
	DialTimeout time.Duration
	Timeout     time.Duration
}

type BadgerCfg struct {
	Path     string
	InMemory bool
}

type MinIOCfg struct {
	MinioEndpoint     string // Адрес конечной точки Minio
	BucketName        string // Бакет, в котором лежит сериализованный каталог
	MinioRootUser     string
	MinioRootPassword string
	MinioUseSSL       bool
}

type QdrantCfg struct {
	Port                 int
	Host                 string
	ApiKey               string
	QdrantCollectionName string
	UseTLS               bool
	VectorSize           uint64
	SyncBatchSize        int
	SyncWorkers          int
}

type PGDBCfg struct {
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	SSLMode       string
	MigrationsURL string
}

type KafkaCfg struct {
	Enabled           bool
	Topic             string
	Brokers           []string
	NetworkMode       string
	Partitions        int
	ReplicationFactor int
}

// Load загружает конфигурацию из окружения (и .env, если он есть).
// Секции внешних хранилищ обязательны только когда выбраны соответствующие бэкенды.
func Load(log logger.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warnf("failed to read .env: %v", err)
	}

	http, err := loadHTTPConfig(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	catalog, err := loadCatalogCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	vision, err := loadVisionCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	llm, err := loadLLMCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	search, err := loadSearchCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	qdrant, err := loadQdrantCfg(log)
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	kafka, err := loadKafkaCfg()
	if err != nil {
		return nil, e.Wrap(whereami.WhereAmI(), err)
	}

	cfg := &Config{
		Http:    http,
		Grpc:    loadGRPCConfig(),
		Catalog: catalog,
		Vision:  vision,
		LLM:     llm,
		Search:  search,
		Badger:  loadBadgerCfg(),
		Qdrant:  qdrant,
		Kafka:   kafka,
	}

	if search.CacheBackend == SearchCacheRedis {
		if cfg.Redis, err = loadRedisCfg(log); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	switch catalog.Source {
	case CatalogSourceMinio:
		if cfg.Minio, err = loadMinIOCfg(log); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	case CatalogSourcePostgres:
		if cfg.Db, err = loadPGDBCfg(log); err != nil {
			return nil, e.Wrap(whereami.WhereAmI(), err)
		}
	}

	return cfg, nil
}

func loadHTTPConfig(log logger.Logger) (*HTTPConfig, error) {
	const (
		defaultPort         = "8080"
		defaultReadTimeout  = 30 * time.Second
		defaultWriteTimeout = 120 * time.Second
		defaultIdleTimeout  = 60 * time.Second
		defaultMaxUpload    = 15 << 20
	)

	readTimeout, err := parseDurationEnv("HTTP_READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_READ_TIMEOUT")
		return nil, err
	}

	// Анализ включает вызов LLM, поэтому таймаут записи заметно больше чтения
	writeTimeout, err := parseDurationEnv("HTTP_WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid HTTP_WRITE_TIMEOUT")
		return nil, err
	}

	idleTimeout, err := parseDurationEnv("KEEP_ALIVE", defaultIdleTimeout)
	if err != nil {
		log.Errorf(err, "invalid KEEP_ALIVE")
		return nil, err
	}

	maxUpload, err := parseIntEnv("HTTP_MAX_UPLOAD_BYTES", defaultMaxUpload)
	if err != nil {
		log.Errorf(err, "invalid HTTP_MAX_UPLOAD_BYTES")
		return nil, err
	}

	return &HTTPConfig{
		Port:         getEnvOrDefault("HTTP_PORT", defaultPort),
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		MaxUpload:    int64(maxUpload),
	}, nil
}

func loadGRPCConfig() *GRPCConfig {
	const (
		defaultPort        = "8091"
		defaultNetworkMode = "tcp"
	)

	return &GRPCConfig{
		Port:        getEnvOrDefault("GRPC_PORT", defaultPort),
		NetworkMode: getEnvOrDefault("GRPC_NETWORK_MODE", defaultNetworkMode),
	}
}

func loadCatalogCfg(log logger.Logger) (*CatalogCfg, error) {
	const (
		defaultSource    = CatalogSourceFile
		defaultPath      = "swift-style-embeddings.json"
		defaultBackend   = MatcherBackendMemory
		defaultThreshold = 0.8
	)

	source := strings.ToLower(getEnvOrDefault("CATALOG_SOURCE", defaultSource))
	switch source {
	case CatalogSourceFile, CatalogSourceMinio, CatalogSourcePostgres:
	default:
		err := e.Wrap("CATALOG_SOURCE="+source, e.ErrUnknownSource)
		log.Errorf(err, "invalid CATALOG_SOURCE")
		return nil, err
	}

	backend := strings.ToLower(getEnvOrDefault("MATCHER_BACKEND", defaultBackend))
	if backend != MatcherBackendMemory && backend != MatcherBackendQdrant {
		err := e.Wrap("MATCHER_BACKEND="+backend, e.ErrIncorrectEnvVariable)
		log.Errorf(err, "invalid MATCHER_BACKEND")
		return nil, err
	}

	threshold, err := parseFloatEnv("SIMILARITY_THRESHOLD", defaultThreshold)
	if err != nil {
		log.Errorf(err, "invalid SIMILARITY_THRESHOLD")
		return nil, err
	}

	object := getEnv("CATALOG_OBJECT")
	if source == CatalogSourceMinio && object == "" {
		err := fmt.Errorf("CATALOG_OBJECT is required for minio catalog source")
		log.Errorf(err, "missing CATALOG_OBJECT")
		return nil, err
	}

	return &CatalogCfg{
		Source:              source,
		Path:                getEnvOrDefault("CATALOG_PATH", defaultPath),
		Object:              object,
		MatcherBackend:      backend,
		SimilarityThreshold: threshold,
	}, nil
}

func loadVisionCfg(log logger.Logger) (*VisionCfg, error) {
	const (
		defaultBaseURL       = "http://ml-service:8080"
		defaultModel         = "resnet50"
		defaultInputName     = "input"
		defaultImageSize     = 224
		defaultMean          = "0.485,0.456,0.406"
		defaultStd           = "0.229,0.224,0.225"
		defaultJPEGQuality   = 75
		defaultMaxImageBytes = 15 << 20
		defaultTimeout       = 10 * time.Second
		defaultFetchTimeout  = 10 * time.Second
		defaultMaxRetries    = 3
		defaultCacheSize     = 256
	)

	size, err := parseIntEnv("IMAGE_SIZE", defaultImageSize)
	if err != nil || size <= 0 {
		log.Errorf(err, "invalid IMAGE_SIZE")
		return nil, e.Wrap("IMAGE_SIZE", e.ErrIncorrectEnvVariable)
	}

	mean, err := parseTripletEnv("NORMALIZATION_MEAN", defaultMean)
	if err != nil {
		log.Errorf(err, "invalid NORMALIZATION_MEAN")
		return nil, err
	}

	std, err := parseTripletEnv("NORMALIZATION_STD", defaultStd)
	if err != nil {
		log.Errorf(err, "invalid NORMALIZATION_STD")
		return nil, err
	}
	for _, s := range std {
		if s == 0 {
			return nil, e.Wrap("NORMALIZATION_STD must not contain zeros", e.ErrIncorrectEnvVariable)
		}
	}

	quality, err := parseIntEnv("JPEG_QUALITY", defaultJPEGQuality)
	if err != nil {
		log.Errorf(err, "invalid JPEG_QUALITY")
		return nil, err
	}

	maxBytes, err := parseIntEnv("MAX_IMAGE_BYTES", defaultMaxImageBytes)
	if err != nil {
		log.Errorf(err, "invalid MAX_IMAGE_BYTES")
		return nil, err
	}

	timeout, err := parseDurationEnv("VISION_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid VISION_TIMEOUT")
		return nil, err
	}

	fetchTimeout, err := parseDurationEnv("IMAGE_FETCH_TIMEOUT", defaultFetchTimeout)
	if err != nil {
		log.Errorf(err, "invalid IMAGE_FETCH_TIMEOUT")
		return nil, err
	}

	retries, err := parseIntEnv("VISION_MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid VISION_MAX_RETRIES")
		return nil, err
	}

	cacheSize, err := parseIntEnv("EMBEDDING_CACHE_SIZE", defaultCacheSize)
	if err != nil {
		log.Errorf(err, "invalid EMBEDDING_CACHE_SIZE")
		return nil, err
	}

	return &VisionCfg{
		BaseURL:       strings.TrimSuffix(getEnvOrDefault("VISION_BASE_URL", defaultBaseURL), "/"),
		Model:         getEnvOrDefault("VISION_MODEL", defaultModel),
		InputName:     getEnvOrDefault("VISION_INPUT_NAME", defaultInputName),
		ImageSize:     size,
		Mean:          mean,
		Std:           std,
		JPEGQuality:   quality,
		MaxImageBytes: int64(maxBytes),
		Timeout:       timeout,
		FetchTimeout:  fetchTimeout,
		MaxRetries:    retries,
		CacheSize:     cacheSize,
	}, nil
}

func loadLLMCfg(log logger.Logger) (*LLMCfg, error) {
	const (
		defaultModelID     = "meta-llama/llama-3-2-90b-vision-instruct"
		defaultProjectID   = "skills-network"
		defaultRegion      = "us-south"
		defaultTemperature = 0.2
		defaultTopP        = 0.6
		defaultMaxTokens   = 2000
		defaultTimeout     = 60 * time.Second
	)

	temperature, err := parseFloatEnv("LLM_TEMPERATURE", defaultTemperature)
	if err != nil {
		log.Errorf(err, "invalid LLM_TEMPERATURE")
		return nil, err
	}

	topP, err := parseFloatEnv("LLM_TOP_P", defaultTopP)
	if err != nil {
		log.Errorf(err, "invalid LLM_TOP_P")
		return nil, err
	}

	maxTokens, err := parseIntEnv("LLM_MAX_TOKENS", defaultMaxTokens)
	if err != nil {
		log.Errorf(err, "invalid LLM_MAX_TOKENS")
		return nil, err
	}

	timeout, err := parseDurationEnv("LLM_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid LLM_TIMEOUT")
		return nil, err
	}

	region := getEnvOrDefault("LLM_REGION", defaultRegion)

	return &LLMCfg{
		ModelID:     getEnvOrDefault("LLM_MODEL_ID", defaultModelID),
		ProjectID:   getEnvOrDefault("LLM_PROJECT_ID", defaultProjectID),
		Region:      region,
		BaseURL:     getEnvOrDefault("LLM_BASE_URL", DefaultLLMBaseURL(region)),
		APIKey:      getEnv("LLM_API_KEY"),
		Temperature: temperature,
		TopP:        topP,
		MaxTokens:   maxTokens,
		Timeout:     timeout,
	}, nil
}

// DefaultLLMBaseURL возвращает OpenAI-совместимый эндпоинт для региона.
func DefaultLLMBaseURL(region string) string {
	return fmt.Sprintf("https://%s.ml.cloud.ibm.com/ml/gateway/v1", region)
}

func loadSearchCfg(log logger.Logger) (*SearchCfg, error) {
	const (
		defaultBaseURL      = "https://serpapi.com/search.json"
		defaultTopN         = 5
		defaultPerItemLimit = 3
		defaultMaxTotal     = 10
		defaultTimeout      = 10 * time.Second
		defaultRate         = 5.0
		defaultCacheTTL     = 24 * time.Hour
	)

	enabled, err := strconv.ParseBool(getEnvOrDefault("ALTERNATIVES_ENABLED", "false"))
	if err != nil {
		log.Errorf(err, "invalid ALTERNATIVES_ENABLED")
		return nil, err
	}

	topN, err := parseIntEnv("SEARCH_TOP_N", defaultTopN)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_TOP_N")
		return nil, err
	}

	perItem, err := parseIntEnv("ALTERNATIVES_PER_ITEM", defaultPerItemLimit)
	if err != nil {
		log.Errorf(err, "invalid ALTERNATIVES_PER_ITEM")
		return nil, err
	}

	maxTotal, err := parseIntEnv("ALTERNATIVES_MAX_TOTAL", defaultMaxTotal)
	if err != nil {
		log.Errorf(err, "invalid ALTERNATIVES_MAX_TOTAL")
		return nil, err
	}

	timeout, err := parseDurationEnv("SEARCH_TIMEOUT", defaultTimeout)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_TIMEOUT")
		return nil, err
	}

	rate, err := parseFloatEnv("SEARCH_RATE_LIMIT", defaultRate)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_RATE_LIMIT")
		return nil, err
	}

	ttl, err := parseDurationEnv("SEARCH_CACHE_TTL", defaultCacheTTL)
	if err != nil {
		log.Errorf(err, "invalid SEARCH_CACHE_TTL")
		return nil, err
	}

	backend := strings.ToLower(getEnvOrDefault("SEARCH_CACHE_BACKEND", SearchCacheNone))
	switch backend {
	case SearchCacheNone, SearchCacheRedis, SearchCacheBadger:
	default:
		return nil, e.Wrap("SEARCH_CACHE_BACKEND="+backend, e.ErrIncorrectEnvVariable)
	}

	apiKey := getEnv("SERPAPI_API_KEY")
	if enabled && apiKey == "" {
		err := fmt.Errorf("SERPAPI_API_KEY is required when ALTERNATIVES_ENABLED=true")
		log.Errorf(err, "missing SERPAPI_API_KEY")
		return nil, err
	}

	return &SearchCfg{
		Enabled:       enabled,
		APIKey:        apiKey,
		BaseURL:       getEnvOrDefault("SEARCH_BASE_URL", defaultBaseURL),
		TopN:          topN,
		PerItemLimit:  perItem,
		MaxTotal:      maxTotal,
		Timeout:       timeout,
		RatePerSecond: rate,
		CacheBackend:  backend,
		CacheTTL:      ttl,
	}, nil
}

func loadRedisCfg(log logger.Logger) (*RedisCfg, error) {
	const (
		defaultAddr         = "localhost:6379"
		defaultDB           = 0
		defaultMaxRetries   = 3
		defaultDialTimeout  = 5 * time.Second
		defaultReadTimeout  = 3 * time.Second
		defaultWriteTimeout = 3 * time.Second
	)

	db, err := parseIntEnv("REDIS_DB_ID", defaultDB)
	if err != nil {
		log.Errorf(err, "invalid REDIS_DB_ID")
		return nil, err
	}

	maxRetries, err := parseIntEnv("MAX_RETRIES", defaultMaxRetries)
	if err != nil {
		log.Errorf(err, "invalid MAX_RETRIES")
		return nil, err
	}

	dialTimeout, err := parseDurationEnv("DIAL_TIMEOUT", defaultDialTimeout)
	if err != nil {
		log.Errorf(err, "invalid DIAL_TIMEOUT")
		return nil, err
	}

	readTimeout, err := parseDurationEnv("READ_TIMEOUT", defaultReadTimeout)
	if err != nil {
		log.Errorf(err, "invalid READ_TIMEOUT")
		return nil, err
	}

	writeTimeout, err := parseDurationEnv("WRITE_TIMEOUT", defaultWriteTimeout)
	if err != nil {
		log.Errorf(err, "invalid WRITE_TIMEOUT")
		return nil, err
	}

	timeout := readTimeout
	if writeTimeout > timeout {
		timeout = writeTimeout
	}

	return &RedisCfg{
		Addr:        getEnvOrDefault("REDIS_ADDR", defaultAddr),
		Password:    getEnv("REDIS_PASSWORD"),
		User:        getEnv("REDIS_USER"),
		DB:          db,
		MaxRetries:  maxRetries,
		DialTimeout: dialTimeout,
		Timeout:     timeout,
	}, nil
}

func loadBadgerCfg() *BadgerCfg {
	const defaultPath = "data/search-cache"

	path := getEnvOrDefault("BADGER_PATH", defaultPath)
	return &BadgerCfg{
		Path:     path,
		InMemory: path == ":memory:",
	}
}

func loadMinIOCfg(log logger.Logger) (*MinIOCfg, error) {
	const (
		defaultUseSSL   = false
		defaultEndpoint = "minio:9000"
	)

	useSSL, err := strconv.ParseBool(getEnvOrDefault("MINIO_USE_SSL", strconv.FormatBool(defaultUseSSL)))
	if err != nil {
		log.Errorf(err, "invalid MINIO_USE_SSL")
		return nil, err
	}

	bucket := getEnv("BUCKET_NAME")
	if bucket == "" {
		err := fmt.Errorf("BUCKET_NAME is required")
		log.Errorf(err, "missing BUCKET_NAME")
		return nil, err
	}

	return &MinIOCfg{
		MinioEndpoint:     getEnvOrDefault("MINIO_ENDPOINT", defaultEndpoint),
		BucketName:        bucket,
		MinioRootUser:     getEnv("MINIO_ROOT_USER"),
		MinioRootPassword: getEnv("MINIO_ROOT_PASSWORD"),
		MinioUseSSL:       useSSL,
	}, nil
}

func loadQdrantCfg(logger logger.Logger) (*QdrantCfg, error) {
	const (
		defaultQdrantGRPCPort = "6334"
		defaultHost           = "localhost"
		defaultUseTLS         = false
		defaultVectorSize     = "1000"
		defaultCollection     = "style_catalog"
		defaultBatchSize      = 256
		defaultWorkers        = 4
	)

	port, err := strconv.Atoi(getEnvOrDefault("QDRANT_GRPC_PORT", defaultQdrantGRPCPort))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_GRPC_PORT")
		return nil, err
	}

	useTLS, err := strconv.ParseBool(getEnvOrDefault("QDRANT_USE_TLS", strconv.FormatBool(defaultUseTLS)))
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_USE_TLS")
		return nil, err
	}

	vectorSize, err := strconv.ParseUint(getEnvOrDefault("VECTOR_SIZE", defaultVectorSize), 10, 64)
	if err != nil {
		logger.Errorf(err, "invalid VECTOR_SIZE")
		return nil, err
	}

	batchSize, err := parseIntEnv("QDRANT_SYNC_BATCH", defaultBatchSize)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_SYNC_BATCH")
		return nil, err
	}

	workers, err := parseIntEnv("QDRANT_SYNC_WORKERS", defaultWorkers)
	if err != nil {
		logger.Errorf(err, "invalid QDRANT_SYNC_WORKERS")
		return nil, err
	}

	return &QdrantCfg{
		Host:                 getEnvOrDefault("QDRANT_HOST", defaultHost),
		Port:                 port,
		ApiKey:               getEnv("QDRANT__SERVICE__API_KEY"),
		QdrantCollectionName: getEnvOrDefault("COLLECTION_NAME", defaultCollection),
		UseTLS:               useTLS,
		VectorSize:           vectorSize,
		SyncBatchSize:        batchSize,
		SyncWorkers:          workers,
	}, nil
}

func loadPGDBCfg(log logger.Logger) (*PGDBCfg, error) {
	const (
		defaultHost          = "localhost"
		defaultPort          = "5432"
		defaultSSLMode       = "disable"
		defaultMigrationsURL = "file://db/migrations"
	)

	user := getEnv("POSTGRES_USER")
	if user == "" {
		err := fmt.Errorf("POSTGRES_USER is required")
		log.Errorf(err, "missing POSTGRES_USER")
		return nil, err
	}

	password := getEnv("POSTGRES_PASSWORD")
	if password == "" {
		err := fmt.Errorf("POSTGRES_PASSWORD is required")
		log.Errorf(err, "missing POSTGRES_PASSWORD")
		return nil, err
	}

	dbName := getEnv("POSTGRES_DB")
	if dbName == "" {
		err := fmt.Errorf("POSTGRES_DB is required")
		log.Errorf(err, "missing POSTGRES_DB")
		return nil, err
	}

	return &PGDBCfg{
		Host:          getEnvOrDefault("POSTGRES_HOST", defaultHost),
		Port:          getEnvOrDefault("POSTGRES_PORT", defaultPort),
		User:          user,
		Password:      password,
		DBName:        dbName,
		SSLMode:       getEnvOrDefault("SSL_MODE", defaultSSLMode),
		MigrationsURL: getEnvOrDefault("MIGRATIONS_URL", defaultMigrationsURL),
	}, nil
}

func loadKafkaCfg() (*KafkaCfg, error) {
	const (
		defaultPartitions        = 3
		defaultReplicationFactor = 1
		defaultNetworkMode       = "tcp"
		defaultTopic             = "style-analysis-events"
	)

	enabled, err := strconv.ParseBool(getEnvOrDefault("EVENTS_ENABLED", "false"))
	if err != nil {
		return nil, e.Wrap("EVENTS_ENABLED", e.ErrIncorrectEnvVariable)
	}

	if !enabled {
		return &KafkaCfg{Enabled: false}, nil
	}

	brokerStr := getEnv("KAFKA_BROKERS")
	if brokerStr == "" {
		return nil, fmt.Errorf("KAFKA_BROKERS environment variable is required")
	}

	partitions, err := parseIntEnv("KAFKA_PARTITIONS", defaultPartitions)
	if err != nil {
		return nil, e.Wrap("KAFKA_PARTITIONS", err)
	}

	replicationFactor, err := parseIntEnv("REPLICATION_FACTOR", defaultReplicationFactor)
	if err != nil {
		return nil, e.Wrap("REPLICATION_FACTOR", err)
	}

	return &KafkaCfg{
		Enabled:           true,
		Brokers:           strings.Split(brokerStr, ","),
		Topic:             getEnvOrDefault("KAFKA_TOPIC", defaultTopic),
		Partitions:        partitions,
		ReplicationFactor: replicationFactor,
		NetworkMode:       getEnvOrDefault("KAFKA_NETWORK_MODE", defaultNetworkMode),
	}, nil
}

// getEnv возвращает значение переменной окружения.
// Возвращает пустую строку, если переменная не задана.
func getEnv(key string) string {
	return os.Getenv(key)
}

// getEnvOrDefault возвращает значение переменной окружения или значение по умолчанию.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}

	return defaultValue
}

// parseDurationEnv считывает длительность или возвращает значение по умолчанию.
func parseDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	if v := os.Getenv(key); v != "" {
		return time.ParseDuration(v)
	}

	return defaultValue, nil
}

func parseIntEnv(key string, defaultValue int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	intValue, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue, e.ErrIncorrectEnvVariable
	}

	return intValue, nil
}

func parseFloatEnv(key string, defaultValue float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue, nil
	}

	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return defaultValue, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	return f, nil
}

// parseTripletEnv читает три числа через запятую (поканальные mean/std).
func parseTripletEnv(key, defaultValue string) ([3]float32, error) {
	var out [3]float32

	parts := strings.Split(getEnvOrDefault(key, defaultValue), ",")
	if len(parts) != 3 {
		return out, e.Wrap(key, e.ErrIncorrectEnvVariable)
	}

	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return out, e.Wrap(key, e.ErrIncorrectEnvVariable)
		}
		out[i] = float32(f)
	}

	return out, nil
}
