package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/socli/internal/platform/logging"
	"github.com/riskibarqy/socli/internal/platform/resilience"
)

const (
	StoreDriverFile     = "file"
	StoreDriverRedis    = "redis"
	StoreDriverPostgres = "postgres"
)

// Config stores runtime configuration for the market watcher.
type Config struct {
	AppEnv         string `validate:"required"`
	ServiceName    string `validate:"required"`
	ServiceVersion string
	LogLevel       logging.Level
	LogFile        string
	LogRingSize    int `validate:"gt=0"`

	StrategiesDir   string        `validate:"required"`
	StrategyTimeout time.Duration `validate:"gte=0"`

	StoreDriver    string `validate:"oneof=file redis postgres"`
	StoreDir       string `validate:"required_if=StoreDriver file"`
	RedisAddr      string `validate:"required_if=StoreDriver redis"`
	RedisPassword  string
	RedisDB        int `validate:"gte=0"`
	RedisKeyPrefix string
	DBURL          string `validate:"required_if=StoreDriver postgres"`

	SorareGraphQLURL       string        `validate:"required,url"`
	SorareSportsGraphQLURL string        `validate:"required,url"`
	SorareTimeout          time.Duration `validate:"gt=0"`
	SorareMaxRetries       int           `validate:"gte=0"`
	SorareCircuit          resilience.BreakerConfig
	PriceCacheTTL          time.Duration `validate:"gte=0"`

	RefreshInterval       time.Duration `validate:"gt=0"`
	RefreshBatchSize      int           `validate:"gt=0"`
	RosterPageSize        int           `validate:"gt=0"`
	RosterPageDelay       time.Duration `validate:"gte=0"`
	RosterMaxStuckPages   int           `validate:"gte=0"`
	RosterLoadMaxAttempts int           `validate:"gte=0"`
	RosterLoadBackoff     time.Duration `validate:"gt=0"`
	RosterLoadMaxBackoff  time.Duration `validate:"gtefield=RosterLoadBackoff"`

	OrchestratorWorkers   int `validate:"gt=0"`
	OrchestratorQueueSize int `validate:"gt=0"`
	UIHeadless            bool

	UptraceEnabled             bool
	UptraceDSN                 string
	PyroscopeEnabled           bool
	PyroscopeServerAddress     string
	PyroscopeAppName           string
	PyroscopeAuthToken         string
	PyroscopeBasicAuthUser     string
	PyroscopeBasicAuthPassword string
	PyroscopeUploadRate        time.Duration
}

func Load() (Config, error) {
	appEnv, err := parseAppEnv(getEnv("APP_ENV", EnvDev))
	if err != nil {
		return Config{}, err
	}

	logLevel, err := logging.ParseLevel(strings.ToLower(strings.TrimSpace(getEnv("APP_LOG_LEVEL", "info"))))
	if err != nil {
		return Config{}, fmt.Errorf("parse APP_LOG_LEVEL: %w", err)
	}
	logRingSize, err := getEnvAsInt("LOG_RING_SIZE", 500)
	if err != nil {
		return Config{}, fmt.Errorf("parse LOG_RING_SIZE: %w", err)
	}

	strategiesDir := strings.TrimSpace(getEnv("STRATEGIES_DIR", ""))
	if strategiesDir == "" {
		return Config{}, fmt.Errorf("STRATEGIES_DIR is required")
	}
	strategyTimeout, err := time.ParseDuration(getEnv("STRATEGY_TIMEOUT", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse STRATEGY_TIMEOUT: %w", err)
	}

	storeDriver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", StoreDriverFile)))
	switch storeDriver {
	case StoreDriverFile, StoreDriverRedis, StoreDriverPostgres:
	default:
		return Config{}, fmt.Errorf("invalid STORE_DRIVER %q: valid values are %s, %s, %s", storeDriver, StoreDriverFile, StoreDriverRedis, StoreDriverPostgres)
	}
	redisDB, err := getEnvAsInt("REDIS_DB", 0)
	if err != nil {
		return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
	}

	sorareTimeout, err := time.ParseDuration(getEnv("SORARE_TIMEOUT", "20s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse SORARE_TIMEOUT: %w", err)
	}
	if sorareTimeout <= 0 {
		return Config{}, fmt.Errorf("SORARE_TIMEOUT must be > 0")
	}
	sorareMaxRetries, err := getEnvAsInt("SORARE_MAX_RETRIES", 1)
	if err != nil {
		return Config{}, fmt.Errorf("parse SORARE_MAX_RETRIES: %w", err)
	}
	if sorareMaxRetries < 0 {
		return Config{}, fmt.Errorf("SORARE_MAX_RETRIES must be >= 0")
	}
	sorareCircuit, err := loadBreaker("SORARE_CIRCUIT")
	if err != nil {
		return Config{}, err
	}
	priceCacheTTL, err := time.ParseDuration(getEnv("PRICE_CACHE_TTL", "5m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PRICE_CACHE_TTL: %w", err)
	}

	refreshInterval, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "3s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_INTERVAL: %w", err)
	}
	if refreshInterval <= 0 {
		return Config{}, fmt.Errorf("REFRESH_INTERVAL must be > 0")
	}
	refreshBatchSize, err := getEnvAsInt("REFRESH_BATCH_SIZE", 5)
	if err != nil {
		return Config{}, fmt.Errorf("parse REFRESH_BATCH_SIZE: %w", err)
	}
	if refreshBatchSize < 1 {
		return Config{}, fmt.Errorf("REFRESH_BATCH_SIZE must be >= 1")
	}

	rosterPageSize, err := getEnvAsInt("ROSTER_PAGE_SIZE", 50)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_PAGE_SIZE: %w", err)
	}
	rosterPageDelay, err := time.ParseDuration(getEnv("ROSTER_PAGE_DELAY", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_PAGE_DELAY: %w", err)
	}
	rosterMaxStuckPages, err := getEnvAsInt("ROSTER_MAX_STUCK_PAGES", 10)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_MAX_STUCK_PAGES: %w", err)
	}
	rosterLoadMaxAttempts, err := getEnvAsInt("ROSTER_LOAD_MAX_ATTEMPTS", 8)
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_LOAD_MAX_ATTEMPTS: %w", err)
	}
	rosterLoadBackoff, err := time.ParseDuration(getEnv("ROSTER_LOAD_BACKOFF", "2s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_LOAD_BACKOFF: %w", err)
	}
	rosterLoadMaxBackoff, err := time.ParseDuration(getEnv("ROSTER_LOAD_MAX_BACKOFF", "1m"))
	if err != nil {
		return Config{}, fmt.Errorf("parse ROSTER_LOAD_MAX_BACKOFF: %w", err)
	}

	orchestratorWorkers, err := getEnvAsInt("ORCHESTRATOR_WORKERS", 2)
	if err != nil {
		return Config{}, fmt.Errorf("parse ORCHESTRATOR_WORKERS: %w", err)
	}
	orchestratorQueueSize, err := getEnvAsInt("ORCHESTRATOR_QUEUE_SIZE", 100)
	if err != nil {
		return Config{}, fmt.Errorf("parse ORCHESTRATOR_QUEUE_SIZE: %w", err)
	}
	uiHeadless, err := strconv.ParseBool(getEnv("UI_HEADLESS", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UI_HEADLESS: %w", err)
	}

	uptraceEnabled, err := strconv.ParseBool(getEnv("UPTRACE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse UPTRACE_ENABLED: %w", err)
	}
	uptraceDSN := strings.TrimSpace(getEnv("UPTRACE_DSN", ""))
	if uptraceEnabled && uptraceDSN == "" {
		return Config{}, fmt.Errorf("UPTRACE_DSN is required when UPTRACE_ENABLED=true")
	}

	pyroscopeEnabled, err := strconv.ParseBool(getEnv("PYROSCOPE_ENABLED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_ENABLED: %w", err)
	}
	pyroscopeServerAddress := strings.TrimSpace(getEnv("PYROSCOPE_SERVER_ADDRESS", ""))
	if pyroscopeEnabled && pyroscopeServerAddress == "" {
		return Config{}, fmt.Errorf("PYROSCOPE_SERVER_ADDRESS is required when PYROSCOPE_ENABLED=true")
	}
	pyroscopeUploadRate, err := time.ParseDuration(getEnv("PYROSCOPE_UPLOAD_RATE", "15s"))
	if err != nil {
		return Config{}, fmt.Errorf("parse PYROSCOPE_UPLOAD_RATE: %w", err)
	}
	if pyroscopeUploadRate <= 0 {
		return Config{}, fmt.Errorf("PYROSCOPE_UPLOAD_RATE must be > 0")
	}

	home := userHome()
	cfg := Config{
		AppEnv:                     appEnv,
		ServiceName:                getEnv("APP_SERVICE_NAME", "socli"),
		ServiceVersion:             getEnv("APP_SERVICE_VERSION", "dev"),
		LogLevel:                   logLevel,
		LogFile:                    strings.TrimSpace(getEnv("LOG_FILE", filepath.Join(home, ".socli", "socli.log"))),
		LogRingSize:                logRingSize,
		StrategiesDir:              strategiesDir,
		StrategyTimeout:            strategyTimeout,
		StoreDriver:                storeDriver,
		StoreDir:                   strings.TrimSpace(getEnv("STORE_DIR", filepath.Join(home, ".socli", "store"))),
		RedisAddr:                  strings.TrimSpace(getEnv("REDIS_ADDR", "")),
		RedisPassword:              getEnv("REDIS_PASSWORD", ""),
		RedisDB:                    redisDB,
		RedisKeyPrefix:             getEnv("REDIS_KEY_PREFIX", "socli:"),
		DBURL:                      strings.TrimSpace(getEnv("DB_URL", "")),
		SorareGraphQLURL:           strings.TrimSpace(getEnv("SORARE_GRAPHQL_URL", "https://api.sorare.com/graphql")),
		SorareSportsGraphQLURL:     strings.TrimSpace(getEnv("SORARE_SPORTS_GRAPHQL_URL", "https://api.sorare.com/sports/graphql")),
		SorareTimeout:              sorareTimeout,
		SorareMaxRetries:           sorareMaxRetries,
		SorareCircuit:              sorareCircuit,
		PriceCacheTTL:              priceCacheTTL,
		RefreshInterval:            refreshInterval,
		RefreshBatchSize:           refreshBatchSize,
		RosterPageSize:             rosterPageSize,
		RosterPageDelay:            rosterPageDelay,
		RosterMaxStuckPages:        rosterMaxStuckPages,
		RosterLoadMaxAttempts:      rosterLoadMaxAttempts,
		RosterLoadBackoff:          rosterLoadBackoff,
		RosterLoadMaxBackoff:       rosterLoadMaxBackoff,
		OrchestratorWorkers:        orchestratorWorkers,
		OrchestratorQueueSize:      orchestratorQueueSize,
		UIHeadless:                 uiHeadless,
		UptraceEnabled:             uptraceEnabled,
		UptraceDSN:                 uptraceDSN,
		PyroscopeEnabled:           pyroscopeEnabled,
		PyroscopeServerAddress:     pyroscopeServerAddress,
		PyroscopeAuthToken:         strings.TrimSpace(getEnv("PYROSCOPE_AUTH_TOKEN", "")),
		PyroscopeBasicAuthUser:     strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_USER", "")),
		PyroscopeBasicAuthPassword: strings.TrimSpace(getEnv("PYROSCOPE_BASIC_AUTH_PASSWORD", "")),
		PyroscopeUploadRate:        pyroscopeUploadRate,
	}
	cfg.PyroscopeAppName = strings.TrimSpace(getEnv("PYROSCOPE_APP_NAME", cfg.ServiceName))

	if err := validator.New().Struct(cfg); err != nil {
		return Config{}, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

func loadBreaker(prefix string) (resilience.BreakerConfig, error) {
	enabled, err := strconv.ParseBool(getEnv(prefix+"_ENABLED", "true"))
	if err != nil {
		return resilience.BreakerConfig{}, fmt.Errorf("parse %s_ENABLED: %w", prefix, err)
	}
	failures, err := getEnvAsInt(prefix+"_FAILURE_COUNT", 5)
	if err != nil {
		return resilience.BreakerConfig{}, fmt.Errorf("parse %s_FAILURE_COUNT: %w", prefix, err)
	}
	if failures < 1 {
		return resilience.BreakerConfig{}, fmt.Errorf("%s_FAILURE_COUNT must be >= 1", prefix)
	}
	openTimeout, err := time.ParseDuration(getEnv(prefix+"_OPEN_TIMEOUT", "15s"))
	if err != nil {
		return resilience.BreakerConfig{}, fmt.Errorf("parse %s_OPEN_TIMEOUT: %w", prefix, err)
	}
	if openTimeout <= 0 {
		return resilience.BreakerConfig{}, fmt.Errorf("%s_OPEN_TIMEOUT must be > 0", prefix)
	}
	probes, err := getEnvAsInt(prefix+"_HALF_OPEN_MAX_REQ", 1)
	if err != nil {
		return resilience.BreakerConfig{}, fmt.Errorf("parse %s_HALF_OPEN_MAX_REQ: %w", prefix, err)
	}
	if probes < 1 {
		return resilience.BreakerConfig{}, fmt.Errorf("%s_HALF_OPEN_MAX_REQ must be >= 1", prefix)
	}

	return resilience.BreakerConfig{
		Enabled:          enabled,
		FailureThreshold: failures,
		OpenTimeout:      openTimeout,
		HalfOpenProbes:   probes,
	}, nil
}

func userHome() string {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return "."
	}
	return home
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if strings.TrimSpace(value) == "" {
		return fallback
	}

	return value
}

func getEnvAsInt(key string, fallback int) (int, error) {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback, nil
	}

	out, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}

	return out, nil
}

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

func parseAppEnv(v string) (string, error) {
	value := strings.ToLower(strings.TrimSpace(v))
	switch value {
	case EnvDev, EnvStage, EnvProd:
		return value, nil
	default:
		return "", fmt.Errorf("invalid APP_ENV %q: valid values are %s, %s, %s", v, EnvDev, EnvStage, EnvProd)
	}
}
