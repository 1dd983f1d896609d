package config

import (
	"errors"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database  DatabaseConfig
	Redis     RedisConfig
	CORS      CORSConfig
	Log       LogConfig
	Scheduler SchedulerConfig
	Genetic   GeneticConfig
	Allocator AllocatorConfig
	Cache     CacheConfig
	Jobs      JobsConfig
	Export    ExportConfig
	Catalog   CatalogConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// SchedulerConfig tunes the grid builder and the exact constraint solver.
type SchedulerConfig struct {
	TimeBudget      time.Duration
	ProposalTTL     time.Duration
	LabSlotMinutes  int
	LabBlockHours   int
	MiddayBoundary  string
	UtilizationLow  float64
	UtilizationHigh float64
}

// GeneticConfig tunes the metaheuristic assigner.
type GeneticConfig struct {
	PopulationSize int
	Generations    int
	MutationRate   float64
	CrossoverRate  float64
	StallLimit     int
	Seed           int64
}

// AllocatorConfig tunes student allocation.
type AllocatorConfig struct {
	ImprovementPasses int
}

// CacheConfig governs result caching for completed runs.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// JobsConfig defines worker pool sizing for async generation.
type JobsConfig struct {
	Enabled    bool
	Workers    int
	BufferSize int
	ResultTTL  time.Duration
}

// ExportConfig toggles timetable export endpoints.
type ExportConfig struct {
	Enabled bool
}

// CatalogConfig gates loading scheduling inputs from the database catalog.
type CatalogConfig struct {
	Enabled bool
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Scheduler = SchedulerConfig{
		TimeBudget:      parseDuration(v.GetString("SOLVER_TIME_BUDGET"), 30*time.Second),
		ProposalTTL:     parseDuration(v.GetString("SCHEDULER_PROPOSAL_TTL"), 30*time.Minute),
		LabSlotMinutes:  v.GetInt("LAB_SLOT_MINUTES"),
		LabBlockHours:   v.GetInt("LAB_BLOCK_HOURS"),
		MiddayBoundary:  v.GetString("MIDDAY_BOUNDARY"),
		UtilizationLow:  v.GetFloat64("UTILIZATION_BAND_LOW"),
		UtilizationHigh: v.GetFloat64("UTILIZATION_BAND_HIGH"),
	}

	cfg.Genetic = GeneticConfig{
		PopulationSize: v.GetInt("GA_POPULATION_SIZE"),
		Generations:    v.GetInt("GA_GENERATIONS"),
		MutationRate:   v.GetFloat64("GA_MUTATION_RATE"),
		CrossoverRate:  v.GetFloat64("GA_CROSSOVER_RATE"),
		StallLimit:     v.GetInt("GA_STALL_LIMIT"),
		Seed:           v.GetInt64("GA_SEED"),
	}

	cfg.Allocator = AllocatorConfig{
		ImprovementPasses: v.GetInt("ALLOCATOR_IMPROVEMENT_PASSES"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_RESULT_CACHE"),
		TTL:     parseDuration(v.GetString("RESULT_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Jobs = JobsConfig{
		Enabled:    v.GetBool("ENABLE_ASYNC_JOBS"),
		Workers:    v.GetInt("JOBS_WORKERS"),
		BufferSize: v.GetInt("JOBS_BUFFER_SIZE"),
		ResultTTL:  parseDuration(v.GetString("JOBS_RESULT_TTL"), time.Hour),
	}

	cfg.Export = ExportConfig{
		Enabled: v.GetBool("ENABLE_EXPORT"),
	}

	cfg.Catalog = CatalogConfig{
		Enabled: v.GetBool("ENABLE_CATALOG"),
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "timetable")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("SOLVER_TIME_BUDGET", "30s")
	v.SetDefault("SCHEDULER_PROPOSAL_TTL", "30m")
	v.SetDefault("LAB_SLOT_MINUTES", 180)
	v.SetDefault("LAB_BLOCK_HOURS", 2)
	v.SetDefault("MIDDAY_BOUNDARY", "13:00")
	v.SetDefault("UTILIZATION_BAND_LOW", 0.70)
	v.SetDefault("UTILIZATION_BAND_HIGH", 0.80)

	v.SetDefault("GA_POPULATION_SIZE", 80)
	v.SetDefault("GA_GENERATIONS", 200)
	v.SetDefault("GA_MUTATION_RATE", 0.1)
	v.SetDefault("GA_CROSSOVER_RATE", 0.8)
	v.SetDefault("GA_STALL_LIMIT", 50)
	v.SetDefault("GA_SEED", 0)

	v.SetDefault("ALLOCATOR_IMPROVEMENT_PASSES", 100)

	v.SetDefault("ENABLE_RESULT_CACHE", false)
	v.SetDefault("RESULT_CACHE_TTL", "15m")

	v.SetDefault("ENABLE_ASYNC_JOBS", false)
	v.SetDefault("JOBS_WORKERS", 2)
	v.SetDefault("JOBS_BUFFER_SIZE", 8)
	v.SetDefault("JOBS_RESULT_TTL", "1h")

	v.SetDefault("ENABLE_EXPORT", false)
	v.SetDefault("ENABLE_CATALOG", false)
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
