package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"
)

const (
	StoreAuto     = "auto"
	StoreSupabase = "supabase"
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
	StoreMemory   = "memory"
)

type Config struct {
	// OpenAI
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	OpenAIModel   string `yaml:"openai_model"`

	// Replicate
	ReplicateAPIToken        string `yaml:"replicate_api_token"`
	ReplicateBaseURL         string `yaml:"replicate_base_url"`
	ReplicateCartoonifyModel string `yaml:"replicate_cartoonify_model"`
	ReplicateCharacterModel  string `yaml:"replicate_character_model"`

	// Gemini
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	GeminiBaseURL string `yaml:"gemini_base_url"`
	GeminiModel   string `yaml:"gemini_model"`

	// RapidAPI background removal
	RapidAPIKey  string `yaml:"rapidapi_key"`
	RapidAPIHost string `yaml:"rapidapi_host"`

	// Supabase
	SupabaseURL      string `yaml:"supabase_url"`
	SupabaseKey      string `yaml:"supabase_key"`
	StorageBucket    string `yaml:"storage_bucket"`
	BackgroundBucket string `yaml:"background_bucket"`
	JobTable         string `yaml:"job_table"`
	CharacterTable   string `yaml:"character_table"`

	// Job store
	JobStore    string `yaml:"job_store"`
	DatabaseURL string `yaml:"database_url"`
	SQLitePath  string `yaml:"sqlite_path"`

	// Workers
	WorkerCount            int    `yaml:"worker_count"`
	WorkDir                string `yaml:"work_dir"`
	GenerationRetries      int    `yaml:"generation_retries"`
	GenerationRetryDelay   int    `yaml:"generation_retry_delay_seconds"`
	DownloadTimeoutSeconds int    `yaml:"download_timeout_seconds"`
	ProviderTimeoutSeconds int    `yaml:"provider_timeout_seconds"`
	RecordFailures         bool   `yaml:"record_failures"`

	// Events
	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaTopic   string   `yaml:"kafka_topic"`

	// Server
	APIJWTSecret           string `yaml:"api_jwt_secret"`
	Port                   string `yaml:"port"`
	Environment            string `yaml:"environment"`
	BaseURL                string `yaml:"base_url"`
	ShutdownTimeoutSeconds int    `yaml:"shutdown_timeout_seconds"`
}

func defaults() *Config {
	return &Config{
		OpenAIBaseURL: "https://api.openai.com/v1",
		OpenAIModel:   "gpt-4.1",

		ReplicateBaseURL:         "https://api.replicate.com/v1",
		ReplicateCartoonifyModel: "flux-kontext-apps/cartoonify",
		ReplicateCharacterModel:  "black-forest-labs/flux-kontext-pro",

		GeminiBaseURL: "https://generativelanguage.googleapis.com/v1beta",
		GeminiModel:   "gemini-2.0-flash-exp",

		RapidAPIHost: "remove-background18.p.rapidapi.com",

		StorageBucket:    "images",
		BackgroundBucket: "image",
		JobTable:         "image",
		CharacterTable:   "character",

		JobStore:   StoreAuto,
		SQLitePath: "jobs.db",

		WorkerCount:            4,
		WorkDir:                "work",
		GenerationRetries:      2,
		GenerationRetryDelay:   5,
		DownloadTimeoutSeconds: 300,
		ProviderTimeoutSeconds: 300,

		KafkaTopic: "image-jobs",

		Port:                   "8000",
		Environment:            "development",
		BaseURL:                "http://localhost:8000",
		ShutdownTimeoutSeconds: 600,
	}
}

// Load builds the configuration from defaults, an optional YAML file and the
// environment, in that order. An empty path falls back to CONFIG_FILE.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	c.OpenAIAPIKey = getEnv("OPENAI_ACCESS_KEY", getEnv("OPENAI_API_KEY", c.OpenAIAPIKey))
	c.OpenAIBaseURL = getEnv("OPENAI_BASE_URL", c.OpenAIBaseURL)
	c.OpenAIModel = getEnv("OPENAI_MODEL", c.OpenAIModel)

	c.ReplicateAPIToken = getEnv("REPLICATE_API_TOKEN", c.ReplicateAPIToken)
	c.ReplicateBaseURL = getEnv("REPLICATE_BASE_URL", c.ReplicateBaseURL)
	c.ReplicateCartoonifyModel = getEnv("REPLICATE_CARTOONIFY_MODEL", c.ReplicateCartoonifyModel)
	c.ReplicateCharacterModel = getEnv("REPLICATE_CHARACTER_MODEL", c.ReplicateCharacterModel)

	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.GeminiBaseURL = getEnv("GEMINI_BASE_URL", c.GeminiBaseURL)
	c.GeminiModel = getEnv("GEMINI_MODEL", c.GeminiModel)

	c.RapidAPIKey = getEnv("RAPIDAPI_KEY", c.RapidAPIKey)
	c.RapidAPIHost = getEnv("RAPIDAPI_HOST", c.RapidAPIHost)

	c.SupabaseURL = strings.TrimRight(getEnv("SUPABASE_URL", c.SupabaseURL), "/")
	c.SupabaseKey = getEnv("SUPABASE_ANON_KEY", getEnv("SUPABASE_ACCESS_KEY", c.SupabaseKey))
	c.StorageBucket = getEnv("STORAGE_BUCKET", c.StorageBucket)
	c.BackgroundBucket = getEnv("BACKGROUND_BUCKET", c.BackgroundBucket)
	c.JobTable = getEnv("JOB_TABLE", c.JobTable)
	c.CharacterTable = getEnv("CHARACTER_TABLE", c.CharacterTable)

	c.JobStore = strings.ToLower(getEnv("JOB_STORE", c.JobStore))
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)

	c.WorkerCount = getEnvInt("WORKER_COUNT", c.WorkerCount)
	c.WorkDir = getEnv("WORK_DIR", c.WorkDir)
	c.GenerationRetries = getEnvInt("GENERATION_RETRIES", c.GenerationRetries)
	c.GenerationRetryDelay = getEnvInt("GENERATION_RETRY_DELAY_SECONDS", c.GenerationRetryDelay)
	c.DownloadTimeoutSeconds = getEnvInt("DOWNLOAD_TIMEOUT_SECONDS", c.DownloadTimeoutSeconds)
	c.ProviderTimeoutSeconds = getEnvInt("PROVIDER_TIMEOUT_SECONDS", c.ProviderTimeoutSeconds)
	c.RecordFailures = getEnvBool("RECORD_FAILURES", c.RecordFailures)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		c.KafkaBrokers = splitList(brokers)
	}
	c.KafkaTopic = getEnv("KAFKA_TOPIC", c.KafkaTopic)

	c.APIJWTSecret = getEnv("API_JWT_SECRET", c.APIJWTSecret)
	c.Port = getEnv("PORT", c.Port)
	c.Environment = getEnv("ENVIRONMENT", c.Environment)
	c.BaseURL = getEnv("BASE_URL", c.BaseURL)
	c.ShutdownTimeoutSeconds = getEnvInt("SHUTDOWN_TIMEOUT_SECONDS", c.ShutdownTimeoutSeconds)
}

// Validate rejects structurally invalid settings. Missing provider
// credentials are not an error here; the affected features report them.
func (c *Config) Validate() error {
	if c.WorkerCount < 1 {
		return fmt.Errorf("WORKER_COUNT must be at least 1")
	}
	if c.GenerationRetries < 0 {
		return fmt.Errorf("GENERATION_RETRIES must not be negative")
	}
	switch c.JobStore {
	case StoreAuto, StoreSupabase, StoreMemory, StoreSQLite:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres job store")
		}
	default:
		return fmt.Errorf("unknown JOB_STORE %q", c.JobStore)
	}
	if c.JobStore == StoreSupabase && !c.SupabaseConfigured() {
		return fmt.Errorf("SUPABASE_URL and SUPABASE_ANON_KEY are required for the supabase job store")
	}
	return nil
}

func (c *Config) SupabaseConfigured() bool {
	return c.SupabaseURL != "" && c.SupabaseKey != ""
}

// StoreBackend resolves the "auto" job store setting.
func (c *Config) StoreBackend() string {
	if c.JobStore != StoreAuto {
		return c.JobStore
	}
	if c.DatabaseURL != "" {
		return StorePostgres
	}
	if c.SupabaseConfigured() {
		return StoreSupabase
	}
	return StoreMemory
}

// ProviderStatus reports, per external collaborator, whether its credentials are present.
func (c *Config) ProviderStatus() map[string]bool {
	return map[string]bool{
		"openai":    c.OpenAIAPIKey != "",
		"replicate": c.ReplicateAPIToken != "",
		"gemini":    c.GeminiAPIKey != "",
		"rapidapi":  c.RapidAPIKey != "",
		"supabase":  c.SupabaseConfigured(),
	}
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) DownloadTimeout() time.Duration {
	return time.Duration(c.DownloadTimeoutSeconds) * time.Second
}

func (c *Config) ProviderTimeout() time.Duration {
	return time.Duration(c.ProviderTimeoutSeconds) * time.Second
}

func (c *Config) RetryDelay() time.Duration {
	return time.Duration(c.GenerationRetryDelay) * time.Second
}

func (c *Config) ShutdownTimeout() time.Duration {
	return time.Duration(c.ShutdownTimeoutSeconds) * time.Second
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
