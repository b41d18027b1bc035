package helper

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// ErrMissingConfig is returned when a required setting is absent at startup.
var ErrMissingConfig = errors.New("missing required configuration")

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// LLMConfiguration selects the text generation provider and its models.
type LLMConfiguration struct {
	Provider      string `yaml:"provider"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`
	OpenAIBaseURL string `yaml:"openai_base_url"`
	LeaderModelID string `yaml:"leader_model_id"`
	WorkerModelID string `yaml:"worker_model_id"`
}

// Configuration is the process wide configuration of chipnews.
type Configuration struct {
	LLM              LLMConfiguration `yaml:"llm"`
	VectorDBFolder   string           `yaml:"vector_db_folder"`
	GraphFile        string           `yaml:"graph_file"`
	GraphSummaryDir  string           `yaml:"graph_summary_dir"`
	PacingInterval   time.Duration    `yaml:"pacing_interval"`
	SearchMaxResults int              `yaml:"search_max_results"`
	RetrieveK        int              `yaml:"retrieve_k"`
	FilterMode       string           `yaml:"filter_mode"`
	OutputMode       string           `yaml:"output_mode"`
	LogLevel         string           `yaml:"log_level"`
}

// DefaultConfiguration returns the configuration used when nothing is set.
func DefaultConfiguration() *Configuration {
	return &Configuration{
		LLM: LLMConfiguration{
			Provider:      ProviderGemini,
			LeaderModelID: "gemini-2.5-flash",
			WorkerModelID: "gemini-2.5-flash",
		},
		VectorDBFolder:   "vector_db",
		GraphFile:        "graph_news/graph.json",
		GraphSummaryDir:  "graph_news",
		PacingInterval:   90 * time.Second,
		SearchMaxResults: 5,
		RetrieveK:        3,
		FilterMode:       "moderate",
		OutputMode:       "json",
		LogLevel:         "info",
	}
}

// NewConfiguration loads the configuration in the order
// defaults, .env file, YAML file from CHIPNEWS_CONFIG, environment variables.
// It does not validate, call Validate before using external providers.
func NewConfiguration() (*Configuration, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, NewError("load .env", err)
	}

	config := DefaultConfiguration()

	if path := os.Getenv("CHIPNEWS_CONFIG"); path != "" {
		if err := config.LoadFile(path); err != nil {
			return nil, NewError("load config file", err)
		}
	}

	if err := config.applyEnv(); err != nil {
		return nil, NewError("apply environment", err)
	}

	return config, nil
}

// LoadFile merges a YAML file into the configuration.
func (c *Configuration) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Configuration) applyEnv() error {
	setString(&c.LLM.Provider, "LLM_PROVIDER")
	setString(&c.LLM.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.LLM.OpenAIAPIKey, "OPENAI_API_KEY")
	setString(&c.LLM.OpenAIBaseURL, "OPENAI_BASE_URL")
	setString(&c.LLM.LeaderModelID, "LEADER_MODEL_ID")
	setString(&c.LLM.WorkerModelID, "WORKER_MODEL_ID")
	setString(&c.VectorDBFolder, "VECTOR_DB_FOLDER")
	setString(&c.GraphFile, "GRAPH_FILE")
	setString(&c.GraphSummaryDir, "GRAPH_SUMMARY_DIR")
	setString(&c.FilterMode, "FILTER_MODE")
	setString(&c.OutputMode, "OUTPUT_MODE")
	setString(&c.LogLevel, "LOG_LEVEL")

	if v := os.Getenv("PACING_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("PACING_INTERVAL: %w", err)
		}
		c.PacingInterval = d
	}
	if v := os.Getenv("SEARCH_MAX_RESULTS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("SEARCH_MAX_RESULTS: %w", err)
		}
		c.SearchMaxResults = n
	}
	if v := os.Getenv("RETRIEVE_K"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("RETRIEVE_K: %w", err)
		}
		c.RetrieveK = n
	}

	return nil
}

// Validate checks that the settings needed for external calls are present.
func (c *Configuration) Validate() error {
	var missing []string

	switch strings.ToLower(c.LLM.Provider) {
	case ProviderGemini:
		if c.LLM.GeminiAPIKey == "" {
			missing = append(missing, "GEMINI_API_KEY")
		}
	case ProviderOpenAI:
		if c.LLM.OpenAIAPIKey == "" {
			missing = append(missing, "OPENAI_API_KEY")
		}
	case "":
		missing = append(missing, "LLM_PROVIDER")
	default:
		return NewError("validate configuration", fmt.Errorf("unsupported LLM_PROVIDER %q", c.LLM.Provider))
	}
	if c.LLM.LeaderModelID == "" {
		missing = append(missing, "LEADER_MODEL_ID")
	}
	if c.LLM.WorkerModelID == "" {
		missing = append(missing, "WORKER_MODEL_ID")
	}

	if len(missing) > 0 {
		return NewError("validate configuration", fmt.Errorf("%w: %s", ErrMissingConfig, strings.Join(missing, ", ")))
	}
	return nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Configuration) SlogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func setString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}
