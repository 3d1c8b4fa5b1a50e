package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIPort   string
	LogLevel  string
	StaticDir string

	ConfluenceBaseURL   string
	ConfluenceSpaceKey  string
	ConfluenceEmail     string
	ConfluenceAPIToken  string
	ConfluencePageLimit int

	OllamaURL        string
	OllamaGenModel   string
	OllamaEmbedModel string

	RAGTopK       int
	MaxTurns      int
	ExcerptLength int

	APIRateLimitRPS   int
	APIRateLimitBurst int
	APIMaxInFlight    int
}

// Load reads configuration from the environment, then overlays the optional
// YAML file named by CONFIG_FILE. Environment values act as defaults; file
// values win.
func Load() (Config, error) {
	cfg := Config{
		APIPort:   mustEnv("API_PORT", "8080"),
		LogLevel:  mustEnv("LOG_LEVEL", "info"),
		StaticDir: mustEnv("STATIC_DIR", ""),

		ConfluenceBaseURL:   mustEnv("CONFLUENCE_BASE_URL", ""),
		ConfluenceSpaceKey:  mustEnv("CONFLUENCE_SPACE_KEY", ""),
		ConfluenceEmail:     mustEnv("CONFLUENCE_EMAIL", ""),
		ConfluenceAPIToken:  mustEnv("CONFLUENCE_API_TOKEN", ""),
		ConfluencePageLimit: mustEnvInt("CONFLUENCE_PAGE_LIMIT", 50),

		OllamaURL:        mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:   mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel: mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),

		RAGTopK:       mustEnvInt("RAG_TOP_K", 4),
		MaxTurns:      mustEnvInt("MAX_TURNS", 10),
		ExcerptLength: mustEnvInt("EXCERPT_LENGTH", 200),

		APIRateLimitRPS:   mustEnvInt("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 0),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 0),
	}

	path := os.Getenv("CONFIG_FILE")
	if path == "" {
		return cfg, nil
	}
	if err := applyFile(&cfg, path); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

type fileConfig struct {
	APIPort   *string `yaml:"api_port"`
	LogLevel  *string `yaml:"log_level"`
	StaticDir *string `yaml:"static_dir"`

	Confluence struct {
		BaseURL   *string `yaml:"base_url"`
		SpaceKey  *string `yaml:"space_key"`
		Email     *string `yaml:"email"`
		APIToken  *string `yaml:"api_token"`
		PageLimit *int    `yaml:"page_limit"`
	} `yaml:"confluence"`

	Ollama struct {
		URL        *string `yaml:"url"`
		GenModel   *string `yaml:"gen_model"`
		EmbedModel *string `yaml:"embed_model"`
	} `yaml:"ollama"`

	RAGTopK       *int `yaml:"rag_top_k"`
	MaxTurns      *int `yaml:"max_turns"`
	ExcerptLength *int `yaml:"excerpt_length"`

	RateLimitRPS   *int `yaml:"rate_limit_rps"`
	RateLimitBurst *int `yaml:"rate_limit_burst"`
	MaxInFlight    *int `yaml:"max_in_flight"`
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var file fileConfig
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.APIPort, file.APIPort)
	setString(&cfg.LogLevel, file.LogLevel)
	setString(&cfg.StaticDir, file.StaticDir)

	setString(&cfg.ConfluenceBaseURL, file.Confluence.BaseURL)
	setString(&cfg.ConfluenceSpaceKey, file.Confluence.SpaceKey)
	setString(&cfg.ConfluenceEmail, file.Confluence.Email)
	setString(&cfg.ConfluenceAPIToken, file.Confluence.APIToken)
	setInt(&cfg.ConfluencePageLimit, file.Confluence.PageLimit)

	setString(&cfg.OllamaURL, file.Ollama.URL)
	setString(&cfg.OllamaGenModel, file.Ollama.GenModel)
	setString(&cfg.OllamaEmbedModel, file.Ollama.EmbedModel)

	setInt(&cfg.RAGTopK, file.RAGTopK)
	setInt(&cfg.MaxTurns, file.MaxTurns)
	setInt(&cfg.ExcerptLength, file.ExcerptLength)

	setInt(&cfg.APIRateLimitRPS, file.RateLimitRPS)
	setInt(&cfg.APIRateLimitBurst, file.RateLimitBurst)
	setInt(&cfg.APIMaxInFlight, file.MaxInFlight)
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

func setInt(dst *int, src *int) {
	if src != nil {
		*dst = *src
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
