package config

import (
	"errors"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	configPathEnv         = "PUBMED_BLOGGER_CONFIG"
	openAIKeyEnv          = "OPENAI_API_KEY"
	openAIModelEnv        = "OPENAI_MODEL"
	bloggerAPIKeyEnv      = "BLOGGER_API_KEY"
	bloggerAccessTokenEnv = "BLOGGER_ACCESS_TOKEN"
	bloggerBlogIDEnv      = "BLOGGER_BLOG_ID"
	topicEnv              = "PUBMED_TOPIC"
)

// Strategy names accepted by PubMedConfig.Strategy.
const (
	StrategyEutils = "eutils"
	StrategyFeed   = "feed"
)

// Config holds high-level settings required across the application.
type Config struct {
	PubMed   PubMedConfig   `yaml:"pubmed"`
	OpenAI   OpenAIConfig   `yaml:"openai"`
	Blogger  BloggerConfig  `yaml:"blogger"`
	Store    StoreConfig    `yaml:"store"`
	Artifact ArtifactConfig `yaml:"artifact"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// PubMedConfig describes how candidate articles are discovered.
type PubMedConfig struct {
	BaseURL string `yaml:"baseUrl"`
	// Strategy selects the source implementation: "eutils" queries the
	// E-utilities API, "feed" reads a saved-search RSS feed.
	Strategy      string `yaml:"strategy"`
	FeedURL       string `yaml:"feedUrl"`
	Topic         string `yaml:"topic"`
	DaysBack      int    `yaml:"daysBack"`
	MaxCandidates int    `yaml:"maxCandidates"`
	Sort          string `yaml:"sort"`
}

// OpenAIConfig defines how to contact the chat-completions API.
type OpenAIConfig struct {
	Endpoint     string  `yaml:"endpoint"`
	Model        string  `yaml:"model"`
	APIKey       string  `yaml:"apiKey"`
	SystemPrompt string  `yaml:"systemPrompt"`
	MaxTokens    int     `yaml:"maxTokens"`
	Temperature  float64 `yaml:"temperature"`
}

// BloggerConfig wires the target blog and its credentials.
type BloggerConfig struct {
	APIBase     string `yaml:"apiBase"`
	APIKey      string `yaml:"apiKey"`
	AccessToken string `yaml:"accessToken"`
	BlogID      string `yaml:"blogId"`
}

// StoreConfig locates the dedupe database. An empty path keeps the record
// in memory only, which disables cross-run deduplication.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// ArtifactConfig locates the local copy of the latest generated post.
type ArtifactConfig struct {
	Path string `yaml:"path"`
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads YAML configuration (if present) and applies environment
// overrides. An explicit path wins over the PUBMED_BLOGGER_CONFIG variable.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		path = os.Getenv(configPathEnv)
	}
	if path != "" {
		if raw, err := os.ReadFile(path); err != nil {
			log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		} else {
			var fileCfg Config
			if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
				log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
			} else {
				cfg = mergeConfig(cfg, fileCfg)
			}
		}
	}

	cfg.applyEnvOverrides()
	return cfg
}

// Validate reports fatal configuration problems. Missing credentials are a
// configuration error, never a runtime one.
func (c Config) Validate() error {
	var errs []error

	if c.OpenAI.APIKey == "" {
		errs = append(errs, fmt.Errorf("openai api key is required (set %s)", openAIKeyEnv))
	}
	if c.Blogger.BlogID == "" {
		errs = append(errs, fmt.Errorf("blogger blog id is required (set %s)", bloggerBlogIDEnv))
	}
	if c.Blogger.APIKey == "" && c.Blogger.AccessToken == "" {
		errs = append(errs, fmt.Errorf("blogger credentials are required (set %s or %s)", bloggerAPIKeyEnv, bloggerAccessTokenEnv))
	}

	switch c.PubMed.Strategy {
	case StrategyEutils:
	case StrategyFeed:
		if c.PubMed.FeedURL == "" {
			errs = append(errs, errors.New("pubmed.feedUrl is required for the feed strategy"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown pubmed strategy %q", c.PubMed.Strategy))
	}

	if c.PubMed.DaysBack < 1 {
		errs = append(errs, errors.New("pubmed.daysBack must be at least 1"))
	}
	if c.PubMed.MaxCandidates < 1 {
		errs = append(errs, errors.New("pubmed.maxCandidates must be at least 1"))
	}

	return errors.Join(errs...)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(openAIKeyEnv); v != "" {
		c.OpenAI.APIKey = v
	}
	if v := os.Getenv(openAIModelEnv); v != "" {
		c.OpenAI.Model = v
	}
	if v := os.Getenv(bloggerAPIKeyEnv); v != "" {
		c.Blogger.APIKey = v
	}
	if v := os.Getenv(bloggerAccessTokenEnv); v != "" {
		c.Blogger.AccessToken = v
	}
	if v := os.Getenv(bloggerBlogIDEnv); v != "" {
		c.Blogger.BlogID = v
	}
	if v := os.Getenv(topicEnv); v != "" {
		c.PubMed.Topic = v
	}
}

func mergeConfig(base, override Config) Config {
	if override.PubMed.BaseURL != "" {
		base.PubMed.BaseURL = override.PubMed.BaseURL
	}
	if override.PubMed.Strategy != "" {
		base.PubMed.Strategy = override.PubMed.Strategy
	}
	if override.PubMed.FeedURL != "" {
		base.PubMed.FeedURL = override.PubMed.FeedURL
	}
	if override.PubMed.Topic != "" {
		base.PubMed.Topic = override.PubMed.Topic
	}
	if override.PubMed.DaysBack != 0 {
		base.PubMed.DaysBack = override.PubMed.DaysBack
	}
	if override.PubMed.MaxCandidates != 0 {
		base.PubMed.MaxCandidates = override.PubMed.MaxCandidates
	}
	if override.PubMed.Sort != "" {
		base.PubMed.Sort = override.PubMed.Sort
	}

	if override.OpenAI.Endpoint != "" {
		base.OpenAI.Endpoint = override.OpenAI.Endpoint
	}
	if override.OpenAI.Model != "" {
		base.OpenAI.Model = override.OpenAI.Model
	}
	if override.OpenAI.APIKey != "" {
		base.OpenAI.APIKey = override.OpenAI.APIKey
	}
	if override.OpenAI.SystemPrompt != "" {
		base.OpenAI.SystemPrompt = override.OpenAI.SystemPrompt
	}
	if override.OpenAI.MaxTokens != 0 {
		base.OpenAI.MaxTokens = override.OpenAI.MaxTokens
	}
	if override.OpenAI.Temperature != 0 {
		base.OpenAI.Temperature = override.OpenAI.Temperature
	}

	if override.Blogger.APIBase != "" {
		base.Blogger.APIBase = override.Blogger.APIBase
	}
	if override.Blogger.APIKey != "" {
		base.Blogger.APIKey = override.Blogger.APIKey
	}
	if override.Blogger.AccessToken != "" {
		base.Blogger.AccessToken = override.Blogger.AccessToken
	}
	if override.Blogger.BlogID != "" {
		base.Blogger.BlogID = override.Blogger.BlogID
	}

	if override.Store.Path != "" {
		base.Store.Path = override.Store.Path
	}
	if override.Artifact.Path != "" {
		base.Artifact.Path = override.Artifact.Path
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}
	if override.Logging.Format != "" {
		base.Logging.Format = override.Logging.Format
	}

	return base
}

func defaultConfig() Config {
	return Config{
		PubMed: PubMedConfig{
			BaseURL:       "https://eutils.ncbi.nlm.nih.gov/entrez/eutils/",
			Strategy:      StrategyEutils,
			DaysBack:      1,
			MaxCandidates: 10,
			Sort:          "pub_date",
		},
		OpenAI: OpenAIConfig{
			Endpoint:     "https://api.openai.com/v1/chat/completions",
			Model:        "gpt-4",
			SystemPrompt: "You are a skilled medical writer who explains complex research in simple terms.",
			MaxTokens:    1000,
			Temperature:  0.7,
		},
		Blogger: BloggerConfig{
			APIBase: "https://www.googleapis.com/blogger/v3",
		},
		Store: StoreConfig{
			Path: "data/published.db",
		},
		Artifact: ArtifactConfig{
			Path: "latest_blog_post.md",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}
