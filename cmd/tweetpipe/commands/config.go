package commands

import (
	"log/slog"
	"os"

	"tweetpipe/lib/browser"
	"tweetpipe/lib/configutil"
	"tweetpipe/lib/firecrawl"
	"tweetpipe/lib/llm"
	"tweetpipe/lib/serviceutil"
	"tweetpipe/services/producthunt"
)

type FirecrawlConfig struct {
	ApiUrl string `json:"api_url"`
	ApiKey string `json:"api_key"`
}

type GeneratorConfig struct {
	// "gemini" or "ollama", defaults to ollama
	Provider string `json:"provider"`
	BaseUrl  string `json:"base_url"`
	ApiKey   string `json:"api_key"`
	Model    string `json:"model"`
}

type BrowserConfig struct {
	// base url of the browser agent service; when empty, tasks run
	// against a simulated session that only logs them
	AgentUrl string `json:"agent_url"`
	Headless bool   `json:"headless"`
}

type IngestConfig struct {
	// "agent", "feed" or "scrape", defaults to agent
	Backend   string `json:"backend"`
	FeedUrl   string `json:"feed_url"`
	ScrapeUrl string `json:"scrape_url"`
}

type Config struct {
	CacheDir  string          `json:"cache_dir"`
	Runlog    string          `json:"runlog"`
	Ingest    IngestConfig    `json:"ingest"`
	Firecrawl FirecrawlConfig `json:"firecrawl"`
	Generator GeneratorConfig `json:"generator"`
	Browser   BrowserConfig   `json:"browser"`

	// seconds between per-product page scrapes
	ScrapeIntervalSeconds int `json:"scrape_interval_seconds"`
}

// loadConfig layers tweetpipe.json5 (optional) under environment
// overrides. Credentials always come from the environment when set.
func loadConfig() Config {
	config, err := configutil.Load[Config]("tweetpipe.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}

	if url := os.Getenv("FIRECRAWL_API_URL"); url != "" {
		config.Firecrawl.ApiUrl = url
	}
	if key := os.Getenv("FIRECRAWL_API_KEY"); key != "" {
		config.Firecrawl.ApiKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		config.Generator.Provider = "gemini"
		config.Generator.ApiKey = key
	}
	if url := os.Getenv("OLLAMA_URL"); url != "" {
		config.Generator.BaseUrl = url
	}
	if url := os.Getenv("BROWSER_AGENT_URL"); url != "" {
		config.Browser.AgentUrl = url
	}
	config.Browser.Headless = configutil.EnvBool("HEADLESS", config.Browser.Headless)

	return config
}

// newScraper prefers the Firecrawl API and falls back to direct fetching
// when no endpoint or key is configured.
func newScraper(config Config) producthunt.Scraper {
	if config.Firecrawl.ApiUrl != "" || config.Firecrawl.ApiKey != "" {
		return firecrawl.NewClient(firecrawl.ClientOptions{
			ApiUrl: config.Firecrawl.ApiUrl,
			ApiKey: config.Firecrawl.ApiKey,
		})
	}

	slog.Warn("no firecrawl endpoint configured, fetching pages directly")
	fetcher, err := firecrawl.NewDirectFetcher()
	if err != nil {
		serviceutil.Fatal("failed to initialize direct fetcher", err)
	}
	return fetcher
}

func newGenerator(config Config) llm.Generator {
	if config.Generator.Provider == "gemini" {
		if config.Generator.ApiKey == "" {
			serviceutil.Fatal("gemini provider selected but no api key configured", nil)
		}
		return llm.NewGemini(llm.GeminiOptions{
			BaseUrl: config.Generator.BaseUrl,
			ApiKey:  config.Generator.ApiKey,
			Model:   config.Generator.Model,
		})
	}
	return llm.NewOllama(llm.OllamaOptions{
		BaseUrl: config.Generator.BaseUrl,
		Model:   config.Generator.Model,
	})
}

func newSession(config Config) browser.Session {
	if config.Browser.AgentUrl == "" {
		slog.Warn("no browser agent configured, navigation tasks will be simulated")
		return browser.NewSimulated("")
	}
	return browser.NewAgentSession(browser.AgentOptions{
		BaseUrl: config.Browser.AgentUrl,
		Options: browser.Options{Headless: config.Browser.Headless},
	})
}
