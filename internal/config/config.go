// Package config loads and validates application configuration via Viper.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config captures every configuration knob for both the crawl and analyze
// commands. All values originate from Viper so they can come from a config
// file, environment variables, or defaults.
type Config struct {
	Site       SiteConfig       `mapstructure:"site"`
	Crawler    CrawlerConfig    `mapstructure:"crawler"`
	Checkpoint CheckpointConfig `mapstructure:"checkpoint"`
	Server     ServerConfig     `mapstructure:"server"`
	Analyze    AnalyzeConfig    `mapstructure:"analyze"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// SiteConfig describes how to talk to the lyrics site.
type SiteConfig struct {
	BaseURL        string        `mapstructure:"base_url"`
	UserAgent      string        `mapstructure:"user_agent"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	Delay          time.Duration `mapstructure:"delay"`
	// IndexLetters are the index pages fetched to build the full artist
	// list, in order. The site splits its index per initial letter, with
	// "19" covering names starting with a digit.
	IndexLetters []string `mapstructure:"index_letters"`
}

// CrawlerConfig governs the crawl loop and its output locations.
type CrawlerConfig struct {
	DataDir string `mapstructure:"data_dir"`
	// CheckpointEvery is the number of completed artists between
	// checkpoint saves. 1 means save after every artist.
	CheckpointEvery int `mapstructure:"checkpoint_every"`
	Quarters        int `mapstructure:"quarters"`
}

// CheckpointConfig selects where partial progress is persisted.
type CheckpointConfig struct {
	// Driver is "file" or "postgres".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig controls the optional read-only status server.
type ServerConfig struct {
	// StatusAddr enables the /healthz, /progress and /metrics endpoints
	// when non-empty, e.g. ":9090". Empty disables the server.
	StatusAddr string `mapstructure:"status_addr"`
}

// AnalyzeConfig tunes the chart aggregations.
type AnalyzeConfig struct {
	OutputDir         string `mapstructure:"output_dir"`
	TopArtists        int    `mapstructure:"top_artists"`
	TopLanguagesPie   int    `mapstructure:"top_languages_pie"`
	TopLanguagesTable int    `mapstructure:"top_languages_table"`
	// MinLyricsLen is the minimum trimmed lyrics length for a song to
	// count as "with lyrics".
	MinLyricsLen int `mapstructure:"min_lyrics_len"`
	// TopBands bounds how many artists feed the lyrics-content charts.
	TopBands int `mapstructure:"top_bands"`
	// SwearsFile points at a one-word-per-line profanity list; empty
	// uses the built-in list.
	SwearsFile string `mapstructure:"swears_file"`
}

// LoggingConfig toggles zap development features.
type LoggingConfig struct {
	Development bool `mapstructure:"development"`
}

// Init points Viper at the config file search paths and environment. Called
// once from the CLI before any command runs.
func Init(cfgFile string) {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.metallyrics")
	}
	viper.SetEnvPrefix("METALLYRICS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
}

// Load builds a Config from the given Viper instance, applying defaults and
// validating the result.
func Load(v *viper.Viper) (Config, error) {
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		// No config file is fine; defaults and env vars cover everything.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("site.base_url", "https://www.darklyrics.com")
	v.SetDefault("site.user_agent", "metallyrics/1.0 (+https://github.com/darkstats/metallyrics)")
	v.SetDefault("site.request_timeout", "15s")
	v.SetDefault("site.delay", "1s")
	v.SetDefault("site.index_letters", defaultIndexLetters())

	v.SetDefault("crawler.data_dir", "data")
	v.SetDefault("crawler.checkpoint_every", 1)
	v.SetDefault("crawler.quarters", 4)

	v.SetDefault("checkpoint.driver", "file")
	v.SetDefault("checkpoint.dsn", "")

	v.SetDefault("server.status_addr", "")

	v.SetDefault("analyze.output_dir", "charts")
	v.SetDefault("analyze.top_artists", 10)
	v.SetDefault("analyze.top_languages_pie", 4)
	v.SetDefault("analyze.top_languages_table", 20)
	v.SetDefault("analyze.min_lyrics_len", 5)
	v.SetDefault("analyze.top_bands", 1000)
	v.SetDefault("analyze.swears_file", "")

	v.SetDefault("logging.development", true)
}

func defaultIndexLetters() []string {
	letters := make([]string, 0, 27)
	for c := 'a'; c <= 'z'; c++ {
		letters = append(letters, string(c))
	}
	return append(letters, "19")
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Site.BaseURL) == "" {
		return fmt.Errorf("site.base_url must be set")
	}
	if c.Site.UserAgent == "" {
		return fmt.Errorf("site.user_agent must be set")
	}
	if c.Site.RequestTimeout <= 0 {
		return fmt.Errorf("site.request_timeout must be > 0")
	}
	if len(c.Site.IndexLetters) == 0 {
		return fmt.Errorf("site.index_letters must not be empty")
	}
	if c.Crawler.DataDir == "" {
		return fmt.Errorf("crawler.data_dir must be set")
	}
	if c.Crawler.CheckpointEvery <= 0 {
		return fmt.Errorf("crawler.checkpoint_every must be > 0")
	}
	if c.Crawler.Quarters <= 0 {
		return fmt.Errorf("crawler.quarters must be > 0")
	}
	switch c.Checkpoint.Driver {
	case "file":
	case "postgres":
		if c.Checkpoint.DSN == "" {
			return fmt.Errorf("checkpoint.dsn must be set when checkpoint.driver is postgres")
		}
	default:
		return fmt.Errorf("checkpoint.driver must be file or postgres, got %q", c.Checkpoint.Driver)
	}
	if c.Analyze.OutputDir == "" {
		return fmt.Errorf("analyze.output_dir must be set")
	}
	if c.Analyze.TopArtists <= 0 {
		return fmt.Errorf("analyze.top_artists must be > 0")
	}
	if c.Analyze.TopLanguagesPie <= 0 {
		return fmt.Errorf("analyze.top_languages_pie must be > 0")
	}
	if c.Analyze.TopLanguagesTable <= 0 {
		return fmt.Errorf("analyze.top_languages_table must be > 0")
	}
	if c.Analyze.MinLyricsLen < 0 {
		return fmt.Errorf("analyze.min_lyrics_len must be >= 0")
	}
	if c.Analyze.TopBands <= 0 {
		return fmt.Errorf("analyze.top_bands must be > 0")
	}
	return nil
}
