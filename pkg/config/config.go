package config

import (
	"os"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/pelletier/go-toml"
	"github.com/pkg/errors"

	"podarc/pkg/model"
)

// Scrape configures the fetch+parse pipeline.
type Scrape struct {
	// BaseURL is the root of the podcast site, episode pages live at
	// {BaseURL}/podcast/{index}
	BaseURL string `toml:"base_url"`
	// FirstEpisodeIndex is the first index to attempt (must resolve to a valid page)
	FirstEpisodeIndex int `toml:"first_episode_index"`
	// LastEpisodeIndex is the last index to attempt.
	// Defaults to a large sentinel covering all future episodes.
	LastEpisodeIndex int `toml:"last_episode_index"`
	// MaxWorkers caps the number of concurrent in-flight fetches
	MaxWorkers int `toml:"max_workers"`
	// UserAgent sent with every request
	UserAgent string `toml:"user_agent"`
	// AttemptTimeout bounds a single fetch attempt, not the whole run
	AttemptTimeout time.Duration `toml:"attempt_timeout"`
	// MaxAttempts is the retry budget for transient errors
	MaxAttempts int `toml:"max_attempts"`
	// BackoffBase is the unit of the exponential backoff schedule
	// (sleeps are base, 2*base, 4*base, ...)
	BackoffBase time.Duration `toml:"backoff_base"`
	// StopAfterMisses stops dispatching new indices once this many
	// consecutive indices came back not found. Zero disables early
	// termination, which is the default since the range may be sparse.
	StopAfterMisses int `toml:"stop_after_misses"`
}

// Feed is the feed-level metadata rendered into the output document.
type Feed struct {
	Title       string `toml:"title"`
	Link        string `toml:"link"`
	Description string `toml:"description"`
	Subtitle    string `toml:"subtitle"`
	Author      string `toml:"author"`
	OwnerName   string `toml:"owner_name"`
	OwnerEmail  string `toml:"owner_email"`
	CoverArt    string `toml:"cover_art"`
	Category    string `toml:"category"`
	Language    string `toml:"lang"`
	Explicit    bool   `toml:"explicit"`
}

// Output configures run artifacts.
type Output struct {
	// Path of the generated feed XML
	Path string `toml:"path"`
	// PreviousPath is the previously published feed to diff against.
	// Empty skips the diff phase.
	PreviousPath string `toml:"previous_path"`
	// MediaDir, when set, keeps a copy of every episode's audio file
	MediaDir string `toml:"media_dir"`
	// MediaPrefix is the file name prefix for archived media
	MediaPrefix string `toml:"media_prefix"`
}

type Config struct {
	Scrape Scrape `toml:"scrape"`
	Feed   Feed   `toml:"feed"`
	Output Output `toml:"output"`
}

// LoadConfig loads TOML configuration from a file path
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read config file: %s", path)
	}

	config := Config{}
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal toml")
	}

	config.ApplyDefaults()

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Range returns the episode index interval to scrape.
func (c *Config) Range() model.IndexRange {
	return model.IndexRange{
		First: c.Scrape.FirstEpisodeIndex,
		Last:  c.Scrape.LastEpisodeIndex,
	}
}

// Validate reports every configuration problem at once, so a broken file
// can be fixed in a single pass.
func (c *Config) Validate() error {
	var result *multierror.Error

	if c.Scrape.BaseURL == "" {
		result = multierror.Append(result, errors.New("scrape base URL is required"))
	}

	if c.Scrape.MaxWorkers < 1 {
		result = multierror.Append(result, errors.Errorf("max workers must be at least 1, got %d", c.Scrape.MaxWorkers))
	}

	if err := c.Range().Validate(); err != nil {
		result = multierror.Append(result, err)
	}

	if c.Scrape.MaxAttempts < 1 {
		result = multierror.Append(result, errors.Errorf("max attempts must be at least 1, got %d", c.Scrape.MaxAttempts))
	}

	if c.Feed.Title == "" {
		result = multierror.Append(result, errors.New("feed title is required"))
	}

	if c.Feed.Link == "" {
		result = multierror.Append(result, errors.New("feed link is required"))
	}

	if c.Feed.Description == "" {
		result = multierror.Append(result, errors.New("feed description is required"))
	}

	if c.Output.Path == "" {
		result = multierror.Append(result, errors.New("output path is required"))
	}

	return result.ErrorOrNil()
}

// ApplyDefaults fills in unset fields. Safe to call before Validate.
func (c *Config) ApplyDefaults() {
	if c.Scrape.FirstEpisodeIndex == 0 {
		c.Scrape.FirstEpisodeIndex = 1
	}

	if c.Scrape.LastEpisodeIndex == 0 {
		c.Scrape.LastEpisodeIndex = model.DefaultLastIndex
	}

	if c.Scrape.MaxWorkers == 0 {
		c.Scrape.MaxWorkers = DefaultMaxWorkers
	}

	if c.Scrape.UserAgent == "" {
		c.Scrape.UserAgent = DefaultUserAgent
	}

	if c.Scrape.AttemptTimeout == 0 {
		c.Scrape.AttemptTimeout = DefaultAttemptTimeout
	}

	if c.Scrape.MaxAttempts == 0 {
		c.Scrape.MaxAttempts = DefaultMaxAttempts
	}

	if c.Scrape.BackoffBase == 0 {
		c.Scrape.BackoffBase = DefaultBackoffBase
	}

	if c.Output.Path == "" {
		c.Output.Path = DefaultOutputPath
	}

	if c.Output.MediaPrefix == "" {
		c.Output.MediaPrefix = DefaultMediaPrefix
	}
}
