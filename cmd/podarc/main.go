package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"podarc/pkg/config"
	"podarc/pkg/feed"
)

type Opts struct {
	ConfigPath string `long:"config" short:"c" default:"config.toml" env:"PODARC_CONFIG_PATH"`
	Output     string `long:"out" short:"o" env:"PODARC_OUTPUT" description:"path of the generated feed XML"`
	MaxWorkers int    `long:"max-workers" short:"m" description:"number of concurrent page fetches"`
	First      int    `long:"first" short:"f" description:"index of first episode to scrape (needs to resolve to a valid page)"`
	Last       int    `long:"last" short:"l" description:"index of last episode to scrape"`
	KeepMedia  string `long:"keep-media" short:"k" description:"keep audio files in this directory"`
	Previous   string `long:"previous" short:"p" description:"previously published feed to diff against"`
	Debug      bool   `long:"debug"`
}

var (
	version = "dev"
	commit  = "none"
)

func main() {
	log.SetFormatter(&log.TextFormatter{
		TimestampFormat: time.RFC3339,
		FullTimestamp:   true,
	})

	opts := Opts{}
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		log.WithError(err).Fatal("failed to parse command line arguments")
	}

	if opts.Debug {
		log.SetLevel(log.DebugLevel)
	}

	log.WithFields(log.Fields{
		"version": version,
		"commit":  commit,
	}).Info("running podarc")

	log.Debugf("loading configuration %q", opts.ConfigPath)
	cfg, err := config.LoadConfig(opts.ConfigPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load configuration file")
	}

	applyOverrides(cfg, opts)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	generator := NewGenerator(cfg)
	if err := generator.Run(ctx); err != nil {
		log.WithError(err).Fatal("feed generation failed")
	}

	if cfg.Output.PreviousPath == "" {
		log.Info("no previous feed configured, skipping diff")
		return
	}

	counts, err := feed.Diff(cfg.Output.Path, cfg.Output.PreviousPath)
	if err != nil {
		log.WithError(err).Fatal("feed diff failed")
	}

	if err := NewLogNotifier().Notify(counts); err != nil {
		log.WithError(err).Error("failed to report episode counts")
		os.Exit(1)
	}
}

// applyOverrides lets command line flags win over the config file, the
// way the surrounding automation invokes one-off runs.
func applyOverrides(cfg *config.Config, opts Opts) {
	if opts.Output != "" {
		cfg.Output.Path = opts.Output
	}

	if opts.MaxWorkers != 0 {
		cfg.Scrape.MaxWorkers = opts.MaxWorkers
	}

	if opts.First != 0 {
		cfg.Scrape.FirstEpisodeIndex = opts.First
	}

	if opts.Last != 0 {
		cfg.Scrape.LastEpisodeIndex = opts.Last
	}

	if opts.KeepMedia != "" {
		cfg.Output.MediaDir = opts.KeepMedia
	}

	if opts.Previous != "" {
		cfg.Output.PreviousPath = opts.Previous
	}
}
