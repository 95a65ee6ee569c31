// feeditems reads a podcast feed XML file and prints one JSON record per
// episode, oldest first. The record count is what the surrounding alerting
// automation consumes.
package main

import (
	"encoding/json"
	"os"

	"github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"podarc/pkg/feed"
)

type Opts struct {
	Args struct {
		Feed string `positional-arg-name:"FEED" required:"yes" description:"path of the feed XML document"`
	} `positional-args:"yes"`
}

func main() {
	opts := Opts{}
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		log.WithError(err).Fatal("failed to parse command line arguments")
	}

	items, err := feed.ParseDocument(opts.Args.Feed)
	if err != nil {
		log.WithError(err).Fatal("failed to parse feed document")
	}

	encoder := json.NewEncoder(os.Stdout)
	for _, item := range items {
		if err := encoder.Encode(item); err != nil {
			log.WithError(err).Fatal("failed to encode episode record")
		}
	}
}
