package main

import (
	log "github.com/sirupsen/logrus"

	"podarc/pkg/feed"
)

// Notifier receives the episode counts computed by the diff phase.
// Whether and how an alert is delivered is entirely up to the
// implementation; the core only hands over the two numbers.
type Notifier interface {
	Notify(counts feed.Counts) error
}

// LogNotifier reports counts through the run log.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Notify(counts feed.Counts) error {
	if counts.Grew() {
		log.Infof("feed grew from %d to %d episode(s)", counts.Previous, counts.New)
	} else {
		log.Infof("no new episodes (%d now, %d before)", counts.New, counts.Previous)
	}

	return nil
}
