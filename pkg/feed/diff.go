package feed

import (
	log "github.com/sirupsen/logrus"
)

// Counts carries the episode cardinalities of the two compared feeds.
// The comparison is count-only: the downstream alert fires when New
// strictly exceeds Previous. A feed that loses old episodes while gaining
// at least as many new ones is indistinguishable from true growth, which
// is the contract the external alerting side relies on.
type Counts struct {
	New      int
	Previous int
}

// Grew reports whether the new feed strictly gained episodes.
func (c Counts) Grew() bool {
	return c.New > c.Previous
}

// Diff parses the newly generated and the previously published feed
// documents and reports their episode counts. A malformed document on
// either side is fatal.
func Diff(newPath, previousPath string) (Counts, error) {
	newItems, err := ParseDocument(newPath)
	if err != nil {
		return Counts{}, err
	}

	previousItems, err := ParseDocument(previousPath)
	if err != nil {
		return Counts{}, err
	}

	counts := Counts{New: len(newItems), Previous: len(previousItems)}

	log.WithFields(log.Fields{
		"new":      counts.New,
		"previous": counts.Previous,
	}).Info("compared feed documents")

	return counts, nil
}
