package model

// Status classifies the result of a fetch+parse attempt for one index.
type Status string

const (
	// StatusFound means the index resolved to a valid episode page
	StatusFound = Status("found")
	// StatusNotFound means the source deterministically reported no such episode
	StatusNotFound = Status("not_found")
	// StatusFailed means the attempt failed after exhausting retries,
	// or the page could not be parsed
	StatusFailed = Status("failed")
)

// Outcome is the per-index result of a fetch+parse attempt.
// Episode is set only when Status is StatusFound, Err only for StatusFailed.
type Outcome struct {
	Index   int
	Status  Status
	Episode *Episode
	Err     error
}
