package scrape

import (
	"context"
	"sync"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"podarc/pkg/config"
	"podarc/pkg/model"
)

// Failure records a per-index error that did not stop the run.
type Failure struct {
	Index int
	Err   error
}

// Result accumulates per-index outcomes of a coordinator run.
// Episodes arrive in completion order; final feed order is imposed by the
// assembler, not here.
type Result struct {
	Episodes []*model.Episode
	NotFound []int
	Failures []Failure
	// Dispatched is the number of indices actually attempted. Equals the
	// range size unless early termination kicked in.
	Dispatched int
}

// Coordinator fans fetch+parse work out over a bounded worker pool.
// Every index in the range is attempted exactly once; per-index failures
// accumulate and never abort the run.
type Coordinator struct {
	fetcher         *Fetcher
	maxWorkers      int
	stopAfterMisses int
}

func NewCoordinator(fetcher *Fetcher, cfg config.Scrape) *Coordinator {
	return &Coordinator{
		fetcher:         fetcher,
		maxWorkers:      cfg.MaxWorkers,
		stopAfterMisses: cfg.StopAfterMisses,
	}
}

// Run processes every index in rng and returns the collected outcomes.
// The pool size is the backpressure mechanism: dispatch blocks once
// maxWorkers fetches are in flight.
func (c *Coordinator) Run(ctx context.Context, rng model.IndexRange) (*Result, error) {
	if err := rng.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid episode index range")
	}

	if c.maxWorkers < 1 {
		return nil, errors.Errorf("max workers must be at least 1, got %d", c.maxWorkers)
	}

	log.WithFields(log.Fields{
		"first":   rng.First,
		"last":    rng.Last,
		"workers": c.maxWorkers,
	}).Info("scraping episode pages")

	coll := newCollector(rng.First)

	group := new(errgroup.Group)
	group.SetLimit(c.maxWorkers)

	for index := rng.First; index <= rng.Last; index++ {
		if c.stopAfterMisses > 0 && coll.shouldStop(c.stopAfterMisses) {
			log.WithField("index", index).Infof(
				"stopping dispatch after %d consecutive missing episodes", c.stopAfterMisses)
			break
		}

		coll.dispatched()

		index := index
		group.Go(func() error {
			coll.record(c.attempt(ctx, index))
			return nil
		})
	}

	// Always drain every dispatched fetch before reporting
	_ = group.Wait()

	result := coll.result

	log.WithFields(log.Fields{
		"found":     len(result.Episodes),
		"not_found": len(result.NotFound),
		"failed":    len(result.Failures),
	}).Info("finished scraping")

	return result, nil
}

// attempt performs the fetch+parse sequence for a single index and
// classifies the result. Parse errors are recoverable and reported as
// failures, never as panics or run aborts.
func (c *Coordinator) attempt(ctx context.Context, index int) model.Outcome {
	logger := log.WithField("index", index)

	body, err := c.fetcher.Fetch(ctx, index)
	if errors.Is(err, model.ErrNotFound) {
		logger.Debug("no episode at index")
		return model.Outcome{Index: index, Status: model.StatusNotFound}
	}

	if err != nil {
		logger.WithError(err).Warn("episode fetch failed")
		return model.Outcome{Index: index, Status: model.StatusFailed, Err: err}
	}

	episode, err := ParsePage(index, c.fetcher.EpisodeURL(index), body)
	if err != nil {
		logger.WithError(err).Warn("episode page parse failed")
		return model.Outcome{Index: index, Status: model.StatusFailed, Err: err}
	}

	logger.Debugf("found episode %q", episode.Title)
	return model.Outcome{Index: index, Status: model.StatusFound, Episode: episode}
}

// collector aggregates per-index outcomes under one lock and keeps the
// bookkeeping the early-termination check needs: the frontier up to which
// every outcome has landed, and the run of not-found outcomes ending there.
type collector struct {
	mu   sync.Mutex
	cond *sync.Cond

	result   *Result
	statuses map[int]model.Status

	resolved int // highest index with every outcome in [first, resolved] recorded
	trailing int // consecutive not-found run ending at resolved
	pending  int // dispatched but not yet recorded
}

func newCollector(first int) *collector {
	c := &collector{
		result:   &Result{},
		statuses: make(map[int]model.Status),
		resolved: first - 1,
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

func (c *collector) dispatched() {
	c.mu.Lock()
	c.result.Dispatched++
	c.pending++
	c.mu.Unlock()
}

func (c *collector) record(outcome model.Outcome) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch outcome.Status {
	case model.StatusFound:
		c.result.Episodes = append(c.result.Episodes, outcome.Episode)
	case model.StatusNotFound:
		c.result.NotFound = append(c.result.NotFound, outcome.Index)
	case model.StatusFailed:
		c.result.Failures = append(c.result.Failures, Failure{Index: outcome.Index, Err: outcome.Err})
	}

	c.statuses[outcome.Index] = outcome.Status

	// Results land out of order; advance the frontier over whatever is now
	// contiguous. Anything other than a miss resets the trailing run.
	for status, ok := c.statuses[c.resolved+1]; ok; status, ok = c.statuses[c.resolved+1] {
		c.resolved++
		if status == model.StatusNotFound {
			c.trailing++
		} else {
			c.trailing = 0
		}
	}

	c.pending--
	c.cond.Broadcast()
}

// shouldStop reports whether the run of not-found outcomes immediately
// preceding the next dispatch has reached limit. In-flight indices count
// as live: when the recorded run looks full but results are still pending,
// it waits for them, and a found episode landing mid-run resets the count
// so dispatch continues.
func (c *collector) shouldStop(limit int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	for c.trailing >= limit && c.pending > 0 {
		c.cond.Wait()
	}

	return c.trailing >= limit
}
