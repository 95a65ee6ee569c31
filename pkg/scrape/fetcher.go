package scrape

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"podarc/pkg/config"
	"podarc/pkg/model"
)

// Fetcher retrieves episode pages over HTTP. A 404 maps to
// model.ErrNotFound without retrying; timeouts, connection errors and
// 429/5xx responses are retried under the configured policy.
// Safe for concurrent use.
type Fetcher struct {
	client *http.Client
	// mediaClient has no total timeout since audio downloads can
	// legitimately outlast any per-page budget
	mediaClient *http.Client
	baseURL     string
	userAgent   string
	policy      Policy
}

func NewFetcher(cfg config.Scrape) *Fetcher {
	return &Fetcher{
		client:      &http.Client{Timeout: cfg.AttemptTimeout},
		mediaClient: &http.Client{},
		baseURL:     strings.TrimSuffix(cfg.BaseURL, "/"),
		userAgent:   cfg.UserAgent,
		policy:      NewPolicy(cfg.MaxAttempts, cfg.BackoffBase),
	}
}

// NewFetcherWithPolicy is like NewFetcher with an explicit retry policy,
// used by tests to inject a deterministic schedule.
func NewFetcherWithPolicy(cfg config.Scrape, policy Policy) *Fetcher {
	f := NewFetcher(cfg)
	f.policy = policy
	return f
}

// EpisodeURL resolves an episode index to its source page URL.
func (f *Fetcher) EpisodeURL(index int) string {
	return fmt.Sprintf("%s/podcast/%d", f.baseURL, index)
}

// Fetch retrieves the raw page content for the given index.
// Returns model.ErrNotFound when the source reports no such episode.
func (f *Fetcher) Fetch(ctx context.Context, index int) ([]byte, error) {
	url := f.EpisodeURL(index)

	var lastErr error

	for attempt := 1; attempt <= f.policy.MaxAttempts; attempt++ {
		body, retryable, err := f.get(ctx, url)
		if err == nil {
			return body, nil
		}

		if !retryable {
			return nil, err
		}

		lastErr = err

		if attempt == f.policy.MaxAttempts {
			break
		}

		log.WithFields(log.Fields{
			"index":   index,
			"attempt": attempt,
			"backoff": f.policy.Backoff(attempt),
		}).WithError(err).Debug("retrying episode page fetch")

		if err := f.policy.Wait(ctx, attempt); err != nil {
			return nil, errors.Wrap(err, "fetch canceled during retry backoff")
		}
	}

	return nil, errors.Wrapf(lastErr, "giving up on %s after %d attempts", url, f.policy.MaxAttempts)
}

// get performs a single attempt. The second return value reports whether
// the error is transient and worth retrying.
func (f *Fetcher) get(ctx context.Context, url string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, errors.Wrapf(err, "failed to build request for %s", url)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, true, errors.Wrapf(err, "request to %s failed", url)
	}

	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, errors.Wrap(model.ErrNotFound, url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, true, errors.Errorf("%s replied with status %d", url, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, false, errors.Errorf("%s replied with unexpected status %d", url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, errors.Wrapf(err, "failed to read response from %s", url)
	}

	return body, false, nil
}
