package scrape

import (
	"context"
	"io"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"podarc/pkg/model"
)

// ResolveMedia asks the media server for the enclosure's size and content
// type via a HEAD request and fills them in on the episode. A failure here
// is not fatal to the run, the enclosure is emitted with size 0.
func (f *Fetcher) ResolveMedia(ctx context.Context, episode *model.Episode) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, episode.MediaURL, nil)
	if err != nil {
		return errors.Wrapf(err, "failed to build media request for episode %d", episode.Index)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return errors.Wrapf(err, "media request for episode %d failed", episode.Index)
	}

	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("media server replied with status %d for episode %d", resp.StatusCode, episode.Index)
	}

	episode.Size = resp.ContentLength
	if episode.Size < 0 {
		episode.Size = 0
	}

	if ct := resp.Header.Get("Content-Type"); ct != "" {
		episode.MediaType = ct
	}

	log.WithFields(log.Fields{
		"index": episode.Index,
		"size":  episode.Size,
		"type":  episode.MediaType,
	}).Debug("resolved episode media")

	return nil
}

// OpenMedia starts a download of the episode's audio file. The caller owns
// the returned body.
func (f *Fetcher) OpenMedia(ctx context.Context, episode *model.Episode) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, episode.MediaURL, nil)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to build media request for episode %d", episode.Index)
	}

	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.mediaClient.Do(req) //nolint:bodyclose // returned to caller
	if err != nil {
		return nil, errors.Wrapf(err, "media download for episode %d failed", episode.Index)
	}

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, errors.Errorf("media server replied with status %d for episode %d", resp.StatusCode, episode.Index)
	}

	return resp.Body, nil
}
