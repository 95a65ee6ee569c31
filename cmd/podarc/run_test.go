package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podarc/pkg/config"
	"podarc/pkg/feed"
	"podarc/pkg/fs"
	"podarc/pkg/model"
)

// testArchive serves a three-episode podcast site: scrapeable pages under
// /podcast/{n} and audio files under /media/{n}.mp3.
func testArchive() *httptest.Server {
	const episodes = 3

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/media/") {
			w.Header().Set("Content-Type", "audio/mpeg")
			w.Header().Set("Content-Length", "9")
			if r.Method == http.MethodGet {
				_, _ = w.Write([]byte("audio 123"))
			}
			return
		}

		index, err := strconv.Atoi(strings.TrimPrefix(r.URL.Path, "/podcast/"))
		if err != nil || index < 1 || index > episodes {
			w.WriteHeader(http.StatusNotFound)
			return
		}

		mediaURL := fmt.Sprintf("http://%s/media/%d.mp3", r.Host, index)
		page := fmt.Sprintf(`<html><head>
<meta itemprop="author" content="A. Host">
<meta itemprop="url" content="http://%s/podcast/%d">
<meta itemprop="datePublished" content="2014-01-%02d">
</head><body>
<h1 class="entry-title">Episode %d</h1>
<div class="body entry-content">
<div class="sqs-block-content"><div class="sqs-audio-embed" data-url="%s"></div></div>
<div class="sqs-block-content"><p>Notes for %d.</p></div>
</div></body></html>`, r.Host, index, index, index, mediaURL, index)

		_, _ = w.Write([]byte(page))
	}))
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()

	dir := t.TempDir()

	cfg := &config.Config{}
	cfg.Scrape.BaseURL = baseURL
	cfg.Scrape.FirstEpisodeIndex = 1
	cfg.Scrape.LastEpisodeIndex = 5
	cfg.Scrape.MaxWorkers = 4
	cfg.Scrape.MaxAttempts = 2
	cfg.Scrape.BackoffBase = time.Millisecond
	cfg.Feed.Title = "Example (archive)"
	cfg.Feed.Link = "https://www.example.fm/"
	cfg.Feed.Description = "d"
	cfg.Output.Path = filepath.Join(dir, "rss.xml")
	cfg.ApplyDefaults()
	require.NoError(t, cfg.Validate())

	return cfg
}

func TestGenerator_Run(t *testing.T) {
	srv := testArchive()
	defer srv.Close()

	cfg := testConfig(t, srv.URL)

	require.NoError(t, NewGenerator(cfg).Run(context.Background()))

	items, err := feed.ParseDocument(cfg.Output.Path)
	require.NoError(t, err)
	require.Len(t, items, 3)

	// Oldest first after the round trip
	for i, item := range items {
		assert.Equal(t, i+1, item.Index)
		assert.Equal(t, fmt.Sprintf("Episode %d", i+1), item.Title)
	}
}

// The generated document diffs cleanly against itself and against a
// shorter previous snapshot.
func TestGenerator_RunAndDiff(t *testing.T) {
	srv := testArchive()
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, NewGenerator(cfg).Run(context.Background()))

	shorter := testConfig(t, srv.URL)
	shorter.Scrape.LastEpisodeIndex = 2
	require.NoError(t, NewGenerator(shorter).Run(context.Background()))

	counts, err := feed.Diff(cfg.Output.Path, cfg.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, counts.New, counts.Previous)
	assert.False(t, counts.Grew())

	counts, err = feed.Diff(cfg.Output.Path, shorter.Output.Path)
	require.NoError(t, err)
	assert.Equal(t, feed.Counts{New: 3, Previous: 2}, counts)
	assert.True(t, counts.Grew())
}

func TestGenerator_RunKeepsMedia(t *testing.T) {
	srv := testArchive()
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.Output.MediaDir = filepath.Join(t.TempDir(), "media")

	require.NoError(t, NewGenerator(cfg).Run(context.Background()))

	for i := 1; i <= 3; i++ {
		data, err := os.ReadFile(filepath.Join(cfg.Output.MediaDir, fmt.Sprintf("episode_%03d.mp3", i)))
		require.NoError(t, err)
		assert.Equal(t, "audio 123", string(data))
	}
}

// Two runs over unchanged pages produce identical GUIDs.
func TestGenerator_Idempotent(t *testing.T) {
	srv := testArchive()
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	require.NoError(t, NewGenerator(cfg).Run(context.Background()))

	first, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	require.NoError(t, NewGenerator(cfg).Run(context.Background()))

	second, err := os.ReadFile(cfg.Output.Path)
	require.NoError(t, err)

	guids := func(data []byte) []string {
		var out []string
		for _, line := range strings.Split(string(data), "\n") {
			if strings.Contains(line, "<guid") {
				out = append(out, strings.TrimSpace(line))
			}
		}
		return out
	}

	require.NotEmpty(t, guids(first))
	assert.Equal(t, guids(first), guids(second))
}

// memStorage is an in-memory fs.Storage for exercising the archive path
// without touching disk.
type memStorage struct {
	sizes   map[string]int64
	created map[string]int64
}

var _ fs.Storage = (*memStorage)(nil)

func (s *memStorage) Create(ctx context.Context, name string, reader io.Reader) (int64, error) {
	n, err := io.Copy(io.Discard, reader)
	if err != nil {
		return 0, err
	}
	s.created[name] = n
	return n, nil
}

func (s *memStorage) Size(ctx context.Context, name string) (int64, error) {
	size, ok := s.sizes[name]
	if !ok {
		return 0, os.ErrNotExist
	}
	return size, nil
}

func (s *memStorage) Delete(ctx context.Context, name string) error {
	delete(s.sizes, name)
	return nil
}

// The generator archives through the fs.Storage interface: files already
// present with the expected size are skipped, the rest are downloaded.
func TestGenerator_ArchiveMediaStorage(t *testing.T) {
	srv := testArchive()
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	g := NewGenerator(cfg)

	episodes := []*model.Episode{
		{Index: 1, MediaURL: srv.URL + "/media/1.mp3", Size: 9},
		{Index: 2, MediaURL: srv.URL + "/media/2.mp3", Size: 9},
	}

	storage := &memStorage{
		sizes:   map[string]int64{"episode_001.mp3": 9},
		created: map[string]int64{},
	}

	require.NoError(t, g.archiveMedia(context.Background(), storage, episodes))

	assert.NotContains(t, storage.created, "episode_001.mp3")
	assert.Equal(t, map[string]int64{"episode_002.mp3": 9}, storage.created)
}

func TestMediaFileName(t *testing.T) {
	episode := &model.Episode{Index: 7, MediaURL: "https://audio.example.fm/ep7.m4a?token=x"}
	assert.Equal(t, "show_007.m4a", mediaFileName("show", episode))

	episode = &model.Episode{Index: 12, MediaURL: "https://audio.example.fm/stream"}
	assert.Equal(t, "show_012.mp3", mediaFileName("show", episode))
}
