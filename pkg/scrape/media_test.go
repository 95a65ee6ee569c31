package scrape

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"podarc/pkg/model"
)

func TestFetcher_ResolveMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		w.Header().Set("Content-Type", "audio/mpeg")
		w.Header().Set("Content-Length", "2048")
	}))
	defer srv.Close()

	f := testFetcher(srv.URL, 1, nil)
	episode := &model.Episode{Index: 1, MediaURL: srv.URL + "/ep1.mp3"}

	require.NoError(t, f.ResolveMedia(testCtx, episode))
	assert.EqualValues(t, 2048, episode.Size)
	assert.Equal(t, "audio/mpeg", episode.MediaType)
}

func TestFetcher_ResolveMediaError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	f := testFetcher(srv.URL, 1, nil)
	episode := &model.Episode{Index: 1, MediaURL: srv.URL + "/ep1.mp3"}

	err := f.ResolveMedia(testCtx, episode)
	assert.Error(t, err)
	assert.EqualValues(t, 0, episode.Size)
}

func TestFetcher_OpenMedia(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		_, _ = w.Write([]byte("audio-bytes"))
	}))
	defer srv.Close()

	f := testFetcher(srv.URL, 1, nil)
	episode := &model.Episode{Index: 2, MediaURL: srv.URL + "/ep2.mp3"}

	body, err := f.OpenMedia(testCtx, episode)
	require.NoError(t, err)
	defer body.Close()

	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "audio-bytes", string(data))
}

func TestFetcher_OpenMediaError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	f := testFetcher(srv.URL, 1, nil)
	episode := &model.Episode{Index: 3, MediaURL: srv.URL + "/ep3.mp3"}

	_, err := f.OpenMedia(testCtx, episode)
	assert.Error(t, err)
}
