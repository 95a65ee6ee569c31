package model

import (
	"time"

	"github.com/google/uuid"
)

// Episode is a single scraped episode page, held in memory until the
// feed document is rendered.
type Episode struct {
	// Index is the position of the episode in the source numbering scheme
	Index       int
	GUID        string
	Title       string
	Description string
	Author      string
	// Link is the canonical page URL of the episode
	Link string
	// MediaURL points at the audio enclosure
	MediaURL  string
	MediaType string
	// Size of the enclosure in bytes, 0 when unknown
	Size    int64
	PubDate time.Time
}

// GenerateGUID derives a stable episode identifier from the media URL,
// so repeated runs over unchanged pages produce identical feeds.
func GenerateGUID(mediaURL string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(mediaURL)).String()
}
