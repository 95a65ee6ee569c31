package feed

import (
	"sort"
	"strconv"
	"strings"
	"time"

	itunes "github.com/eduncan911/podcast"
	"github.com/pkg/errors"

	"podarc/pkg/config"
	"podarc/pkg/model"
)

const generator = "podarc feed generator"

// sort.Interface implementation
type episodeOrder []*model.Episode

func (p episodeOrder) Len() int {
	return len(p)
}

// Newest first, higher index breaks publication date ties so the order is
// total and stable across runs.
func (p episodeOrder) Less(i, j int) bool {
	if !p[i].PubDate.Equal(p[j].PubDate) {
		return p[i].PubDate.After(p[j].PubDate)
	}

	return p[i].Index > p[j].Index
}

func (p episodeOrder) Swap(i, j int) {
	p[i], p[j] = p[j], p[i]
}

// Assemble renders the collected episodes plus feed-level metadata into a
// single podcast document. Given the same episode set it always produces
// the same logical ordering and field values.
func Assemble(episodes []*model.Episode, meta config.Feed) (*itunes.Podcast, error) {
	sorted := make([]*model.Episode, len(episodes))
	copy(sorted, episodes)
	sort.Sort(episodeOrder(sorted))

	now := time.Now().UTC()

	var pubDate *time.Time
	if len(sorted) > 0 {
		pubDate = &sorted[0].PubDate
	}

	p := itunes.New(meta.Title, meta.Link, meta.Description, pubDate, &now)
	p.Generator = generator
	p.IAuthor = meta.Author
	p.AddSummary(meta.Description)

	if meta.Subtitle != "" {
		p.AddSubTitle(meta.Subtitle)
	}

	if meta.OwnerName != "" && meta.OwnerEmail != "" {
		p.IOwner = &itunes.Author{
			Name:  meta.OwnerName,
			Email: meta.OwnerEmail,
		}
	}

	if meta.CoverArt != "" {
		p.AddImage(meta.CoverArt)
	}

	if meta.Category != "" {
		p.AddCategory(meta.Category, nil)
	}

	if meta.Explicit {
		p.IExplicit = "yes"
	} else {
		p.IExplicit = "no"
	}

	if meta.Language != "" {
		p.Language = meta.Language
	}

	seen := make(map[string]int)

	for i, episode := range sorted {
		if prev, ok := seen[episode.GUID]; ok {
			return nil, errors.Errorf("episodes %d and %d share GUID %q", prev, episode.Index, episode.GUID)
		}
		seen[episode.GUID] = episode.Index

		item := itunes.Item{
			GUID:        episode.GUID,
			Link:        episode.Link,
			Title:       episode.Title,
			Description: episode.Description,
			ISubtitle:   episode.Title,
			// Some apps prefer 1-based order
			IOrder: strconv.Itoa(i + 1),
		}

		pub := episode.PubDate
		item.AddPubDate(&pub)
		item.AddSummary(episode.Description)
		item.AddEnclosure(episode.MediaURL, enclosureType(episode.MediaType), episode.Size)

		// p.AddItem requires description to be not empty, use workaround
		if item.Description == "" {
			item.Description = " "
		}

		if meta.Explicit {
			item.IExplicit = "yes"
		} else {
			item.IExplicit = "no"
		}

		if _, err := p.AddItem(item); err != nil {
			return nil, errors.Wrapf(err, "failed to add episode %d to feed", episode.Index)
		}
	}

	return &p, nil
}

func enclosureType(mediaType string) itunes.EnclosureType {
	switch {
	case strings.Contains(mediaType, "m4a"):
		return itunes.M4A
	case strings.Contains(mediaType, "mp4"):
		return itunes.MP4
	default:
		return itunes.MP3
	}
}
