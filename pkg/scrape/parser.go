package scrape

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/pkg/errors"

	"podarc/pkg/model"
)

// Squarespace page structure the source site is built on.
const (
	titleSelector     = "h1.entry-title"
	bodySelector      = "div.body.entry-content"
	blockSelector     = "div.sqs-block-content"
	audioSelector     = "div.sqs-audio-embed"
	audioURLAttribute = "data-url"
)

// datePublished shows up either as a bare date or a full timestamp,
// depending on the page generation.
var publishedLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParsePage extracts a structured episode from raw page content.
// Pure function of its input, no I/O. Minor structural variation is
// tolerated: missing author or canonical link fall back to defaults,
// while a missing title or audio embed fails the parse.
func ParsePage(index int, pageURL string, content []byte) (*model.Episode, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse page for episode %d", index)
	}

	title := strings.TrimSpace(doc.Find(titleSelector).First().Text())
	if title == "" {
		return nil, errors.Errorf("no episode title found on page for episode %d", index)
	}

	mediaURL, ok := doc.Find(audioSelector).First().Attr(audioURLAttribute)
	if !ok || mediaURL == "" {
		return nil, errors.Errorf("no audio embed found on page for episode %d", index)
	}

	episode := &model.Episode{
		Index:    index,
		GUID:     model.GenerateGUID(mediaURL),
		Title:    title,
		Link:     pageURL,
		MediaURL: mediaURL,
	}

	if author, ok := doc.Find(`meta[itemprop="author"]`).Attr("content"); ok {
		episode.Author = author
	}

	if link, ok := doc.Find(`meta[itemprop="url"]`).Attr("content"); ok && link != "" {
		episode.Link = link
	}

	published, ok := doc.Find(`meta[itemprop="datePublished"]`).Attr("content")
	if !ok {
		return nil, errors.Errorf("no publication date found on page for episode %d", index)
	}

	episode.PubDate, err = parsePublished(published)
	if err != nil {
		return nil, errors.Wrapf(err, "episode %d", index)
	}

	episode.Description = collectDescription(doc)
	if episode.Description == "" {
		episode.Description = title
	}

	return episode, nil
}

// collectDescription concatenates the inner HTML of every content block,
// skipping the audio player and unwrapping noscript fallbacks.
func collectDescription(doc *goquery.Document) string {
	var sb strings.Builder

	doc.Find(bodySelector).First().Find(blockSelector).Each(func(_ int, block *goquery.Selection) {
		if block.Find(audioSelector).Length() > 0 {
			return
		}

		if noscript := block.Find("noscript"); noscript.Length() > 0 {
			if html, err := noscript.Html(); err == nil {
				fmt.Fprintf(&sb, "<p>%s</p>", html)
			}
			return
		}

		if html, err := block.Html(); err == nil {
			sb.WriteString(html)
		}
	})

	return strings.TrimSpace(sb.String())
}

func parsePublished(value string) (time.Time, error) {
	for _, layout := range publishedLayouts {
		if ts, err := time.Parse(layout, value); err == nil {
			return ts, nil
		}
	}

	return time.Time{}, errors.Errorf("unrecognized publication date %q", value)
}
