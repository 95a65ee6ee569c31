package feed

import (
	"os"

	"github.com/mmcdole/gofeed"
	"github.com/pkg/errors"

	"podarc/pkg/model"
)

// Item is a structured episode record extracted from a feed document.
type Item struct {
	Index int    `json:"index"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

// ParseDocument reads a feed XML file into episode records, oldest first
// with a 1-based index. The feed itself lists newest first, so items are
// reversed. A document that fails to parse is a fatal condition for the
// caller, never a silent empty result.
func ParseDocument(path string) ([]Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open feed document %s", path)
	}

	defer f.Close()

	parsed, err := gofeed.NewParser().Parse(f)
	if err != nil {
		return nil, errors.Wrapf(model.ErrMalformedFeed, "%s: %v", path, err)
	}

	items := make([]Item, 0, len(parsed.Items))

	for i := len(parsed.Items) - 1; i >= 0; i-- {
		entry := parsed.Items[i]
		items = append(items, Item{
			Index: len(parsed.Items) - i,
			Title: entry.Title,
			URL:   entry.Link,
		})
	}

	return items, nil
}
