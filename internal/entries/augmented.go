package entries

import (
	"strings"

	"github.com/folio-cms/folio/internal/augment"
)

// computedKeys are appended to an entry's blueprint fields when projecting
var computedKeys = []string{"id", "slug", "url", "permalink", "order", "collection", "published"}

// computed serves the entry computed keys. Only permalink is computed by the
// engine itself; the other keys resolve through the entry's own accessors.
type computed struct {
	entry   *Entry
	siteURL string
}

func (c computed) Keys() []string {
	keys := make([]string, len(computedKeys))
	copy(keys, computedKeys)
	return keys
}

func (c computed) Accessor(name string) (func() any, bool) {
	if name != "permalink" {
		return nil, false
	}
	return func() any {
		url, ok := c.entry.URL()
		if !ok {
			return nil
		}
		return strings.TrimRight(c.siteURL, "/") + url
	}, true
}

// Augmented returns the projection engine for an entry. siteURL is the base
// of absolute permalinks.
func Augmented(e *Entry, siteURL string) *augment.Augmented {
	return augment.New(e, augment.WithComputed(computed{entry: e, siteURL: siteURL}))
}
