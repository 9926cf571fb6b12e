package collections

import (
	"fmt"
)

// sortKey selects a row of the sort policy table
type sortKey struct {
	orderable bool
	dated     bool
}

type sortPolicy struct {
	field     string
	direction string
}

// sortPolicies is the fixed default sort for each flag combination.
// Orderable wins over dated.
var sortPolicies = map[sortKey]sortPolicy{
	{orderable: false, dated: false}: {field: "title", direction: "asc"},
	{orderable: false, dated: true}:  {field: "date", direction: "desc"},
	{orderable: true, dated: false}:  {field: "order", direction: "asc"},
	{orderable: true, dated: true}:   {field: "order", direction: "asc"},
}

func (c *Collection) sortPolicy() sortPolicy {
	return sortPolicies[sortKey{orderable: c.orderable, dated: c.dated}]
}

// SortField returns the default field entries are sorted by
func (c *Collection) SortField() string {
	return c.sortPolicy().field
}

// SortDirection returns the default sort direction
func (c *Collection) SortDirection() string {
	return c.sortPolicy().direction
}

// DateBehavior controls the visibility of entries dated in the future or past
type DateBehavior string

const (
	DatePublic   DateBehavior = "public"
	DatePrivate  DateBehavior = "private"
	DateUnlisted DateBehavior = "unlisted"
)

// ParseDateBehavior converts a string to a DateBehavior. An empty string is public.
func ParseDateBehavior(s string) (DateBehavior, error) {
	switch DateBehavior(s) {
	case "", DatePublic:
		return DatePublic, nil
	case DatePrivate:
		return DatePrivate, nil
	case DateUnlisted:
		return DateUnlisted, nil
	default:
		return "", fmt.Errorf("unknown date behavior: %s", s)
	}
}

// FutureDateBehavior returns the visibility of future dated entries
func (c *Collection) FutureDateBehavior() DateBehavior {
	if c.futureDateBehavior == "" {
		return DatePublic
	}
	return c.futureDateBehavior
}

// SetFutureDateBehavior sets the visibility of future dated entries. An empty
// or unknown value resets it to public.
func (c *Collection) SetFutureDateBehavior(behavior DateBehavior) *Collection {
	c.futureDateBehavior = normalizeDateBehavior(behavior)
	return c
}

// PastDateBehavior returns the visibility of past dated entries
func (c *Collection) PastDateBehavior() DateBehavior {
	if c.pastDateBehavior == "" {
		return DatePublic
	}
	return c.pastDateBehavior
}

// SetPastDateBehavior sets the visibility of past dated entries. An empty
// or unknown value resets it to public.
func (c *Collection) SetPastDateBehavior(behavior DateBehavior) *Collection {
	c.pastDateBehavior = normalizeDateBehavior(behavior)
	return c
}

// normalizeDateBehavior maps anything ParseDateBehavior rejects to the unset value
func normalizeDateBehavior(behavior DateBehavior) DateBehavior {
	parsed, err := ParseDateBehavior(string(behavior))
	if err != nil || behavior == "" {
		return ""
	}
	return parsed
}

// RevisionsEnabled reports whether revisions apply to this collection: both
// the process-wide default and the collection's own flag must be on.
func (c *Collection) RevisionsEnabled() bool {
	return c.env.RevisionsEnabled && c.revisions
}

// SetRevisionsEnabled sets the collection's own revisions flag
func (c *Collection) SetRevisionsEnabled(enabled bool) *Collection {
	c.revisions = enabled
	return c
}

// DefaultPublishState returns whether new entries start published. It is
// always false while revisions are enabled.
func (c *Collection) DefaultPublishState() bool {
	if c.RevisionsEnabled() {
		return false
	}
	if c.defaultPublishState == nil {
		return true
	}
	return *c.defaultPublishState
}

// SetDefaultPublishState sets whether new entries start published
func (c *Collection) SetDefaultPublishState(published bool) *Collection {
	c.defaultPublishState = &published
	return c
}
