package collections

import (
	"github.com/folio-cms/folio/internal/ordering"
)

// Positions returns the ordering store of the collection's entries
func (c *Collection) Positions() *ordering.Store[string] {
	if c.positions == nil {
		c.positions = ordering.New[string]()
	}
	return c.positions
}

// SetEntryPosition places an entry at a sparse position
func (c *Collection) SetEntryPosition(id string, position int) *Collection {
	c.Positions().SetPosition(id, position)
	return c
}

// SetEntryPositions replaces all entry positions
func (c *Collection) SetEntryPositions(positions map[int]string) *Collection {
	c.Positions().SetPositions(positions)
	return c
}

// EntryPosition returns the sparse position of an entry
func (c *Collection) EntryPosition(id string) (int, bool) {
	return c.Positions().Position(id)
}

// EntryPositions returns all positions in ascending order
func (c *Collection) EntryPositions() []ordering.Entry[string] {
	return c.Positions().Positions()
}

// EntryOrder returns entry ids sorted by position
func (c *Collection) EntryOrder() []string {
	return c.Positions().Order()
}

// EntryRank returns the 1-based rank of an entry
func (c *Collection) EntryRank(id string) (int, bool) {
	return c.Positions().Rank(id)
}

// AppendEntry places an entry after the current last position
func (c *Collection) AppendEntry(id string) (int, error) {
	return c.Positions().Append(id)
}

// PlaceEntryBetween moves an entry between two positioned entries
func (c *Collection) PlaceEntryBetween(id, before, after string) (int, error) {
	position, err := c.Positions().Between(before, after)
	if err != nil {
		return 0, err
	}
	c.Positions().SetPosition(id, position)
	return position, nil
}

// RemoveEntryPosition drops an entry from the ordering
func (c *Collection) RemoveEntryPosition(id string) bool {
	return c.Positions().Remove(id)
}
