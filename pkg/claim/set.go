package claim

// LineSet is the mutable working set of line items for a run. A split
// removes the originating line and appends its replacements; all other
// operations preserve order.
type LineSet struct {
	items []*LineItem
}

// NewLineSet builds a working set over the given lines.
func NewLineSet(items []*LineItem) *LineSet {
	return &LineSet{items: items}
}

// Append adds a line to the end of the set.
func (s *LineSet) Append(item *LineItem) {
	s.items = append(s.items, item)
}

// Items returns the current lines in order.
func (s *LineSet) Items() []*LineItem {
	return s.items
}

// Len returns the number of lines currently in the set.
func (s *LineSet) Len() int {
	return len(s.items)
}

// ByID returns the line with the given identifier, or nil.
func (s *LineSet) ByID(id string) *LineItem {
	for _, item := range s.items {
		if item.ID == id {
			return item
		}
	}
	return nil
}

// Replace removes the line with the given identifier and appends the
// replacements to the end of the set. Reports whether the line was
// found.
func (s *LineSet) Replace(id string, replacements []*LineItem) bool {
	idx := -1
	for i, item := range s.items {
		if item.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}
	s.items = append(s.items[:idx], s.items[idx+1:]...)
	s.items = append(s.items, replacements...)
	return true
}
