package core

// Catalog is the flattened, normalized set of packages and libraries after
// resolving channels, repositories and includes. Immutable once built.
type Catalog struct {
	entries map[string]*Entry
	order   []string
	aliases map[string]string
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{
		entries: make(map[string]*Entry),
		aliases: make(map[string]string),
	}
}

// Add inserts an entry. A later definition of an already-present current
// name overrides the earlier one in place, so iteration order reflects
// first declaration while content reflects last. Previous names register as
// aliases to the current name.
func (c *Catalog) Add(e *Entry) {
	if _, ok := c.entries[e.Name]; !ok {
		c.order = append(c.order, e.Name)
	} else {
		// Keep the source trail across overrides.
		e.Sources = append(c.entries[e.Name].Sources, e.Sources...)
	}
	c.entries[e.Name] = e

	for _, prev := range e.PreviousNames {
		c.aliases[prev] = e.Name
	}
}

// Get returns the entry for name, following previous-name aliases. A
// current name always wins over an alias claiming the same name.
func (c *Catalog) Get(name string) (*Entry, bool) {
	if e, ok := c.entries[name]; ok {
		return e, true
	}
	if current, ok := c.aliases[name]; ok {
		e, ok := c.entries[current]
		return e, ok
	}
	return nil, false
}

// Names returns entry names in first-declaration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	return len(c.entries)
}
