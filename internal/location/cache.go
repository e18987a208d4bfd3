package location

// Cache memoizes geocoder answers by exact query string for the lifetime of
// one run. Entries never expire; a nil place records a query with no result.
type Cache struct {
	places map[string]*Place
}

// NewCache creates an empty cache
func NewCache() *Cache {
	return &Cache{places: make(map[string]*Place)}
}

// Get returns the memoized answer for query and whether one exists
func (c *Cache) Get(query string) (*Place, bool) {
	place, ok := c.places[query]
	return place, ok
}

// Set stores the answer for query
func (c *Cache) Set(query string, place *Place) {
	c.places[query] = place
}

// Size returns the number of cached queries
func (c *Cache) Size() int {
	return len(c.places)
}
