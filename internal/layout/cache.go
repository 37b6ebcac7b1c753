package layout

import "cmem/internal/ctypes"

type cacheEntry struct {
	Layout TypeLayout
	Err    *LayoutError
}

type cache struct {
	byType map[ctypes.TypeID]cacheEntry
}

func newCache() *cache {
	return &cache{byType: make(map[ctypes.TypeID]cacheEntry, 256)}
}

func (c *cache) get(id ctypes.TypeID) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	e, ok := c.byType[id]
	return e, ok
}

func (c *cache) put(id ctypes.TypeID, e *cacheEntry) {
	if c == nil {
		return
	}
	if e == nil {
		delete(c.byType, id)
		return
	}
	c.byType[id] = *e
}
