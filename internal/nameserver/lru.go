package nameserver

import (
	"container/list"

	"github.com/arvindsh/dfscore/internal/metadata"
)

// lruItem is one entry in the hot-set cache: a fingerprint-indexed pointer
// to a record already owned by the store's primary map.
type lruItem struct {
	filename string
	record   *metadata.Record
	el       *list.Element
}

// lruCache is a fixed-capacity, move-to-front cache in front of the
// store's primary map. It never owns data and is never consulted for
// correctness — a miss always falls through to the store.
type lruCache struct {
	max int
	ll  *list.List
	it  map[string]*lruItem
}

func newLRUCache(max int) *lruCache {
	if max <= 0 {
		max = 1
	}
	return &lruCache{max: max, ll: list.New(), it: make(map[string]*lruItem, max)}
}

// Get returns the cached ref for filename and moves it to the front.
func (c *lruCache) Get(filename string) (*metadata.Record, bool) {
	it, ok := c.it[filename]
	if !ok {
		return nil, false
	}
	c.ll.MoveToFront(it.el)
	return it.record, true
}

// Put inserts or refreshes filename's cache entry, evicting the least
// recently used entry if the cache is over capacity.
func (c *lruCache) Put(filename string, record *metadata.Record) {
	if it, ok := c.it[filename]; ok {
		it.record = record
		c.ll.MoveToFront(it.el)
		return
	}
	el := c.ll.PushFront(filename)
	c.it[filename] = &lruItem{filename: filename, record: record, el: el}
	for c.ll.Len() > c.max {
		back := c.ll.Back()
		if back == nil {
			break
		}
		c.evict(back.Value.(string))
	}
}

// Delete evicts filename's entry, if present. Called on every store
// delete so the cache never hands back a stale pointer for a removed
// name.
func (c *lruCache) Delete(filename string) {
	c.evict(filename)
}

func (c *lruCache) evict(filename string) {
	it, ok := c.it[filename]
	if !ok {
		return
	}
	delete(c.it, filename)
	c.ll.Remove(it.el)
}

// Len reports the number of cached entries.
func (c *lruCache) Len() int {
	return c.ll.Len()
}
