package rrcache

// Lock increments h's reference count, removing it from the LRU and expiry
// indices so it cannot be evicted while locked (spec: lock).
func (c *Cache) Lock(h Handle) {
	defer c.checkInvariants()
	e := c.get(h.id)
	if e == nil {
		return
	}
	if e.lockCount == 0 {
		c.deindexDiscardable(h.id, e)
	}
	e.lockCount++
}

// Unlock decrements h's reference count. At zero, a deprecated entry is
// freed, a user-marked entry is kept but not reindexed, an entry is freed if
// the cache is over quota, and otherwise it is reinserted into the LRU and
// expiry indices (spec: unlock).
func (c *Cache) Unlock(h Handle) {
	defer c.checkInvariants()
	e := c.get(h.id)
	if e == nil || e.lockCount == 0 {
		return
	}
	e.lockCount--
	if e.lockCount > 0 {
		return
	}
	if e.deprecated || e.userSupplied {
		if e.deprecated {
			c.free(h.id)
		}
		return
	}
	if c.overQuota() {
		c.free(h.id)
		return
	}
	c.indexDiscardable(h.id, e)
}

// MarkUser locks h and marks it user-supplied: never evicted, never
// replaced by a non-user update (spec: mark_user).
func (c *Cache) MarkUser(h Handle) {
	defer c.checkInvariants()
	e := c.get(h.id)
	if e == nil {
		return
	}
	if !e.userSupplied {
		c.deindexDiscardable(h.id, e)
		e.lockCount++
		e.userSupplied = true
	}
}

// UnmarkUser reverses MarkUser (spec: unmark_user).
func (c *Cache) UnmarkUser(h Handle) {
	defer c.checkInvariants()
	e := c.get(h.id)
	if e == nil || !e.userSupplied {
		return
	}
	e.userSupplied = false
	c.Unlock(h)
}

func (c *Cache) overQuota() bool {
	return c.totalBytes > c.maxBytes || (c.maxRecords > 0 && c.count > c.maxRecords)
}

// enforceQuota evicts discardable entries, least recently used first, until
// the cache is within bounds or no discardable entry remains, honoring
// Invariant 3.
func (c *Cache) enforceQuota() {
	for c.overQuota() {
		if !c.evictOneLRU() {
			return
		}
	}
}

// evictOneLRU frees the least-recently-used discardable entry, returning
// false if none exists.
func (c *Cache) evictOneLRU() bool {
	back := c.lru.Back()
	if back == nil {
		return false
	}
	id := back.Value.(entryID)
	c.free(id)
	return true
}

// Flush evicts every discardable entry whose absolute_expiry is at most
// now, then evicts least-recently-used discardable entries while the cache
// remains over quota. If no further entry can be evicted while still over
// quota, Flush returns leaving the bound exceeded (Invariant 3).
func (c *Cache) Flush(now uint64) {
	defer c.checkInvariants()
	for {
		item, ok := c.expiry.Min()
		if !ok || item.expiry > now {
			break
		}
		c.free(item.id)
	}
	c.enforceQuota()
}
