package rrcache

// discardable reports whether e may be chosen by the eviction policy: no
// locks, not user-supplied, not deprecated (spec Invariant 1).
func discardable(e *entry) bool {
	return e.lockCount == 0 && !e.userSupplied && !e.deprecated
}

// addToOwnerList inserts id at the head of owner's sibling list.
func (c *Cache) addToOwnerList(owner string, id entryID) {
	e := c.get(id)
	e.owner = owner
	if head, ok := c.owners[owner]; ok {
		e.next = head
	} else {
		e.next = nilID
	}
	c.owners[owner] = id
}

// removeFromOwnerList unlinks id from its owner's sibling list.
func (c *Cache) removeFromOwnerList(id entryID) {
	e := c.get(id)
	if e == nil {
		return
	}
	owner := e.owner
	head := c.owners[owner]
	if head == id {
		if e.next.valid() {
			c.owners[owner] = e.next
		} else {
			delete(c.owners, owner)
		}
		return
	}
	cur := head
	for cur.valid() {
		ce := c.get(cur)
		if ce == nil {
			return
		}
		if ce.next == id {
			ce.next = e.next
			return
		}
		cur = ce.next
	}
}

func (c *Cache) addToLRU(id entryID, e *entry) {
	if e.lruElem != nil {
		return
	}
	e.lruElem = c.lru.PushFront(id)
}

func (c *Cache) removeFromLRU(e *entry) {
	if e.lruElem == nil {
		return
	}
	c.lru.Remove(e.lruElem)
	e.lruElem = nil
}

func (c *Cache) addToExpiry(id entryID, e *entry) {
	if e.inExpiry {
		return
	}
	c.expiry.ReplaceOrInsert(expiryItem{expiry: e.absoluteExpiry, id: id})
	e.inExpiry = true
}

func (c *Cache) removeFromExpiry(id entryID, e *entry) {
	if !e.inExpiry {
		return
	}
	c.expiry.Delete(expiryItem{expiry: e.absoluteExpiry, id: id})
	e.inExpiry = false
}

// indexDiscardable places a freshly inserted or unlocked discardable entry
// into the LRU and expiry indices (Invariant 1).
func (c *Cache) indexDiscardable(id entryID, e *entry) {
	if !discardable(e) {
		return
	}
	c.addToLRU(id, e)
	c.addToExpiry(id, e)
}

// deindexDiscardable removes e from the LRU and expiry indices without
// freeing it (used before locking or deprecating an entry).
func (c *Cache) deindexDiscardable(id entryID, e *entry) {
	c.removeFromLRU(e)
	c.removeFromExpiry(id, e)
}

// siblings walks owner's sibling list, calling fn for every entry id until
// fn returns false.
func (c *Cache) siblings(owner string, fn func(id entryID, e *entry) bool) {
	cur := c.owners[owner]
	for cur.valid() {
		e := c.get(cur)
		if e == nil {
			return
		}
		next := e.next
		if !fn(cur, e) {
			return
		}
		cur = next
	}
}
