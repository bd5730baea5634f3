package rrcache

import "github.com/novator24/gonsd/internal/wire"

// Insert adds rr to the cache (spec: insert). now is the current time in
// seconds; rr.TTL is added to it to compute the entry's absolute expiry.
// The returned Handle is a borrowed reference, valid only until the next
// mutating cache call (Lock extends its lifetime).
func (c *Cache) Insert(rr wire.RR, authoritative bool, now uint64) Handle {
	defer c.checkInvariants()
	owner := wire.FoldName(rr.Owner)
	rrType := rr.Type()
	newExpiry := now + uint64(rr.TTL)

	var existingID entryID
	var existing *entry
	c.siblings(owner, func(id entryID, e *entry) bool {
		if e.rrType != rrType || e.class != rr.Class {
			return true
		}
		existingID, existing = id, e
		return false
	})

	if existing == nil {
		return c.insertNew(rr.Owner, owner, rrType, rr.Class, rr.TTL, rr.Data, authoritative, newExpiry, false)
	}

	if existing.negative {
		// Negative entries never share a (type,class) slot with a positive
		// one (Invariant 2), but an authoritative negative outranks a
		// non-authoritative positive arrival, mirroring add_negative's own
		// authority comparison: the weaker insert is rejected outright.
		if !authoritative && existing.authoritative {
			return Handle{}
		}
		c.free(existingID)
		return c.insertNew(rr.Owner, owner, rrType, rr.Class, rr.TTL, rr.Data, authoritative, newExpiry, false)
	}

	if equalRData(existing.data, rr.Data) {
		if newExpiry > existing.absoluteExpiry {
			c.reindexExpiry(existingID, existing, newExpiry)
		}
		if authoritative {
			existing.authoritative = true
		}
		return Handle{id: existingID}
	}

	if multiValued(rrType) {
		return c.insertNew(rr.Owner, owner, rrType, rr.Class, rr.TTL, rr.Data, authoritative, newExpiry, false)
	}

	// Single-valued type, different data: in-place overwrite if the new
	// string payload fits the existing allocation, otherwise replace.
	if existing.userSupplied {
		// User-supplied always wins; the arriving record is silently
		// dropped rather than replacing it.
		return Handle{id: existingID}
	}

	if stringFieldLen(rr.Data) <= stringFieldLen(existing.data) {
		existing.ownerOriginal = rr.Owner
		existing.data = rr.Data
		existing.ttl = rr.TTL
		if authoritative {
			existing.authoritative = true
		}
		c.reindexExpiry(existingID, existing, newExpiry)
		c.totalBytes -= uint64(existing.byteSize)
		existing.byteSize = byteSize(owner, existing.data)
		c.totalBytes += uint64(existing.byteSize)
		return Handle{id: existingID}
	}

	// Replace: the loser is deprecated if locked, otherwise freed.
	if existing.lockCount > 0 || existing.userSupplied {
		c.deprecate(existingID, existing)
	} else {
		c.free(existingID)
	}
	return c.insertNew(rr.Owner, owner, rrType, rr.Class, rr.TTL, rr.Data, authoritative, newExpiry, false)
}

// insertNew allocates a fresh entry and links it into the owner list and,
// if discardable, the LRU and expiry indices.
func (c *Cache) insertNew(
	ownerOriginal, owner string,
	rrType wire.Type,
	class wire.Class,
	ttl uint32,
	data wire.RData,
	authoritative bool,
	absExpiry uint64,
	userSupplied bool,
) Handle {
	id := c.alloc()
	e := c.get(id)
	e.ownerOriginal = ownerOriginal
	e.owner = owner
	e.rrType = rrType
	e.class = class
	e.ttl = ttl
	e.data = data
	e.absoluteExpiry = absExpiry
	e.authoritative = authoritative
	e.userSupplied = userSupplied
	e.byteSize = byteSize(owner, data)

	c.totalBytes += uint64(e.byteSize)
	c.count++

	c.addToOwnerList(owner, id)
	// Enforce the quota before indexing the new entry, so the arriving
	// record is never chosen as its own eviction victim.
	c.enforceQuota()
	if userSupplied {
		e.lockCount = 1
	} else {
		c.indexDiscardable(id, e)
	}
	return Handle{id: id}
}

func (c *Cache) reindexExpiry(id entryID, e *entry, newExpiry uint64) {
	if e.inExpiry {
		c.removeFromExpiry(id, e)
	}
	e.absoluteExpiry = newExpiry
	if discardable(e) {
		c.addToExpiry(id, e)
	}
}

// deprecate removes e from every index but keeps it allocated, still
// counted against quota, reachable by nothing (Invariant 1).
func (c *Cache) deprecate(id entryID, e *entry) {
	c.removeFromOwnerList(id)
	c.deindexDiscardable(id, e)
	e.deprecated = true
}

// AddNegative records that owner has no data of type/class until expiryAbs
// (spec: add_negative).
func (c *Cache) AddNegative(owner string, typ wire.Type, class wire.Class, expiryAbs uint64, authoritative bool) {
	defer c.checkInvariants()
	ownerOriginal := owner
	owner = wire.FoldName(owner)

	var existingID entryID
	var existing *entry
	c.siblings(owner, func(id entryID, e *entry) bool {
		if e.rrType != typ || e.class != class {
			return true
		}
		existingID, existing = id, e
		return false
	})

	if existing != nil {
		if existing.negative {
			if expiryAbs > existing.absoluteExpiry {
				c.reindexExpiry(existingID, existing, expiryAbs)
			}
			return
		}
		if !(authoritative && !existing.authoritative) {
			return // drop silently
		}
		if existing.lockCount > 0 || existing.userSupplied {
			c.deprecate(existingID, existing)
		} else {
			c.free(existingID)
		}
	}

	id := c.alloc()
	e := c.get(id)
	e.ownerOriginal = ownerOriginal
	e.owner = owner
	e.rrType = typ
	e.class = class
	e.negative = true
	e.absoluteExpiry = expiryAbs
	e.authoritative = authoritative
	e.byteSize = byteSize(owner, nil)

	c.totalBytes += uint64(e.byteSize)
	c.count++
	c.addToOwnerList(owner, id)
	c.indexDiscardable(id, e)
	c.enforceQuota()
}
