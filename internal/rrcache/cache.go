// Package rrcache implements the in-memory resource-record cache: the
// component that holds every positive and negative answer the resolver and
// zone loader know about, indexed for owner lookup, LRU eviction, and
// expiry-ordered retirement.
//
// Concurrency: Cache is not safe for concurrent use. Every exported method
// must run on the single goroutine driving the server's event loop; callers
// needing cross-goroutine access must serialize it themselves.
//
// Error Handling:
//
// No method returns an error: rejected inserts and failed lookups yield a
// zero Handle or ok=false, and only the optional invariant check panics.
package rrcache

import (
	"container/list"

	"github.com/google/btree"
	"github.com/novator24/gonsd/internal/wire"
)

// entryID identifies a slot in the cache's arena. gen guards against a
// Handle outliving the slot it names (the slot reused by a later insert).
type entryID struct {
	idx uint32
	gen uint32
}

// nilID is the zero value of entryID, so a zero-value Handle (as returned by
// a rejected Insert or a failed LookupOne) is genuinely invalid without
// needing an extra "ok" field. Arena index 0 is reserved as a permanent
// dummy slot so no real entry ever has idx 0 and collides with it.
var nilID = entryID{}

func (id entryID) valid() bool { return id != nilID }

// entry is one cached resource record plus its cache-management bookkeeping
// (spec data model: CacheEntry). A negative entry carries rrType/class but
// no data.
type entry struct {
	ownerOriginal string // as received, preserved for output
	owner         string // case-folded, used as the index key
	rrType        wire.Type
	class         wire.Class
	ttl           uint32
	data          wire.RData // nil iff negative

	absoluteExpiry uint64
	byteSize       uint32
	lockCount      uint32
	authoritative  bool
	userSupplied   bool
	negative       bool
	deprecated     bool

	next entryID // next sibling sharing this owner, nilID terminates

	lruElem  *list.Element // non-nil iff present in the LRU list
	inExpiry bool          // present in the expiry tree
}

// rr reconstructs the wire.RR this entry represents, with ttl set to the
// number of seconds remaining until absoluteExpiry (spec output contract:
// cached records are served with their remaining, not original, TTL).
func (e *entry) rr(now uint64) wire.RR {
	ttl := e.ttl
	if e.absoluteExpiry > now {
		remaining := e.absoluteExpiry - now
		if remaining < uint64(^uint32(0)) {
			ttl = uint32(remaining)
		}
	} else {
		ttl = 0
	}
	return wire.RR{Owner: e.ownerOriginal, Class: e.class, TTL: ttl, Data: e.data}
}

// slot is one arena cell: either free (on the free list) or occupied.
type slot struct {
	gen      uint32
	occupied bool
	e        entry
}

// Handle is a borrowed reference to a cache entry, valid until the next
// mutating cache call or until Lock is used to extend its lifetime.
type Handle struct {
	id entryID
}

// Valid reports whether h is non-zero, i.e. came from a successful Insert or
// lookup rather than a rejected one. It does not check that the entry is
// still live.
func (h Handle) Valid() bool { return h.id.valid() }

// Cache is the in-memory resource-record store (spec: RR Cache).
type Cache struct {
	maxBytes   uint64
	maxRecords int
	roundRobin bool

	arena    []slot
	freeList []uint32

	owners map[string]entryID // case-folded owner -> head of sibling list

	lru    *list.List // element.Value is entryID
	expiry *btree.BTreeG[expiryItem]

	totalBytes uint64
	count      int

	// rrCounter drives round-robin selection: candidates are picked in
	// rotation, so lookups are deterministic. There is no random source.
	rrCounter uint64
}

// expiryItem orders entries by (absolute_expiry, entry-identity) so ties
// between equal expirations are still totally ordered.
type expiryItem struct {
	expiry uint64
	id     entryID
}

func expiryLess(a, b expiryItem) bool {
	if a.expiry != b.expiry {
		return a.expiry < b.expiry
	}
	if a.id.idx != b.id.idx {
		return a.id.idx < b.id.idx
	}
	return a.id.gen < b.id.gen
}

// New returns an empty cache. round_robin defaults to true, per this
// package's contract.
func New(maxBytes uint64, maxRecords int) *Cache {
	c := &Cache{
		maxBytes:   maxBytes,
		maxRecords: maxRecords,
		roundRobin: true,
		owners:     make(map[string]entryID),
		lru:        list.New(),
		expiry:     btree.NewG(32, expiryLess),
	}
	// Burn arena slot 0 so idx 0 never denotes a live entry; see nilID.
	c.arena = append(c.arena, slot{occupied: true, gen: 1})
	return c
}

// SetRoundRobin overrides the default round-robin selection policy used by
// LookupOne.
func (c *Cache) SetRoundRobin(rr bool) { c.roundRobin = rr }

// Len reports the number of live entries, including deprecated ones.
func (c *Cache) Len() int { return c.count }

// Bytes reports the total byte_size of every entry still costing memory
// (everything except freed slots; deprecated entries still count).
func (c *Cache) Bytes() uint64 { return c.totalBytes }

func (c *Cache) get(id entryID) *entry {
	if !id.valid() || int(id.idx) >= len(c.arena) {
		return nil
	}
	s := &c.arena[id.idx]
	if !s.occupied || s.gen != id.gen {
		return nil
	}
	return &s.e
}

// alloc reserves a new arena slot and returns its id.
func (c *Cache) alloc() entryID {
	if n := len(c.freeList); n > 0 {
		idx := c.freeList[n-1]
		c.freeList = c.freeList[:n-1]
		s := &c.arena[idx]
		s.occupied = true
		s.gen++
		s.e = entry{}
		return entryID{idx: idx, gen: s.gen}
	}
	idx := uint32(len(c.arena))
	c.arena = append(c.arena, slot{occupied: true, gen: 1})
	return entryID{idx: idx, gen: 1}
}

// free releases id's slot back to the free list and removes it from every
// index it may still be in.
func (c *Cache) free(id entryID) {
	e := c.get(id)
	if e == nil {
		return
	}
	c.removeFromOwnerList(id)
	c.removeFromLRU(e)
	c.removeFromExpiry(id, e)

	c.totalBytes -= uint64(e.byteSize)
	c.count--

	s := &c.arena[id.idx]
	s.occupied = false
	c.freeList = append(c.freeList, id.idx)
}

// byteSize estimates the memory cost of an entry's owner name plus rdata,
// used against the cache's max_bytes quota. Negative entries (data == nil)
// cost only their owner name plus a small fixed overhead.
func byteSize(owner string, data wire.RData) uint32 {
	size := len(owner) + 10 // fixed RR header approximation
	switch d := data.(type) {
	case wire.AData:
		size += 4
	case wire.AAAAData:
		size += 16
	case wire.NameData:
		size += len(d.Target)
	case wire.MXData:
		size += 2 + len(d.Exchange)
	case wire.HINFOData:
		size += len(d.CPU) + len(d.OS)
	case wire.SOAData:
		size += len(d.MName) + len(d.RName) + 20
	case wire.TXTData:
		size += len(d.Text)
	case wire.OpaqueData:
		size += len(d.Raw)
	}
	return uint32(size)
}
