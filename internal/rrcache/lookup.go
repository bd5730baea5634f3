package rrcache

import "github.com/novator24/gonsd/internal/wire"

// LookupFlags modify LookupOne's behavior.
type LookupFlags uint8

const (
	// DerefCNAMEs causes LookupOne to follow CNAME chains toward a
	// terminal owner with data of the requested type.
	DerefCNAMEs LookupFlags = 1 << iota
)

func typeMatches(qtype, entryType wire.Type) bool {
	return qtype == wire.TypeWild || qtype == entryType
}

func classMatches(qclass, entryClass wire.Class) bool {
	return qclass == wire.ClassWild || qclass == entryClass
}

// LookupList returns every non-negative entry at owner matching qtype and
// qclass (wildcards permitted in either). CNAMEs are not followed
// (spec: lookup_list).
func (c *Cache) LookupList(owner string, qtype wire.Type, qclass wire.Class) []Handle {
	owner = wire.FoldName(owner)
	var out []Handle
	c.siblings(owner, func(id entryID, e *entry) bool {
		if !e.negative && typeMatches(qtype, e.rrType) && classMatches(qclass, e.class) {
			out = append(out, Handle{id: id})
		}
		return true
	})
	return out
}

// LookupOne returns a single matching entry at owner, or ok=false if none is
// found. With DerefCNAMEs set, CNAME hops are followed (with cycle
// detection) until a matching positive entry is found or no further
// progress can be made. Among several candidates at the terminal owner,
// round-robin selection picks one in rotation; otherwise the first
// encountered during owner-list traversal wins (spec: lookup_one).
func (c *Cache) LookupOne(owner string, qtype wire.Type, qclass wire.Class, flags LookupFlags) (h Handle, ok bool) {
	owner = wire.FoldName(owner)
	visited := make(map[string]struct{})

	for {
		if _, seen := visited[owner]; seen {
			return Handle{}, false
		}
		visited[owner] = struct{}{}

		candidates := c.LookupList(owner, qtype, qclass)
		if len(candidates) > 0 {
			return c.pickCandidate(candidates), true
		}

		if flags&DerefCNAMEs == 0 {
			return Handle{}, false
		}

		cname, ok := c.cnameAt(owner, qclass)
		if !ok {
			return Handle{}, false
		}
		owner = wire.FoldName(cname)
	}
}

func (c *Cache) cnameAt(owner string, qclass wire.Class) (string, bool) {
	var target string
	found := false
	c.siblings(owner, func(id entryID, e *entry) bool {
		if e.negative || e.rrType != wire.TypeCNAME || !classMatches(qclass, e.class) {
			return true
		}
		nd, ok := e.data.(wire.NameData)
		if !ok {
			return true
		}
		target, found = nd.Target, true
		return false
	})
	return target, found
}

func (c *Cache) pickCandidate(candidates []Handle) Handle {
	if len(candidates) == 1 || !c.roundRobin {
		return candidates[0]
	}
	idx := c.rrCounter % uint64(len(candidates))
	c.rrCounter++
	return candidates[idx]
}

// IsNegative reports whether a negative entry exists at owner whose type is
// Wildcard or equal to qtype and whose class is Wildcard or equal to qclass
// (spec: is_negative).
func (c *Cache) IsNegative(owner string, qtype wire.Type, qclass wire.Class) bool {
	owner = wire.FoldName(owner)
	negative := false
	c.siblings(owner, func(id entryID, e *entry) bool {
		if e.negative && typeMatches(qtype, e.rrType) && classMatches(qclass, e.class) {
			negative = true
			return false
		}
		return true
	})
	return negative
}

// RR reconstructs the wire.RR a handle refers to, with its TTL expressed as
// seconds remaining until expiry at time now. ok is false if the handle no
// longer names a live entry.
func (c *Cache) RR(h Handle, now uint64) (rr wire.RR, ok bool) {
	e := c.get(h.id)
	if e == nil || e.negative {
		return wire.RR{}, false
	}
	return e.rr(now), true
}

// GetAddr follows CNAMEs from name and returns the first A record found
// (spec: get_addr).
func (c *Cache) GetAddr(name string, now uint64) (wire.AData, bool) {
	h, ok := c.LookupOne(name, wire.TypeA, wire.ClassIN, DerefCNAMEs)
	if !ok {
		return wire.AData{}, false
	}
	rr, ok := c.RR(h, now)
	if !ok {
		return wire.AData{}, false
	}
	ad, ok := rr.Data.(wire.AData)
	return ad, ok
}

// GetNSAddr walks owner's hierarchy (stripping one leading label at a time)
// looking for an NS record, and returns the paired A record of the
// nameserver if the cache also holds it (spec: get_ns_addr).
func (c *Cache) GetNSAddr(owner string, now uint64) (nsName string, addr wire.AData, ok bool) {
	name := wire.FoldName(owner)
	for {
		list := c.LookupList(name, wire.TypeNS, wire.ClassIN)
		for _, h := range list {
			rr, rok := c.RR(h, now)
			if !rok {
				continue
			}
			nd, isName := rr.Data.(wire.NameData)
			if !isName {
				continue
			}
			if ad, aok := c.GetAddr(nd.Target, now); aok {
				return nd.Target, ad, true
			}
		}

		next, stripped := StripLeadingLabel(name)
		if !stripped {
			return "", wire.AData{}, false
		}
		name = next
	}
}

// StripLeadingLabel removes the first dot-separated label from name,
// reporting false once no further owner-hierarchy ancestor exists (name was
// already empty, i.e. the root).
func StripLeadingLabel(name string) (string, bool) {
	for i := 0; i < len(name); i++ {
		if name[i] == '.' {
			return name[i+1:], true
		}
	}
	if name == "" {
		return "", false
	}
	return "", true
}
