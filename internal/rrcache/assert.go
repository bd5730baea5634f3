package rrcache

import "fmt"

// AssertInvariants gates an O(n) internal consistency check that debug
// builds can enable after every mutation. It is off by default: the
// invariants it checks are upheld by construction, so this exists purely as
// a development aid, mirroring the original engine's assert_invariants
// debug switch.
var AssertInvariants = false

// checkInvariants panics if the cache's indexes have drifted out of sync
// with each other. Called only when AssertInvariants is true.
func (c *Cache) checkInvariants() {
	if !AssertInvariants {
		return
	}

	seen := 0
	for owner, head := range c.owners {
		for id := head; id.valid(); {
			e := c.get(id)
			if e == nil {
				panic(fmt.Sprintf("rrcache: owner list for %q references freed entry %v", owner, id))
			}
			if e.owner != owner {
				panic(fmt.Sprintf("rrcache: entry owner %q does not match its index key %q", e.owner, owner))
			}
			if e.negative && e.data != nil {
				panic(fmt.Sprintf("rrcache: negative entry for %q carries non-nil data", owner))
			}
			if !e.negative && e.data == nil {
				panic(fmt.Sprintf("rrcache: positive entry for %q carries nil data", owner))
			}
			seen++
			id = e.next
		}
	}

	if seen > c.count {
		panic(fmt.Sprintf("rrcache: owner lists reference %d entries, count is %d", seen, c.count))
	}
}
