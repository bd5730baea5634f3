package rrcache

import (
	"testing"

	"github.com/novator24/gonsd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aRecord(owner string, ip [4]byte, ttl uint32) wire.RR {
	return wire.RR{Owner: owner, Class: wire.ClassIN, TTL: ttl, Data: wire.AData{IP: ip}}
}

func TestCacheMonotonicityAndFlush(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(aRecord("foo.example", [4]byte{1, 2, 3, 4}, 100), false, 0)

	h, ok := c.LookupOne("foo.example", wire.TypeA, wire.ClassIN, 0)
	require.True(t, ok)
	rr, ok := c.RR(h, 50)
	require.True(t, ok)
	assert.Equal(t, uint32(50), rr.TTL)

	c.Flush(99)
	_, ok = c.LookupOne("foo.example", wire.TypeA, wire.ClassIN, 0)
	assert.True(t, ok, "entry should still be present just before expiry")

	c.Flush(101)
	_, ok = c.LookupOne("foo.example", wire.TypeA, wire.ClassIN, 0)
	assert.False(t, ok, "entry should be gone after flush past its expiry")
}

func TestOwnerCaseInsensitivity(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(aRecord("Foo.Bar", [4]byte{9, 9, 9, 9}, 100), false, 0)

	h, ok := c.LookupOne("FOO.bar", wire.TypeA, wire.ClassIN, 0)
	require.True(t, ok)
	rr, ok := c.RR(h, 0)
	require.True(t, ok)
	assert.Equal(t, wire.AData{IP: [4]byte{9, 9, 9, 9}}, rr.Data)
}

func TestCNAMEDereferencing(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "a", Class: wire.ClassIN, TTL: 100, Data: wire.NameData{Target: "b", RRType: wire.TypeCNAME}}, false, 0)
	c.Insert(aRecord("b", [4]byte{1, 2, 3, 4}, 100), false, 0)

	h, ok := c.LookupOne("a", wire.TypeA, wire.ClassIN, DerefCNAMEs)
	require.True(t, ok)
	rr, ok := c.RR(h, 0)
	require.True(t, ok)
	assert.Equal(t, wire.AData{IP: [4]byte{1, 2, 3, 4}}, rr.Data)
}

func TestCNAMECycleTerminates(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "a", Class: wire.ClassIN, TTL: 100, Data: wire.NameData{Target: "b", RRType: wire.TypeCNAME}}, false, 0)
	c.Insert(wire.RR{Owner: "b", Class: wire.ClassIN, TTL: 100, Data: wire.NameData{Target: "a", RRType: wire.TypeCNAME}}, false, 0)

	_, ok := c.LookupOne("a", wire.TypeA, wire.ClassIN, DerefCNAMEs)
	assert.False(t, ok)
}

func TestNegativeCachingPriority(t *testing.T) {
	c := New(1<<20, 1000)
	c.AddNegative("nelly", wire.TypeA, wire.ClassIN, 1000, true)

	c.Insert(aRecord("nelly", [4]byte{1, 1, 1, 1}, 100), false, 0)
	assert.True(t, c.IsNegative("nelly", wire.TypeA, wire.ClassIN), "non-authoritative insert should not unseat an authoritative negative")

	c.Insert(aRecord("nelly", [4]byte{1, 1, 1, 1}, 100), true, 0)
	assert.False(t, c.IsNegative("nelly", wire.TypeA, wire.ClassIN), "authoritative insert should replace the negative")

	h, ok := c.LookupOne("nelly", wire.TypeA, wire.ClassIN, 0)
	require.True(t, ok)
	_, ok = c.RR(h, 0)
	assert.True(t, ok)
}

func TestUserEntriesAreSticky(t *testing.T) {
	c := New(1<<20, 1000)
	h := c.Insert(aRecord("sticky.example", [4]byte{5, 5, 5, 5}, 100), true, 0)
	c.MarkUser(h)

	c.Insert(aRecord("sticky.example", [4]byte{6, 6, 6, 6}, 100), true, 0)
	list := c.LookupList("sticky.example", wire.TypeA, wire.ClassIN)
	require.Len(t, list, 2, "A is multi-valued: the new record joins rather than replaces")

	var sawOriginal bool
	for _, h := range list {
		rr, ok := c.RR(h, 0)
		require.True(t, ok)
		if rr.Data == (wire.AData{IP: [4]byte{5, 5, 5, 5}}) {
			sawOriginal = true
		}
	}
	assert.True(t, sawOriginal, "the user-marked entry must still be reachable")

	c.Flush(1 << 40)
	_, ok := c.LookupOne("sticky.example", wire.TypeA, wire.ClassIN, 0)
	assert.True(t, ok, "user-marked entry must survive flush regardless of expiry")
}

func TestQuotaSoftExceededByLocks(t *testing.T) {
	const n = 8
	c := New(1<<20, n)

	var handles []Handle
	for i := 0; i < n; i++ {
		h := c.Insert(aRecord(string(rune('a'+i))+".example", [4]byte{1, 1, 1, byte(i)}, 100), false, 0)
		c.Lock(h)
		handles = append(handles, h)
	}

	h := c.Insert(aRecord("overflow.example", [4]byte{2, 2, 2, 2}, 100), false, 0)
	assert.True(t, h.Valid())
	assert.Equal(t, n+1, c.Len(), "quota may be exceeded while enough entries are locked")

	for _, h := range handles {
		c.Unlock(h)
	}
}

func TestMultiValuedTypesCoexist(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(aRecord("multi.example", [4]byte{1, 1, 1, 1}, 100), false, 0)
	c.Insert(aRecord("multi.example", [4]byte{2, 2, 2, 2}, 100), false, 0)

	list := c.LookupList("multi.example", wire.TypeA, wire.ClassIN)
	assert.Len(t, list, 2)
}

func TestGetAddrFollowsCNAME(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "foo.baz", Class: wire.ClassIN, TTL: 100, Data: wire.NameData{Target: "foo.bar", RRType: wire.TypeCNAME}}, false, 0)
	c.Insert(aRecord("foo.bar", [4]byte{1, 2, 3, 4}, 100), false, 0)

	ad, ok := c.GetAddr("foo.baz", 0)
	require.True(t, ok)
	assert.Equal(t, [4]byte{1, 2, 3, 4}, ad.IP)
}

func TestGetNSAddrWalksOwnerHierarchy(t *testing.T) {
	c := New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "example.com", Class: wire.ClassIN, TTL: 3600, Data: wire.NameData{Target: "ns1.example.com", RRType: wire.TypeNS}}, true, 0)
	c.Insert(aRecord("ns1.example.com", [4]byte{192, 0, 2, 53}, 3600), true, 0)

	ns, addr, ok := c.GetNSAddr("www.example.com", 0)
	require.True(t, ok)
	assert.Equal(t, "ns1.example.com", ns)
	assert.Equal(t, [4]byte{192, 0, 2, 53}, addr.IP)
}

func TestInvariantsHoldAcrossMutations(t *testing.T) {
	AssertInvariants = true
	defer func() { AssertInvariants = false }()

	c := New(1<<20, 1000)
	h := c.Insert(aRecord("churn.example", [4]byte{1, 1, 1, 1}, 100), false, 0)
	c.Lock(h)
	c.Insert(aRecord("churn.example", [4]byte{2, 2, 2, 2}, 100), false, 0)
	c.AddNegative("absent.example", wire.TypeA, wire.ClassIN, 500, true)
	c.Unlock(h)
	c.Flush(1000)

	assert.NotPanics(t, func() { c.checkInvariants() })
}
