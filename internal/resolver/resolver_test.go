package resolver

import (
	"testing"

	"github.com/novator24/gonsd/internal/rrcache"
	"github.com/novator24/gonsd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveSuccess(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "www.example.com.", Class: wire.ClassIN, TTL: 300, Data: wire.AData{IP: [4]byte{192, 0, 2, 1}}}, true, 0)

	res := Resolve(c, wire.Question{Name: "www.example.com.", Type: wire.TypeA, Class: wire.ClassIN}, 0)
	assert.Equal(t, Success, res.Outcome)
	require.Len(t, res.Answers, 1)
	assert.Equal(t, wire.AData{IP: [4]byte{192, 0, 2, 1}}, res.Answers[0].Data)
	Unlock(c, res)
}

func TestResolveFollowsCNAME(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "alias.example.com.", Class: wire.ClassIN, TTL: 300, Data: wire.NameData{Target: "target.example.com.", RRType: wire.TypeCNAME}}, true, 0)
	c.Insert(wire.RR{Owner: "target.example.com.", Class: wire.ClassIN, TTL: 300, Data: wire.AData{IP: [4]byte{192, 0, 2, 9}}}, true, 0)

	res := Resolve(c, wire.Question{Name: "alias.example.com.", Type: wire.TypeA, Class: wire.ClassIN}, 0)
	assert.Equal(t, PartialData, res.Outcome)
	require.Len(t, res.Answers, 2)
	assert.Equal(t, wire.TypeCNAME, res.Answers[0].Type())
	assert.Equal(t, wire.AData{IP: [4]byte{192, 0, 2, 9}}, res.Answers[1].Data)
	Unlock(c, res)
}

func TestResolveNegative(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.AddNegative("nelly.", wire.TypeA, wire.ClassIN, 1000, true)

	res := Resolve(c, wire.Question{Name: "nelly.", Type: wire.TypeA, Class: wire.ClassIN}, 0)
	assert.Equal(t, Negative, res.Outcome)
	assert.Empty(t, res.Answers)
}

func TestResolveNoDataWithoutNS(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	res := Resolve(c, wire.Question{Name: "unknown.example.com.", Type: wire.TypeA, Class: wire.ClassIN}, 0)
	assert.Equal(t, NoData, res.Outcome)
	assert.Empty(t, res.Answers)
	assert.Empty(t, res.Authority)
}

func TestResolvePartialDataViaNSReferral(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "example.com.", Class: wire.ClassIN, TTL: 3600, Data: wire.NameData{Target: "ns1.example.com.", RRType: wire.TypeNS}}, true, 0)

	res := Resolve(c, wire.Question{Name: "deep.sub.example.com.", Type: wire.TypeA, Class: wire.ClassIN}, 0)
	assert.Equal(t, PartialData, res.Outcome)
	require.Len(t, res.Authority, 1)
	assert.Equal(t, wire.TypeNS, res.Authority[0].Type())
	Unlock(c, res)
}

func TestResolveCNAMECycleTerminates(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "a.", Class: wire.ClassIN, TTL: 100, Data: wire.NameData{Target: "b.", RRType: wire.TypeCNAME}}, true, 0)
	c.Insert(wire.RR{Owner: "b.", Class: wire.ClassIN, TTL: 100, Data: wire.NameData{Target: "a.", RRType: wire.TypeCNAME}}, true, 0)

	res := Resolve(c, wire.Question{Name: "a.", Type: wire.TypeA, Class: wire.ClassIN}, 0)
	assert.Equal(t, NoData, res.Outcome)
	Unlock(c, res)
}
