package server

import (
	"testing"

	"github.com/novator24/gonsd/internal/rrcache"
	"github.com/novator24/gonsd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func buildQuery(id uint16, name string, qtype wire.Type) []byte {
	m := wire.Message{
		ID:               id,
		RecursionDesired: true,
		Question:         []wire.Question{{Name: name, Type: qtype, Class: wire.ClassIN}},
	}
	b, err := m.Marshal()
	if err != nil {
		panic(err)
	}
	return b
}

func TestHandleReturnsAnswer(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.Insert(wire.RR{Owner: "example.com.", Class: wire.ClassIN, TTL: 300, Data: wire.AData{IP: [4]byte{192, 0, 2, 1}}}, true, 0)

	h := &QueryHandler{Cache: c, RecursionAvailable: true}
	req := buildQuery(99, "example.com.", wire.TypeA)

	res := h.Handle("udp", "127.0.0.1", req, 512)
	require.True(t, res.ParsedOK)
	assert.Equal(t, "answer", res.Source)

	resp, err := wire.Parse(res.ResponseBytes)
	require.NoError(t, err)
	assert.Equal(t, uint16(99), resp.ID)
	assert.True(t, resp.Response)
	assert.True(t, resp.Authoritative)
	require.Len(t, resp.Answer, 1)
	assert.Equal(t, wire.AData{IP: [4]byte{192, 0, 2, 1}}, resp.Answer[0].Data)
}

func TestHandleNegative(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	c.AddNegative("nowhere.", wire.TypeA, wire.ClassIN, 1000, true)

	h := &QueryHandler{Cache: c}
	req := buildQuery(1, "nowhere.", wire.TypeA)

	res := h.Handle("udp", "127.0.0.1", req, 512)
	resp, err := wire.Parse(res.ResponseBytes)
	require.NoError(t, err)
	assert.Equal(t, wire.RCodeNameError, resp.RCode)
}

func TestHandleNoDataReturnsNoError(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	h := &QueryHandler{Cache: c}
	req := buildQuery(4, "nothing.here.", wire.TypeA)

	res := h.Handle("udp", "127.0.0.1", req, 512)
	resp, err := wire.Parse(res.ResponseBytes)
	require.NoError(t, err)
	assert.Equal(t, wire.RCodeNone, resp.RCode)
	assert.Equal(t, "nodata", res.Source)
}

func TestHandleRejectsAXFR(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	h := &QueryHandler{Cache: c}
	req := buildQuery(2, "example.com.", wire.TypeAXFR)

	res := h.Handle("udp", "127.0.0.1", req, 512)
	resp, err := wire.Parse(res.ResponseBytes)
	require.NoError(t, err)
	assert.Equal(t, wire.RCodeNotImp, resp.RCode)
}

func TestHandleDropsResponsePacket(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	h := &QueryHandler{Cache: c}

	m := wire.Message{
		ID:       3,
		Response: true,
		Question: []wire.Question{{Name: "example.com.", Type: wire.TypeA, Class: wire.ClassIN}},
	}
	b, err := m.Marshal()
	require.NoError(t, err)

	res := h.Handle("udp", "127.0.0.1", b, 512)
	assert.Empty(t, res.ResponseBytes)
	assert.True(t, res.ParsedOK)
}

func TestHandleRequestShorterThanHeaderIsParseError(t *testing.T) {
	c := rrcache.New(1<<20, 1000)
	h := &QueryHandler{Cache: c}

	res := h.Handle("udp", "127.0.0.1", []byte{0x00, 0x01}, 512)
	assert.Equal(t, "parse-error", res.Source)
	assert.False(t, res.ParsedOK)
}
