package wire

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	cases := []string{
		"",
		"example.com",
		"www.example.com",
		"a.b.c.d.example.com",
	}
	for _, name := range cases {
		enc, err := EncodeName(name)
		require.NoError(t, err, name)

		off := 0
		got, err := DecodeName(enc, &off)
		require.NoError(t, err, name)
		assert.Equal(t, name, got)
		assert.Equal(t, len(enc), off)
	}
}

func TestCompressionReducesSize(t *testing.T) {
	m := Message{
		ID:       1,
		Response: true,
		Question: []Question{{Name: "www.example.com", Type: TypeA, Class: ClassIN}},
		Answer: []RR{
			{Owner: "www.example.com", Class: ClassIN, TTL: 300, Data: AData{IP: [4]byte{192, 0, 2, 1}}},
			{Owner: "www.example.com", Class: ClassIN, TTL: 300, Data: AData{IP: [4]byte{192, 0, 2, 2}}},
		},
	}
	b, err := m.Marshal()
	require.NoError(t, err)

	// Without compression the second owner name alone would cost 17 bytes;
	// with the pointer it costs 2. Sanity check the whole message stays
	// small instead of growing linearly with repeated owners.
	assert.Less(t, len(b), HeaderSize+2*17+2*10+2+4)

	parsed, err := Parse(b)
	require.NoError(t, err)
	require.Len(t, parsed.Answer, 2)
	assert.Equal(t, "www.example.com", parsed.Answer[0].Owner)
	assert.Equal(t, "www.example.com", parsed.Answer[1].Owner)
}

func TestMessageRoundTripAllTypes(t *testing.T) {
	m := Message{
		ID:                 42,
		Response:           true,
		Authoritative:      true,
		RecursionDesired:   true,
		RecursionAvailable: true,
		RCode:              RCodeNone,
		Question:           []Question{{Name: "example.com", Type: TypeA, Class: ClassIN}},
		Answer: []RR{
			{Owner: "example.com", Class: ClassIN, TTL: 3600, Data: AData{IP: [4]byte{10, 0, 0, 1}}},
			{Owner: "example.com", Class: ClassIN, TTL: 3600, Data: AAAAData{IP: [16]byte{0: 0x20, 1: 0x01}}},
			{Owner: "example.com", Class: ClassIN, TTL: 3600, Data: NameData{Target: "ns1.example.com", RRType: TypeNS}},
			{Owner: "www.example.com", Class: ClassIN, TTL: 3600, Data: NameData{Target: "example.com", RRType: TypeCNAME}},
			{Owner: "example.com", Class: ClassIN, TTL: 3600, Data: MXData{Preference: 10, Exchange: "mail.example.com"}},
			{Owner: "example.com", Class: ClassIN, TTL: 3600, Data: HINFOData{CPU: "x86_64", OS: "linux"}},
			{Owner: "example.com", Class: ClassIN, TTL: 3600, Data: TXTData{Text: "v=spf1 -all"}},
			{
				Owner: "example.com", Class: ClassIN, TTL: 3600,
				Data: SOAData{
					MName: "ns1.example.com", RName: "hostmaster.example.com",
					Serial: 2024010100, Refresh: 3600, Retry: 600, Expire: 604800, Minimum: 300,
				},
			},
		},
	}

	b, err := m.Marshal()
	require.NoError(t, err)

	parsed, err := Parse(b)
	require.NoError(t, err)

	require.Len(t, parsed.Answer, len(m.Answer))
	for i, rr := range m.Answer {
		assert.Equal(t, rr.Data, parsed.Answer[i].Data, "record %d", i)
	}
}

func TestParseRejectsReservedLabelBits(t *testing.T) {
	// Label length byte with only one of the top two bits set: not a
	// pointer (11xxxxxx) and not a plain length (0x40 = binary 01xxxxxx).
	msg := []byte{0x40, 0x00}
	off := 0
	_, err := DecodeName(msg, &off)
	assert.ErrorIs(t, err, ErrParse)
}

func TestParseDetectsCompressionLoop(t *testing.T) {
	// Two labels each pointing at the other.
	msg := make([]byte, HeaderSize+4)
	msg[HeaderSize] = 0xC0
	msg[HeaderSize+1] = byte(HeaderSize + 2)
	msg[HeaderSize+2] = 0xC0
	msg[HeaderSize+3] = byte(HeaderSize)

	off := HeaderSize
	_, err := DecodeName(msg, &off)
	assert.ErrorIs(t, err, ErrParse)
}

func TestEncodeWithLimitDropsAdditionalFirst(t *testing.T) {
	m := Message{
		ID:       7,
		Response: true,
		Question: []Question{{Name: "example.com", Type: TypeA, Class: ClassIN}},
		Answer: []RR{
			{Owner: "example.com", Class: ClassIN, TTL: 300, Data: AData{IP: [4]byte{192, 0, 2, 1}}},
		},
		Additional: []RR{
			{Owner: "ns1.example.com", Class: ClassIN, TTL: 300, Data: AData{IP: [4]byte{192, 0, 2, 53}}},
		},
	}
	full, err := m.Marshal()
	require.NoError(t, err)

	b, truncated, err := EncodeWithLimit(m, len(full)-1)
	require.NoError(t, err)
	assert.True(t, truncated)

	parsed, err := Parse(b)
	require.NoError(t, err)
	assert.True(t, parsed.Truncated)
	assert.Len(t, parsed.Additional, 0)
	assert.Len(t, parsed.Answer, 1, "answer should survive before additional is fully gone")
}

func TestUnsupportedTypeEncodeError(t *testing.T) {
	rr := RR{Owner: "example.com", Class: ClassIN, TTL: 0, Data: OpaqueData{RRType: TypeAXFR, Raw: nil}}
	m := Message{Answer: []RR{rr}}
	_, err := m.Marshal()
	assert.ErrorIs(t, err, ErrUnsupported, "AXFR records are refused on encode as well as on decode")

	msg := []byte{
		// minimal header
		0, 1, 0x80, 0, 0, 0, 0, 1, 0, 0, 0, 0,
		// owner: root
		0,
		// type AXFR (252), class IN, ttl 0, rdlen 0
		0, 252, 0, 1, 0, 0, 0, 0, 0, 0,
	}
	_, err = Parse(msg)
	assert.ErrorIs(t, err, ErrUnsupported)
}
