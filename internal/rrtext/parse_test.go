package rrtext

import (
	"testing"

	"github.com/novator24/gonsd/internal/wire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseARecord(t *testing.T) {
	res, err := ParseText("$ORIGIN .\nfun.house 10000 IN A 1.2.3.4\n", "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)

	rr := res.Records[0]
	assert.Equal(t, "fun.house.", rr.Owner)
	assert.Equal(t, uint32(10000), rr.TTL)
	assert.Equal(t, wire.ClassIN, rr.Class)
	assert.Equal(t, wire.AData{IP: [4]byte{1, 2, 3, 4}}, rr.Data)
}

func TestParseBINDReversedClassType(t *testing.T) {
	res, err := ParseText("$ORIGIN .\nextra.fun 10000 A IN 2.3.4.5\n", "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, wire.AData{IP: [4]byte{2, 3, 4, 5}}, res.Records[0].Data)
	assert.Equal(t, wire.ClassIN, res.Records[0].Class)
}

func TestParseMX(t *testing.T) {
	res, err := ParseText("$ORIGIN .\nextra.fun. 10000 IN MX 10 mail.host\n", "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, "extra.fun.", res.Records[0].Owner)
	assert.Equal(t, wire.MXData{Preference: 10, Exchange: "mail.host."}, res.Records[0].Data)
}

func TestParseOriginAndTTLDirectives(t *testing.T) {
	res, err := ParseText(`
$ORIGIN example.com.
$TTL 1h30m
@    IN  A     192.0.2.1
www  IN  A     192.0.2.2
`, "", 0)
	require.NoError(t, err)
	assert.Equal(t, "example.com.", res.Origin)
	require.Len(t, res.Records, 2)
	assert.Equal(t, uint32(5400), res.Records[0].TTL)
	assert.Equal(t, "example.com.", res.Records[0].Owner)
	assert.Equal(t, "www.example.com.", res.Records[1].Owner)
}

func TestParseOwnerCarriesOverOnIndentedContinuation(t *testing.T) {
	res, err := ParseText(`
$ORIGIN example.com.
@ 3600 IN A 192.0.2.1
  3600 IN A 192.0.2.2
`, "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 2)
	assert.Equal(t, res.Records[0].Owner, res.Records[1].Owner)
}

func TestParseParenthesizedSOA(t *testing.T) {
	res, err := ParseText(`
$ORIGIN example.com.
@ 3600 IN SOA ns1.example.com. hostmaster.example.com. (
	2024010100
	3600
	600
	604800
	300 )
`, "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	soa, ok := res.Records[0].Data.(wire.SOAData)
	require.True(t, ok)
	assert.Equal(t, uint32(2024010100), soa.Serial)
	assert.Equal(t, uint32(300), soa.Minimum)
}

func TestParseMismatchedParenIsError(t *testing.T) {
	_, err := ParseText("$ORIGIN example.com.\n@ 3600 IN A 192.0.2.1 )\n", "", 0)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestParseIncludeDirectiveSurfaced(t *testing.T) {
	res, err := ParseText("$ORIGIN example.com.\n$INCLUDE sub.zone\n@ 3600 IN A 192.0.2.1\n", "", 0)
	require.NoError(t, err)
	require.Len(t, res.Includes, 1)
	assert.Equal(t, "sub.zone", res.Includes[0].Path)
	require.Len(t, res.Records, 1)
}

func TestParseRecordBeforeOriginFails(t *testing.T) {
	_, err := ParseText("@ 3600 IN A 192.0.2.1\n", "", 0)
	assert.ErrorIs(t, err, ErrSyntax)
}

func TestRenderRoundTripsThroughParse(t *testing.T) {
	rr := wire.RR{Owner: "www.example.com.", Class: wire.ClassIN, TTL: 300, Data: wire.AData{IP: [4]byte{192, 0, 2, 1}}}
	line, err := Render(rr)
	require.NoError(t, err)

	res, err := ParseText("$ORIGIN example.com.\n"+line+"\n", "", 0)
	require.NoError(t, err)
	require.Len(t, res.Records, 1)
	assert.Equal(t, rr.Data, res.Records[0].Data)
}
