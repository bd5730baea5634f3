package wire

import (
	"encoding/binary"
	"fmt"
)

// RData is the per-type resource-record payload (RFC 1035 Section 3.3). Each
// DNS type has its own concrete RData implementation, the idiomatic-Go
// equivalent of the tagged union this spec's data model describes — grounded
// on the teacher's type-oriented IPRecord/NameRecord/OpaqueRecord split,
// generalized to cover every type this spec requires.
type RData interface {
	Type() Type
	marshalInto(c *compressor) error
}

// AData is an A record's IPv4 address.
type AData struct{ IP [4]byte }

func (AData) Type() Type { return TypeA }

func (d AData) marshalInto(c *compressor) error {
	c.buf = append(c.buf, d.IP[:]...)
	return nil
}

// AAAAData is an AAAA record's IPv6 address.
type AAAAData struct{ IP [16]byte }

func (AAAAData) Type() Type { return TypeAAAA }

func (d AAAAData) marshalInto(c *compressor) error {
	c.buf = append(c.buf, d.IP[:]...)
	return nil
}

// NameData is the payload of NS, CNAME, and PTR records: a single compressed
// name.
type NameData struct {
	Target string
	RRType Type // TypeNS, TypeCNAME, or TypePTR
}

func (d NameData) Type() Type { return d.RRType }

func (d NameData) marshalInto(c *compressor) error {
	return c.writeName(d.Target)
}

// MXData is an MX record's preference and mail exchange host.
type MXData struct {
	Preference uint16
	Exchange   string
}

func (MXData) Type() Type { return TypeMX }

func (d MXData) marshalInto(c *compressor) error {
	c.buf = append(c.buf, byte(d.Preference>>8), byte(d.Preference))
	return c.writeName(d.Exchange)
}

// HINFOData is a HINFO record's CPU and OS character-strings.
type HINFOData struct {
	CPU string
	OS  string
}

func (HINFOData) Type() Type { return TypeHINFO }

func (d HINFOData) marshalInto(c *compressor) error {
	cs, err := marshalCharString(d.CPU)
	if err != nil {
		return err
	}
	os, err := marshalCharString(d.OS)
	if err != nil {
		return err
	}
	c.buf = append(c.buf, cs...)
	c.buf = append(c.buf, os...)
	return nil
}

// SOAData is an SOA record's zone-authority fields.
type SOAData struct {
	MName   string
	RName   string
	Serial  uint32
	Refresh uint32
	Retry   uint32
	Expire  uint32
	Minimum uint32
}

func (SOAData) Type() Type { return TypeSOA }

func (d SOAData) marshalInto(c *compressor) error {
	if err := c.writeName(d.MName); err != nil {
		return err
	}
	if err := c.writeName(d.RName); err != nil {
		return err
	}
	var nums [20]byte
	binary.BigEndian.PutUint32(nums[0:4], d.Serial)
	binary.BigEndian.PutUint32(nums[4:8], d.Refresh)
	binary.BigEndian.PutUint32(nums[8:12], d.Retry)
	binary.BigEndian.PutUint32(nums[12:16], d.Expire)
	binary.BigEndian.PutUint32(nums[16:20], d.Minimum)
	c.buf = append(c.buf, nums[:]...)
	return nil
}

// TXTData is a TXT record's text, decoded from one or more length-prefixed
// character-strings and concatenated.
type TXTData struct{ Text string }

func (TXTData) Type() Type { return TypeTXT }

func (d TXTData) marshalInto(c *compressor) error {
	b := []byte(d.Text)
	for len(b) > 255 {
		cs, _ := marshalCharString(string(b[:255]))
		c.buf = append(c.buf, cs...)
		b = b[255:]
	}
	cs, err := marshalCharString(string(b))
	if err != nil {
		return err
	}
	c.buf = append(c.buf, cs...)
	return nil
}

// OpaqueData is the fallback payload for record types this package does not
// model explicitly: raw rdata bytes, round-tripped unmodified.
type OpaqueData struct {
	RRType Type
	Raw    []byte
}

func (d OpaqueData) Type() Type { return d.RRType }

func (d OpaqueData) marshalInto(c *compressor) error {
	c.buf = append(c.buf, d.Raw...)
	return nil
}

func marshalCharString(s string) ([]byte, error) {
	if len(s) > 255 {
		return nil, fmt.Errorf("%w: character-string longer than 255 bytes", ErrParse)
	}
	out := make([]byte, 1+len(s))
	out[0] = byte(len(s))
	copy(out[1:], s)
	return out, nil
}

// parseCharString reads one length-prefixed character-string at *off.
func parseCharString(msg []byte, off *int) (string, error) {
	if *off >= len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF reading character-string length", ErrParse)
	}
	n := int(msg[*off])
	*off++
	if *off+n > len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF reading character-string", ErrParse)
	}
	s := string(msg[*off : *off+n])
	*off += n
	return s, nil
}

// parseRData decodes the rdata for an RR whose fixed header has already been
// consumed; start is the offset rdata begins at and rdlen its declared
// length. Returns ErrParse if the decoded content's length disagrees with
// rdlen.
func parseRData(msg []byte, off *int, rrtype Type, rdlen int) (RData, error) {
	start := *off
	switch rrtype {
	case TypeA:
		if rdlen != 4 {
			return nil, fmt.Errorf("%w: A record rdlen must be 4, got %d", ErrParse, rdlen)
		}
		if *off+4 > len(msg) {
			return nil, fmt.Errorf("%w: unexpected EOF reading A record", ErrParse)
		}
		var d AData
		copy(d.IP[:], msg[*off:*off+4])
		*off += 4
		return d, nil
	case TypeAAAA:
		if rdlen != 16 {
			return nil, fmt.Errorf("%w: AAAA record rdlen must be 16, got %d", ErrParse, rdlen)
		}
		if *off+16 > len(msg) {
			return nil, fmt.Errorf("%w: unexpected EOF reading AAAA record", ErrParse)
		}
		var d AAAAData
		copy(d.IP[:], msg[*off:*off+16])
		*off += 16
		return d, nil
	case TypeNS, TypeCNAME, TypePTR:
		name, err := DecodeName(msg, off)
		if err != nil {
			return nil, err
		}
		if *off-start != rdlen {
			return nil, fmt.Errorf("%w: rdlen mismatch for %s record", ErrParse, rrtype)
		}
		return NameData{Target: name, RRType: rrtype}, nil
	case TypeMX:
		if *off+2 > len(msg) {
			return nil, fmt.Errorf("%w: unexpected EOF reading MX preference", ErrParse)
		}
		pref := binary.BigEndian.Uint16(msg[*off : *off+2])
		*off += 2
		ex, err := DecodeName(msg, off)
		if err != nil {
			return nil, err
		}
		if *off-start != rdlen {
			return nil, fmt.Errorf("%w: rdlen mismatch for MX record", ErrParse)
		}
		return MXData{Preference: pref, Exchange: ex}, nil
	case TypeHINFO:
		cpu, err := parseCharString(msg, off)
		if err != nil {
			return nil, err
		}
		osName, err := parseCharString(msg, off)
		if err != nil {
			return nil, err
		}
		if *off-start != rdlen {
			return nil, fmt.Errorf("%w: rdlen mismatch for HINFO record", ErrParse)
		}
		return HINFOData{CPU: cpu, OS: osName}, nil
	case TypeSOA:
		mname, err := DecodeName(msg, off)
		if err != nil {
			return nil, err
		}
		rname, err := DecodeName(msg, off)
		if err != nil {
			return nil, err
		}
		if *off+20 > len(msg) {
			return nil, fmt.Errorf("%w: unexpected EOF reading SOA numeric fields", ErrParse)
		}
		d := SOAData{
			MName:   mname,
			RName:   rname,
			Serial:  binary.BigEndian.Uint32(msg[*off : *off+4]),
			Refresh: binary.BigEndian.Uint32(msg[*off+4 : *off+8]),
			Retry:   binary.BigEndian.Uint32(msg[*off+8 : *off+12]),
			Expire:  binary.BigEndian.Uint32(msg[*off+12 : *off+16]),
			Minimum: binary.BigEndian.Uint32(msg[*off+16 : *off+20]),
		}
		*off += 20
		if *off-start != rdlen {
			return nil, fmt.Errorf("%w: rdlen mismatch for SOA record", ErrParse)
		}
		return d, nil
	case TypeTXT:
		if rdlen == 0 {
			return nil, fmt.Errorf("%w: TXT record requires at least one character-string", ErrParse)
		}
		end := start + rdlen
		if end > len(msg) {
			return nil, fmt.Errorf("%w: unexpected EOF reading TXT record", ErrParse)
		}
		var text []byte
		for *off < end {
			s, err := parseCharString(msg, off)
			if err != nil {
				return nil, err
			}
			text = append(text, s...)
		}
		if *off != end {
			return nil, fmt.Errorf("%w: rdlen mismatch for TXT record", ErrParse)
		}
		return TXTData{Text: string(text)}, nil
	case TypeAXFR, Type(253), TypeWild:
		return nil, fmt.Errorf("%w: type %s", ErrUnsupported, rrtype)
	default:
		if *off+rdlen > len(msg) {
			return nil, fmt.Errorf("%w: unexpected EOF reading opaque rdata", ErrParse)
		}
		raw := make([]byte, rdlen)
		copy(raw, msg[*off:*off+rdlen])
		*off += rdlen
		return OpaqueData{RRType: rrtype, Raw: raw}, nil
	}
}
