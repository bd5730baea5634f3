package wire

import (
	"encoding/binary"
	"fmt"
)

// RR is a single resource record (RFC 1035 Section 4.1.3): an owner name,
// type, class, TTL, and type-specific data.
type RR struct {
	Owner string
	Class Class
	TTL   uint32
	Data  RData
}

// Type returns the record's type, taken from its Data.
func (rr RR) Type() Type {
	if rr.Data == nil {
		return 0
	}
	return rr.Data.Type()
}

// typeWKS is the well-known-services record type (RFC 1035), which this
// package does not encode.
const typeWKS Type = 11

func (rr RR) marshalInto(c *compressor) error {
	typ := rr.Type()
	switch typ {
	case TypeAXFR, TypeMAILB, typeWKS:
		return fmt.Errorf("%w: cannot encode type %s", ErrUnsupported, typ)
	}

	if err := c.writeName(rr.Owner); err != nil {
		return err
	}

	c.buf = append(c.buf, byte(typ>>8), byte(typ))
	c.buf = append(c.buf, byte(rr.Class>>8), byte(rr.Class))
	c.buf = append(c.buf, byte(rr.TTL>>24), byte(rr.TTL>>16), byte(rr.TTL>>8), byte(rr.TTL))

	// rdlength is a placeholder filled in after the data is written, since
	// the data's encoded length (compression pointers included) isn't known
	// up front.
	rdlenOff := len(c.buf)
	c.buf = append(c.buf, 0, 0)

	dataStart := len(c.buf)
	if err := rr.Data.marshalInto(c); err != nil {
		return err
	}
	rdlen := len(c.buf) - dataStart
	if rdlen > 0xFFFF {
		return fmt.Errorf("%w: rdata too long (%d bytes)", ErrParse, rdlen)
	}
	binary.BigEndian.PutUint16(c.buf[rdlenOff:rdlenOff+2], uint16(rdlen))
	return nil
}

// parseRR parses one resource record from msg at *off, advancing *off past
// it.
func parseRR(msg []byte, off *int) (RR, error) {
	owner, err := DecodeName(msg, off)
	if err != nil {
		return RR{}, fmt.Errorf("rr owner: %w", err)
	}
	if *off+10 > len(msg) {
		return RR{}, fmt.Errorf("%w: unexpected EOF reading rr fixed fields", ErrParse)
	}
	rrtype := Type(binary.BigEndian.Uint16(msg[*off : *off+2]))
	class := Class(binary.BigEndian.Uint16(msg[*off+2 : *off+4]))
	ttl := binary.BigEndian.Uint32(msg[*off+4 : *off+8])
	rdlen := int(binary.BigEndian.Uint16(msg[*off+8 : *off+10]))
	*off += 10

	if *off+rdlen > len(msg) {
		return RR{}, fmt.Errorf("%w: rdlength exceeds message bounds", ErrParse)
	}
	data, err := parseRData(msg, off, rrtype, rdlen)
	if err != nil {
		return RR{}, fmt.Errorf("rr %s %s: %w", owner, rrtype, err)
	}
	return RR{Owner: owner, Class: class, TTL: ttl, Data: data}, nil
}
