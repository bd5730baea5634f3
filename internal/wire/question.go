package wire

import (
	"encoding/binary"
	"fmt"
)

// Question is a single entry in a DNS message's question section
// (RFC 1035 Section 4.1.2).
type Question struct {
	Name  string
	Type  Type
	Class Class
}

func (q Question) marshalInto(c *compressor) error {
	if err := c.writeName(q.Name); err != nil {
		return err
	}
	c.buf = append(c.buf, byte(q.Type>>8), byte(q.Type))
	c.buf = append(c.buf, byte(q.Class>>8), byte(q.Class))
	return nil
}

func parseQuestion(msg []byte, off *int) (Question, error) {
	name, err := DecodeName(msg, off)
	if err != nil {
		return Question{}, fmt.Errorf("question name: %w", err)
	}
	if *off+4 > len(msg) {
		return Question{}, fmt.Errorf("%w: unexpected EOF reading question", ErrParse)
	}
	q := Question{
		Name:  name,
		Type:  Type(binary.BigEndian.Uint16(msg[*off : *off+2])),
		Class: Class(binary.BigEndian.Uint16(msg[*off+2 : *off+4])),
	}
	*off += 4
	return q, nil
}
