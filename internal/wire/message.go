package wire

import "fmt"

// Limits on section counts accepted while parsing, bounding the work a
// single malformed or hostile packet can force.
const (
	MaxQuestions = 16
	MaxRecords   = 256
)

// Message is a full DNS message (RFC 1035 Section 4.1): header plus the four
// sections.
type Message struct {
	ID                 uint16
	Response           bool
	Opcode             uint16 // already shifted down, 0-15
	Authoritative      bool
	Truncated          bool
	RecursionDesired   bool
	RecursionAvailable bool
	RCode              RCode

	Question   []Question
	Answer     []RR
	Authority  []RR
	Additional []RR
}

func (m Message) flags() uint16 {
	var f uint16
	if m.Response {
		f |= QRFlag
	}
	f |= (m.Opcode << 11) & OpcodeMask
	if m.Authoritative {
		f |= AAFlag
	}
	if m.Truncated {
		f |= TCFlag
	}
	if m.RecursionDesired {
		f |= RDFlag
	}
	if m.RecursionAvailable {
		f |= RAFlag
	}
	f |= uint16(m.RCode) & RCodeMask
	return f
}

// Marshal encodes the full message to wire format, applying name compression
// across every section.
func (m Message) Marshal() ([]byte, error) {
	c := newCompressor()
	h := Header{
		ID:      m.ID,
		Flags:   m.flags(),
		QDCount: uint16(len(m.Question)),
		ANCount: uint16(len(m.Answer)),
		NSCount: uint16(len(m.Authority)),
		ARCount: uint16(len(m.Additional)),
	}
	c.buf = append(c.buf, h.marshal()...)

	for _, q := range m.Question {
		if err := q.marshalInto(c); err != nil {
			return nil, err
		}
	}
	for _, sec := range [][]RR{m.Answer, m.Authority, m.Additional} {
		for _, rr := range sec {
			if err := rr.marshalInto(c); err != nil {
				return nil, err
			}
		}
	}
	return c.buf, nil
}

// EncodeWithLimit encodes m, and if the result exceeds max bytes,
// progressively drops whole records (additional, then authority, then
// answer, in that order) and sets the truncation bit until it fits, or until
// only the header and question section remain. The bool return reports
// whether truncation occurred.
func EncodeWithLimit(m Message, max int) ([]byte, bool, error) {
	b, err := m.Marshal()
	if err != nil {
		return nil, false, err
	}
	if len(b) <= max {
		return b, false, nil
	}

	trimmed := m
	trimmed.Truncated = true
	for len(trimmed.Additional) > 0 {
		trimmed.Additional = trimmed.Additional[:len(trimmed.Additional)-1]
		b, err = trimmed.Marshal()
		if err != nil {
			return nil, false, err
		}
		if len(b) <= max {
			return b, true, nil
		}
	}
	for len(trimmed.Authority) > 0 {
		trimmed.Authority = trimmed.Authority[:len(trimmed.Authority)-1]
		b, err = trimmed.Marshal()
		if err != nil {
			return nil, false, err
		}
		if len(b) <= max {
			return b, true, nil
		}
	}
	for len(trimmed.Answer) > 0 {
		trimmed.Answer = trimmed.Answer[:len(trimmed.Answer)-1]
		b, err = trimmed.Marshal()
		if err != nil {
			return nil, false, err
		}
		if len(b) <= max {
			return b, true, nil
		}
	}
	b, err = trimmed.Marshal()
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

// Parse decodes a full DNS message from wire format.
func Parse(msg []byte) (Message, error) {
	off := 0
	h, err := ParseHeader(msg, &off)
	if err != nil {
		return Message{}, err
	}
	if h.QDCount > MaxQuestions {
		return Message{}, fmt.Errorf("%w: question count %d exceeds limit", ErrParse, h.QDCount)
	}
	if int(h.ANCount)+int(h.NSCount)+int(h.ARCount) > MaxRecords {
		return Message{}, fmt.Errorf("%w: record count exceeds limit", ErrParse)
	}

	m := Message{
		ID:                 h.ID,
		Response:           h.Flags&QRFlag != 0,
		Opcode:             (h.Flags & OpcodeMask) >> 11,
		Authoritative:      h.Flags&AAFlag != 0,
		Truncated:          h.Flags&TCFlag != 0,
		RecursionDesired:   h.Flags&RDFlag != 0,
		RecursionAvailable: h.Flags&RAFlag != 0,
		RCode:              RCodeFromFlags(h.Flags),
	}

	m.Question = make([]Question, 0, h.QDCount)
	for i := uint16(0); i < h.QDCount; i++ {
		q, err := parseQuestion(msg, &off)
		if err != nil {
			return Message{}, err
		}
		m.Question = append(m.Question, q)
	}

	for _, n := range []struct {
		count uint16
		dst   *[]RR
	}{{h.ANCount, &m.Answer}, {h.NSCount, &m.Authority}, {h.ARCount, &m.Additional}} {
		recs := make([]RR, 0, n.count)
		for i := uint16(0); i < n.count; i++ {
			rr, err := parseRR(msg, &off)
			if err != nil {
				return Message{}, err
			}
			recs = append(recs, rr)
		}
		*n.dst = recs
	}

	return m, nil
}
