package wire

import (
	"encoding/binary"
	"fmt"
	"strings"
)

// MaxLabels is the largest number of labels a decoded name may produce
// (RFC 1035 Section 3.1 implies 255 octets of wire form; 128 labels is the
// limit this spec imposes on top of that to bound decompression work).
const MaxLabels = 128

// FoldName returns the case-folded form of name used as a cache/comparison
// key, with a single trailing root dot removed so "foo.bar." and "foo.bar"
// compare equal. Storage always preserves the original case and dot; only
// comparisons fold.
func FoldName(name string) string {
	return strings.ToLower(trimDot(name))
}

// trimDot removes a single trailing root dot, matching the "." terminator
// convention used throughout zone files and this package's string form.
func trimDot(s string) string {
	if strings.HasSuffix(s, ".") {
		return s[:len(s)-1]
	}
	return s
}

// splitLabels splits a dot-joined name into its labels, validating each
// label's length. The root name ("" or ".") splits to zero labels.
//
// Simplification: labels are assumed not to contain a literal '.' byte
// themselves (no backslash-escaping of embedded dots, unlike BIND's master
// file convention). Names are otherwise treated as arbitrary octet strings,
// per this spec's Name definition.
func splitLabels(name string) ([]string, error) {
	name = trimDot(name)
	if name == "" {
		return nil, nil
	}
	labels := strings.Split(name, ".")
	for _, l := range labels {
		if l == "" {
			return nil, fmt.Errorf("%w: empty label in name %q", ErrParse, name)
		}
		if len(l) > 63 {
			return nil, fmt.Errorf("%w: label too long (%d > 63) in name %q", ErrParse, len(l), name)
		}
	}
	return labels, nil
}

func joinLabels(labels []string) string {
	if len(labels) == 0 {
		return ""
	}
	var b strings.Builder
	total := len(labels) - 1
	for _, l := range labels {
		total += len(l)
	}
	b.Grow(total)
	b.WriteString(labels[0])
	for _, l := range labels[1:] {
		b.WriteByte('.')
		b.WriteString(l)
	}
	return b.String()
}

// compressor accumulates a message body while encoding, tracking the byte
// offset of every name suffix it has written so later names can reference
// it with a 2-byte pointer (RFC 1035 Section 4.1.4).
type compressor struct {
	buf   []byte
	table map[string]int // case-folded suffix -> offset from message start
}

func newCompressor() *compressor {
	return &compressor{table: make(map[string]int)}
}

func (c *compressor) offset() int { return len(c.buf) }

// writeName encodes name into c.buf, using a compression pointer for the
// longest suffix already written, and registering every new suffix it writes
// (as long as its offset still fits a 14-bit pointer) for future reuse.
func (c *compressor) writeName(name string) error {
	labels, err := splitLabels(name)
	if err != nil {
		return err
	}
	for i := range labels {
		suffix := FoldName(joinLabels(labels[i:]))
		if off, ok := c.table[suffix]; ok {
			ptr := uint16(0xC000 | off)
			c.buf = append(c.buf, byte(ptr>>8), byte(ptr))
			return nil
		}
		if c.offset() <= 0x3FFF {
			c.table[suffix] = c.offset()
		}
		label := labels[i]
		c.buf = append(c.buf, byte(len(label)))
		c.buf = append(c.buf, label...)
	}
	c.buf = append(c.buf, 0)
	return nil
}

// EncodeName encodes a single name with no message context, and therefore no
// compression, for callers that need a standalone wire-format name.
func EncodeName(name string) ([]byte, error) {
	c := newCompressor()
	if err := c.writeName(name); err != nil {
		return nil, err
	}
	if len(c.buf) > 255 {
		return nil, fmt.Errorf("%w: encoded name too long (%d > 255)", ErrParse, len(c.buf))
	}
	return c.buf, nil
}

// DecodeName decodes a possibly-compressed name from msg at *off, advancing
// *off past the name (including any compression pointer). Per this spec's
// Open Question on decoder-side registration: the decoder does not maintain
// an offset->string table of its own, since nothing it returns is
// observably different whether or not such a table exists (decode always
// fully resolves every pointer chain it meets, not just the first).
func DecodeName(msg []byte, off *int) (string, error) {
	return decodeName(msg, off, 0, make(map[int]struct{}))
}

func decodeName(msg []byte, off *int, depth int, visited map[int]struct{}) (string, error) {
	const maxPointerHops = 20

	if depth > maxPointerHops {
		return "", fmt.Errorf("%w: too many compression pointer indirections", ErrParse)
	}
	if *off < 0 || *off >= len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF decoding name", ErrParse)
	}

	labels := make([]string, 0, 6)
	for {
		if *off >= len(msg) {
			return "", fmt.Errorf("%w: unexpected EOF decoding name", ErrParse)
		}
		labelLen := msg[*off]
		*off++

		if labelLen == 0 {
			break
		}
		if isPointer(labelLen) {
			rest, err := followPointer(msg, off, labelLen, depth, visited)
			if err != nil {
				return "", err
			}
			if rest != "" {
				labels = append(labels, rest)
			}
			break
		}
		if hasReservedBits(labelLen) {
			return "", fmt.Errorf("%w: reserved label length bits set", ErrParse)
		}
		label, err := readLabel(msg, off, int(labelLen))
		if err != nil {
			return "", err
		}
		labels = append(labels, label)
		if len(labels) > MaxLabels {
			return "", fmt.Errorf("%w: name exceeds %d labels", ErrParse, MaxLabels)
		}
	}
	return joinLabels(labels), nil
}

func isPointer(b byte) bool       { return (b & 0xC0) == 0xC0 }
func hasReservedBits(b byte) bool { return (b & 0xC0) != 0 }

func followPointer(msg []byte, off *int, firstByte byte, depth int, visited map[int]struct{}) (string, error) {
	if *off >= len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF decoding compression pointer", ErrParse)
	}
	ptr := int(binary.BigEndian.Uint16([]byte{firstByte & 0x3F, msg[*off]}))
	*off++

	if ptr >= len(msg) {
		return "", fmt.Errorf("%w: compression pointer out of bounds", ErrParse)
	}
	if _, ok := visited[ptr]; ok {
		return "", fmt.Errorf("%w: compression pointer loop detected", ErrParse)
	}
	visited[ptr] = struct{}{}

	ptrOff := ptr
	return decodeName(msg, &ptrOff, depth+1, visited)
}

func readLabel(msg []byte, off *int, length int) (string, error) {
	if *off+length > len(msg) {
		return "", fmt.Errorf("%w: unexpected EOF reading label", ErrParse)
	}
	label := string(msg[*off : *off+length])
	*off += length
	return label, nil
}
