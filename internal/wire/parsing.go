package wire

import "fmt"

// MaxMessageSize bounds the size of an incoming request this package will
// attempt to parse, independent of the transport's own framing limits.
const MaxMessageSize = 65535

// ParseRequestBounded parses msg as a DNS request, rejecting messages that
// exceed MaxMessageSize or that carry an unreasonable number of questions or
// records before attempting to decode any of it.
func ParseRequestBounded(msg []byte) (Message, error) {
	if len(msg) < HeaderSize {
		return Message{}, fmt.Errorf("%w: message shorter than header", ErrParse)
	}
	if len(msg) > MaxMessageSize {
		return Message{}, fmt.Errorf("%w: message exceeds %d bytes", ErrParse, MaxMessageSize)
	}
	return Parse(msg)
}

// BuildErrorResponse builds a response to req carrying rcode and no answer,
// authority, or additional records. The question section is echoed back
// unchanged, matching RFC 1035's guidance for error responses. Used for a
// request that parses successfully but is not answered (the server uses it
// for FORMERR and NOTIMP).
func BuildErrorResponse(req Message, rcode RCode) Message {
	return Message{
		ID:                 req.ID,
		Response:           true,
		Opcode:             req.Opcode,
		RecursionDesired:   req.RecursionDesired,
		RecursionAvailable: req.RecursionAvailable,
		RCode:              rcode,
		Question:           req.Question,
	}
}

// TryBuildErrorFromRaw attempts to construct an error response from bytes
// that failed full parsing, by recovering just the header and (if present)
// the first question. Returns nil if even the header cannot be read, in
// which case the caller has nothing to reply with.
func TryBuildErrorFromRaw(reqBytes []byte, rcode RCode) []byte {
	off := 0
	h, err := ParseHeader(reqBytes, &off)
	if err != nil {
		return nil
	}

	var questions []Question
	if h.QDCount > 0 {
		q, err := parseQuestion(reqBytes, &off)
		if err == nil {
			questions = []Question{q}
		}
	}

	resp := Message{
		ID:               h.ID,
		Response:         true,
		Opcode:           (h.Flags & OpcodeMask) >> 11,
		RecursionDesired: h.Flags&RDFlag != 0,
		RCode:            rcode,
		Question:         questions,
	}
	b, err := resp.Marshal()
	if err != nil {
		return nil
	}
	return b
}
