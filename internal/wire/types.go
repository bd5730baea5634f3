package wire

import "fmt"

// DNS header flags and masks (RFC 1035 Section 4.1.1).
//
// The header is a 16-bit flags field:
//
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	|QR|   Opcode  |AA|TC|RD|RA|   Z   |   RCODE   |
//	+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+--+
//	 15 14 13 12 11 10  9  8  7  6  5  4  3  2  1  0
const (
	QRFlag     uint16 = 0x8000 // Query/Response: 1 = response, 0 = query
	OpcodeMask uint16 = 0x7800 // bits 14-11, use >>11 to extract
	AAFlag     uint16 = 0x0400 // Authoritative Answer
	TCFlag     uint16 = 0x0200 // Truncation: message was truncated
	RDFlag     uint16 = 0x0100 // Recursion Desired
	RAFlag     uint16 = 0x0080 // Recursion Available
	ZMask      uint16 = 0x0070 // bits 6-4, reserved: write 0, ignore on read
	RCodeMask  uint16 = 0x000F // bits 3-0
)

// Type is a DNS resource-record or query type (RFC 1035 Section 3.2.2).
type Type uint16

const (
	TypeA     Type = 1   // IPv4 address
	TypeNS    Type = 2   // authoritative name server
	TypeCNAME Type = 5   // canonical name (alias)
	TypeSOA   Type = 6   // start of authority
	TypePTR   Type = 12  // domain name pointer
	TypeHINFO Type = 13  // host information
	TypeMX    Type = 15  // mail exchange
	TypeTXT   Type = 16  // text strings
	TypeAAAA  Type = 28  // IPv6 address (RFC 3596)
	TypeAXFR  Type = 252 // zone transfer (query-only, unsupported)
	TypeMAILB Type = 253 // mailbox-related records (query-only, unsupported)
	TypeWild  Type = 255 // "*", matches any type in a query
)

func (t Type) String() string {
	switch t {
	case TypeA:
		return "A"
	case TypeNS:
		return "NS"
	case TypeCNAME:
		return "CNAME"
	case TypeSOA:
		return "SOA"
	case TypePTR:
		return "PTR"
	case TypeHINFO:
		return "HINFO"
	case TypeMX:
		return "MX"
	case TypeTXT:
		return "TXT"
	case TypeAAAA:
		return "AAAA"
	case TypeAXFR:
		return "AXFR"
	case TypeMAILB:
		return "MAILB"
	case TypeWild:
		return "*"
	default:
		return fmt.Sprintf("TYPE%d", uint16(t))
	}
}

// Class is a DNS resource-record class (RFC 1035 Section 3.2.4).
type Class uint16

const (
	ClassIN   Class = 1   // Internet
	ClassCH   Class = 3   // Chaos
	ClassHS   Class = 4   // Hesiod
	ClassWild Class = 255 // "*", matches any class in a query
)

func (c Class) String() string {
	switch c {
	case ClassIN:
		return "IN"
	case ClassCH:
		return "CH"
	case ClassHS:
		return "HS"
	case ClassWild:
		return "*"
	default:
		return fmt.Sprintf("CLASS%d", uint16(c))
	}
}

// RCode is a DNS response code (RFC 1035 Section 4.1.1).
type RCode uint16

const (
	RCodeNone      RCode = 0 // no error
	RCodeFormat    RCode = 1 // format error
	RCodeServFail  RCode = 2 // server failure
	RCodeNameError RCode = 3 // non-existent domain
	RCodeNotImp    RCode = 4 // not implemented
	RCodeRefused   RCode = 5 // refused by policy
)

// RCodeFromFlags extracts the response code from the header flags field.
func RCodeFromFlags(flags uint16) RCode {
	return RCode(flags & RCodeMask)
}
