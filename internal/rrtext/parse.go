// Package rrtext implements the DNS master-file text format (RFC 1035
// Section 5): one resource record per logical line, BIND's suffixed-TTL and
// reversed class/type extensions, and parenthesized multi-line records.
//
// This package parses and renders individual files; directive-driven file
// inclusion ($INCLUDE) and filesystem traversal belong to the loader
// package, which drives ParseText once per file and threads $ORIGIN/$TTL
// state across the include graph.
//
// Error Handling:
//
// All errors are wrapped with context using fmt.Errorf("...: %w", err).
package rrtext

import (
	"bufio"
	"fmt"
	"net/netip"
	"strconv"
	"strings"

	"github.com/novator24/gonsd/internal/wire"
)

var ErrSyntax = fmt.Errorf("rrtext syntax error")

// IncludeDirective is a $INCLUDE line encountered mid-parse. The loader
// resolves Path relative to the including file's directory and recurses.
type IncludeDirective struct {
	Line int
	Path string
	// Origin is the origin argument given on the $INCLUDE line itself or,
	// if the directive carried none, the origin in effect at that line,
	// which the included file inherits.
	Origin string
}

// ParseResult is the outcome of parsing one master file.
type ParseResult struct {
	Origin     string
	DefaultTTL uint32
	Records    []wire.RR
	Includes   []IncludeDirective
}

// ParseText parses master-file text starting from the given origin and
// default TTL (both may be "" / 0 if the caller has none yet; an RR line
// reached before an origin is established is a parse error).
func ParseText(text string, origin string, defaultTTL uint32) (*ParseResult, error) {
	res := &ParseResult{Origin: origin, DefaultTTL: defaultTTL}
	lastOwner := ""

	lines, err := logicalLines(text)
	if err != nil {
		return nil, err
	}

	for lineNo, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		upper := strings.ToUpper(line)

		switch {
		case strings.HasPrefix(upper, "$ORIGIN"):
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return nil, fmt.Errorf("%w: line %d: invalid $ORIGIN directive", ErrSyntax, lineNo+1)
			}
			res.Origin = normalizeFQDN(parts[1], "")
			continue

		case strings.HasPrefix(upper, "$TTL"):
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return nil, fmt.Errorf("%w: line %d: invalid $TTL directive", ErrSyntax, lineNo+1)
			}
			ttl, err := parseTTL(parts[1])
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
			}
			res.DefaultTTL = ttl
			continue

		case strings.HasPrefix(upper, "$INCLUDE"):
			parts := strings.Fields(line)
			if len(parts) < 2 {
				return nil, fmt.Errorf("%w: line %d: invalid $INCLUDE directive", ErrSyntax, lineNo+1)
			}
			inc := IncludeDirective{Line: lineNo + 1, Path: parts[1], Origin: res.Origin}
			if len(parts) >= 3 {
				inc.Origin = normalizeFQDN(parts[2], "")
			}
			res.Includes = append(res.Includes, inc)
			continue
		}

		if res.Origin == "" {
			return nil, fmt.Errorf("%w: line %d: record precedes $ORIGIN", ErrSyntax, lineNo+1)
		}

		tokens := strings.Fields(line)
		owner, rest, err := parseOwner(tokens, res.Origin, lastOwner)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}
		lastOwner = owner

		ttl, class, typeTok, rdata, err := parseRRFields(rest, res.DefaultTTL)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}

		data, err := parseRData(typeTok, rdata, res.Origin)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo+1, err)
		}

		res.Records = append(res.Records, wire.RR{Owner: owner, Class: class, TTL: ttl, Data: data})
	}

	return res, nil
}

// --- line reassembly ---

func logicalLines(text string) ([]string, error) {
	var (
		buf   []string
		depth int
		out   []string
	)
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for scanner.Scan() {
		raw := scanner.Text()
		line := stripComment(raw)
		line = strings.TrimRight(line, " \t\r\n")
		if strings.TrimSpace(line) == "" && depth == 0 {
			continue
		}
		depth += strings.Count(line, "(")
		depth -= strings.Count(line, ")")
		buf = append(buf, line)
		if depth <= 0 {
			if depth < 0 {
				return nil, fmt.Errorf("%w: unmatched ')'", ErrSyntax)
			}
			joined := strings.Join(compactFields(buf), " ")
			buf = buf[:0]
			joined = strings.NewReplacer("(", " ", ")", " ").Replace(joined)
			joined = strings.TrimSpace(joined)
			if joined != "" {
				out = append(out, joined)
			}
		}
	}
	if len(buf) > 0 {
		return nil, fmt.Errorf("%w: unterminated parenthesized record", ErrSyntax)
	}
	return out, nil
}

func compactFields(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, s := range lines {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func stripComment(line string) string {
	if i := strings.IndexByte(line, ';'); i >= 0 {
		return line[:i]
	}
	return line
}

// --- owner / TTL / class / type tokens ---

func normalizeFQDN(name, origin string) string {
	name = strings.TrimSpace(name)
	trimmedOrigin := strings.TrimSuffix(origin, ".")
	if name == "@" {
		if trimmedOrigin == "" {
			return "."
		}
		return trimmedOrigin + "."
	}
	if strings.HasSuffix(name, ".") {
		return name
	}
	if trimmedOrigin == "" {
		return name + "."
	}
	return name + "." + trimmedOrigin + "."
}

func parseOwner(tokens []string, origin, lastOwner string) (string, []string, error) {
	if len(tokens) == 0 {
		return "", nil, fmt.Errorf("%w: empty record", ErrSyntax)
	}
	first := tokens[0]
	if looksLikeTTL(first) || looksLikeClass(first) || looksLikeType(first) {
		if lastOwner == "" {
			return "", nil, fmt.Errorf("%w: owner name omitted on first record", ErrSyntax)
		}
		return lastOwner, tokens, nil
	}
	if first == "." {
		return normalizeFQDN("@", origin), tokens[1:], nil
	}
	return normalizeFQDN(first, origin), tokens[1:], nil
}

func looksLikeTTL(tok string) bool {
	if tok == "" {
		return false
	}
	for _, c := range tok {
		if c >= '0' && c <= '9' {
			continue
		}
		switch c {
		case 's', 'S', 'm', 'M', 'h', 'H', 'd', 'D', 'w', 'W':
			continue
		default:
			return false
		}
	}
	return tok[0] >= '0' && tok[0] <= '9'
}

func looksLikeClass(tok string) bool {
	switch strings.ToUpper(tok) {
	case "IN", "CH", "HS":
		return true
	default:
		return false
	}
}

func looksLikeType(tok string) bool {
	_, ok := typeByName(strings.ToUpper(tok))
	return ok
}

func typeByName(s string) (wire.Type, bool) {
	switch s {
	case "A":
		return wire.TypeA, true
	case "AAAA":
		return wire.TypeAAAA, true
	case "NS":
		return wire.TypeNS, true
	case "CNAME":
		return wire.TypeCNAME, true
	case "SOA":
		return wire.TypeSOA, true
	case "PTR":
		return wire.TypePTR, true
	case "HINFO":
		return wire.TypeHINFO, true
	case "MX":
		return wire.TypeMX, true
	case "TXT":
		return wire.TypeTXT, true
	default:
		return 0, false
	}
}

func classByName(s string) (wire.Class, bool) {
	switch s {
	case "IN":
		return wire.ClassIN, true
	case "CH":
		return wire.ClassCH, true
	case "HS":
		return wire.ClassHS, true
	default:
		return 0, false
	}
}

// parseRRFields consumes the TTL, class, and type tokens (in either order,
// per BIND compatibility), returning the remaining tokens joined as the raw
// rdata string.
func parseRRFields(rest []string, defaultTTL uint32) (ttl uint32, class wire.Class, typeTok string, rdata string, err error) {
	ttl = defaultTTL
	class = wire.ClassIN
	var haveTTL, haveClass bool
	idx := 0

	for idx < len(rest) {
		tok := rest[idx]
		if !haveTTL && looksLikeTTL(tok) {
			n, e := parseTTL(tok)
			if e != nil {
				return 0, 0, "", "", e
			}
			ttl, haveTTL = n, true
			idx++
			continue
		}
		if !haveClass {
			if c, ok := classByName(strings.ToUpper(tok)); ok {
				class, haveClass = c, true
				idx++
				continue
			}
		}
		break
	}
	if idx >= len(rest) {
		return 0, 0, "", "", fmt.Errorf("%w: missing record type", ErrSyntax)
	}
	typeTok = strings.ToUpper(rest[idx])
	idx++
	if !haveClass && idx < len(rest) {
		// BIND also accepts the class after the type ("A IN").
		if c, ok := classByName(strings.ToUpper(rest[idx])); ok {
			class = c
			idx++
		}
	}
	if idx >= len(rest) {
		return 0, 0, "", "", fmt.Errorf("%w: missing rdata", ErrSyntax)
	}
	return ttl, class, typeTok, strings.Join(rest[idx:], " "), nil
}

// parseTTL accepts a plain integer or BIND's suffixed-piece form
// (e.g. "1h30m").
func parseTTL(tok string) (uint32, error) {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return 0, fmt.Errorf("%w: empty TTL", ErrSyntax)
	}
	var total uint64
	num := ""
	flush := func(unit byte) error {
		if num == "" {
			return nil
		}
		n, err := strconv.ParseUint(num, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid TTL number %q", ErrSyntax, num)
		}
		num = ""
		var mul uint64
		switch unit {
		case 's', 0:
			mul = 1
		case 'm':
			mul = 60
		case 'h':
			mul = 3600
		case 'd':
			mul = 86400
		case 'w':
			mul = 604800
		default:
			return fmt.Errorf("%w: unknown TTL unit %q", ErrSyntax, string(unit))
		}
		total += n * mul
		return nil
	}
	for i := 0; i < len(tok); i++ {
		c := tok[i]
		if c >= '0' && c <= '9' {
			num += string(c)
			continue
		}
		if err := flush(lower(c)); err != nil {
			return 0, err
		}
	}
	if err := flush(0); err != nil {
		return 0, err
	}
	if total > uint64(^uint32(0)) {
		return 0, fmt.Errorf("%w: TTL too large", ErrSyntax)
	}
	return uint32(total), nil
}

func lower(b byte) byte {
	if b >= 'A' && b <= 'Z' {
		return b + ('a' - 'A')
	}
	return b
}

// --- rdata grammars ---

func parseRData(typeTok, rdata, origin string) (wire.RData, error) {
	typ, ok := typeByName(typeTok)
	if !ok {
		return nil, fmt.Errorf("%w: unknown record type %q", ErrSyntax, typeTok)
	}
	switch typ {
	case wire.TypeA:
		addr, err := netip.ParseAddr(strings.TrimSpace(rdata))
		if err != nil || !addr.Is4() {
			return nil, fmt.Errorf("%w: invalid A address %q", ErrSyntax, rdata)
		}
		return wire.AData{IP: addr.As4()}, nil

	case wire.TypeAAAA:
		addr, err := netip.ParseAddr(strings.TrimSpace(rdata))
		if err != nil || !addr.Is6() {
			return nil, fmt.Errorf("%w: invalid AAAA address %q", ErrSyntax, rdata)
		}
		return wire.AAAAData{IP: addr.As16()}, nil

	case wire.TypeNS, wire.TypeCNAME, wire.TypePTR:
		return wire.NameData{Target: normalizeFQDN(strings.TrimSpace(rdata), origin), RRType: typ}, nil

	case wire.TypeMX:
		parts := strings.Fields(rdata)
		if len(parts) != 2 {
			return nil, fmt.Errorf("%w: MX rdata must be '<preference> <exchange>'", ErrSyntax)
		}
		pref, err := strconv.ParseUint(parts[0], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid MX preference %q", ErrSyntax, parts[0])
		}
		return wire.MXData{Preference: uint16(pref), Exchange: normalizeFQDN(parts[1], origin)}, nil

	case wire.TypeHINFO:
		parts, err := splitQuotedFields(rdata)
		if err != nil || len(parts) != 2 {
			return nil, fmt.Errorf("%w: HINFO rdata must be '<cpu> <os>'", ErrSyntax)
		}
		return wire.HINFOData{CPU: parts[0], OS: parts[1]}, nil

	case wire.TypeSOA:
		return parseSOA(rdata, origin)

	case wire.TypeTXT:
		return wire.TXTData{Text: strings.Trim(strings.TrimSpace(rdata), `"`)}, nil

	default:
		return nil, fmt.Errorf("%w: unsupported record type %s", ErrSyntax, typ)
	}
}

func parseSOA(rdata, origin string) (wire.RData, error) {
	parts := strings.Fields(rdata)
	if len(parts) != 7 {
		return nil, fmt.Errorf("%w: SOA rdata must be 'mname rname serial refresh retry expire minimum'", ErrSyntax)
	}
	serial, err := strconv.ParseUint(parts[2], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid SOA serial", ErrSyntax)
	}
	refresh, err := parseTTL(parts[3])
	if err != nil {
		return nil, fmt.Errorf("soa refresh: %w", err)
	}
	retry, err := parseTTL(parts[4])
	if err != nil {
		return nil, fmt.Errorf("soa retry: %w", err)
	}
	expire, err := parseTTL(parts[5])
	if err != nil {
		return nil, fmt.Errorf("soa expire: %w", err)
	}
	minimum, err := parseTTL(parts[6])
	if err != nil {
		return nil, fmt.Errorf("soa minimum: %w", err)
	}
	return wire.SOAData{
		MName:   normalizeFQDN(parts[0], origin),
		RName:   normalizeFQDN(parts[1], origin),
		Serial:  uint32(serial),
		Refresh: refresh,
		Retry:   retry,
		Expire:  expire,
		Minimum: minimum,
	}, nil
}

// splitQuotedFields splits on whitespace but keeps a double-quoted span
// together as one field (BIND allows HINFO fields to be quoted).
func splitQuotedFields(s string) ([]string, error) {
	var fields []string
	var cur strings.Builder
	inQuote := false
	flush := func() {
		if cur.Len() > 0 {
			fields = append(fields, cur.String())
			cur.Reset()
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '"':
			inQuote = !inQuote
		case c == ' ' || c == '\t':
			if inQuote {
				cur.WriteByte(c)
			} else {
				flush()
			}
		default:
			cur.WriteByte(c)
		}
	}
	if inQuote {
		return nil, fmt.Errorf("%w: unterminated quoted string", ErrSyntax)
	}
	flush()
	return fields, nil
}
