// Package loader drives the master-file text parser over a filesystem:
// resolving $INCLUDE directives relative to the including file's directory,
// threading $ORIGIN/$TTL state across the include graph, and ingesting
// /etc/hosts-style files. Every loaded record is inserted as both
// authoritative and user-supplied (spec: zone loader lifecycle).
//
// Error Handling:
//
// Errors are wrapped with context using fmt.Errorf("...: %w", err).
package loader

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/novator24/gonsd/internal/rrcache"
	"github.com/novator24/gonsd/internal/rrtext"
	"github.com/novator24/gonsd/internal/wire"
)

// Loader loads master files and hosts files into a Cache.
type Loader struct {
	Cache *rrcache.Cache
	Now   func() uint64
}

// New returns a Loader that inserts records into c, stamping them with
// now() at insertion time.
func New(c *rrcache.Cache, now func() uint64) *Loader {
	return &Loader{Cache: c, Now: now}
}

// LoadZoneFile parses path and every file it transitively $INCLUDEs,
// inserting every record as authoritative and user-supplied.
func (l *Loader) LoadZoneFile(path string) error {
	return l.loadZoneFile(path, "", 0, 0)
}

const maxIncludeDepth = 64

func (l *Loader) loadZoneFile(path, origin string, defaultTTL uint32, depth int) error {
	if depth > maxIncludeDepth {
		return fmt.Errorf("%s: $INCLUDE nesting exceeds %d", path, maxIncludeDepth)
	}

	text, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading zone file %s: %w", path, err)
	}

	res, err := rrtext.ParseText(string(text), origin, defaultTTL)
	if err != nil {
		return fmt.Errorf("parsing zone file %s: %w", path, err)
	}

	now := l.now()
	for _, rr := range res.Records {
		h := l.Cache.Insert(rr, true, now)
		if h.Valid() {
			l.Cache.MarkUser(h)
		}
	}

	dir := filepath.Dir(path)
	for _, inc := range res.Includes {
		incPath := inc.Path
		if !filepath.IsAbs(incPath) {
			incPath = filepath.Join(dir, incPath)
		}
		incOrigin := inc.Origin
		if incOrigin == "" {
			incOrigin = res.Origin
		}
		if err := l.loadZoneFile(incPath, incOrigin, res.DefaultTTL, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (l *Loader) now() uint64 {
	if l.Now != nil {
		return l.Now()
	}
	return 0
}

// LoadHostsFile ingests an /etc/hosts-style file (RFC 952): each
// non-comment, non-blank line is "ip canonical-name alias...". The
// canonical name becomes an A record, each alias a CNAME to the canonical,
// all marked user-supplied. Lines containing "::" are skipped, since IPv6
// is not yet supported. If mayBeMissing, a missing file is not an error.
func (l *Loader) LoadHostsFile(path string, mayBeMissing bool) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) && mayBeMissing {
			return nil
		}
		return fmt.Errorf("opening hosts file %s: %w", path, err)
	}
	defer f.Close()

	now := l.now()
	scanner := bufio.NewScanner(f)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		if err := l.loadHostsLine(scanner.Text(), now); err != nil {
			return fmt.Errorf("%s:%d: %w", path, lineNo, err)
		}
	}
	return scanner.Err()
}

func (l *Loader) loadHostsLine(line string, now uint64) error {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return nil
	}
	if strings.Contains(line, "::") {
		return nil
	}

	fields := strings.Fields(line)
	if len(fields) < 2 {
		return fmt.Errorf("expected 'ip canonical-name [alias...]'")
	}
	ip, ok := parseIPv4(fields[0])
	if !ok {
		return fmt.Errorf("invalid IPv4 address %q", fields[0])
	}

	const hostsTTL = 1000
	canon := dotted(fields[1])

	h := l.Cache.Insert(wire.RR{Owner: canon, Class: wire.ClassIN, TTL: hostsTTL, Data: wire.AData{IP: ip}}, false, now)
	if h.Valid() {
		l.Cache.MarkUser(h)
	}

	for _, alias := range fields[2:] {
		h := l.Cache.Insert(wire.RR{
			Owner: dotted(alias), Class: wire.ClassIN, TTL: hostsTTL,
			Data: wire.NameData{Target: canon, RRType: wire.TypeCNAME},
		}, false, now)
		if h.Valid() {
			l.Cache.MarkUser(h)
		}
	}
	return nil
}

func dotted(name string) string {
	if strings.HasSuffix(name, ".") {
		return name
	}
	return name + "."
}

func parseIPv4(s string) ([4]byte, bool) {
	var out [4]byte
	parts := strings.Split(s, ".")
	if len(parts) != 4 {
		return out, false
	}
	for i, p := range parts {
		n := 0
		if p == "" || len(p) > 3 {
			return out, false
		}
		for _, c := range p {
			if c < '0' || c > '9' {
				return out, false
			}
			n = n*10 + int(c-'0')
		}
		if n > 255 {
			return out, false
		}
		out[i] = byte(n)
	}
	return out, true
}
