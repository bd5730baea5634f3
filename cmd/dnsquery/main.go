// Command dnsquery sends a single DNS query over UDP and prints the answer
// section, for manually exercising a running gonsd instance.
package main

import (
	"encoding/binary"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/novator24/gonsd/internal/helpers"
	"github.com/novator24/gonsd/internal/wire"
)

func main() {
	var (
		server   = flag.String("server", "127.0.0.1:53", "DNS server HOST:PORT")
		name     = flag.String("name", "example.com", "Query name")
		qtype    = flag.Int("qtype", 1, "Query type (numeric, A=1)")
		timeout  = flag.Duration("timeout", 2*time.Second, "Timeout")
		recvSize = flag.Int("recv-size", 2048, "UDP receive buffer size")
		quiet    = flag.Bool("quiet", false, "Suppress output (exit status indicates success)")
	)
	flag.Parse()

	resp, err := queryUDP(*server, *name, wire.Type(helpers.ClampIntToUint16(*qtype)), *timeout, *recvSize)
	if err != nil {
		if !*quiet {
			fmt.Fprintf(os.Stderr, "dnsquery error: %v\n", err)
		}
		os.Exit(1)
	}
	if *quiet {
		return
	}

	m, err := wire.Parse(resp)
	if err != nil {
		fmt.Printf("received %d bytes (unparseable)\n", len(resp))
		return
	}

	fmt.Printf("id=%d rcode=%d answers=%d authorities=%d additionals=%d\n",
		m.ID, m.RCode, len(m.Answer), len(m.Authority), len(m.Additional))

	rows := make([]string, 0, len(m.Answer))
	for _, rr := range m.Answer {
		rows = append(rows, formatRR(rr))
	}
	sort.Strings(rows)
	for _, s := range rows {
		fmt.Println(s)
	}
}

func queryUDP(server, name string, qtype wire.Type, timeout time.Duration, recvSize int) ([]byte, error) {
	addr, err := net.ResolveUDPAddr("udp", server)
	if err != nil {
		return nil, err
	}
	c, err := net.DialUDP("udp", nil, addr)
	if err != nil {
		return nil, err
	}
	defer c.Close()

	reqBytes, err := buildQuery(name, qtype)
	if err != nil {
		return nil, err
	}
	_ = c.SetDeadline(time.Now().Add(timeout))
	if _, err := c.Write(reqBytes); err != nil {
		return nil, err
	}
	buf := make([]byte, recvSize)
	n, err := c.Read(buf)
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

func buildQuery(name string, qtype wire.Type) ([]byte, error) {
	if strings.TrimSpace(name) == "" {
		return nil, errors.New("name required")
	}
	m := wire.Message{
		ID:               uint16(time.Now().UnixNano()),
		RecursionDesired: true,
		Question:         []wire.Question{{Name: name, Type: qtype, Class: wire.ClassIN}},
	}
	b, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	if id := binary.BigEndian.Uint16(b[0:2]); id == 0 {
		binary.BigEndian.PutUint16(b[0:2], 0x1234)
	}
	return b, nil
}

func formatRR(rr wire.RR) string {
	name := rr.Owner
	if name == "" {
		name = "."
	}
	switch d := rr.Data.(type) {
	case wire.AData:
		return fmt.Sprintf("%s %d IN A %d.%d.%d.%d", name, rr.TTL, d.IP[0], d.IP[1], d.IP[2], d.IP[3])
	case wire.AAAAData:
		return fmt.Sprintf("%s %d IN AAAA %s", name, rr.TTL, net.IP(d.IP[:]).String())
	case wire.NameData:
		return fmt.Sprintf("%s %d IN %s %s", name, rr.TTL, d.RRType, d.Target)
	case wire.MXData:
		return fmt.Sprintf("%s %d IN MX %d %s", name, rr.TTL, d.Preference, d.Exchange)
	case wire.TXTData:
		return fmt.Sprintf("%s %d IN TXT %q", name, rr.TTL, d.Text)
	}
	return fmt.Sprintf("%s %d IN %s (unparsed)", name, rr.TTL, rr.Type())
}
