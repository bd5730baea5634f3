package server

import (
	"context"
	"net"
	"net/netip"
	"syscall"

	"golang.org/x/sys/unix"
)

// Socket buffer sizes for burst handling (4MB each). Kept from the
// teacher's SO_REUSEPORT tuning even though gonsd runs one socket, not one
// per core — the kernel still benefits from queueing room while the single
// event-loop goroutine is busy with the previous datagram.
const (
	socketRecvBufferSize = 4 * 1024 * 1024
	socketSendBufferSize = 4 * 1024 * 1024
)

// Transport abstracts the datagram I/O a single-threaded event loop needs.
// Exactly one goroutine calls ReadDatagram/WriteDatagram; neither is ever
// called concurrently with itself or the other.
type Transport interface {
	// ReadDatagram blocks until a datagram arrives, writing it into buf and
	// returning its length and sender. This is the loop's only suspension
	// point.
	ReadDatagram(buf []byte) (n int, peer netip.AddrPort, err error)
	// WriteDatagram sends resp to peer.
	WriteDatagram(resp []byte, peer netip.AddrPort) error
	// MaxDatagramSize is the largest response this transport can carry
	// without truncation (512 for classic UDP, larger under EDNS).
	MaxDatagramSize() int
	// Close releases the underlying socket, unblocking a pending
	// ReadDatagram with an error.
	Close() error
}

// UDPTransport is a Transport backed by a single UDP socket.
type UDPTransport struct {
	conn *net.UDPConn
}

// ListenUDP opens a UDP socket at addr with SO_REUSEPORT set (so a second
// instance can share the port during a restart) and large kernel buffers.
func ListenUDP(addr string) (*UDPTransport, error) {
	udpAddr, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, err
	}

	lc := net.ListenConfig{
		Control: func(_, _ string, c syscall.RawConn) error {
			return c.Control(func(fd uintptr) {
				_ = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEPORT, 1)
			})
		},
	}
	pc, err := lc.ListenPacket(context.Background(), "udp", udpAddr.String())
	if err != nil {
		return nil, err
	}
	conn := pc.(*net.UDPConn)
	_ = conn.SetReadBuffer(socketRecvBufferSize)
	_ = conn.SetWriteBuffer(socketSendBufferSize)
	return &UDPTransport{conn: conn}, nil
}

func (t *UDPTransport) ReadDatagram(buf []byte) (int, netip.AddrPort, error) {
	n, addr, err := t.conn.ReadFromUDPAddrPort(buf)
	return n, addr, err
}

func (t *UDPTransport) WriteDatagram(resp []byte, peer netip.AddrPort) error {
	_, err := t.conn.WriteToUDPAddrPort(resp, peer)
	return err
}

// MaxDatagramSize is the classic DNS-over-UDP limit (RFC 1035 Section 2.3.4).
// gonsd does not negotiate EDNS(0), so every response is held to it.
func (t *UDPTransport) MaxDatagramSize() int { return 512 }

func (t *UDPTransport) Close() error { return t.conn.Close() }
