package server

import (
	"context"

	"github.com/novator24/gonsd/internal/pool"
)

// MaxIncomingMessageSize bounds the receive buffer; RFC 1035 limits a
// DNS-over-UDP message to 512 bytes, but a slightly larger buffer absorbs
// malformed/oversized datagrams cleanly instead of silently truncating them
// at the socket layer.
const MaxIncomingMessageSize = 4096

// datagramBufferPool reduces allocations for incoming datagrams. One pool
// is enough because exactly one goroutine (the EventLoop) ever borrows from
// it at a time.
var datagramBufferPool = pool.New(func() *[]byte {
	buf := make([]byte, MaxIncomingMessageSize)
	return &buf
})

// EventLoop is the single-threaded, cooperative query loop (spec: no
// concurrent cache mutation). One goroutine reads a datagram, resolves it
// against the cache, writes the response, and loops — suspending only at
// Transport.ReadDatagram. There is no worker pool and no per-query
// goroutine: the resolver never blocks, so there is nothing to hide a
// timeout behind.
type EventLoop struct {
	Transport Transport
	Handler   *QueryHandler
}

// Run drives the loop until ctx is cancelled, at which point it closes the
// transport (unblocking the in-flight ReadDatagram) and returns nil.
func (e *EventLoop) Run(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		<-ctx.Done()
		_ = e.Transport.Close()
		close(done)
	}()

	for {
		bufPtr := datagramBufferPool.Get()
		buf := *bufPtr

		n, peer, err := e.Transport.ReadDatagram(buf)
		if err != nil {
			datagramBufferPool.Put(bufPtr)
			select {
			case <-done:
				return nil
			default:
				continue
			}
		}

		result := e.Handler.Handle("udp", peer.Addr().String(), buf[:n], e.Transport.MaxDatagramSize())
		datagramBufferPool.Put(bufPtr)

		if len(result.ResponseBytes) == 0 {
			continue
		}
		_ = e.Transport.WriteDatagram(result.ResponseBytes, peer)
	}
}
