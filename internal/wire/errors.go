// Package wire implements the DNS binary message format (RFC 1035 Section 4):
// header layout, name compression, and per-type resource-record encoding and
// decoding.
//
// Standards Compliance:
//
//   - RFC 1035: Domain Names - Implementation and Specification (core DNS wire format)
//   - RFC 1034: Domain Names - Concepts and Facilities
//
// Error Handling:
//
// All errors are wrapped with context using fmt.Errorf("...: %w", err).
// This preserves error chains while adding operational context.
package wire

import "errors"

var (
	// ErrParse is the sentinel for malformed or truncated wire-format input.
	// Wrap this with fmt.Errorf("context: %w", ErrParse) to add context.
	ErrParse = errors.New("dns wire parse error")

	// ErrUnsupported is returned by the encoder for record types it
	// deliberately does not serialize (AXFR, MAILB, WKS).
	ErrUnsupported = errors.New("dns wire type unsupported")
)
