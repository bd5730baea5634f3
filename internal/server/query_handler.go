// Package server drives the DNS protocol loop: parse a request, resolve it
// against the cache, build a response, and hand the encoded bytes back to a
// Transport. A single goroutine owns the cache end to end, per the
// single-threaded cooperative model this package implements — there is no
// per-query goroutine, no worker pool, and no timeout channel, because the
// resolver never performs blocking I/O.
//
// Error Handling:
//
// Request-handling failures never surface as Go errors: a malformed request
// gets a FORMERR reply or none, and an encoding failure is logged and the
// request left unanswered.
package server

import (
	"context"
	"log/slog"

	"github.com/novator24/gonsd/internal/resolver"
	"github.com/novator24/gonsd/internal/rrcache"
	"github.com/novator24/gonsd/internal/wire"
)

// QueryHandler turns request bytes into response bytes using a cache as its
// only data source. It holds no network state and performs no I/O itself.
type QueryHandler struct {
	Logger             *slog.Logger
	Cache              *rrcache.Cache
	Now                func() uint64
	RecursionAvailable bool
}

// HandleResult is the outcome of processing one request.
type HandleResult struct {
	ResponseBytes []byte
	Source        string // "answer", "negative", "referral", "nodata", "formerr", "notimp", "parse-error", "dropped-response"; "-truncated" appended when truncated; "" on encode failure
	Parsed        wire.Message
	ParsedOK      bool
}

// Handle parses reqBytes, resolves the question against the cache, and
// returns the encoded response. maxSize bounds the response (applying
// progressive truncation, per EncodeWithLimit) for the transport's framing
// limit (512 for classic UDP, the full message for TCP/EDNS).
func (h *QueryHandler) Handle(transport, src string, reqBytes []byte, maxSize int) HandleResult {
	req, err := wire.ParseRequestBounded(reqBytes)
	if err != nil {
		return h.handleParseError(reqBytes)
	}
	if req.Response {
		return HandleResult{Parsed: req, ParsedOK: true, Source: "dropped-response"}
	}

	now := h.now()
	resp, source := h.buildResponse(req, now)

	encoded, truncated, err := wire.EncodeWithLimit(resp, maxSize)
	if err != nil {
		h.log(transport, src, req, source, len(reqBytes), err)
		return HandleResult{Parsed: req, ParsedOK: true}
	}
	if truncated {
		source += "-truncated"
	}

	h.log(transport, src, req, source, len(reqBytes), nil)
	return HandleResult{ResponseBytes: encoded, Source: source, Parsed: req, ParsedOK: true}
}

// buildResponse resolves the single question in req and assembles the
// reply. A request with zero or several questions is answered with FORMERR;
// multi-question requests are not resolved.
func (h *QueryHandler) buildResponse(req wire.Message, now uint64) (wire.Message, string) {
	if len(req.Question) != 1 {
		return wire.BuildErrorResponse(req, wire.RCodeFormat), "formerr"
	}
	q := req.Question[0]

	if _, unsupported := unsupportedQueryTypes[q.Type]; unsupported {
		return wire.BuildErrorResponse(req, wire.RCodeNotImp), "notimp"
	}

	res := resolver.Resolve(h.Cache, q, now)
	defer resolver.Unlock(h.Cache, res)

	resp := wire.Message{
		ID:                 req.ID,
		Response:           true,
		Opcode:             req.Opcode,
		RecursionDesired:   req.RecursionDesired,
		RecursionAvailable: h.RecursionAvailable,
		Question:           req.Question,
		Answer:             res.Answers,
		Authority:          res.Authority,
	}

	switch res.Outcome {
	case resolver.Success:
		resp.Authoritative = true
		return resp, "answer"
	case resolver.PartialData:
		return resp, "referral"
	case resolver.Negative:
		resp.Authoritative = true
		resp.RCode = wire.RCodeNameError
		return resp, "negative"
	default: // resolver.NoData
		resp.RCode = wire.RCodeNone
		return resp, "nodata"
	}
}

// unsupportedQueryTypes are rejected with NOTIMP before ever reaching the
// resolver: zone transfer (AXFR) and mailbox (MAILB) lookups.
var unsupportedQueryTypes = map[wire.Type]struct{}{
	wire.TypeAXFR:  {},
	wire.TypeMAILB: {},
}

// handleParseError attempts to build an error response from a malformed
// request, returning FORMERR if the header could be recovered, or a result
// with no response bytes and Source "parse-error" if not.
func (h *QueryHandler) handleParseError(reqBytes []byte) HandleResult {
	resp := wire.TryBuildErrorFromRaw(reqBytes, wire.RCodeFormat)
	if resp == nil {
		return HandleResult{Source: "parse-error"}
	}
	return HandleResult{ResponseBytes: resp, Source: "formerr"}
}

func (h *QueryHandler) now() uint64 {
	if h.Now != nil {
		return h.Now()
	}
	return 0
}

func (h *QueryHandler) log(transport, src string, req wire.Message, source string, reqLen int, err error) {
	if h.Logger == nil {
		return
	}
	qname, qtype := "<no-question>", "-"
	if len(req.Question) > 0 {
		qname = req.Question[0].Name
		qtype = req.Question[0].Type.String()
	}
	if err != nil {
		h.Logger.Error("dns request failed", "transport", transport, "src", src, "id", req.ID,
			"qname", qname, "qtype", qtype, "bytes", reqLen, "err", err)
		return
	}
	if !h.Logger.Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	h.Logger.Debug("dns request", "transport", transport, "src", src, "id", req.ID,
		"qname", qname, "qtype", qtype, "bytes", reqLen, "source", source)
}
