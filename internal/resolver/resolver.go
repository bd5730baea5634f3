// Package resolver implements the local DNS resolver: a stateless adapter
// that answers a Question purely from the RR cache, never touching the
// network. It locks every RR it returns so the caller can safely hold
// references until the response has been marshaled, then unlock.
//
// Error Handling:
//
// The resolver never returns an error for a well-formed question; instead
// it reports one of four Outcome values describing how completely the
// question was answered.
package resolver

import (
	"github.com/novator24/gonsd/internal/rrcache"
	"github.com/novator24/gonsd/internal/wire"
)

// Outcome classifies how completely a question was answered (spec 4.4).
type Outcome int

const (
	// Success: the owner held matching data directly; Answers is the full
	// answer set.
	Success Outcome = iota
	// PartialData: either a CNAME chain was followed to reach the answer,
	// or no data existed and an NS referral was placed in Authority.
	PartialData
	// Negative: a negative-cache entry covers this (owner,type,class).
	Negative
	// NoData: nothing matched and the owner hierarchy walk reached the
	// root without finding an NS set either.
	NoData
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case PartialData:
		return "partial-data"
	case Negative:
		return "negative"
	case NoData:
		return "no-data"
	default:
		return "unknown"
	}
}

// Result is the accumulated outcome of resolving one question.
type Result struct {
	Outcome   Outcome
	Answers   []wire.RR
	Authority []wire.RR
	// Locked holds every cache Handle this resolution locked, so the
	// caller can Unlock them once the response has been built.
	Locked []rrcache.Handle
}

const maxCNAMEHops = 16

// Resolve answers q using only cache as a data source (spec: Local
// Resolver). now is used both to compute served record TTLs and as the
// cache's notion of current time.
func Resolve(cache *rrcache.Cache, q wire.Question, now uint64) Result {
	cache.Flush(now)

	var res Result
	visited := make(map[string]struct{})
	owner := q.Name

	for hop := 0; ; hop++ {
		folded := wire.FoldName(owner)
		if _, seen := visited[folded]; seen || hop > maxCNAMEHops {
			res.Outcome = NoData
			return res
		}
		visited[folded] = struct{}{}

		list := cache.LookupList(owner, wire.TypeWild, q.Class)
		if len(list) == 0 {
			if cache.IsNegative(owner, q.Type, q.Class) {
				res.Outcome = Negative
				return res
			}
			return resolveViaAuthority(cache, owner, now, res)
		}

		var cnameTarget string
		sawCNAME := false
		for _, h := range list {
			rr, ok := cache.RR(h, now)
			if !ok {
				continue
			}
			cache.Lock(h)
			res.Locked = append(res.Locked, h)
			res.Answers = append(res.Answers, rr)
			if rr.Type() == wire.TypeCNAME {
				sawCNAME = true
				if nd, ok := rr.Data.(wire.NameData); ok {
					cnameTarget = nd.Target
				}
			}
		}

		if sawCNAME && q.Type != wire.TypeCNAME && cnameTarget != "" {
			owner = cnameTarget
			res.Outcome = PartialData
			continue
		}

		if res.Outcome != PartialData {
			res.Outcome = Success
		}
		return res
	}
}

// resolveViaAuthority walks owner's hierarchy one label at a time looking
// for an NS set, locking and returning it as a referral. Reaching the root
// without finding one is NoData.
func resolveViaAuthority(cache *rrcache.Cache, owner string, now uint64, res Result) Result {
	name := wire.FoldName(owner)
	for {
		nsList := cache.LookupList(name, wire.TypeNS, wire.ClassIN)
		if len(nsList) > 0 {
			for _, h := range nsList {
				rr, ok := cache.RR(h, now)
				if !ok {
					continue
				}
				cache.Lock(h)
				res.Locked = append(res.Locked, h)
				res.Authority = append(res.Authority, rr)
			}
			res.Outcome = PartialData
			return res
		}

		next, ok := rrcache.StripLeadingLabel(name)
		if !ok {
			res.Outcome = NoData
			return res
		}
		name = next
	}
}

// Unlock releases every handle Resolve locked. Call this once a response
// built from res has been fully marshaled.
func Unlock(cache *rrcache.Cache, res Result) {
	for _, h := range res.Locked {
		cache.Unlock(h)
	}
}
