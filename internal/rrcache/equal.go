package rrcache

import "github.com/novator24/gonsd/internal/wire"

// equalRData reports whether a and b are identical records of the same
// variant (spec Section 3 per-variant equality). Embedded domain names are
// compared case-insensitively; every other field must match exactly.
func equalRData(a, b wire.RData) bool {
	if a.Type() != b.Type() {
		return false
	}
	switch av := a.(type) {
	case wire.AData:
		bv := b.(wire.AData)
		return av.IP == bv.IP
	case wire.AAAAData:
		bv := b.(wire.AAAAData)
		return av.IP == bv.IP
	case wire.NameData:
		bv := b.(wire.NameData)
		return wire.FoldName(av.Target) == wire.FoldName(bv.Target)
	case wire.MXData:
		bv := b.(wire.MXData)
		return av.Preference == bv.Preference && wire.FoldName(av.Exchange) == wire.FoldName(bv.Exchange)
	case wire.HINFOData:
		bv := b.(wire.HINFOData)
		return av.CPU == bv.CPU && av.OS == bv.OS
	case wire.SOAData:
		bv := b.(wire.SOAData)
		return av.Serial == bv.Serial && av.Refresh == bv.Refresh && av.Retry == bv.Retry &&
			av.Expire == bv.Expire && av.Minimum == bv.Minimum &&
			wire.FoldName(av.MName) == wire.FoldName(bv.MName) && wire.FoldName(av.RName) == wire.FoldName(bv.RName)
	case wire.TXTData:
		bv := b.(wire.TXTData)
		return av.Text == bv.Text
	case wire.OpaqueData:
		bv := b.(wire.OpaqueData)
		if len(av.Raw) != len(bv.Raw) {
			return false
		}
		for i := range av.Raw {
			if av.Raw[i] != bv.Raw[i] {
				return false
			}
		}
		return true
	default:
		return false
	}
}

// multiValued reports whether the type may have several coexisting positive
// entries at the same owner (A, AAAA, NS). All other types are single-valued:
// a new positive record at the same (owner,type,class) replaces the old one
// rather than joining it.
func multiValued(t wire.Type) bool {
	switch t {
	case wire.TypeA, wire.TypeAAAA, wire.TypeNS:
		return true
	default:
		return false
	}
}

// stringFieldLen estimates the string-field length consumed by a
// single-valued record's rdata, used to decide whether a replacement value
// fits the existing entry's allocation (spec's packed-string slab trick).
func stringFieldLen(d wire.RData) int {
	switch v := d.(type) {
	case wire.NameData:
		return len(v.Target)
	case wire.MXData:
		return len(v.Exchange)
	case wire.HINFOData:
		return len(v.CPU) + len(v.OS)
	case wire.SOAData:
		return len(v.MName) + len(v.RName)
	case wire.TXTData:
		return len(v.Text)
	default:
		return 0
	}
}
