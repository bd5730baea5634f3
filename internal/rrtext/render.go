package rrtext

import (
	"fmt"
	"strings"

	"github.com/novator24/gonsd/internal/wire"
)

// Render writes rr as one master-file text line, in the canonical
// "owner ttl class type rdata" field order this package's parser also
// accepts.
func Render(rr wire.RR) (string, error) {
	var b strings.Builder
	b.WriteString(rr.Owner)
	b.WriteByte(' ')
	fmt.Fprintf(&b, "%d", rr.TTL)
	b.WriteByte(' ')
	b.WriteString(rr.Class.String())
	b.WriteByte(' ')
	b.WriteString(rr.Type().String())
	b.WriteByte(' ')

	rdata, err := renderRData(rr.Data)
	if err != nil {
		return "", err
	}
	b.WriteString(rdata)
	return b.String(), nil
}

func renderRData(d wire.RData) (string, error) {
	switch v := d.(type) {
	case wire.AData:
		return fmt.Sprintf("%d.%d.%d.%d", v.IP[0], v.IP[1], v.IP[2], v.IP[3]), nil
	case wire.AAAAData:
		return renderAAAA(v.IP), nil
	case wire.NameData:
		return v.Target, nil
	case wire.MXData:
		return fmt.Sprintf("%d %s", v.Preference, v.Exchange), nil
	case wire.HINFOData:
		return fmt.Sprintf("%q %q", v.CPU, v.OS), nil
	case wire.SOAData:
		return fmt.Sprintf("%s %s %d %d %d %d %d",
			v.MName, v.RName, v.Serial, v.Refresh, v.Retry, v.Expire, v.Minimum), nil
	case wire.TXTData:
		return fmt.Sprintf("%q", v.Text), nil
	default:
		return "", fmt.Errorf("%w: cannot render type %s as text", ErrSyntax, d.Type())
	}
}

func renderAAAA(ip [16]byte) string {
	var words [8]uint16
	for i := range words {
		words[i] = uint16(ip[2*i])<<8 | uint16(ip[2*i+1])
	}
	parts := make([]string, 8)
	for i, w := range words {
		parts[i] = fmt.Sprintf("%x", w)
	}
	return strings.Join(parts, ":")
}
