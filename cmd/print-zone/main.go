// Command print-zone parses a master file and prints its records in a
// normalized, sorted form, for inspecting what a zone load will produce.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/novator24/gonsd/internal/rrtext"
	"github.com/novator24/gonsd/internal/wire"
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintf(os.Stderr, "Usage: print-zone path/to/zonefile\n")
		os.Exit(2)
	}
	path := os.Args[1]

	text, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read zone: %v\n", err)
		os.Exit(1)
	}

	res, err := rrtext.ParseText(string(text), "", 3600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse zone: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("ORIGIN: %s\n", res.Origin)
	fmt.Printf("DEFAULT_TTL: %d\n", res.DefaultTTL)
	for _, inc := range res.Includes {
		fmt.Printf("INCLUDE: %s (line %d)\n", inc.Path, inc.Line)
	}
	fmt.Println("RECORDS:")

	recs := append([]wire.RR(nil), res.Records...)
	sort.Slice(recs, func(i, j int) bool {
		a, b := recs[i], recs[j]
		if a.Owner != b.Owner {
			return a.Owner < b.Owner
		}
		if a.Type() != b.Type() {
			return a.Type() < b.Type()
		}
		return a.TTL < b.TTL
	})

	for _, rr := range recs {
		line, err := rrtext.Render(rr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "  <unrenderable %s record: %v>\n", rr.Type(), err)
			continue
		}
		fmt.Printf("  %s\n", line)
	}
}
