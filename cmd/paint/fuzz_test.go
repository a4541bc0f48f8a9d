package main

import (
	"strings"
	"testing"
)

// FuzzParseScript tests the script parser with arbitrary input. Accepted
// scripts must reparse to the same operations from their printed form.
// Run with: go test -fuzz=FuzzParseScript -fuzztime=30s ./cmd/paint/
func FuzzParseScript(f *testing.F) {
	// Seed with valid scripts
	f.Add("color #ff0000\nbrush 1\ndown 0 0\nmove 3 0\nup\n")
	f.Add("tool fill\ntolerance 0\nexpand 0\ndown 2 2\n")
	f.Add("# comment\n// comment\n\nundo\nredo\nclear\n")

	// Seed with edge cases
	f.Add("")
	f.Add("down")
	f.Add("DOWN 1 2 3")
	f.Add("\t  size   8\t8  ")
	f.Add("#size 8 8")
	f.Add("\x00\xff")

	f.Fuzz(func(t *testing.T, src string) {
		ops, err := ParseScript(strings.NewReader(src))
		if err != nil {
			return
		}
		for _, op := range ops {
			again, err := ParseScript(strings.NewReader(op.String()))
			if err != nil {
				t.Fatalf("%q: reparse failed: %v", op.String(), err)
			}
			if len(again) != 1 || again[0].Name != op.Name || strings.Join(again[0].Args, " ") != strings.Join(op.Args, " ") {
				t.Fatalf("%q: reparsed as %v", op.String(), again)
			}
		}
	})
}
