package keygen

import (
	"context"
	"fmt"
)

// Fixed returns a deterministic generator suite for tests: key pairs, short
// ids and UUIDs are derived from incrementing counters. Not safe for
// concurrent use.
func Fixed() Generators {
	return Generators{
		Keys:     &FixedKeys{},
		ShortIDs: &FixedShortIDs{},
		UUIDs:    &FixedUUIDs{},
	}
}

// FixedKeys yields key pairs priv-1/pub-1, priv-2/pub-2, ...
type FixedKeys struct{ n int }

func (f *FixedKeys) Generate(_ context.Context) (string, string, error) {
	f.n++
	return fmt.Sprintf("priv-%d", f.n), fmt.Sprintf("pub-%d", f.n), nil
}

// FixedShortIDs yields zero-padded hex counters of the requested length.
type FixedShortIDs struct{ n int }

func (f *FixedShortIDs) Generate(length int) (string, error) {
	f.n++
	if length <= 0 {
		length = DefaultShortIDLength
	}
	s := fmt.Sprintf("%0*x", length, f.n)
	return s[len(s)-length:], nil
}

// FixedUUIDs yields well-formed, sequence-numbered UUID strings.
type FixedUUIDs struct{ n int }

func (f *FixedUUIDs) Generate() (string, error) {
	f.n++
	return fmt.Sprintf("00000000-0000-4000-8000-%012d", f.n), nil
}
