package glbuild

import (
	"encoding/binary"
	"sort"
	"strings"
)

// TokenSubstitutions maps abstract tokens emitted during code generation, such
// as "$positionWorld", to the concrete identifiers of a target. Tokens are
// replaced in a single late pass over finished source code.
type TokenSubstitutions map[string]string

// Clone returns a copy of ts that may be modified without affecting ts.
func (ts TokenSubstitutions) Clone() TokenSubstitutions {
	clone := make(TokenSubstitutions, len(ts))
	for k, v := range ts {
		clone[k] = v
	}
	return clone
}

// Tokens returns the tokens of ts sorted longest first, then lexically.
// Longest first ordering guarantees a token is never shadowed by one of its prefixes.
func (ts TokenSubstitutions) Tokens() []string {
	tokens := make([]string, 0, len(ts))
	for k := range ts {
		if k != "" {
			tokens = append(tokens, k)
		}
	}
	sort.Slice(tokens, func(i, j int) bool {
		if len(tokens[i]) != len(tokens[j]) {
			return len(tokens[i]) > len(tokens[j])
		}
		return tokens[i] < tokens[j]
	})
	return tokens
}

// Replacer returns a [strings.Replacer] performing all substitutions of ts in one pass.
func (ts TokenSubstitutions) Replacer() *strings.Replacer {
	tokens := ts.Tokens()
	oldnew := make([]string, 0, 2*len(tokens))
	for _, tok := range tokens {
		oldnew = append(oldnew, tok, ts[tok])
	}
	return strings.NewReplacer(oldnew...)
}

// Replace returns s with every token of ts replaced.
func (ts TokenSubstitutions) Replace(s string) string {
	if len(ts) == 0 {
		return s
	}
	return ts.Replacer().Replace(s)
}

// Hash mixes the bytes of b into the in hash and returns the result.
// It is fast and deterministic across platforms, not cryptographic.
func Hash(b []byte, in uint64) uint64 {
	x := in
	for len(b) >= 8 {
		x ^= binary.LittleEndian.Uint64(b)
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
		b = b[8:]
	}
	if len(b) > 0 {
		var buf [8]byte
		copy(buf[:], b)
		x ^= binary.LittleEndian.Uint64(buf[:])
		x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
		x = (x ^ (x >> 27)) * 0x94d049bb133111eb
		x ^= x >> 31
	}
	return x
}
