package blockchain

import "strings"

// ZeroPrefix returns the hexadecimal prefix a digest must carry to
// satisfy the given difficulty. Difficulty is expressed in bits and
// must be divisible by 4.
func ZeroPrefix(bits int) string {
	return strings.Repeat("0", bits/4)
}

// MeetsDifficulty reports whether the digest has at least bits/4
// leading zero hex characters.
func (id BlockID) MeetsDifficulty(bits int) bool {
	return strings.HasPrefix(string(id), ZeroPrefix(bits))
}
