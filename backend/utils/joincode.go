package utils

import (
	"math/rand"
	"strings"
	"time"
)

// JoinCodeAlphabet omits 0/O and 1/I so codes survive being read aloud
// or copied by hand.
const JoinCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// JoinCodeLength is the fixed code size.
const JoinCodeLength = 6

var joinCodeRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// GenerateJoinCode returns a fresh 6-character join code.
func GenerateJoinCode() string {
	var b strings.Builder
	for i := 0; i < JoinCodeLength; i++ {
		b.WriteByte(JoinCodeAlphabet[joinCodeRand.Intn(len(JoinCodeAlphabet))])
	}
	return b.String()
}

// NormalizeJoinCode prepares user input for the case-insensitive compare.
func NormalizeJoinCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// JoinCodeMatches compares user input against the stored code.
func JoinCodeMatches(input, stored string) bool {
	return stored != "" && NormalizeJoinCode(input) == NormalizeJoinCode(stored)
}
