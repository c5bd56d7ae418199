package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateJoinCode(t *testing.T) {
	for i := 0; i < 200; i++ {
		code := GenerateJoinCode()
		assert.Len(t, code, JoinCodeLength)
		for _, r := range code {
			assert.Contains(t, JoinCodeAlphabet, string(r))
		}
	}
}

func TestJoinCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, forbidden := range []string{"0", "O", "1", "I"} {
		assert.NotContains(t, JoinCodeAlphabet, forbidden)
	}
}

func TestJoinCodeMatches(t *testing.T) {
	assert.True(t, JoinCodeMatches("ab12cd", "AB12CD"))
	assert.True(t, JoinCodeMatches("  AB12CD  ", "AB12CD"))
	assert.True(t, JoinCodeMatches("Ab12Cd", "ab12cd"))
	assert.False(t, JoinCodeMatches("AB12CE", "AB12CD"))
	assert.False(t, JoinCodeMatches("", "AB12CD"))
	// An unset stored code never matches.
	assert.False(t, JoinCodeMatches("", ""))
}

func TestNormalizeJoinCode(t *testing.T) {
	assert.Equal(t, "AB12CD", NormalizeJoinCode(" ab12cd "))
	assert.True(t, strings.ToUpper(NormalizeJoinCode("xyz")) == NormalizeJoinCode("xyz"))
}
