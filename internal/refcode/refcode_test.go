package refcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncode_KnownValue(t *testing.T) {
	id := "24f2e615551e03e06032826bc5aa2eff701091fc9f4dd0c520a4969f141feff5"
	assert.Equal(t, uint32(4422), Encode(id))
	assert.Equal(t, "#4422", Format(id))
}

func TestEncode_Deterministic(t *testing.T) {
	id := "916fd1e7d9d2b3c81181663d1a08c1d79b6e6f74bbbbdf166c6234b2d48f6514"
	assert.Equal(t, Encode(id), Encode(id))
}

func TestEncode_Bounded(t *testing.T) {
	tests := []string{
		"",
		"0",
		strings.Repeat("f", 64),
		strings.Repeat("ü", 5000),
		strings.Repeat("\U0010FFFF", 1000),
	}
	for _, id := range tests {
		got := Encode(id)
		assert.Less(t, got, uint32(Modulus))
	}
	assert.Equal(t, uint32(0), Encode(""))
	assert.Equal(t, uint32('0'), Encode("0"))
}

func TestEncode_CodePointsNotBytes(t *testing.T) {
	// "é" is one code point (233) encoded as two bytes.
	assert.Equal(t, uint32(233), Encode("é"))
}

func TestCanonical(t *testing.T) {
	assert.Equal(t, "abcdef", Canonical("  ABCdef\n"))
}
