package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeTranscript(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "collapses internal whitespace",
			in:   "Ramesh  ko   200 rupaye udhaar",
			want: "ramesh ko 200 rupaye udhaar",
		},
		{
			name: "trims and lowercases",
			in:   "  DO KILO Chawal Becha  ",
			want: "do kilo chawal becha",
		},
		{
			name: "tabs and newlines",
			in:   "paanch\tkilo\natta",
			want: "paanch kilo atta",
		},
		{
			name: "empty",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeTranscript(tt.in))
		})
	}
}

func TestCalculateTranscriptHash(t *testing.T) {
	h1 := CalculateTranscriptHash("Ramesh ko 200 rupaye udhaar")
	h2 := CalculateTranscriptHash("  ramesh   KO 200 rupaye   udhaar ")
	h3 := CalculateTranscriptHash("ramesh ko 300 rupaye udhaar")

	assert.Len(t, h1, 64)
	assert.Equal(t, h1, h2, "normalization-equivalent transcripts must hash identically")
	assert.NotEqual(t, h1, h3)
	assert.Regexp(t, "^[0-9a-f]{64}$", h1)
}

func TestCalculateBatchHash(t *testing.T) {
	h1 := CalculateBatchHash("shop-1", "2026-08-30", 20000, 3)
	h2 := CalculateBatchHash("shop-1", "2026-08-30", 20000, 3)
	assert.Equal(t, h1, h2, "identical inputs must produce an identical batch hash")
	assert.Len(t, h1, 64)

	assert.NotEqual(t, h1, CalculateBatchHash("shop-2", "2026-08-30", 20000, 3))
	assert.NotEqual(t, h1, CalculateBatchHash("shop-1", "2026-08-31", 20000, 3))
	assert.NotEqual(t, h1, CalculateBatchHash("shop-1", "2026-08-30", 20001, 3))
	assert.NotEqual(t, h1, CalculateBatchHash("shop-1", "2026-08-30", 20000, 4))
}

func TestGenerateSecureToken(t *testing.T) {
	token, err := GenerateSecureToken(16)
	require.NoError(t, err)
	assert.Len(t, token, 32)

	_, err = GenerateSecureToken(0)
	assert.Error(t, err)
}
