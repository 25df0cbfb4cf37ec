package parser

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHashingEmbedderValidatesDimensions(t *testing.T) {
	_, err := NewHashingEmbedder(0, "")
	assert.Error(t, err)

	h, err := NewHashingEmbedder(64, "")
	require.NoError(t, err)
	assert.Equal(t, 64, h.GetDimensions())
	assert.Equal(t, "hashing-v1", h.Model())
}

func TestHashingEmbedderDeterministicAndNormalized(t *testing.T) {
	h, err := NewHashingEmbedder(128, "test")
	require.NoError(t, err)

	vectors, err := h.EmbedStrings(context.Background(), []string{
		"Senior Python developer with SQL",
		"Senior Python developer with SQL",
		"",
	})
	require.NoError(t, err)
	require.Len(t, vectors, 3)

	assert.Equal(t, vectors[0], vectors[1], "相同文本应得到相同向量")
	assert.Len(t, vectors[0], 128)

	var norm float64
	for _, v := range vectors[0] {
		norm += v * v
	}
	assert.InDelta(t, 1.0, math.Sqrt(norm), 1e-9)

	for _, v := range vectors[2] {
		assert.Zero(t, v, "空文本应得到零向量")
	}
}

func TestHashingEmbedderCancelledContext(t *testing.T) {
	h, err := NewHashingEmbedder(16, "")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = h.EmbedStrings(ctx, []string{"a"})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestTokenizeKeepsLanguageSymbols(t *testing.T) {
	assert.Equal(t, []string{"c++", "and", "c#", "devops"}, tokenize("C++, and C#; DevOps!"))
	assert.Empty(t, tokenize("  ...  "))
}
