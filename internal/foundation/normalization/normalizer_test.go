package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type level int

const (
	levelInfo level = iota
	levelDebug
	levelWarn
)

func newLevels() *Normalizer[level] {
	return NewNormalizer(map[string]level{
		"info":  levelInfo,
		"Debug": levelDebug,
		"warn":  levelWarn,
	}, levelInfo)
}

func TestNormalize(t *testing.T) {
	n := newLevels()
	tests := []struct {
		in   string
		want level
	}{
		{"debug", levelDebug},
		{"  WARN ", levelWarn},
		{"", levelInfo},
		{"verbose", levelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, n.Normalize(tt.in))
		})
	}
}

func TestNormalizeWithError(t *testing.T) {
	n := newLevels()

	got, err := n.NormalizeWithError("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, levelDebug, got)

	_, err = n.NormalizeWithError("loud")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "[debug info warn]")
}

func TestValidKeysReturnsCopy(t *testing.T) {
	n := newLevels()
	keys := n.ValidKeys()
	keys[0] = "mutated"
	assert.Equal(t, []string{"debug", "info", "warn"}, n.ValidKeys())
}
