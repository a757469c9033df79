package utils

import (
	"sort"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUUIDGenerator_Generate(t *testing.T) {
	g := NewUUIDGenerator()

	id := g.Generate()
	parsed, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(7), parsed.Version())
}

func TestUUIDGenerator_Unique(t *testing.T) {
	g := NewUUIDGenerator()

	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		id := g.Generate()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id: %s", id)
		seen[id] = struct{}{}
	}
}

func TestUUIDGenerator_SortsInCreationOrder(t *testing.T) {
	g := NewUUIDGenerator()

	ids := make([]string, 0, 100)
	for i := 0; i < 100; i++ {
		ids = append(ids, g.Generate())
	}

	assert.True(t, sort.StringsAreSorted(ids),
		"v7 ids must sort lexicographically in creation order")
}
