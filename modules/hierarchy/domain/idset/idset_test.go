package idset_test

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/hivehr/hivehr/modules/hierarchy/domain/idset"
)

func TestAdd(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	c := uuid.MustParse("00000000-0000-0000-0000-000000000003")

	var set []uuid.UUID
	set = idset.Add(set, c)
	set = idset.Add(set, a)
	set = idset.Add(set, b)
	require.Equal(t, []uuid.UUID{a, b, c}, set)

	// Duplicates and nil ids are ignored.
	set = idset.Add(set, b)
	set = idset.Add(set, uuid.Nil)
	require.Equal(t, []uuid.UUID{a, b, c}, set)
}

func TestRemove(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	set := idset.Normalize([]uuid.UUID{a, b})

	set = idset.Remove(set, a)
	require.False(t, idset.Contains(set, a))
	require.True(t, idset.Contains(set, b))

	// Removing an absent id is a no-op.
	require.Equal(t, set, idset.Remove(set, uuid.New()))
}

func TestEqual(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	require.True(t, idset.Equal([]uuid.UUID{a, b}, []uuid.UUID{b, a}))
	require.False(t, idset.Equal([]uuid.UUID{a}, []uuid.UUID{b}))
	require.False(t, idset.Equal([]uuid.UUID{a}, []uuid.UUID{a, b}))
	require.True(t, idset.Equal(nil, []uuid.UUID{}))
}

func TestNormalize(t *testing.T) {
	a := uuid.MustParse("00000000-0000-0000-0000-000000000001")
	b := uuid.MustParse("00000000-0000-0000-0000-000000000002")
	got := idset.Normalize([]uuid.UUID{b, a, b, uuid.Nil})
	require.Equal(t, []uuid.UUID{a, b}, got)
}
