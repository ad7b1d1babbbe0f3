package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newViewMirror() *Mirror[viewRow] {
	return NewMirror(func(v viewRow) int64 { return v.ID })
}

func TestMirrorAppendGrowsByOne(t *testing.T) {
	m := newViewMirror()
	m.Reset([]viewRow{{ID: 1}, {ID: 2}})

	require.NoError(t, m.Append(viewRow{ID: 3, RefName: "Ana"}))

	assert.Equal(t, 3, m.Len())
	got, ok := m.Get(3)
	require.True(t, ok)
	assert.Equal(t, "Ana", got.RefName)
}

func TestMirrorAppendRejectsDuplicateID(t *testing.T) {
	m := newViewMirror()
	m.Reset([]viewRow{{ID: 5}})

	assert.Error(t, m.Append(viewRow{ID: 5}))
	assert.Equal(t, 1, m.Len())
}

func TestMirrorReplacePreservesLengthAndOrder(t *testing.T) {
	m := newViewMirror()
	m.Reset([]viewRow{{ID: 1, RefName: "a"}, {ID: 5, RefName: "b"}, {ID: 9, RefName: "c"}})

	require.True(t, m.Replace(viewRow{ID: 5, RefName: "revised"}))

	records := m.Records()
	require.Len(t, records, 3)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(5), records[1].ID)
	assert.Equal(t, "revised", records[1].RefName)
	assert.Equal(t, int64(9), records[2].ID)
}

func TestMirrorReplaceUnknownID(t *testing.T) {
	m := newViewMirror()
	m.Reset([]viewRow{{ID: 1}})

	assert.False(t, m.Replace(viewRow{ID: 42}))
	assert.Equal(t, 1, m.Len())
}

func TestMirrorRemoveDropsExactlyOne(t *testing.T) {
	m := newViewMirror()
	m.Reset([]viewRow{{ID: 1}, {ID: 5}, {ID: 9}})

	require.True(t, m.Remove(5))

	records := m.Records()
	require.Len(t, records, 2)
	assert.Equal(t, int64(1), records[0].ID)
	assert.Equal(t, int64(9), records[1].ID)

	assert.False(t, m.Remove(5))
}

func TestMirrorRecordsReturnsCopy(t *testing.T) {
	m := newViewMirror()
	m.Reset([]viewRow{{ID: 1, RefName: "a"}})

	records := m.Records()
	records[0].RefName = "mutated"

	got, ok := m.Get(1)
	require.True(t, ok)
	assert.Equal(t, "a", got.RefName)
}
