package screen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type refRow struct {
	ID   int64
	Name string
}

type primaryRow struct {
	ID    int64
	RefID int64
}

type viewRow struct {
	ID      int64
	RefName string
}

func joinView(p primaryRow, r refRow, ok bool) viewRow {
	return viewRow{ID: p.ID, RefName: DisplayOr(r.Name, ok)}
}

func TestResolveJoinsByExactID(t *testing.T) {
	refs := Index([]refRow{{ID: 7, Name: "Ana"}, {ID: 8, Name: "Luis"}}, func(r refRow) int64 { return r.ID })
	primary := []primaryRow{{ID: 1, RefID: 7}, {ID: 2, RefID: 8}}

	out := Resolve(primary, refs, func(p primaryRow) int64 { return p.RefID }, joinView)

	require.Len(t, out, 2)
	assert.Equal(t, "Ana", out[0].RefName)
	assert.Equal(t, "Luis", out[1].RefName)
}

func TestResolveMissingReferenceGetsSentinel(t *testing.T) {
	refs := Index([]refRow{{ID: 7, Name: "Ana"}}, func(r refRow) int64 { return r.ID })
	primary := []primaryRow{{ID: 1, RefID: 99}}

	out := Resolve(primary, refs, func(p primaryRow) int64 { return p.RefID }, joinView)

	require.Len(t, out, 1)
	assert.Equal(t, Missing, out[0].RefName)
}

func TestResolveKeepsAllRowsAndOrder(t *testing.T) {
	refs := Index([]refRow{}, func(r refRow) int64 { return r.ID })
	primary := []primaryRow{{ID: 3, RefID: 1}, {ID: 1, RefID: 2}, {ID: 2, RefID: 3}}

	out := Resolve(primary, refs, func(p primaryRow) int64 { return p.RefID }, joinView)

	require.Len(t, out, 3)
	assert.Equal(t, int64(3), out[0].ID)
	assert.Equal(t, int64(1), out[1].ID)
	assert.Equal(t, int64(2), out[2].ID)
}

func TestResolveIsIdempotentAndPure(t *testing.T) {
	refRows := []refRow{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Luis"}}
	primary := []primaryRow{{ID: 10, RefID: 2}, {ID: 11, RefID: 1}}
	refs := Index(refRows, func(r refRow) int64 { return r.ID })

	first := Resolve(primary, refs, func(p primaryRow) int64 { return p.RefID }, joinView)
	second := Resolve(primary, refs, func(p primaryRow) int64 { return p.RefID }, joinView)

	assert.Equal(t, first, second)
	assert.Equal(t, []refRow{{ID: 1, Name: "Ana"}, {ID: 2, Name: "Luis"}}, refRows)
	assert.Equal(t, []primaryRow{{ID: 10, RefID: 2}, {ID: 11, RefID: 1}}, primary)
}
