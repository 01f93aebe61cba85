package memory

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtroode/licensekeeper/internal/model"
)

type row struct {
	ID   int64
	Name string
	N    int
}

func newRowTable() *Table[row] {
	return NewTable(
		func(r row) int64 { return r.ID },
		func(r *row, id int64) { r.ID = id },
	)
}

func TestTable_InsertAssignsIncreasingIDs(t *testing.T) {
	tbl := newRowTable()

	a := tbl.Insert(row{Name: "a"})
	b := tbl.Insert(row{Name: "b"})

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)
	assert.Equal(t, 2, tbl.Count())
}

func TestTable_GetUpdateDelete(t *testing.T) {
	tbl := newRowTable()
	r := tbl.Insert(row{Name: "a"})

	got, err := tbl.Get(r.ID)
	require.NoError(t, err)
	assert.Equal(t, "a", got.Name)

	r.Name = "b"
	require.NoError(t, tbl.Update(r))
	got, ok := tbl.TryGet(r.ID)
	require.True(t, ok)
	assert.Equal(t, "b", got.Name)

	require.NoError(t, tbl.Delete(r.ID))
	_, err = tbl.Get(r.ID)
	assert.ErrorIs(t, err, model.ErrNotFound)
	assert.ErrorIs(t, tbl.Delete(r.ID), model.ErrNotFound)
	assert.ErrorIs(t, tbl.Update(r), model.ErrNotFound)
	assert.False(t, tbl.TryUpdate(r))
}

func TestTable_QueryOrderAndPredicates(t *testing.T) {
	tbl := newRowTable()
	for i := 0; i < 10; i++ {
		tbl.Insert(row{Name: "r", N: i})
	}

	even := Predicate[row](func(r row) bool { return r.N%2 == 0 })
	big := Predicate[row](func(r row) bool { return r.N > 5 })

	both := tbl.Query(And(even, big))
	require.Len(t, both, 2)
	assert.Equal(t, 6, both[0].N)
	assert.Equal(t, 8, both[1].N)

	either := tbl.Query(Or(even, big))
	assert.Len(t, either, 7)
	for i := 1; i < len(either); i++ {
		assert.Less(t, either[i-1].ID, either[i].ID)
	}

	assert.True(t, tbl.Exists(big))
	assert.False(t, tbl.Exists(func(r row) bool { return r.N > 100 }))
}

func TestTable_InsertUnique(t *testing.T) {
	tbl := newRowTable()
	dup := func(name string) Predicate[row] {
		return func(r row) bool { return r.Name == name }
	}

	_, err := tbl.InsertUnique(row{Name: "x"}, dup("x"))
	require.NoError(t, err)
	_, err = tbl.InsertUnique(row{Name: "x"}, dup("x"))
	assert.ErrorIs(t, err, model.ErrConflict)
}

func TestTable_ConcurrentInsert(t *testing.T) {
	tbl := newRowTable()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tbl.Insert(row{})
		}()
	}
	wg.Wait()

	assert.Equal(t, 50, tbl.Count())
	_, ok := tbl.TryGet(50)
	assert.True(t, ok)
}

func TestLike(t *testing.T) {
	assert.True(t, Like("Alice@Example.com", "alice@example.COM"))
	assert.False(t, Like("alice@example.com", "alice@example.org"))
}
