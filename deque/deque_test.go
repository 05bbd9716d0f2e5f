package deque

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArrDequeCapacityRoundsUp(t *testing.T) {
	assert.Equal(t, 8, NewArrDeque[int](1).Cap())
	assert.Equal(t, 8, NewArrDeque[int](8).Cap())
	assert.Equal(t, 16, NewArrDeque[int](9).Cap())
	assert.Equal(t, 8, NewArrDeque[int](0).Cap())
}

func TestArrDequeBothEnds(t *testing.T) {
	d := NewArrDeque[int](8)
	require.True(t, d.AddLast(2))
	require.True(t, d.AddLast(3))
	require.True(t, d.AddFirst(1))
	require.True(t, d.AddFirst(0))
	assert.Equal(t, []int{0, 1, 2, 3}, d.Slice())
	assert.Equal(t, 2, d.Get(2))

	d.Set(1, 10)
	assert.Equal(t, 10, d.Get(1))

	v, ok := d.RemoveFirst()
	require.True(t, ok)
	assert.Equal(t, 0, v)
	v, ok = d.RemoveLast()
	require.True(t, ok)
	assert.Equal(t, 3, v)
	assert.Equal(t, []int{10, 2}, d.Slice())
}

func TestArrDequeFullAndEmpty(t *testing.T) {
	d := NewArrDeque[string](8)
	assert.True(t, d.IsEmpty())
	_, ok := d.RemoveFirst()
	assert.False(t, ok)
	_, ok = d.RemoveLast()
	assert.False(t, ok)

	for i := 0; i < 8; i++ {
		require.True(t, d.AddLast("x"))
	}
	assert.True(t, d.IsFull())
	assert.False(t, d.AddLast("y"))
	assert.False(t, d.AddFirst("y"))
	assert.Equal(t, 8, d.Size())
}

func TestArrDequeWrapsAround(t *testing.T) {
	d := NewArrDeque[int](8)
	for i := 0; i < 20; i++ {
		d.Push(i)
	}
	assert.Equal(t, []int{12, 13, 14, 15, 16, 17, 18, 19}, d.Slice())

	var seen []int
	d.Traverse(func(i, v int) {
		assert.Equal(t, 12+i, v)
		seen = append(seen, v)
	})
	assert.Len(t, seen, 8)
}

func TestArrDequeIndexPanics(t *testing.T) {
	d := NewArrDeque[int](8)
	d.AddLast(1)
	assert.Panics(t, func() { d.Get(1) })
	assert.Panics(t, func() { d.Get(-1) })
}

func BenchmarkArrDeque_AddFirst(b *testing.B) {
	d := NewArrDeque[int](4000)
	for i := 0; i < b.N; i++ {
		d.AddFirst(1000)
		d.RemoveFirst()
	}
}

func BenchmarkArrDeque_Push(b *testing.B) {
	d := NewArrDeque[string](64)
	for i := 0; i < b.N; i++ {
		d.Push("line")
	}
}
