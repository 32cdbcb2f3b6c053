package queue

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueFIFO(t *testing.T) {
	q := New[int]()
	for i := 1; i <= 5; i++ {
		q.Push(i)
	}
	require.Equal(t, 5, q.Length())

	for i := 1; i <= 5; i++ {
		got, ok := q.Pop()
		require.True(t, ok)
		assert.Equal(t, i, got)
	}

	_, ok := q.Pop()
	assert.False(t, ok, "pop on empty queue should report not-ok")
}

func TestQueueInsertIgnoredByFIFOOrdering(t *testing.T) {
	// Property 1: insert/delete don't participate in the push/pop FIFO contract.
	q := New[string]()
	q.Push("a")
	q.Insert("front")
	q.Push("b")

	got, ok := q.Pop()
	require.True(t, ok)
	assert.Equal(t, "front", got)

	got, ok = q.Pop()
	require.True(t, ok)
	assert.Equal(t, "a", got)
}

func TestQueueDelete(t *testing.T) {
	q := New[int]()
	q.Push(1)
	q.Push(2)
	q.Push(3)

	ok := q.Delete(func(item int) bool { return item == 2 })
	require.True(t, ok)
	assert.Equal(t, 2, q.Length())

	ok = q.Delete(func(item int) bool { return item == 2 })
	assert.False(t, ok)

	var out []int
	q.Iterate(func(item int) { out = append(out, item) })
	assert.Equal(t, []int{1, 3}, out)
}

func TestQueueFreeRequiresEmpty(t *testing.T) {
	q := New[int]()
	q.Push(1)
	assert.False(t, q.Free(), "Free must refuse a non-empty queue")

	q.Pop()
	assert.True(t, q.Free())
}

func TestQueueLengthTracksNodeCount(t *testing.T) {
	q := New[int]()
	for i := 0; i < 100; i++ {
		q.Push(i)
		assert.Equal(t, i+1, q.Length())
	}
	for i := 0; i < 100; i++ {
		q.Pop()
		assert.Equal(t, 100-i-1, q.Length())
	}
}

func TestListAppendFindDelete(t *testing.T) {
	l := NewList[int]()
	l.Append(1)
	l.Append(2)
	l.Append(3)
	require.Equal(t, 3, l.Length())

	found, ok := l.Find(func(item int) bool { return item == 2 })
	require.True(t, ok)
	assert.Equal(t, 2, found)

	ok = l.Delete(func(item int) bool { return item == 2 })
	require.True(t, ok)
	assert.Equal(t, 2, l.Length())
}
