package queue

// List is a thin alias over Queue used for the unordered proc_set: it has
// no FIFO ordering requirement, so Append uses Insert (front-insert, O(1))
// rather than Push, matching the original library/libc/list.c which
// layers "append" directly on queue_insert.
type List[T any] struct {
	q *Queue[T]
}

// NewList returns an empty list.
func NewList[T any]() *List[T] {
	return &List[T]{q: New[T]()}
}

// Append adds item to the list. O(1).
func (l *List[T]) Append(item T) { l.q.Insert(item) }

// Delete removes the first item matching equal. O(n).
func (l *List[T]) Delete(equal func(item T) bool) bool { return l.q.Delete(equal) }

// Find returns the first item matching pred.
func (l *List[T]) Find(pred func(item T) bool) (item T, ok bool) { return l.q.Find(pred) }

// Iterate invokes f on every item; order is unspecified beyond "some
// order", matching proc_set's "unordered collection" contract.
func (l *List[T]) Iterate(f func(item T)) { l.q.Iterate(f) }

// Length returns the number of items in the list.
func (l *List[T]) Length() int { return l.q.Length() }
