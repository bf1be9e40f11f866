package queue

// Peek returns the item at index without removing it. A negative index counts
// back from the tail. The boolean is false when index is out of range.
func (q *BoundedQueue[T]) Peek(index int) (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if index < 0 {
		index += len(q.items)
	}
	if index < 0 || index >= len(q.items) {
		var zero T
		return zero, false
	}
	return q.items[index], true
}

// Extract removes and returns up to count items starting at index, keeping
// the order of the items on either side. A negative index counts back from
// the tail; when it reaches past the head, count shrinks by the overshoot and
// the extraction starts at the head, so Extract(-5, 2) on a three-item queue
// returns nothing. Extract never blocks and never applies the overflow policy.
func (q *BoundedQueue[T]) Extract(index, count int) ([]T, error) {
	if err := validateCount("Extract", count); err != nil {
		return nil, err
	}

	q.mu.Lock()
	out := q.extractLocked(index, count)
	depth := len(q.items)
	q.mu.Unlock()

	q.reportDequeue(len(out), depth, false, 0)
	return out, nil
}

func (q *BoundedQueue[T]) extractLocked(index, count int) []T {
	n := len(q.items)
	if index < 0 {
		index += n
		if index < 0 {
			count += index
			index = 0
		}
	}
	if count <= 0 || index >= n {
		return []T{}
	}
	if index == 0 {
		return q.takeLocked(count)
	}

	end := min(index+count, n)
	out := make([]T, end-index)
	copy(out, q.items[index:end])
	q.items = append(q.items[:index], q.items[end:]...)
	clear(q.items[len(q.items):n])
	return out
}
