// Package pqueue implements an indexed binary min-heap over a dense
// universe of voxel indices.
//
// Every voxel owns a fixed slot in the key and position arrays, so the
// position of a voxel inside the heap is found in O(1) and decrease-key is
// a single sift-up. Equal keys are ordered by voxel index, which makes the
// extraction order fully deterministic.
package pqueue

import (
	"github.com/pkg/errors"
)

var (
	// ErrEmpty is returned by ExtractMin when no entries remain.
	ErrEmpty = errors.New("priority queue is empty")

	// ErrNotQueued is returned when decreasing the key of an index that is
	// not currently in the queue.
	ErrNotQueued = errors.New("index is not in the queue")

	// ErrQueued is returned when inserting an index twice.
	ErrQueued = errors.New("index already in the queue")

	// ErrKeyIncrease is returned when DecreaseKey is given a larger key.
	ErrKeyIncrease = errors.New("new key is greater than current key")

	// ErrOutOfRange is returned for indices outside the universe.
	ErrOutOfRange = errors.New("index out of range")
)

const notQueued = -1

// Queue is a min-priority queue of (index, key) pairs where index ranges
// over [0, Cap()).
type Queue struct {
	keys []float32
	pos  []int32 // heap slot per index, notQueued if absent
	heap []int32 // heap of indices
}

// New allocates a queue for the universe [0, n).
func New(n int) *Queue {
	q := &Queue{
		keys: make([]float32, n),
		pos:  make([]int32, n),
		heap: make([]int32, 0, n),
	}
	for i := range q.pos {
		q.pos[i] = notQueued
	}
	return q
}

// Init replaces the queue contents with every index of the universe,
// keyed by keys[i], and heapifies in O(n). len(keys) must equal Cap().
func (q *Queue) Init(keys []float32) error {
	if len(keys) != len(q.keys) {
		return errors.Errorf("Init given %d keys for a universe of %d", len(keys), len(q.keys))
	}
	copy(q.keys, keys)
	q.heap = q.heap[:len(keys)]
	for i := range q.heap {
		q.heap[i] = int32(i)
		q.pos[i] = int32(i)
	}
	for i := len(q.heap)/2 - 1; i >= 0; i-- {
		q.down(i)
	}
	return nil
}

// Cap returns the size of the index universe.
func (q *Queue) Cap() int { return len(q.keys) }

// Len returns the number of queued entries.
func (q *Queue) Len() int { return len(q.heap) }

// Contains reports whether idx is currently queued.
func (q *Queue) Contains(idx int) bool {
	return idx >= 0 && idx < len(q.pos) && q.pos[idx] != notQueued
}

// Key returns the last key recorded for idx, queued or not.
func (q *Queue) Key(idx int) float32 { return q.keys[idx] }

// Insert queues idx with the given key.
func (q *Queue) Insert(idx int, key float32) error {
	if idx < 0 || idx >= len(q.keys) {
		return errors.Wrapf(ErrOutOfRange, "insert %d", idx)
	}
	if q.pos[idx] != notQueued {
		return errors.Wrapf(ErrQueued, "insert %d", idx)
	}
	q.keys[idx] = key
	slot := len(q.heap)
	q.heap = append(q.heap, int32(idx))
	q.pos[idx] = int32(slot)
	q.up(slot)
	return nil
}

// ExtractMin removes and returns the entry with the smallest key. Ties are
// resolved in favor of the smaller index.
func (q *Queue) ExtractMin() (idx int, key float32, err error) {
	n := len(q.heap) - 1
	if n < 0 {
		return 0, 0, ErrEmpty
	}
	top := q.heap[0]
	q.swap(0, n)
	q.heap = q.heap[:n]
	q.pos[top] = notQueued
	if n > 0 {
		q.down(0)
	}
	return int(top), q.keys[top], nil
}

// DecreaseKey lowers the key of a queued index. An equal key is accepted
// and leaves the queue unchanged.
func (q *Queue) DecreaseKey(idx int, key float32) error {
	if idx < 0 || idx >= len(q.keys) {
		return errors.Wrapf(ErrOutOfRange, "decrease-key %d", idx)
	}
	slot := q.pos[idx]
	if slot == notQueued {
		return errors.Wrapf(ErrNotQueued, "decrease-key %d", idx)
	}
	if key > q.keys[idx] {
		return errors.Wrapf(ErrKeyIncrease, "decrease-key %d from %g to %g", idx, q.keys[idx], key)
	}
	q.keys[idx] = key
	q.up(int(slot))
	return nil
}

func (q *Queue) less(i, j int) bool {
	a, b := q.heap[i], q.heap[j]
	ka, kb := q.keys[a], q.keys[b]
	if ka != kb {
		return ka < kb
	}
	return a < b
}

func (q *Queue) swap(i, j int) {
	q.heap[i], q.heap[j] = q.heap[j], q.heap[i]
	q.pos[q.heap[i]] = int32(i)
	q.pos[q.heap[j]] = int32(j)
}

func (q *Queue) up(j int) {
	for j > 0 {
		i := (j - 1) / 2 // parent
		if !q.less(j, i) {
			break
		}
		q.swap(i, j)
		j = i
	}
}

func (q *Queue) down(i int) {
	n := len(q.heap)
	for {
		j1 := 2*i + 1
		if j1 >= n || j1 < 0 { // j1 < 0 after int overflow
			break
		}
		j := j1 // left child
		if j2 := j1 + 1; j2 < n && q.less(j2, j1) {
			j = j2 // right child
		}
		if !q.less(j, i) {
			break
		}
		q.swap(i, j)
		i = j
	}
}
