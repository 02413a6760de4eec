package generic

// =============================================================================
// HEAP - Binary heap ordered by an injected comparator
// =============================================================================

// CompareFunc orders two elements. A positive result means a belongs above b,
// zero means either order is fine, negative means b belongs above a.
type CompareFunc[T any] func(a, b T) int

// Heap is a binary heap over a slice. The element that every other element
// compares at-or-below is always at the top.
//
// Heap is not safe for concurrent use; callers that share one clone it first.
type Heap[T any] struct {
	items   []T
	compare CompareFunc[T]
}

func NewHeap[T any](compare CompareFunc[T]) *Heap[T] {
	return &Heap[T]{compare: compare}
}

// Len returns the number of elements.
func (h *Heap[T]) Len() int { return len(h.items) }

// Push inserts value and sifts it up while its parent belongs below it.
func (h *Heap[T]) Push(value T) {
	h.items = append(h.items, value)

	curr := len(h.items) - 1
	for curr > 0 {
		parent := (curr - 1) / 2
		if h.compare(h.items[parent], h.items[curr]) >= 0 {
			break
		}
		h.items[parent], h.items[curr] = h.items[curr], h.items[parent]
		curr = parent
	}
}

// Pop removes and returns the top element. ok is false on an empty heap.
func (h *Heap[T]) Pop() (top T, ok bool) {
	n := len(h.items)
	if n == 0 {
		return top, false
	}

	h.items[0], h.items[n-1] = h.items[n-1], h.items[0]
	top = h.items[n-1]

	var zero T
	h.items[n-1] = zero
	h.items = h.items[:n-1]

	h.siftDown(0)
	return top, true
}

// Peek returns the top element without removing it.
func (h *Heap[T]) Peek() (top T, ok bool) {
	if len(h.items) == 0 {
		return top, false
	}
	return h.items[0], true
}

func (h *Heap[T]) siftDown(curr int) {
	n := len(h.items)
	for 2*curr+1 < n {
		child := 2*curr + 1
		if right := child + 1; right < n && h.compare(h.items[right], h.items[child]) > 0 {
			child = right
		}
		if h.compare(h.items[curr], h.items[child]) >= 0 {
			return
		}
		h.items[curr], h.items[child] = h.items[child], h.items[curr]
		curr = child
	}
}

// Clone returns an independent heap with the same comparator and contents.
// Elements are copied by value.
func (h *Heap[T]) Clone() *Heap[T] {
	items := make([]T, len(h.items))
	copy(items, h.items)
	return &Heap[T]{items: items, compare: h.compare}
}
