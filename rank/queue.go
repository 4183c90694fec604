package rank

// boundedQueue keeps the best n results seen so far.
//
// It is a heap whose root is the worst retained result, so a new result only
// has to beat the root to get in. Worse means a lower score, or an equal score
// with a later pool position.
type boundedQueue struct {
	capacity int
	items    []Result
}

func newBoundedQueue(capacity int) *boundedQueue {
	return &boundedQueue{
		capacity: capacity,
		items:    make([]Result, 0, capacity),
	}
}

// worse reports whether a ranks after b.
func worse(a, b Result) bool {
	if c := compare(a, b); c != 0 {
		return c > 0
	}
	return a.Index > b.Index
}

// Len returns the number of retained results.
func (q *boundedQueue) Len() int {
	return len(q.items)
}

// Push offers r to the queue.
func (q *boundedQueue) Push(r Result) {
	if len(q.items) < q.capacity {
		q.items = append(q.items, r)
		q.siftUp(len(q.items) - 1)
		return
	}
	if q.capacity == 0 || !worse(q.items[0], r) {
		return
	}
	q.items[0] = r
	q.siftDown(0)
}

// Sorted drains the queue and returns its results best first.
func (q *boundedQueue) Sorted() []Result {
	out := make([]Result, len(q.items))
	for i := len(out) - 1; i >= 0; i-- {
		out[i] = q.pop()
	}
	return out
}

func (q *boundedQueue) pop() Result {
	n := len(q.items)
	item := q.items[0]
	q.items[0] = q.items[n-1]
	q.items = q.items[:n-1]
	if len(q.items) > 0 {
		q.siftDown(0)
	}
	return item
}

func (q *boundedQueue) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !worse(q.items[i], q.items[parent]) {
			break
		}
		q.items[i], q.items[parent] = q.items[parent], q.items[i]
		i = parent
	}
}

func (q *boundedQueue) siftDown(i int) {
	n := len(q.items)
	for {
		left := 2*i + 1
		if left >= n {
			break
		}
		child := left
		if right := left + 1; right < n && worse(q.items[right], q.items[left]) {
			child = right
		}
		if !worse(q.items[child], q.items[i]) {
			break
		}
		q.items[i], q.items[child] = q.items[child], q.items[i]
		i = child
	}
}
