package classify

// ring is a fixed-capacity FIFO. Pushing at capacity evicts the oldest value.
type ring[T any] struct {
	vals []T
	head int // index of the oldest value
	n    int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{vals: make([]T, capacity)}
}

// Push appends v, evicting the oldest value when the ring is full.
func (r *ring[T]) Push(v T) {
	if r.n < len(r.vals) {
		r.vals[(r.head+r.n)%len(r.vals)] = v
		r.n++
		return
	}
	r.vals[r.head] = v
	r.head = (r.head + 1) % len(r.vals)
}

// Len returns the number of stored values.
func (r *ring[T]) Len() int { return r.n }

// Values returns the stored values oldest-first as a fresh slice.
func (r *ring[T]) Values() []T {
	out := make([]T, r.n)
	for i := 0; i < r.n; i++ {
		out[i] = r.vals[(r.head+i)%len(r.vals)]
	}
	return out
}

// AppendTo appends the stored values oldest-first to dst and returns the
// extended slice. Used on the per-frame path to avoid allocating.
func (r *ring[T]) AppendTo(dst []T) []T {
	for i := 0; i < r.n; i++ {
		dst = append(dst, r.vals[(r.head+i)%len(r.vals)])
	}
	return dst
}

// Reset discards all stored values.
func (r *ring[T]) Reset() {
	r.head = 0
	r.n = 0
}

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}
