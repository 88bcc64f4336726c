package flight

import (
	"sync"
)

// Cache memoizes the results of work per key. Concurrent callers asking for
// the same missing key share one execution. Failed results are not kept, so
// the next Get retries.
type Cache[K comparable, V any] struct {
	mu       sync.Mutex
	finished map[K]V
	pending  map[K]*job[V]

	work func(K) (V, error)
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}
}

func NewCache[K comparable, V any](work func(K) (V, error)) *Cache[K, V] {
	return &Cache[K, V]{
		finished: make(map[K]V),
		pending:  make(map[K]*job[V]),
		work:     work,
	}
}

func (p *Cache[K, V]) Get(k K) (V, error) {
	p.mu.Lock()
	if v, ok := p.finished[k]; ok {
		p.mu.Unlock()
		return v, nil
	}

	// Join existing in-flight job if any.
	if j, ok := p.pending[k]; ok {
		p.mu.Unlock()
		<-j.done
		return j.val, j.err
	}

	j := &job[V]{done: make(chan struct{})}
	p.pending[k] = j
	p.mu.Unlock()

	j.val, j.err = p.work(k)

	p.mu.Lock()
	if j.err == nil {
		p.finished[k] = j.val
	}
	delete(p.pending, k)
	close(j.done)
	p.mu.Unlock()

	return j.val, j.err
}

// Len reports the number of finished results.
func (p *Cache[K, V]) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.finished)
}
