package pool

import (
	"io"
	"runtime"
	"sync"
	"sync/atomic"
)

// task is a unit of work handed to the workers of a Pool.
type task struct {
	run  func()
	done *sync.WaitGroup
}

// Pool represents a pool of workers, used for parallelizing expensive modular arithmetic.
//
// Functions needing a *Pool will work with a nil receiver, doing the equivalent
// work on the current goroutine instead.
type Pool struct {
	tasks       chan task
	workerCount int
	closeOnce   sync.Once
}

// NewPool creates a new pool, with a certain number of workers.
//
// If count <= 0, this will use the number of available CPUs instead.
func NewPool(count int) *Pool {
	if count <= 0 {
		count = runtime.NumCPU()
	}
	p := &Pool{
		tasks:       make(chan task),
		workerCount: count,
	}
	for i := 0; i < count; i++ {
		go p.work()
	}
	return p
}

func (p *Pool) work() {
	for t := range p.tasks {
		t.run()
		t.done.Done()
	}
}

// submit hands t to an idle worker, or runs it on the calling goroutine when every worker is busy.
// Running inline lets pool functions be called from within a task without deadlocking.
func (p *Pool) submit(t task) {
	select {
	case p.tasks <- t:
	default:
		t.run()
		t.done.Done()
	}
}

// TearDown stops the workers of the pool.
// The pool must not be used afterwards.
func (p *Pool) TearDown() {
	if p == nil {
		return
	}
	p.closeOnce.Do(func() { close(p.tasks) })
}

// Search queries the function f, until count successes are found.
//
// f is supposed to try a single candidate, returning nil if that candidate isn't
// successful.
//
// The result will be a slice containing the first count successes.
func (p *Pool) Search(count int, f func() interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			for results[i] == nil {
				results[i] = f()
			}
		}
		return results
	}

	remaining := int64(count)
	var wg sync.WaitGroup
	wg.Add(p.workerCount)
	for i := 0; i < p.workerCount; i++ {
		p.submit(task{
			run: func() {
				for atomic.LoadInt64(&remaining) > 0 {
					res := f()
					if res == nil {
						continue
					}
					idx := atomic.AddInt64(&remaining, -1)
					if idx < 0 {
						return
					}
					results[idx] = res
				}
			},
			done: &wg,
		})
	}
	wg.Wait()
	return results
}

// Parallelize calls a function count times, passing in indices from 0..count-1.
//
// The result will be a slice containing [f(0), f(1), ..., f(count - 1)].
func (p *Pool) Parallelize(count int, f func(int) interface{}) []interface{} {
	results := make([]interface{}, count)
	if p == nil {
		for i := range results {
			results[i] = f(i)
		}
		return results
	}

	var wg sync.WaitGroup
	wg.Add(count)
	for i := 0; i < count; i++ {
		i := i
		p.submit(task{
			run:  func() { results[i] = f(i) },
			done: &wg,
		})
	}
	wg.Wait()
	return results
}

// LockedReader wraps an io.Reader to be safe for concurrent reads.
type LockedReader struct {
	reader io.Reader
	m      sync.Mutex
}

// NewLockedReader creates a LockedReader by wrapping an underlying value.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{reader: r}
}

// Read implements io.Reader for LockedReader.
func (r *LockedReader) Read(p []byte) (int, error) {
	r.m.Lock()
	defer r.m.Unlock()
	return r.reader.Read(p)
}
