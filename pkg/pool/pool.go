// Package pool provides object pooling for sor.
//
// It offers a generic type-safe Pool[T] plus a global size-bucketed byte
// buffer pool used by the streaming read paths (compressed inputs and the
// chunk iterator), where per-read allocations would dominate the profile.
package pool

import (
	"sync"
	"sync/atomic"
)

// Pool represents a generic object pool with type safety.
// It wraps sync.Pool with statistics tracking and automatic reset.
// The pool is safe for concurrent use.
type Pool[T any] struct {
	pool  sync.Pool
	new   func() T
	reset func(T)
	stats struct {
		allocated int64
		inUse     int64
	}
}

// New creates a new typed pool with custom allocation and reset functions.
// The reset function, if non-nil, is called before returning an object to
// the pool.
func New[T any](newFn func() T, reset func(T)) *Pool[T] {
	p := &Pool[T]{
		new:   newFn,
		reset: reset,
	}
	p.pool.New = func() interface{} {
		atomic.AddInt64(&p.stats.allocated, 1)
		return newFn()
	}
	return p
}

// Get retrieves an object from the pool, creating one if the pool is empty.
func (p *Pool[T]) Get() T {
	atomic.AddInt64(&p.stats.inUse, 1)
	return p.pool.Get().(T)
}

// Put returns an object to the pool for reuse.
func (p *Pool[T]) Put(obj T) {
	if p.reset != nil {
		p.reset(obj)
	}
	atomic.AddInt64(&p.stats.inUse, -1)
	p.pool.Put(obj)
}

// Stats returns the total number of objects created by the pool and the
// number currently checked out.
func (p *Pool[T]) Stats() (allocated, inUse int64) {
	return atomic.LoadInt64(&p.stats.allocated), atomic.LoadInt64(&p.stats.inUse)
}

// BufferPool manages reusable byte buffers in power-of-two size buckets.
type BufferPool struct {
	pools [bucketCount]sync.Pool
}

const (
	minBucketBits = 10 // 1 KiB
	bucketCount   = 12 // up to 2 MiB
)

// GlobalBufferPool is the shared buffer pool for read paths.
var GlobalBufferPool = &BufferPool{}

// Get returns a buffer with capacity of at least size bytes and zero length.
func (bp *BufferPool) Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, 0, size)
	}
	if v := bp.pools[idx].Get(); v != nil {
		return v.([]byte)[:0]
	}
	return make([]byte, 0, 1<<(minBucketBits+idx))
}

// Put returns a buffer to the pool. Buffers outside the bucket range are
// dropped for the garbage collector.
func (bp *BufferPool) Put(buf []byte) {
	idx := bucketIndex(cap(buf))
	if idx < 0 || cap(buf) != 1<<(minBucketBits+idx) {
		return
	}
	bp.pools[idx].Put(buf[:0]) //nolint:staticcheck // slice has pointer-free backing
}

// bucketIndex returns the bucket whose buffers have capacity >= size,
// or -1 if size exceeds the largest bucket.
func bucketIndex(size int) int {
	for i := 0; i < bucketCount; i++ {
		if size <= 1<<(minBucketBits+i) {
			return i
		}
	}
	return -1
}
