package midi

import (
	"runtime"
	"sync/atomic"
)

// Queue is a lock-free single producer, single consumer byte queue. It carries
// raw control bytes from an input goroutine to the audio loop.
type Queue struct {
	bytes       []byte
	read, write *uint32
}

func NewQueue(size int) *Queue {
	if size <= 0 || size&(size-1) != 0 {
		panic("queue size must be a power of 2")
	}
	return &Queue{
		bytes: make([]byte, size),
		read:  new(uint32),
		write: new(uint32),
	}
}

// Push appends b, waiting for the consumer while the queue is full.
func (q *Queue) Push(b byte) {
	for atomic.LoadUint32(q.write)-atomic.LoadUint32(q.read) == uint32(len(q.bytes)) {
		runtime.Gosched()
	}
	write := atomic.LoadUint32(q.write)
	q.bytes[write%uint32(len(q.bytes))] = b
	atomic.StoreUint32(q.write, write+1)
}

// Write pushes every byte of p. It never fails.
func (q *Queue) Write(p []byte) (int, error) {
	for _, b := range p {
		q.Push(b)
	}
	return len(p), nil
}

// Pop removes the oldest byte. ok is false if the queue is empty.
func (q *Queue) Pop() (b byte, ok bool) {
	read := atomic.LoadUint32(q.read)
	if read == atomic.LoadUint32(q.write) {
		return 0, false
	}
	b = q.bytes[read%uint32(len(q.bytes))]
	atomic.StoreUint32(q.read, read+1)
	return b, true
}

// Len returns the number of queued bytes.
func (q *Queue) Len() int {
	return int(atomic.LoadUint32(q.write) - atomic.LoadUint32(q.read))
}
