// SPDX-License-Identifier: EPL-2.0

package vorbis

// maxIdleCap is the capacity above which a drained queue gives its buffer
// back to the allocator.
const maxIdleCap = 1 << 16

// pcmQueue is a head-moving deque of interleaved samples. Reads advance the
// head; the consumed prefix is reclaimed when it outweighs what is queued.
type pcmQueue struct {
	buf  []float32
	head int
}

func (q *pcmQueue) Len() int { return len(q.buf) - q.head }

func (q *pcmQueue) Append(samples []float32) {
	if q.head > 0 && q.head >= q.Len() {
		n := copy(q.buf, q.buf[q.head:])
		q.buf = q.buf[:n]
		q.head = 0
	}
	q.buf = append(q.buf, samples...)
}

func (q *pcmQueue) Read(dst []float32) int {
	n := copy(dst, q.buf[q.head:])
	q.head += n
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
		if cap(q.buf) > maxIdleCap {
			q.buf = nil
		}
	}
	return n
}

func (q *pcmQueue) Reset() {
	q.head = 0
	if cap(q.buf) > maxIdleCap {
		q.buf = nil
		return
	}
	q.buf = q.buf[:0]
}
