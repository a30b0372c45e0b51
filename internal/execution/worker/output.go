package worker

import "sync"

// tailWriter keeps the last limit bytes written to it. The process
// output is retained for diagnostics only and never interpreted.
type tailWriter struct {
	mu    sync.Mutex
	limit int
	buf   []byte
}

func newTailWriter(limit int) *tailWriter {
	if limit <= 0 {
		limit = DefaultOutputLimit
	}

	return &tailWriter{limit: limit}
}

func (w *tailWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	n := len(p)

	if n >= w.limit {
		w.buf = append(w.buf[:0], p[n-w.limit:]...)
		return n, nil
	}

	if overflow := len(w.buf) + n - w.limit; overflow > 0 {
		w.buf = append(w.buf[:0], w.buf[overflow:]...)
	}

	w.buf = append(w.buf, p...)

	return n, nil
}

func (w *tailWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return string(w.buf)
}
