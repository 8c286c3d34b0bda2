package stream

import (
	"bytes"
	"sync"
)

// MaxLineLength bounds the buffered partial line; longer lines are split.
const MaxLineLength = 64 * 1024

// LineWriter implements io.Writer and emits complete lines, without the trailing
// newline or carriage return. Partial lines are buffered until the next newline
// or Flush.
type LineWriter struct {
	mu   sync.Mutex
	buf  []byte
	emit func(string)
}

func NewLineWriter(emit func(string)) *LineWriter {
	return &LineWriter{emit: emit}
}

// Write never fails; it always consumes all of p.
func (w *LineWriter) Write(p []byte) (int, error) {
	if w == nil {
		return len(p), nil
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf = append(w.buf, p...)
	for {
		i := bytes.IndexByte(w.buf, '\n')
		if i < 0 {
			break
		}
		w.emitLocked(w.buf[:i])
		w.buf = w.buf[i+1:]
	}
	for len(w.buf) > MaxLineLength {
		w.emitLocked(w.buf[:MaxLineLength])
		w.buf = w.buf[MaxLineLength:]
	}
	// Copy the remainder so the backing array of p is never retained.
	w.buf = append([]byte(nil), w.buf...)

	return len(p), nil
}

// Flush emits a buffered partial line, if any.
func (w *LineWriter) Flush() {
	if w == nil {
		return
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.buf) > 0 {
		w.emitLocked(w.buf)
		w.buf = nil
	}
}

func (w *LineWriter) emitLocked(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	if w.emit != nil {
		w.emit(string(line))
	}
}
