// Package utils holds small shared helpers.
package utils

import (
	"bytes"
	"io"
	"sync"
)

// DeferredWriter buffers log output while the terminal is owned by the
// dashboard, so log lines do not tear the UI. Flush replays the buffer
// once the program has the terminal back.
type DeferredWriter struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

// Write buffers p. Safe for concurrent use.
func (w *DeferredWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.Write(p)
}

// Flush replays the buffered events to out, one event per Write so a
// zerolog.ConsoleWriter can parse them, then resets the buffer.
func (w *DeferredWriter) Flush(out io.Writer) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	for {
		line, err := w.buf.ReadBytes('\n')
		if len(line) > 0 {
			if _, werr := out.Write(line); werr != nil {
				return werr
			}
		}
		if err != nil {
			break
		}
	}

	w.buf.Reset()
	return nil
}
