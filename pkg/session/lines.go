package session

import (
	"bufio"
	"io"
	"sync"
)

// LineReader delivers lines from an io.Reader over a channel. One reader
// goroutine serves every session built on it, so a line typed after one
// session ends is delivered to the next one instead of being lost.
type LineReader struct {
	r     io.Reader
	once  sync.Once
	lines chan string

	mu  sync.Mutex
	err error
}

// NewLineReader creates a LineReader. Reading starts on first use.
func NewLineReader(r io.Reader) *LineReader {
	return &LineReader{
		r:     r,
		lines: make(chan string),
	}
}

// Lines returns the channel of lines. It is closed at end of input.
func (l *LineReader) Lines() <-chan string {
	l.once.Do(func() { go l.scan() })
	return l.lines
}

// Err returns the read error that closed Lines, if any.
func (l *LineReader) Err() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.err
}

func (l *LineReader) scan() {
	scanner := bufio.NewScanner(l.r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for scanner.Scan() {
		l.lines <- scanner.Text()
	}

	l.mu.Lock()
	l.err = scanner.Err()
	l.mu.Unlock()

	close(l.lines)
}
