package cli

import (
	"bufio"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
)

// Input errors.
var (
	// ErrInputCancelled is returned when a prompt is abandoned through its context.
	ErrInputCancelled = errors.New("input canceled")
	// ErrInputTerminated is returned when the input stream ends before an answer was given.
	ErrInputTerminated = errors.New("input terminated")
)

type scannedLine struct {
	err  error
	text string
}

// LineReader hands out trimmed input lines to prompts. A single goroutine
// scans the source, so a prompt abandoned on cancellation does not lose the
// line that arrives afterwards.
type LineReader struct {
	scanner *bufio.Scanner
	lines   chan scannedLine
	start   sync.Once
}

// NewLineReader wraps src. Scanning starts with the first ReadLine.
func NewLineReader(src io.Reader) *LineReader {
	if src == nil {
		panic("line reader source cannot be nil")
	}
	return &LineReader{
		scanner: bufio.NewScanner(src),
		lines:   make(chan scannedLine),
	}
}

func (r *LineReader) pump() {
	defer close(r.lines)
	for r.scanner.Scan() {
		r.lines <- scannedLine{text: strings.TrimSpace(r.scanner.Text())}
	}
	if err := r.scanner.Err(); err != nil {
		r.lines <- scannedLine{err: err}
	}
}

// ReadLine waits for the next line. It returns ErrInputCancelled when ctx
// ends first and ErrInputTerminated once the source is exhausted.
func (r *LineReader) ReadLine(ctx context.Context) (string, error) {
	r.start.Do(func() { go r.pump() })

	select {
	case <-ctx.Done():
		return "", ErrInputCancelled
	case line, ok := <-r.lines:
		if !ok {
			return "", ErrInputTerminated
		}
		return line.text, line.err
	}
}
