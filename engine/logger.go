package engine

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	defaultLogLines  = 1000
	logBatchSize     = 16
	logFlushInterval = 100 * time.Millisecond
)

// Logger keeps the most recent session lines in a ring for the TUI, mirrors
// them to an optional file through a batching background writer, and exposes
// a change signal a UI can pump for live refreshes. A nil Logger is safe to
// write to.
type Logger struct {
	mu       sync.Mutex
	lines    []string
	capacity int
	head     int
	count    int

	file   *os.File
	echo   io.Writer
	ch     chan string
	notify chan struct{}
	wdone  chan struct{}
	closed bool
}

func NewLogger(path string, capacity int) *Logger {
	if capacity <= 0 {
		capacity = defaultLogLines
	}

	l := &Logger{
		lines:    make([]string, capacity),
		capacity: capacity,
		ch:       make(chan string, 128),
		notify:   make(chan struct{}, 1),
	}

	if path == "" {
		return l
	}
	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return l
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return l
	}
	l.file = f
	l.wdone = make(chan struct{})

	go l.writer()

	return l
}

func (l *Logger) Write(msg string) {
	if l == nil {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.closed {
		return
	}

	l.lines[l.head] = msg
	l.head = (l.head + 1) % l.capacity
	if l.count < l.capacity {
		l.count++
	}

	if l.echo != nil {
		fmt.Fprintln(l.echo, msg)
	}

	if l.file != nil {
		select {
		case l.ch <- msg:
		default:
		}
	}

	select {
	case l.notify <- struct{}{}:
	default:
	}
}

func (l *Logger) Printf(format string, args ...any) {
	l.Write(fmt.Sprintf(format, args...))
}

// SetEcho mirrors every line to w as it is written. Headless runs use this
// to stream the session to stdout.
func (l *Logger) SetEcho(w io.Writer) {
	if l == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = w
}

// ReadAll returns the buffered lines oldest-first.
func (l *Logger) ReadAll() string {
	if l == nil {
		return ""
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.count == 0 {
		return ""
	}

	start := 0
	if l.count >= l.capacity {
		start = l.head
	}

	var out []byte
	for i := 0; i < l.count; i++ {
		idx := (start + i) % l.capacity
		if l.lines[idx] != "" {
			out = append(out, l.lines[idx]...)
			out = append(out, '\n')
		}
	}
	return string(out)
}

// Updates yields one signal per burst of writes; consumers re-read the ring
// on each signal rather than draining individual lines.
func (l *Logger) Updates() <-chan struct{} {
	if l == nil {
		return nil
	}
	return l.notify
}

func (l *Logger) writer() {
	defer close(l.wdone)

	batch := make([]string, 0, logBatchSize)
	ticker := time.NewTicker(logFlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		l.mu.Lock()
		if l.file != nil {
			for _, msg := range batch {
				l.file.WriteString(msg + "\n")
			}
		}
		l.mu.Unlock()
		batch = batch[:0]
	}

	for {
		select {
		case msg, ok := <-l.ch:
			if !ok {
				flush()
				return
			}
			batch = append(batch, msg)
			if len(batch) >= logBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

func (l *Logger) Close() {
	if l == nil {
		return
	}

	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true

	close(l.ch)

	// Wake any UI pump blocked on the change signal
	select {
	case l.notify <- struct{}{}:
	default:
	}
	wdone := l.wdone
	l.mu.Unlock()

	// Let the writer drain its final batch before the file closes
	if wdone != nil {
		<-wdone
	}

	l.mu.Lock()
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	l.mu.Unlock()
}
