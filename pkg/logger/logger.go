// Package logger records tagged diagnostic messages from the simulator:
// skipped instructions, truncated programs, terminated tasks and batch
// progress.
package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"
)

// Entry is one logged message. Repeats counts how many times in a row the
// same tag and detail were logged.
type Entry struct {
	Timestamp time.Time
	Tag       string
	Detail    string
	Repeats   int
}

func (e Entry) String() string {
	if e.Repeats > 1 {
		return fmt.Sprintf("%s: %s (x%d)\n", e.Tag, e.Detail, e.Repeats)
	}
	return fmt.Sprintf("%s: %s\n", e.Tag, e.Detail)
}

var oneLine = strings.NewReplacer("\r", "", "\n", " ")

// Logger keeps the most recent entries in a fixed-size ring. A message equal
// to the newest entry bumps its repeat count instead of taking a slot.
//
// It is safe for concurrent use; machines running in a batch share the
// central logger.
type Logger struct {
	mu    sync.Mutex
	ring  []Entry
	start int // oldest entry
	n     int
	echo  io.Writer
}

// New creates a logger holding at most capacity entries.
func New(capacity int) *Logger {
	if capacity < 1 {
		capacity = 1
	}
	return &Logger{ring: make([]Entry, capacity)}
}

// Log adds an entry. Detail may be an error, a fmt.Stringer or anything
// else printable with %v.
func (l *Logger) Log(tag string, detail any) {
	switch d := detail.(type) {
	case error:
		l.add(tag, d.Error())
	case string:
		l.add(tag, d)
	default:
		l.add(tag, fmt.Sprint(d))
	}
}

// Logf adds a formatted entry.
func (l *Logger) Logf(tag, format string, args ...any) {
	l.add(tag, fmt.Sprintf(format, args...))
}

func (l *Logger) at(i int) *Entry {
	return &l.ring[(l.start+i)%len(l.ring)]
}

func (l *Logger) add(tag, detail string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	tag, detail = oneLine.Replace(tag), oneLine.Replace(detail)
	now := time.Now()

	if l.n > 0 {
		if last := l.at(l.n - 1); last.Tag == tag && last.Detail == detail {
			last.Repeats++
			last.Timestamp = now
			l.emit(*last)
			return
		}
	}

	e := Entry{Timestamp: now, Tag: tag, Detail: detail, Repeats: 1}
	if l.n == len(l.ring) {
		l.ring[l.start] = e
		l.start = (l.start + 1) % len(l.ring)
	} else {
		l.n++
		*l.at(l.n - 1) = e
	}
	l.emit(e)
}

func (l *Logger) emit(e Entry) {
	if l.echo != nil {
		io.WriteString(l.echo, e.String())
	}
}

// SetEcho writes every new entry to output as it is logged. A nil writer
// turns echoing off.
func (l *Logger) SetEcho(output io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.echo = output
}

// Clear removes all entries.
func (l *Logger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.start, l.n = 0, 0
}

// Write writes every entry to output, oldest first. It returns false if the
// log is empty.
func (l *Logger) Write(output io.Writer) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeFrom(output, 0)
	return l.n > 0
}

// Tail writes the newest number entries to output.
func (l *Logger) Tail(output io.Writer, number int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writeFrom(output, l.n-min(max(number, 0), l.n))
}

func (l *Logger) writeFrom(output io.Writer, first int) {
	for i := first; i < l.n; i++ {
		io.WriteString(output, l.at(i).String())
	}
}

// Entries returns a copy of the log, oldest first.
func (l *Logger) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Entry, l.n)
	for i := range out {
		out[i] = *l.at(i)
	}
	return out
}

// Count returns how many messages with the given tag are held, repeats
// included.
func (l *Logger) Count(tag string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for i := 0; i < l.n; i++ {
		if e := l.at(i); e.Tag == tag {
			n += e.Repeats
		}
	}
	return n
}
