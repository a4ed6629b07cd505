package logger

import "io"

// maximum number of entries in the central logger.
const maxCentral = 256

var central = New(maxCentral)

// Central returns the application wide logger. Components that are not given
// a logger of their own log here.
func Central() *Logger {
	return central
}

// Log adds an entry to the central logger.
func Log(tag string, detail any) {
	central.Log(tag, detail)
}

// Logf adds a formatted entry to the central logger.
func Logf(tag, format string, args ...any) {
	central.Logf(tag, format, args...)
}

// Clear all entries from the central logger.
func Clear() {
	central.Clear()
}

// Write contents of the central logger to output.
func Write(output io.Writer) {
	central.Write(output)
}

// Tail writes the last number entries of the central logger to output.
func Tail(output io.Writer, number int) {
	central.Tail(output, number)
}

// SetEcho prints central log entries to output as they arrive.
func SetEcho(output io.Writer) {
	central.SetEcho(output)
}
