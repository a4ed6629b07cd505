// Package statsview serves live graphs of the Go runtime (goroutines, heap,
// GC) while long batch or stress runs execute. The server is only built in
// with the statsview build tag:
//
//	go build -tags statsview ./cmd/gbsim
//	gbsim stress --runs 100000 --statsview
//
// Graphs are then served at DefaultAddress under /debug/statsview, with the
// standard pprof pages under /debug/pprof/.
package statsview

import "time"

const (
	DefaultAddress  = "localhost:12600"
	DefaultInterval = 2 * time.Second
)

const path = "/debug/statsview"
