//go:build !statsview

package statsview

import (
	"time"

	"github.com/oisee/gbz80-sim/pkg/logger"
)

// Server stands in for the dashboard when it is not compiled in.
type Server struct {
	addr string
}

// Start logs that the binary was built without the stats server.
func Start(addr string, interval time.Duration, log *logger.Logger) *Server {
	log.Logf("statsview", "not available: rebuild with -tags statsview")
	return &Server{addr: addr}
}

// URL returns the empty string.
func (s *Server) URL() string {
	return ""
}

// Stop does nothing.
func (s *Server) Stop() {}

// Available reports whether the stats server is compiled in.
func Available() bool {
	return false
}
