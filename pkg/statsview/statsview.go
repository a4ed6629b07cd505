//go:build statsview

package statsview

import (
	"errors"
	"net/http"
	"time"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"

	"github.com/oisee/gbz80-sim/pkg/logger"
)

// Server is a running dashboard.
type Server struct {
	addr string
	mgr  *statsview.ViewManager
	log  *logger.Logger
}

// Start serves the dashboard on addr, sampling the runtime every interval.
// Listen errors are logged under the "statsview" tag.
func Start(addr string, interval time.Duration, log *logger.Logger) *Server {
	if addr == "" {
		addr = DefaultAddress
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	viewer.SetConfiguration(
		viewer.WithAddr(addr),
		viewer.WithLinkAddr(addr),
		viewer.WithInterval(int(interval.Milliseconds())),
	)
	s := &Server{addr: addr, mgr: statsview.New(), log: log}
	go func() {
		if err := s.mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Logf("statsview", "%s: %v", addr, err)
		}
	}()
	log.Logf("statsview", "graphs at %s", s.URL())
	return s
}

// URL returns the address of the graphs page.
func (s *Server) URL() string {
	return "http://" + s.addr + path
}

// Stop shuts the server down.
func (s *Server) Stop() {
	s.mgr.Stop()
	s.log.Logf("statsview", "stopped")
}

// Available reports whether the stats server is compiled in.
func Available() bool {
	return true
}
