// Package statsview serves live charts of the Go runtime statistics, useful
// for watching allocation and GC behaviour of the producer while it runs.
package statsview

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/go-echarts/statsview"
	"github.com/go-echarts/statsview/viewer"
)

// chartsPath is where go-echarts/statsview serves its page.
const chartsPath = "/debug/statsview"

// Server runs the chart server in the background.
type Server struct {
	addr string
	mgr  *statsview.ViewManager
}

// URL returns the address of the charts page served on addr.
func URL(addr string) string {
	return "http://" + addr + chartsPath
}

// Start serves the charts on addr, a host:port pair.
func Start(addr string) (*Server, error) {
	if _, _, err := net.SplitHostPort(addr); err != nil {
		return nil, fmt.Errorf("statsview: bad address %q: %w", addr, err)
	}

	viewer.SetConfiguration(viewer.WithAddr(addr))
	s := &Server{addr: addr, mgr: statsview.New()}

	go func() {
		if err := s.mgr.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("statsview: %v", err)
		}
	}()

	log.Printf("Runtime statistics available at %s", URL(addr))
	return s, nil
}

// Addr returns the address the server listens on.
func (s *Server) Addr() string {
	return s.addr
}

// Stop shuts the chart server down.
func (s *Server) Stop() {
	s.mgr.Stop()
}
