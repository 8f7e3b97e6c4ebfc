package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pixil98/go-log"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server exposes the prometheus registry over HTTP. It runs as a worker
// alongside the nats server and the tick driver.
type Server struct {
	addr string
}

func NewServer(addr string) *Server {
	return &Server{addr: addr}
}

func (s *Server) Start(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:    s.addr,
		Handler: mux,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	log.GetLogger(ctx).Infof("metrics server listening on %s", s.addr)

	select {
	case err := <-errCh:
		return fmt.Errorf("metrics server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
