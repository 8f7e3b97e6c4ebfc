package command

import (
	"fmt"
	"net"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-story/internal/metrics"
)

type MetricsConfig struct {
	// Addr is the listen address for /metrics. Empty disables the endpoint.
	Addr string `json:"addr,omitempty"`
}

func (c *MetricsConfig) validate() error {
	el := errors.NewErrorList()

	if c.Addr != "" {
		if _, _, err := net.SplitHostPort(c.Addr); err != nil {
			el.Add(fmt.Errorf("parsing addr: %w", err))
		}
	}

	return el.Err()
}

func (c *MetricsConfig) buildServer() *metrics.Server {
	if c.Addr == "" {
		return nil
	}
	return metrics.NewServer(c.Addr)
}
