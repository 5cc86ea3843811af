package catalog

import (
	"context"
	"time"
)

// Pinger is implemented by stores that depend on a remote backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// ReadinessChecker probes the catalog for /health/ready. Stores without a
// remote backend are always ready.
type ReadinessChecker struct {
	Store Store
}

// PingCatalog pings Store within timeout.
func (c ReadinessChecker) PingCatalog(ctx context.Context, timeout time.Duration) error {
	p, ok := c.Store.(Pinger)
	if !ok {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return p.Ping(ctx)
}
