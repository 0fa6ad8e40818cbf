package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Pusher sends the collected run metrics to a Prometheus Pushgateway once the
// run is over. A one-shot process has no scrape window.
type Pusher struct {
	pusher *push.Pusher
}

func NewPusher(url, job string, gatherer prometheus.Gatherer) *Pusher {
	return &Pusher{
		pusher: push.New(url, job).Gatherer(gatherer),
	}
}

func (p *Pusher) Grouping(name, value string) *Pusher {
	p.pusher = p.pusher.Grouping(name, value)
	return p
}

func (p *Pusher) Push(ctx context.Context) error {
	if err := p.pusher.PushContext(ctx); err != nil {
		return fmt.Errorf("failed to push metrics: %w", err)
	}
	return nil
}
