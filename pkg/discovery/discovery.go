package discovery

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"k8s.io/client-go/discovery"
)

// Features describes optional cluster capabilities that gate what the
// manifest and deploy tools may generate.
type Features struct {
	HasIngress       bool
	HasGatewayAPI    bool
	HasMetricsServer bool
}

type OnChangeFunc func(Features)

// Discovery polls the API server for capability groups and invokes the
// callback whenever the feature set changes.
type Discovery struct {
	client   discovery.DiscoveryInterface
	features Features
	onChange OnChangeFunc
	mu       sync.RWMutex
	ready    bool
	stopCh   chan struct{}
}

func New(client discovery.DiscoveryInterface, onChange OnChangeFunc) *Discovery {
	return &Discovery{
		client:   client,
		onChange: onChange,
		stopCh:   make(chan struct{}),
	}
}

func (d *Discovery) GetFeatures() Features {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.features
}

// IsReady reports whether the initial poll has completed.
func (d *Discovery) IsReady() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.ready
}

func (d *Discovery) Start(ctx context.Context) {
	d.poll()
	go func() {
		ticker := time.NewTicker(60 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.poll()
			case <-ctx.Done():
				return
			case <-d.stopCh:
				return
			}
		}
	}()
}

func (d *Discovery) Stop() {
	close(d.stopCh)
}

func (d *Discovery) poll() {
	groups, err := d.client.ServerGroups()
	if err != nil {
		slog.Debug("discovery: failed to fetch server groups", "error", err)
		return
	}

	newFeatures := Features{}
	for _, group := range groups.Groups {
		switch group.Name {
		case "networking.k8s.io":
			newFeatures.HasIngress = true
		case "gateway.networking.k8s.io":
			newFeatures.HasGatewayAPI = true
		case "metrics.k8s.io":
			newFeatures.HasMetricsServer = true
		}
	}

	d.mu.Lock()
	changed := newFeatures != d.features
	d.features = newFeatures
	d.ready = true
	d.mu.Unlock()

	if changed && d.onChange != nil {
		d.onChange(newFeatures)
	}
}
