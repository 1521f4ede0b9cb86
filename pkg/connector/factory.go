// pkg/connector/factory.go
package connector

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/config"
)

// Factory creates store connectors from configuration.
type Factory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFactory creates a connector factory.
func NewFactory(cfg *config.Config, logger *zap.Logger) *Factory {
	return &Factory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateStore creates the destination store connector.
func (f *Factory) CreateStore() (*ElasticConnector, error) {
	f.logger.Info("Creating store connector", zap.String("endpoint", f.cfg.Store.Endpoint))

	conn, err := NewElasticConnector(f.cfg.Store, f.logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create store connector: %w", err)
	}

	return conn, nil
}

// Validate performs a connection check by querying cluster health.
func (f *Factory) Validate(ctx context.Context, store StoreConnector) error {
	if _, err := store.ClusterHealth(ctx); err != nil {
		return fmt.Errorf("store connection check failed: %w", err)
	}
	return nil
}
