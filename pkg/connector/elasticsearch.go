// pkg/connector/elasticsearch.go
package connector

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"go.uber.org/zap"

	"github.com/skylens/flight-ingress/pkg/config"
)

// ElasticConnector implements StoreConnector over the official
// go-elasticsearch client.
type ElasticConnector struct {
	client   *elasticsearch.Client
	endpoint string
	logger   *zap.Logger
}

// NewElasticConnector creates a connector from the store configuration.
func NewElasticConnector(cfg *config.StoreConfig, logger *zap.Logger) (*ElasticConnector, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.Endpoint},
	}

	if cfg.APIKey != "" {
		esCfg.APIKey = cfg.APIKey
	} else if cfg.User != "" && cfg.Password != "" {
		esCfg.Username = cfg.User
		esCfg.Password = cfg.Password
	}

	if len(cfg.Headers) > 0 {
		esCfg.Header = make(http.Header, len(cfg.Headers))
		for k, v := range cfg.Headers {
			esCfg.Header.Set(k, v)
		}
	}

	if !cfg.SSLVerify {
		esCfg.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
		}
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create store client: %w", err)
	}

	return &ElasticConnector{
		client:   client,
		endpoint: cfg.Endpoint,
		logger:   logger,
	}, nil
}

// Endpoint returns the configured store endpoint.
func (c *ElasticConnector) Endpoint() string {
	return c.endpoint
}

// IndexExists checks whether an index exists.
func (c *ElasticConnector) IndexExists(ctx context.Context, name string) (bool, error) {
	res, err := c.client.Indices.Exists(
		[]string{name},
		c.client.Indices.Exists.WithContext(ctx),
	)
	if err != nil {
		return false, c.wrapTransportError("failed to check index existence", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return false, nil
		}
		return false, fmt.Errorf("error checking index %s: %s", name, res.String())
	}

	return true, nil
}

// CreateIndex creates an index from the mapping definition. A conflict with
// an existing index is logged and recovered, not surfaced.
func (c *ElasticConnector) CreateIndex(ctx context.Context, name string, mapping map[string]interface{}) error {
	body, err := json.Marshal(mapping)
	if err != nil {
		return fmt.Errorf("failed to marshal mapping: %w", err)
	}

	res, err := c.client.Indices.Create(
		name,
		c.client.Indices.Create.WithBody(strings.NewReader(string(body))),
		c.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return c.wrapTransportError("index creation failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusBadRequest || res.StatusCode == http.StatusConflict {
			c.logger.Warn("Index already exists", zap.String("index", name))
			return nil
		}
		detail, _ := io.ReadAll(res.Body)
		return fmt.Errorf("index creation failed for %s: %s", name, string(detail))
	}

	c.logger.Info("Index created", zap.String("index", name))
	return nil
}

// DeleteIndex deletes an index. A 404 means the index was not there, which
// is a normal boolean outcome.
func (c *ElasticConnector) DeleteIndex(ctx context.Context, name string) (bool, error) {
	res, err := c.client.Indices.Delete(
		[]string{name},
		c.client.Indices.Delete.WithContext(ctx),
	)
	if err != nil {
		return false, c.wrapTransportError("index deletion failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return false, nil
		}
		detail, _ := io.ReadAll(res.Body)
		return false, fmt.Errorf("index deletion failed for %s: %s", name, string(detail))
	}

	return true, nil
}

// Bulk submits one newline-delimited bulk payload and decodes the per-item
// response.
func (c *ElasticConnector) Bulk(ctx context.Context, payload string, refresh bool) (*BulkResponse, error) {
	res, err := c.client.Bulk(
		strings.NewReader(payload),
		c.client.Bulk.WithRefresh(strconv.FormatBool(refresh)),
		c.client.Bulk.WithContext(ctx),
	)
	if err != nil {
		return nil, c.wrapTransportError("bulk request failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("bulk request failed: %s", string(detail))
	}

	var result BulkResponse
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode bulk response: %w", err)
	}

	return &result, nil
}

// ClusterHealth returns the cluster health document.
func (c *ElasticConnector) ClusterHealth(ctx context.Context) (map[string]interface{}, error) {
	res, err := c.client.Cluster.Health(c.client.Cluster.Health.WithContext(ctx))
	if err != nil {
		return nil, c.wrapTransportError("cluster health request failed", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("cluster health request failed: %s", string(detail))
	}

	var health map[string]interface{}
	if err := json.NewDecoder(res.Body).Decode(&health); err != nil {
		return nil, fmt.Errorf("failed to decode cluster health response: %w", err)
	}

	return health, nil
}

// ListIndices returns the names of indices matching a pattern.
func (c *ElasticConnector) ListIndices(ctx context.Context, pattern string) ([]string, error) {
	res, err := c.client.Cat.Indices(
		c.client.Cat.Indices.WithIndex(pattern),
		c.client.Cat.Indices.WithFormat("json"),
		c.client.Cat.Indices.WithContext(ctx),
	)
	if err != nil {
		return nil, c.wrapTransportError("failed to list indices", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		if res.StatusCode == http.StatusNotFound {
			return nil, nil
		}
		detail, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("failed to list indices: %s", string(detail))
	}

	var entries []struct {
		Index string `json:"index"`
	}
	if err := json.NewDecoder(res.Body).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode indices response: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.Index != "" {
			names = append(names, e.Index)
		}
	}

	return names, nil
}

// wrapTransportError attaches endpoint guidance to connectivity failures so
// the fatal message tells the operator what to check.
func (c *ElasticConnector) wrapTransportError(msg string, err error) error {
	if IsConnectivityError(err) {
		return fmt.Errorf("cannot connect to the store at %s: %v; check your endpoint configuration and network connectivity", c.endpoint, err)
	}
	return fmt.Errorf("%s: %w", msg, err)
}
