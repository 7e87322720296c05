package modelstore

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"time"

	clientv3 "go.etcd.io/etcd/client/v3"

	"github.com/soltixdb/trendcast/internal/analytics/forecast"
)

const modelPrefix = "/trendcast/models"

// EtcdStore keeps models in etcd under /trendcast/models/<name>
type EtcdStore struct {
	client *clientv3.Client
	key    string
}

// EtcdOptions configures the etcd connection
type EtcdOptions struct {
	Endpoints   []string
	DialTimeout time.Duration
	Username    string
	Password    string
}

// NewEtcdStore connects to etcd and stores the model under name
func NewEtcdStore(opts EtcdOptions, name string) (*EtcdStore, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: empty model name", ErrInvalidModel)
	}
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client, err := clientv3.New(clientv3.Config{
		Endpoints:   opts.Endpoints,
		DialTimeout: opts.DialTimeout,
		Username:    opts.Username,
		Password:    opts.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to etcd: %w", err)
	}

	return &EtcdStore{
		client: client,
		key:    ModelKey(name),
	}, nil
}

// ModelKey returns the etcd key of a named model
func ModelKey(name string) string {
	return path.Join(modelPrefix, name)
}

// Key returns the key this store saves to
func (s *EtcdStore) Key() string {
	return s.key
}

// Save puts the model record under the configured key
func (s *EtcdStore) Save(ctx context.Context, m forecast.Model) (Handle, error) {
	data, err := Encode(m)
	if err != nil {
		return "", err
	}

	if _, err := s.client.Put(ctx, s.key, string(data)); err != nil {
		return "", fmt.Errorf("failed to store model in etcd: %w", err)
	}
	return Handle(s.key), nil
}

// Load reads the model under h. An empty handle means the configured key.
func (s *EtcdStore) Load(ctx context.Context, h Handle) (forecast.Model, error) {
	key := s.resolve(h)
	resp, err := s.client.Get(ctx, key)
	if err != nil {
		return forecast.Model{}, fmt.Errorf("failed to get model from etcd: %w", err)
	}

	if len(resp.Kvs) == 0 {
		return forecast.Model{}, fmt.Errorf("%w: %s", ErrModelNotFound, key)
	}

	m, err := Decode(resp.Kvs[0].Value)
	if err != nil {
		return forecast.Model{}, fmt.Errorf("%s: %w", key, err)
	}
	return m, nil
}

// Version returns the mod revision of the key
func (s *EtcdStore) Version(ctx context.Context, h Handle) (string, error) {
	key := s.resolve(h)
	resp, err := s.client.Get(ctx, key, clientv3.WithKeysOnly())
	if err != nil {
		return "", fmt.Errorf("failed to get model revision: %w", err)
	}
	if len(resp.Kvs) == 0 {
		return "", fmt.Errorf("%w: %s", ErrModelNotFound, key)
	}
	return strconv.FormatInt(resp.Kvs[0].ModRevision, 10), nil
}

// Close closes the etcd client
func (s *EtcdStore) Close() error {
	return s.client.Close()
}

func (s *EtcdStore) resolve(h Handle) string {
	if h == "" {
		return s.key
	}
	return string(h)
}
