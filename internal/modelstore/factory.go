package modelstore

import (
	"fmt"

	"github.com/soltixdb/trendcast/internal/config"
	"github.com/soltixdb/trendcast/internal/utils"
)

// NewStore creates the store selected by cfg.ModelStore.Type
func NewStore(cfg *config.Config) (Store, error) {
	switch utils.StoreType(cfg.ModelStore.Type) {
	case utils.StoreTypeFile, "":
		return NewFileStore(cfg.ModelStore.Path), nil
	case utils.StoreTypeEtcd:
		store, err := NewEtcdStore(EtcdOptions{
			Endpoints:   cfg.Etcd.Endpoints,
			DialTimeout: cfg.Etcd.DialTimeout,
			Username:    cfg.Etcd.Username,
			Password:    cfg.Etcd.Password,
		}, cfg.ModelStore.EtcdKey)
		if err != nil {
			return nil, err
		}
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported model store type: %s", cfg.ModelStore.Type)
	}
}
