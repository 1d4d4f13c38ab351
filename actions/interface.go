package actions

import (
	"context"

	"github.com/relloyd/stageload/logger"
	"github.com/relloyd/stageload/store"
)

type ConnectionGetterSetter interface {
	Get(key string, out interface{}) error
	Set(key string, val interface{}) error
	Delete(key string) error
}

type ConnectionSaver interface {
	ConnectionGetterSetter
	SetConnectionDetails(conn store.ConnectionDetails) error
}

type ConnectionLister interface {
	GetAllKeys() ([]string, error)
	GetConnectionDetails(connectionName string) (*store.ConnectionDetails, error)
}

// StoreOpener connects to the store described by a connection.
type StoreOpener func(ctx context.Context, log logger.Logger, c store.ConnectionDetails) (store.Store, error)
