package store

import (
	"context"
	"fmt"

	"github.com/relloyd/stageload/constants"
	"github.com/relloyd/stageload/logger"
)

// OpenStore connects to the store described by c.
func OpenStore(ctx context.Context, log logger.Logger, c ConnectionDetails) (Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	switch c.Type {
	case constants.ConnectionTypeSupabase, constants.ConnectionTypePostgrest:
		return NewPostgrestStore(log, c, nil)
	case constants.ConnectionTypePostgres:
		return newPostgresStore(ctx, log, c)
	case constants.ConnectionTypeSqlServer:
		return newSqlServerStore(ctx, log, c)
	case constants.ConnectionTypeSnowflake:
		return newSnowflakeStore(ctx, log, c)
	}
	return nil, fmt.Errorf("unsupported store type %q", c.Type)
}
