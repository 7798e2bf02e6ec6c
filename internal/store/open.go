package store

import (
	"context"
	"fmt"

	"forum/internal/config"
	"forum/internal/logging"
)

// Open returns a Lazy store for the configured driver. Nothing is dialled
// until the first post operation.
func Open(cfg config.StoreConfig, log logging.Logger) (*Lazy, error) {
	var open Opener
	switch cfg.Driver {
	case "mongo":
		open = func(ctx context.Context) (Store, error) {
			return OpenMongo(ctx, cfg.URI, cfg.Database, cfg.Collection)
		}
	case "postgres":
		open = func(ctx context.Context) (Store, error) {
			return OpenPostgres(ctx, cfg.URI)
		}
	case "sqlite":
		open = func(ctx context.Context) (Store, error) {
			return OpenSQLite(ctx, cfg.URI)
		}
	case "memory":
		open = func(context.Context) (Store, error) {
			return NewMemory(), nil
		}
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
	}
	l := NewLazy(cfg.Driver, open, log)
	if cfg.ConnectTimeout > 0 {
		l.ConnectTimeout = cfg.ConnectTimeout
	}
	return l, nil
}
