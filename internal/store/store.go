// Package store persists posts. Every backend implements Store; the HTTP
// layer only ever talks to a Lazy wrapper, which opens the backend on the
// first operation and reuses it afterwards.
package store

import (
	"context"
	"errors"

	"forum/internal/model"
)

var (
	ErrNotFound  = errors.New("post not found")
	ErrInvalidID = errors.New("invalid post id")
)

type Store interface {
	Insert(ctx context.Context, title, text string) (string, error)
	FindByID(ctx context.Context, id string) (model.Post, error)
	List(ctx context.Context) ([]model.Post, error)
	Close(ctx context.Context) error
}
