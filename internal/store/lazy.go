package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"forum/internal/logging"
	"forum/internal/model"
)

// Opener connects a backend.
type Opener func(ctx context.Context) (Store, error)

// DefaultConnectTimeout bounds a single open attempt.
const DefaultConnectTimeout = 10 * time.Second

// Lazy holds one process-wide backend connection, created on first use.
// The mutex serialises initialisation, so callers queue behind an attempt
// for at most ConnectTimeout. A failed open is not remembered and the next
// operation tries again.
type Lazy struct {
	name string
	open Opener
	log  logging.Logger

	ConnectTimeout time.Duration

	mu      sync.Mutex
	backend Store
}

func NewLazy(name string, open Opener, log logging.Logger) *Lazy {
	if log == nil {
		log = logging.Discard()
	}
	return &Lazy{
		name:           name,
		open:           open,
		log:            log.WithComponent("store").With("driver", name),
		ConnectTimeout: DefaultConnectTimeout,
	}
}

// EnsureConnected opens the backend if nothing is open yet.
func (l *Lazy) EnsureConnected(ctx context.Context) (Store, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.backend != nil {
		return l.backend, nil
	}

	l.log.Info(ctx, "connecting to store")
	openCtx, cancel := context.WithTimeout(ctx, l.ConnectTimeout)
	defer cancel()
	s, err := l.open(openCtx)
	if err != nil {
		l.log.Error(ctx, err, "store connection failed")
		return nil, fmt.Errorf("connect %s store: %w", l.name, err)
	}
	l.log.Info(ctx, "store connected")
	l.backend = s
	return s, nil
}

func (l *Lazy) Insert(ctx context.Context, title, text string) (string, error) {
	s, err := l.EnsureConnected(ctx)
	if err != nil {
		return "", err
	}
	return s.Insert(ctx, title, text)
}

func (l *Lazy) FindByID(ctx context.Context, id string) (model.Post, error) {
	s, err := l.EnsureConnected(ctx)
	if err != nil {
		return model.Post{}, err
	}
	return s.FindByID(ctx, id)
}

func (l *Lazy) List(ctx context.Context) ([]model.Post, error) {
	s, err := l.EnsureConnected(ctx)
	if err != nil {
		return nil, err
	}
	return s.List(ctx)
}

// Close releases the backend if one was opened.
func (l *Lazy) Close(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.backend == nil {
		return nil
	}
	err := l.backend.Close(ctx)
	l.backend = nil
	return err
}
