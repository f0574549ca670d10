// Package storage provides key-value slots that hold serialized blobs.
package storage

import (
	"context"
	"errors"
)

var (
	// ErrNotFound reports that the slot has never been written.
	ErrNotFound = errors.New("storage: slot empty")
	// ErrUnavailable reports that the persistence medium cannot be reached.
	ErrUnavailable = errors.New("storage: unavailable")
)

// KeyValue stores one opaque blob per key.
type KeyValue interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Pinger is implemented by backends that can report their health.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Unavailable is a KeyValue with no medium behind it, as when running
// without any persistence configured.
type Unavailable struct{}

// Get always fails with ErrUnavailable.
func (Unavailable) Get(context.Context, string) ([]byte, error) { return nil, ErrUnavailable }

// Put always fails with ErrUnavailable.
func (Unavailable) Put(context.Context, string, []byte) error { return ErrUnavailable }
