// Package session owns the mapping from a session id to its serialized
// transcript.
package session

import (
	"context"
	"errors"
	"fmt"
)

// Session is one stored conversation.
type Session struct {
	SessionID  string
	Transcript string
}

// Store is the persistence contract shared by the Postgres and in-memory
// implementations.
//
// GetTranscript never reports failure: an unknown id and an unreachable
// backend both yield "". PutTranscript overwrites unconditionally and
// returns the failure so callers may log it. ListSessions surfaces errors.
type Store interface {
	EnsureSchema(ctx context.Context) error
	GetTranscript(ctx context.Context, sessionID string) string
	PutTranscript(ctx context.Context, sessionID, transcript string) error
	ListSessions(ctx context.Context) ([]Session, error)
	Ping(ctx context.Context) error
	Close()
}

// ErrConnection matches any *ConnectionError.
var ErrConnection = errors.New("database connection failed")

// ConnectionError reports that the backing store could not be reached.
type ConnectionError struct {
	Err error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s: %v", ErrConnection, e.Err)
}

func (e *ConnectionError) Unwrap() error { return e.Err }

func (e *ConnectionError) Is(target error) bool { return target == ErrConnection }

// StoreError reports a statement that failed after connecting.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
