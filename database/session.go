/*
 * Copyright 2025 openhrcore.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package database

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/openhrcore/sharedkernel/types"
	"github.com/uptrace/bun"
)

// SessionState is the lifecycle state of a Session. A session starts in
// NoTransaction, moves to InTransaction on Begin and back on Commit or
// Rollback, and ends terminally in Disposed once closed.
type SessionState int

const (
	NoTransaction SessionState = iota
	InTransaction
	Disposed
)

func (s SessionState) String() string {
	switch s {
	case NoTransaction:
		return "NoTransaction"
	case InTransaction:
		return "InTransaction"
	case Disposed:
		return "Disposed"
	default:
		return "unknown"
	}
}

// IsValid reports whether the value is one of the defined states.
func (s SessionState) IsValid() bool {
	return s >= NoTransaction && s <= Disposed
}

// Number returns the numeric state value.
func (s SessionState) Number() int { return int(s) }

var _ types.BaseEnum = NoTransaction

// StateError reports a session or transaction operation invoked in a
// lifecycle state that does not permit it. It marks a programming error;
// callers should not retry.
type StateError struct {
	Op    string
	State SessionState
}

func (e *StateError) Error() string {
	return fmt.Sprintf("database: %s not allowed in session state %s", e.Op, e.State)
}

// IsStateError reports whether err carries a *StateError.
func IsStateError(err error) bool {
	var se *StateError
	return errors.As(err, &se)
}

// PendingOp is a queued mutation executed against the session's current
// executor when the session flushes.
type PendingOp func(ctx context.Context, idb bun.IDB) error

// Session owns one database connection taken from the pool and the
// transaction running on it, if any. Repositories sharing the session queue
// their mutations here; only the unit of work may flush or finalize them.
//
// A session serves one logical operation at a time. The mutex keeps
// accidental concurrent use from corrupting the state machine, but it is
// not an invitation to share a session across goroutines.
type Session struct {
	db     *bun.DB
	conn   bun.Conn
	logger Logger

	mu      sync.Mutex
	state   SessionState
	tx      bun.Tx
	pending []PendingOp
}

// NewSession acquires a dedicated connection from the pool and wraps it in
// a session in the NoTransaction state. The caller owns the session and
// must Close it.
func NewSession(ctx context.Context, db *bun.DB) (*Session, error) {
	if db == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire session connection: %w", err)
	}
	return &Session{
		db:     db,
		conn:   conn,
		logger: GetLogger(),
		state:  NoTransaction,
	}, nil
}

// DB returns the pool the session was created from. Query builders that do
// not need session semantics may use it directly.
func (s *Session) DB() *bun.DB { return s.db }

// State returns the current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Executor returns the handle queries must run on: the open transaction
// while InTransaction, the dedicated connection otherwise. Disposed
// sessions return a StateError.
func (s *Session) Executor() (bun.IDB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.executorLocked("query")
}

func (s *Session) executorLocked(op string) (bun.IDB, error) {
	switch s.state {
	case InTransaction:
		return s.tx, nil
	case NoTransaction:
		return s.conn, nil
	default:
		return nil, &StateError{Op: op, State: s.state}
	}
}

// Enqueue appends a mutation to the pending queue. The mutation is not
// durable until the session flushes.
func (s *Session) Enqueue(op PendingOp) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == Disposed {
		return &StateError{Op: "enqueue", State: s.state}
	}
	s.pending = append(s.pending, op)
	return nil
}

// PendingCount returns the number of queued, unflushed mutations.
func (s *Session) PendingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Begin opens a transaction on the session connection. Valid only in the
// NoTransaction state.
func (s *Session) Begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != NoTransaction {
		return &StateError{Op: "begin transaction", State: s.state}
	}

	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	s.tx = tx
	s.state = InTransaction
	s.logger.Debug("Session transaction started")
	return nil
}

// Flush executes the queued mutations in order against the current
// executor. Outside a transaction each mutation autocommits on the engine;
// inside one they stay pending until Commit. Flushing repeatedly or with an
// empty queue is safe. On a store error the failed and remaining mutations
// stay queued and the error propagates unchanged.
func (s *Session) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idb, err := s.executorLocked("flush")
	if err != nil {
		return err
	}

	for len(s.pending) > 0 {
		op := s.pending[0]
		if err := op(ctx, idb); err != nil {
			return err
		}
		s.pending = s.pending[1:]
	}
	return nil
}

// Commit finalizes the open transaction. Valid only while InTransaction.
// Mutations still queued (not flushed) remain queued for a later flush.
func (s *Session) Commit(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InTransaction {
		return &StateError{Op: "commit transaction", State: s.state}
	}

	err := s.tx.Commit()
	s.state = NoTransaction
	if err != nil {
		return err
	}
	s.logger.Debug("Session transaction committed")
	return nil
}

// Rollback discards the open transaction. Valid only while InTransaction.
func (s *Session) Rollback(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != InTransaction {
		return &StateError{Op: "rollback transaction", State: s.state}
	}

	err := s.tx.Rollback()
	s.state = NoTransaction
	if err != nil {
		return err
	}
	s.logger.Debug("Session transaction rolled back")
	return nil
}

// Close releases the session connection from any state. An open transaction
// is rolled back first. Closing an already disposed session is a no-op.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == Disposed {
		return nil
	}

	if s.state == InTransaction {
		if err := s.tx.Rollback(); err != nil {
			s.logger.Error("Failed to rollback transaction on session close", "error", err)
		}
	}

	s.state = Disposed
	s.pending = nil

	err := s.conn.Close()
	if err != nil {
		s.logger.Error("Failed to release session connection", "error", err)
		return err
	}
	s.logger.Debug("Session disposed")
	return nil
}
