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

package unitofwork

import (
	"context"
	"io"

	"github.com/openhrcore/sharedkernel/database"
)

// UnitOfWork owns the transaction lifecycle of one database session.
//
// SaveChanges flushes queued mutations to the store; outside a transaction
// each one autocommits, inside one they remain provisional until
// CommitTransaction. Calls that do not fit the current state fail with a
// StateError. Close is idempotent and rolls back anything still open.
type UnitOfWork interface {
	io.Closer

	BeginTransaction(ctx context.Context) error

	SaveChanges(ctx context.Context) error

	CommitTransaction(ctx context.Context) error

	RollbackTransaction(ctx context.Context) error

	State() database.SessionState

	Session() *database.Session
}

type unitOfWorkImpl struct {
	session *database.Session
	logger  database.Logger
}

// NewUnitOfWork wraps a session in a unit of work. The unit of work takes
// over the session lifecycle; closing it closes the session.
func NewUnitOfWork(session *database.Session) UnitOfWork {
	return &unitOfWorkImpl{session: session, logger: database.GetLogger()}
}

func (u *unitOfWorkImpl) Session() *database.Session { return u.session }

func (u *unitOfWorkImpl) State() database.SessionState { return u.session.State() }

func (u *unitOfWorkImpl) BeginTransaction(ctx context.Context) error {
	if err := u.session.Begin(ctx); err != nil {
		return err
	}
	u.logger.Debug("Unit of work transaction started")
	return nil
}

func (u *unitOfWorkImpl) SaveChanges(ctx context.Context) error {
	pending := u.session.PendingCount()
	if err := u.session.Flush(ctx); err != nil {
		return err
	}
	if pending > 0 {
		u.logger.Debug("Unit of work flushed pending changes", "count", pending)
	}
	return nil
}

func (u *unitOfWorkImpl) CommitTransaction(ctx context.Context) error {
	if err := u.session.Commit(ctx); err != nil {
		return err
	}
	u.logger.Debug("Unit of work transaction committed")
	return nil
}

func (u *unitOfWorkImpl) RollbackTransaction(ctx context.Context) error {
	if err := u.session.Rollback(ctx); err != nil {
		return err
	}
	u.logger.Debug("Unit of work transaction rolled back")
	return nil
}

func (u *unitOfWorkImpl) Close() error {
	return u.session.Close()
}
