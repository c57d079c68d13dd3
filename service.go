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

package sharedkernel

import (
	"context"
	"io"

	"github.com/openhrcore/sharedkernel/database"
	"github.com/openhrcore/sharedkernel/repository"
	"github.com/openhrcore/sharedkernel/types"
	"github.com/openhrcore/sharedkernel/unitofwork"
	"github.com/uptrace/bun"
)

// Service is the session-scoped facade over one entity type: the repository
// surface plus the unit-of-work surface, both bound to the same session.
// A Service instance serves one logical operation and must be closed.
type Service[T any] interface {
	io.Closer

	// Get returns a single entity by its identifier.
	Get(ctx context.Context, id any) (*T, error)

	// All returns all entities.
	All(ctx context.Context) ([]*T, error)

	// Find returns entities matching the filter, eager-loading the named
	// relations.
	Find(ctx context.Context, filter *types.QueryFilter, includes ...string) ([]*T, error)

	// FindOne returns the first entity matching the filter; no match is an
	// error.
	FindOne(ctx context.Context, filter *types.QueryFilter, includes ...string) (*T, error)

	// Query executes a raw query and maps the results to entities.
	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	// Page returns a paginated list of entities.
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)

	// Save queues one or more new entities for insertion.
	Save(ctx context.Context, model ...*T) error

	// Update queues modifications to existing entities.
	Update(ctx context.Context, model ...*T) error

	// Remove queues deletion of existing entities.
	Remove(ctx context.Context, model ...*T) error

	// RemoveByID queues deletion of the entity with the given identifier.
	RemoveByID(ctx context.Context, id any) error

	// BeginTransaction opens a transaction on the underlying session.
	BeginTransaction(ctx context.Context) error

	// SaveChanges flushes queued mutations to the store.
	SaveChanges(ctx context.Context) error

	// CommitTransaction finalizes the open transaction.
	CommitTransaction(ctx context.Context) error

	// RollbackTransaction discards the open transaction.
	RollbackTransaction(ctx context.Context) error

	// Repository exposes the underlying generic repository.
	Repository() repository.Repository[T]

	// UnitOfWork exposes the underlying unit of work.
	UnitOfWork() unitofwork.UnitOfWork

	// SelectBuilder returns a Bun select query builder for the entity.
	SelectBuilder() *bun.SelectQuery

	// InsertBuilder returns a Bun insert query builder for the entity.
	InsertBuilder() *bun.InsertQuery

	// UpdateBuilder returns a Bun update query builder for the entity.
	UpdateBuilder() *bun.UpdateQuery

	// DeleteBuilder returns a Bun delete query builder for the entity.
	DeleteBuilder() *bun.DeleteQuery
}

type baseServiceImpl[T any] struct {
	repo repository.Repository[T]
	uow  unitofwork.UnitOfWork
}

// NewService opens a session on the global database connection and binds a
// repository and unit of work to it. The caller must Close the service.
func NewService[T any](ctx context.Context) (Service[T], error) {
	return NewServiceWithDB[T](ctx, database.GetDB())
}

// NewServiceWithDB is NewService against an explicit Bun DB.
func NewServiceWithDB[T any](ctx context.Context, db *bun.DB) (Service[T], error) {
	session, err := database.NewSession(ctx, db)
	if err != nil {
		return nil, err
	}
	return &baseServiceImpl[T]{
		repo: repository.NewRepository[T](session),
		uow:  unitofwork.NewUnitOfWork(session),
	}, nil
}

func (s *baseServiceImpl[T]) Repository() repository.Repository[T] { return s.repo }

func (s *baseServiceImpl[T]) UnitOfWork() unitofwork.UnitOfWork { return s.uow }

func (s *baseServiceImpl[T]) Get(ctx context.Context, id any) (*T, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *baseServiceImpl[T]) All(ctx context.Context) ([]*T, error) {
	return s.repo.All(ctx)
}

func (s *baseServiceImpl[T]) Find(ctx context.Context, filter *types.QueryFilter, includes ...string) ([]*T, error) {
	return s.repo.Find(ctx, filter, includes...)
}

func (s *baseServiceImpl[T]) FindOne(ctx context.Context, filter *types.QueryFilter, includes ...string) (*T, error) {
	return s.repo.FindOne(ctx, filter, includes...)
}

func (s *baseServiceImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	return s.repo.Query(ctx, query, args...)
}

func (s *baseServiceImpl[T]) Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error) {
	return s.repo.Page(ctx, page)
}

func (s *baseServiceImpl[T]) Save(ctx context.Context, model ...*T) error {
	return s.repo.Add(ctx, model...)
}

func (s *baseServiceImpl[T]) Update(ctx context.Context, model ...*T) error {
	return s.repo.Update(ctx, model...)
}

func (s *baseServiceImpl[T]) Remove(ctx context.Context, model ...*T) error {
	return s.repo.Remove(ctx, model...)
}

func (s *baseServiceImpl[T]) RemoveByID(ctx context.Context, id any) error {
	return s.repo.RemoveByID(ctx, id)
}

func (s *baseServiceImpl[T]) BeginTransaction(ctx context.Context) error {
	return s.uow.BeginTransaction(ctx)
}

func (s *baseServiceImpl[T]) SaveChanges(ctx context.Context) error {
	return s.uow.SaveChanges(ctx)
}

func (s *baseServiceImpl[T]) CommitTransaction(ctx context.Context) error {
	return s.uow.CommitTransaction(ctx)
}

func (s *baseServiceImpl[T]) RollbackTransaction(ctx context.Context) error {
	return s.uow.RollbackTransaction(ctx)
}

func (s *baseServiceImpl[T]) Close() error {
	return s.uow.Close()
}

func (s *baseServiceImpl[T]) SelectBuilder() *bun.SelectQuery {
	return s.repo.NewSelect()
}

func (s *baseServiceImpl[T]) InsertBuilder() *bun.InsertQuery {
	return s.repo.NewInsert()
}

func (s *baseServiceImpl[T]) UpdateBuilder() *bun.UpdateQuery {
	return s.repo.NewUpdate()
}

func (s *baseServiceImpl[T]) DeleteBuilder() *bun.DeleteQuery {
	return s.repo.NewDelete()
}
