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

package repository

import (
	"context"
	"database/sql"

	"github.com/openhrcore/sharedkernel/database"
	"github.com/openhrcore/sharedkernel/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

// CrudRepository defines basic CRUD operations for a generic entity type.
// Reads execute immediately against the bound session; mutations are queued
// on the session and take effect when the session flushes.
type CrudRepository[T any] interface {
	GetByID(ctx context.Context, id any) (*T, error)

	All(ctx context.Context) ([]*T, error)

	Find(ctx context.Context, filter *types.QueryFilter, includes ...string) ([]*T, error)

	FindOne(ctx context.Context, filter *types.QueryFilter, includes ...string) (*T, error)

	Query(ctx context.Context, query string, args ...interface{}) ([]*T, error)

	Add(ctx context.Context, entity ...*T) error

	Update(ctx context.Context, entity ...*T) error

	Remove(ctx context.Context, entity ...*T) error

	RemoveByID(ctx context.Context, id any) error
}

// PageQueryRepository defines pagination functionality for listing entities.
type PageQueryRepository[T any] interface {
	Page(ctx context.Context, page *types.PageRequest) (*types.Pagination[T], error)
}

// AggregateRepository defines column aggregates over the entity table.
// fn is one of the supported SQL aggregate names (max, min, sum, avg,
// count); anything else is rejected with a ValidationError. field names an
// entity field; dest receives the scanned result.
type AggregateRepository[T any] interface {
	Aggregate(ctx context.Context, fn string, field string, dest interface{}) error
}

// Repository combines CRUD, pagination, and aggregate operations and
// exposes Bun query builders for advanced use cases. Builder accessors run
// on the underlying pool and bypass the session's transaction scope.
type Repository[T any] interface {
	CrudRepository[T]
	PageQueryRepository[T]
	AggregateRepository[T]
	Session() *database.Session
	Dialect() schema.Dialect
	Table() *schema.Table
	NewSelect() *bun.SelectQuery
	NewInsert() *bun.InsertQuery
	NewUpdate() *bun.UpdateQuery
	NewDelete() *bun.DeleteQuery
}

// Max returns the maximum value of field across all rows of T's table,
// projected as V. An empty table yields V's zero value, not an error.
func Max[V any, T any](ctx context.Context, r Repository[T], field string) (V, error) {
	var dest sql.Null[V]
	if err := r.Aggregate(ctx, "max", field, &dest); err != nil {
		var zero V
		return zero, err
	}
	if !dest.Valid {
		var zero V
		return zero, nil
	}
	return dest.V, nil
}
