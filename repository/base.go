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
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/openhrcore/sharedkernel/database"
	"github.com/openhrcore/sharedkernel/types"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/schema"
)

type baseRepositoryImpl[T any] struct {
	session *database.Session
	table   *schema.Table
}

// NewRepository returns a generic repository bound to the provided session.
// Reads run on the session executor, so they observe the session's open
// transaction; mutations are queued on the session and execute on flush.
func NewRepository[T any](session *database.Session) Repository[T] {
	return &baseRepositoryImpl[T]{
		session: session,
		table:   session.DB().Table(reflect.TypeFor[T]()),
	}
}

func (r *baseRepositoryImpl[T]) Session() *database.Session { return r.session }

func (r *baseRepositoryImpl[T]) Table() *schema.Table { return r.table }

func (r *baseRepositoryImpl[T]) Dialect() schema.Dialect { return r.session.DB().Dialect() }

func (r *baseRepositoryImpl[T]) NewSelect() *bun.SelectQuery { return r.session.DB().NewSelect() }

func (r *baseRepositoryImpl[T]) NewInsert() *bun.InsertQuery { return r.session.DB().NewInsert() }

func (r *baseRepositoryImpl[T]) NewUpdate() *bun.UpdateQuery { return r.session.DB().NewUpdate() }

func (r *baseRepositoryImpl[T]) NewDelete() *bun.DeleteQuery { return r.session.DB().NewDelete() }

func (r *baseRepositoryImpl[T]) validateEntities(op string, entity []*T) ([]*T, error) {
	if len(entity) == 0 {
		return nil, &ValidationError{Op: op, Reason: "at least one entity is required"}
	}
	entities := make([]*T, len(entity))
	for i, e := range entity {
		if e == nil {
			return nil, &ValidationError{Op: op, Reason: "entity must not be nil"}
		}
		entities[i] = e
	}
	return entities, nil
}

func (r *baseRepositoryImpl[T]) GetByID(ctx context.Context, id any) (*T, error) {
	if id == nil {
		return nil, &ValidationError{Op: "get by id", Reason: "id must not be nil"}
	}
	idb, err := r.session.Executor()
	if err != nil {
		return nil, err
	}
	var entity T
	err = idb.NewSelect().Model(&entity).Where("id = ?", id).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: r.table.TypeName, ID: id}
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) All(ctx context.Context) ([]*T, error) {
	idb, err := r.session.Executor()
	if err != nil {
		return nil, err
	}
	var entities []*T
	err = idb.NewSelect().Model(&entities).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Find(ctx context.Context, filter *types.QueryFilter, includes ...string) ([]*T, error) {
	if filter == nil {
		return nil, &ValidationError{Op: "find", Reason: "filter must not be nil"}
	}
	idb, err := r.session.Executor()
	if err != nil {
		return nil, err
	}
	var entities []*T
	query := idb.NewSelect().Model(&entities)
	for _, relation := range includes {
		query = query.Relation(relation)
	}
	err = query.Where(filter.Schema, filter.Args...).Scan(ctx)
	if err != nil {
		return nil, err
	}
	return entities, nil
}

// FindOne returns the first entity matching the filter. No match is an
// error, not a nil result.
func (r *baseRepositoryImpl[T]) FindOne(ctx context.Context, filter *types.QueryFilter, includes ...string) (*T, error) {
	if filter == nil {
		return nil, &ValidationError{Op: "find one", Reason: "filter must not be nil"}
	}
	idb, err := r.session.Executor()
	if err != nil {
		return nil, err
	}
	var entity T
	query := idb.NewSelect().Model(&entity)
	for _, relation := range includes {
		query = query.Relation(relation)
	}
	err = query.Where(filter.Schema, filter.Args...).Limit(1).Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, &NotFoundError{Entity: r.table.TypeName}
	}
	if err != nil {
		return nil, err
	}
	return &entity, nil
}

func (r *baseRepositoryImpl[T]) Query(ctx context.Context, query string, args ...interface{}) ([]*T, error) {
	idb, err := r.session.Executor()
	if err != nil {
		return nil, err
	}
	var entities []*T
	err = idb.NewSelect().Model(&entities).Where(query, args...).Scan(ctx)
	return entities, err
}

func (r *baseRepositoryImpl[T]) Page(ctx context.Context, pageRequest *types.PageRequest) (*types.Pagination[T], error) {
	if pageRequest == nil {
		return nil, &ValidationError{Op: "page", Reason: "page request is required"}
	}
	if pageRequest.GetPage() < 1 {
		return nil, &ValidationError{Op: "page", Reason: fmt.Sprintf("page must be >= 1, got %d", pageRequest.GetPage())}
	}
	if pageRequest.GetPageSize() < 1 {
		return nil, &ValidationError{Op: "page", Reason: fmt.Sprintf("page size must be >= 1, got %d", pageRequest.GetPageSize())}
	}
	var orderField *schema.Field
	if pageRequest.GetOrderBy() != "" {
		orderField = resolveField(r.table, pageRequest.GetOrderBy())
		if orderField == nil {
			return nil, &ValidationError{Op: "page", Reason: fmt.Sprintf("unknown order field %q", pageRequest.GetOrderBy())}
		}
	}

	idb, err := r.session.Executor()
	if err != nil {
		return nil, err
	}

	var entities []*T
	query := idb.NewSelect().Model(&entities)
	for _, relation := range pageRequest.GetIncludes() {
		query = query.Relation(relation)
	}
	if filter := ComposeSearchFilter(r.Dialect().Name(), r.table, pageRequest.GetCriteria()); filter != nil {
		query = query.Where(filter.Schema, filter.Args...)
	}

	pagination := types.NewDefaultPagination[T](pageRequest.GetPage(), pageRequest.GetPageSize())
	total, err := query.Count(ctx)
	if err != nil {
		return nil, err
	}
	if total == 0 {
		return pagination, nil
	}

	if orderField != nil {
		if pageRequest.Ascending() {
			query = query.OrderExpr("? ASC", bun.Ident(orderField.Name))
		} else {
			query = query.OrderExpr("? DESC", bun.Ident(orderField.Name))
		}
	}
	err = query.
		Offset(pageRequest.GetOffset()).
		Limit(pageRequest.GetPageSize()).
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	pagination.Total = total
	pagination.Items = entities
	return pagination, nil
}

func (r *baseRepositoryImpl[T]) Add(ctx context.Context, entity ...*T) error {
	entities, err := r.validateEntities("add", entity)
	if err != nil {
		return err
	}
	return r.session.Enqueue(func(ctx context.Context, idb bun.IDB) error {
		_, err := idb.NewInsert().Model(&entities).Exec(ctx)
		return err
	})
}

func (r *baseRepositoryImpl[T]) Update(ctx context.Context, entity ...*T) error {
	entities, err := r.validateEntities("update", entity)
	if err != nil {
		return err
	}
	return r.session.Enqueue(func(ctx context.Context, idb bun.IDB) error {
		for _, e := range entities {
			if _, err := idb.NewUpdate().Model(e).WherePK().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *baseRepositoryImpl[T]) Remove(ctx context.Context, entity ...*T) error {
	entities, err := r.validateEntities("remove", entity)
	if err != nil {
		return err
	}
	return r.session.Enqueue(func(ctx context.Context, idb bun.IDB) error {
		for _, e := range entities {
			if _, err := idb.NewDelete().Model(e).WherePK().Exec(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

// RemoveByID loads the entity before queueing the delete, so a missing row
// surfaces immediately as NotFoundError rather than as a silent no-op later.
func (r *baseRepositoryImpl[T]) RemoveByID(ctx context.Context, id any) error {
	entity, err := r.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return r.session.Enqueue(func(ctx context.Context, idb bun.IDB) error {
		_, err := idb.NewDelete().Model(entity).WherePK().Exec(ctx)
		return err
	})
}

var aggregateFns = map[string]struct{}{
	"max":   {},
	"min":   {},
	"sum":   {},
	"avg":   {},
	"count": {},
}

func (r *baseRepositoryImpl[T]) Aggregate(ctx context.Context, fn string, field string, dest interface{}) error {
	fn = strings.ToLower(strings.TrimSpace(fn))
	if _, ok := aggregateFns[fn]; !ok {
		return &ValidationError{Op: "aggregate", Reason: fmt.Sprintf("unsupported aggregate function %q", fn)}
	}
	resolved := resolveField(r.table, field)
	if resolved == nil {
		return &ValidationError{Op: "aggregate", Reason: fmt.Sprintf("unknown field %q", field)}
	}
	idb, err := r.session.Executor()
	if err != nil {
		return err
	}
	return idb.NewSelect().
		Model((*T)(nil)).
		ColumnExpr(fn+"(?)", bun.Ident(resolved.Name)).
		Scan(ctx, dest)
}
