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

package types

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest describes pagination, optional search criteria, a single
// ordering field with direction, and relation names to eager-load.
//
// Page numbers are 1-based. Values below 1 are not clamped here; the
// repository rejects them with a validation error before touching the store.
type PageRequest struct {
	page      int
	pageSize  int
	orderBy   string
	ascending bool
	criteria  *SearchCriteria
	includes  []string
}

// NewPageRequest constructs a PageRequest with ascending ordering.
func NewPageRequest(page, pageSize int) *PageRequest {
	return &PageRequest{page: page, pageSize: pageSize, ascending: true}
}

// OrderBy sets the ordering field (entity field name) and direction.
func (p *PageRequest) OrderBy(field string, ascending bool) *PageRequest {
	p.orderBy = field
	p.ascending = ascending
	return p
}

// Search sets the search criteria applied before counting and paging.
func (p *PageRequest) Search(criteria *SearchCriteria) *PageRequest {
	p.criteria = criteria
	return p
}

// Include adds relation names to eager-load with the page items.
func (p *PageRequest) Include(relations ...string) *PageRequest {
	p.includes = append(p.includes, relations...)
	return p
}

func (p *PageRequest) GetPage() int { return p.page }

func (p *PageRequest) GetPageSize() int { return p.pageSize }

// GetOffset returns the row offset for the requested page.
func (p *PageRequest) GetOffset() int { return (p.page - 1) * p.pageSize }

func (p *PageRequest) GetOrderBy() string { return p.orderBy }

func (p *PageRequest) Ascending() bool { return p.ascending }

func (p *PageRequest) GetCriteria() *SearchCriteria { return p.criteria }

func (p *PageRequest) GetIncludes() []string { return p.includes }

// Pagination holds paged result items along with pagination metadata.
// Total is the count over the filtered but unpaged set, so
// len(Items) <= PageSize always holds.
type Pagination[T any] struct {
	Page     int
	PageSize int
	Total    int
	Items    []*T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page int, pageSize int) *Pagination[T] {
	return &Pagination[T]{page, pageSize, 0, make([]*T, 0)}
}
