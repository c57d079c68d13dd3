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
	"fmt"
	"reflect"
	"strings"

	"github.com/openhrcore/sharedkernel/types"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"
)

// ComposeSearchFilter turns search criteria into one AND-combined substring
// predicate over the entity's string fields. For each pair the field is
// resolved by exact name on the Bun schema table; pairs naming a field that
// does not exist, or that is not string-kinded, are skipped without error.
// Empty criteria produce a nil filter, i.e. the always-true predicate.
//
// Matching is case-sensitive literal containment. The value is bound as a
// plain argument, never interpolated into a pattern, so LIKE metacharacters
// such as % and _ carry no special meaning.
func ComposeSearchFilter(name dialect.Name, table *schema.Table, criteria *types.SearchCriteria) *types.QueryFilter {
	if table == nil || criteria.IsEmpty() {
		return nil
	}

	var clauses []string
	var args []interface{}
	for _, pair := range criteria.Pairs() {
		field := resolveField(table, pair.Field)
		if field == nil || field.IndirectType.Kind() != reflect.String {
			continue
		}
		clauses = append(clauses, containsClause(name, field.Name))
		args = append(args, pair.Value)
	}

	if len(clauses) == 0 {
		return nil
	}
	return types.NewQueryFilter(strings.Join(clauses, " AND "), args...)
}

// containsClause builds the case-sensitive containment predicate for one
// column. MySQL compares case-insensitively under its default collations,
// so the needle is forced into a binary comparison there.
func containsClause(name dialect.Name, column string) string {
	switch name {
	case dialect.MySQL:
		return fmt.Sprintf("locate(binary ?, %s) > 0", column)
	case dialect.PG:
		return fmt.Sprintf("strpos(%s, ?) > 0", column)
	default:
		return fmt.Sprintf("instr(%s, ?) > 0", column)
	}
}

// resolveField finds a table field by Go struct field name, falling back to
// the SQL column name.
func resolveField(table *schema.Table, name string) *schema.Field {
	for _, f := range table.Fields {
		if f.GoName == name || f.Name == name {
			return f
		}
	}
	return nil
}
