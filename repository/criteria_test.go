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

package repository_test

import (
	"reflect"
	"testing"

	"github.com/openhrcore/sharedkernel/repository"
	"github.com/openhrcore/sharedkernel/types"
	"github.com/uptrace/bun/dialect"
	"github.com/uptrace/bun/schema"
)

func playerTable(t *testing.T) *schema.Table {
	t.Helper()
	return newTestDB(t).Table(reflect.TypeFor[Player]())
}

func TestComposeSearchFilterAnd(t *testing.T) {
	table := playerTable(t)

	filter := repository.ComposeSearchFilter(dialect.SQLite, table, types.NewSearchCriteria().
		Match("TestName", "abc").
		Match("ID", "123"))
	if filter == nil {
		t.Fatal("expected a filter")
	}
	if filter.Schema != "instr(test_name, ?) > 0 AND instr(id, ?) > 0" {
		t.Fatalf("unexpected schema: %q", filter.Schema)
	}
	if len(filter.Args) != 2 || filter.Args[0] != "abc" || filter.Args[1] != "123" {
		t.Fatalf("unexpected args: %v", filter.Args)
	}
}

func TestComposeSearchFilterDialects(t *testing.T) {
	table := playerTable(t)
	criteria := types.NewSearchCriteria().Match("TestName", "abc")

	mysql := repository.ComposeSearchFilter(dialect.MySQL, table, criteria)
	if mysql.Schema != "locate(binary ?, test_name) > 0" {
		t.Fatalf("unexpected mysql schema: %q", mysql.Schema)
	}
	pg := repository.ComposeSearchFilter(dialect.PG, table, criteria)
	if pg.Schema != "strpos(test_name, ?) > 0" {
		t.Fatalf("unexpected postgres schema: %q", pg.Schema)
	}
}

func TestComposeSearchFilterLiteralValue(t *testing.T) {
	table := playerTable(t)

	filter := repository.ComposeSearchFilter(dialect.SQLite, table, types.NewSearchCriteria().
		Match("TestName", "100%_raw"))
	if filter == nil {
		t.Fatal("expected a filter")
	}
	if filter.Args[0] != "100%_raw" {
		t.Fatalf("value must be bound untouched, got %v", filter.Args[0])
	}
}

func TestComposeSearchFilterEmpty(t *testing.T) {
	table := playerTable(t)

	if f := repository.ComposeSearchFilter(dialect.SQLite, table, nil); f != nil {
		t.Fatalf("nil criteria should compose to nil, got %+v", f)
	}
	if f := repository.ComposeSearchFilter(dialect.SQLite, table, types.NewSearchCriteria()); f != nil {
		t.Fatalf("empty criteria should compose to nil, got %+v", f)
	}
}

func TestComposeSearchFilterSkipsUnknownAndNonString(t *testing.T) {
	table := playerTable(t)

	filter := repository.ComposeSearchFilter(dialect.SQLite, table, types.NewSearchCriteria().
		Match("NoSuchField", "x").
		Match("Score", "5").
		Match("TestName", "kept"))
	if filter == nil {
		t.Fatal("expected a filter")
	}
	if filter.Schema != "instr(test_name, ?) > 0" {
		t.Fatalf("unknown or non-string fields leaked into schema: %q", filter.Schema)
	}

	onlyBad := repository.ComposeSearchFilter(dialect.SQLite, table, types.NewSearchCriteria().
		Match("NoSuchField", "x").
		Match("Score", "5"))
	if onlyBad != nil {
		t.Fatalf("all-skipped criteria should compose to nil, got %+v", onlyBad)
	}
}

func TestComposeSearchFilterFromMapDeterministic(t *testing.T) {
	table := playerTable(t)
	criteria := map[string]string{"TestName": "a", "ID": "b"}

	first := repository.ComposeSearchFilter(dialect.SQLite, table, types.SearchCriteriaFromMap(criteria))
	for i := 0; i < 10; i++ {
		again := repository.ComposeSearchFilter(dialect.SQLite, table, types.SearchCriteriaFromMap(criteria))
		if again.Schema != first.Schema {
			t.Fatalf("map criteria not deterministic: %q vs %q", again.Schema, first.Schema)
		}
	}
	if first.Schema != "instr(id, ?) > 0 AND instr(test_name, ?) > 0" {
		t.Fatalf("map keys not sorted: %q", first.Schema)
	}
}
