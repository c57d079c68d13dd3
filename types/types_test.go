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

import "testing"

func TestNewEntityDefaults(t *testing.T) {
	e := NewEntity()
	if e.ID == "" {
		t.Fatal("identity not assigned")
	}
	if e.CreatedAt.IsZero() {
		t.Fatal("creation timestamp not set")
	}
	if !e.IsActive || e.IsDeleted {
		t.Fatalf("unexpected flags: active=%v deleted=%v", e.IsActive, e.IsDeleted)
	}
	if e.UpdatedAt != nil || e.CreatedBy != nil || e.UpdatedBy != nil {
		t.Fatal("audit fields must start unset")
	}

	other := NewEntity()
	if other.ID == e.ID {
		t.Fatal("identities must be unique")
	}
}

func TestEntityMarkDeleted(t *testing.T) {
	e := NewEntity()
	e.MarkDeleted()
	if !e.IsDeleted || e.IsActive {
		t.Fatalf("unexpected flags after delete: active=%v deleted=%v", e.IsActive, e.IsDeleted)
	}
}

func TestSearchCriteriaOrder(t *testing.T) {
	c := NewSearchCriteria().Match("B", "2").Match("A", "1")
	pairs := c.Pairs()
	if len(pairs) != 2 || pairs[0].Field != "B" || pairs[1].Field != "A" {
		t.Fatalf("insertion order not preserved: %v", pairs)
	}
	if c.IsEmpty() {
		t.Fatal("non-empty criteria reported empty")
	}

	var nilCriteria *SearchCriteria
	if !nilCriteria.IsEmpty() || nilCriteria.Pairs() != nil {
		t.Fatal("nil criteria must behave as empty")
	}
}

func TestSearchCriteriaFromMapSorted(t *testing.T) {
	c := SearchCriteriaFromMap(map[string]string{"b": "2", "a": "1", "c": "3"})
	pairs := c.Pairs()
	if pairs[0].Field != "a" || pairs[1].Field != "b" || pairs[2].Field != "c" {
		t.Fatalf("map keys not sorted: %v", pairs)
	}
}

func TestPageRequestOffset(t *testing.T) {
	p := NewPageRequest(3, 10)
	if p.GetOffset() != 20 {
		t.Fatalf("offset = %d, want 20", p.GetOffset())
	}
	if !p.Ascending() {
		t.Fatal("default direction must be ascending")
	}
	p.OrderBy("Name", false).Include("Team", "Owner")
	if p.GetOrderBy() != "Name" || p.Ascending() {
		t.Fatalf("order not applied: %q asc=%v", p.GetOrderBy(), p.Ascending())
	}
	if len(p.GetIncludes()) != 2 {
		t.Fatalf("includes not accumulated: %v", p.GetIncludes())
	}
}

func TestJSONMapRoundTrip(t *testing.T) {
	m := JSONMap{"k": "v", "n": float64(2)}
	value, err := m.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var fromBytes JSONMap
	if err := fromBytes.Scan(value); err != nil {
		t.Fatalf("scan bytes: %v", err)
	}
	if fromBytes["k"] != "v" || fromBytes["n"] != float64(2) {
		t.Fatalf("unexpected scan result: %v", fromBytes)
	}

	var fromString JSONMap
	if err := fromString.Scan(`{"k":"v"}`); err != nil {
		t.Fatalf("scan string: %v", err)
	}
	if fromString["k"] != "v" {
		t.Fatalf("unexpected scan result: %v", fromString)
	}

	var fromNil JSONMap
	if err := fromNil.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if fromNil == nil || len(fromNil) != 0 {
		t.Fatalf("nil column must scan to an empty map, got %v", fromNil)
	}
}

func TestJSONListRoundTrip(t *testing.T) {
	l := JSONList{{"k": "v"}, {"n": float64(2)}}
	value, err := l.Value()
	if err != nil {
		t.Fatalf("value: %v", err)
	}

	var scanned JSONList
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(scanned) != 2 || scanned[0]["k"] != "v" || scanned[1]["n"] != float64(2) {
		t.Fatalf("unexpected scan result: %v", scanned)
	}

	var nilList JSONList
	nilValue, err := nilList.Value()
	if err != nil || nilValue != nil {
		t.Fatalf("nil list must value to nil, got %v err=%v", nilValue, err)
	}
	if err := nilList.Scan(nil); err != nil {
		t.Fatalf("scan nil: %v", err)
	}
	if nilList == nil || len(nilList) != 0 {
		t.Fatalf("nil column must scan to an empty list, got %v", nilList)
	}
}
