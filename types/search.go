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

import "sort"

// FieldMatch pairs an entity field name with a substring the field value
// must contain.
type FieldMatch struct {
	Field string
	Value string
}

// SearchCriteria is an ordered sequence of field→substring pairs that the
// criteria composer combines into one AND predicate. Iteration order is the
// insertion order, so query text is reproducible.
type SearchCriteria struct {
	pairs []FieldMatch
}

// NewSearchCriteria returns empty criteria (the always-true predicate).
func NewSearchCriteria() *SearchCriteria {
	return &SearchCriteria{}
}

// SearchCriteriaFromMap builds criteria from a field→value map. Keys are
// sorted so callers handing over maps still get deterministic queries.
func SearchCriteriaFromMap(m map[string]string) *SearchCriteria {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	c := NewSearchCriteria()
	for _, k := range keys {
		c.Match(k, m[k])
	}
	return c
}

// Match appends a field→substring pair and returns the criteria for chaining.
func (c *SearchCriteria) Match(field, value string) *SearchCriteria {
	c.pairs = append(c.pairs, FieldMatch{Field: field, Value: value})
	return c
}

// Pairs returns the pairs in insertion order.
func (c *SearchCriteria) Pairs() []FieldMatch {
	if c == nil {
		return nil
	}
	return c.pairs
}

// IsEmpty reports whether the criteria carries no pairs.
func (c *SearchCriteria) IsEmpty() bool {
	return c == nil || len(c.pairs) == 0
}
