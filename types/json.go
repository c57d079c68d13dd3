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

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
)

// JSONMap maps a JSON object column onto a Go map. Useful for free-form
// entity attributes that do not deserve their own columns.
type JSONMap map[string]interface{}

// JSONList maps a JSON array column onto a slice of objects.
type JSONList []JSONMap

// Value implements driver.Valuer for JSONMap.
func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

// Scan implements sql.Scanner for JSONMap.
func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = make(JSONMap)
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, m)
}

// Value implements driver.Valuer for JSONList.
func (l JSONList) Value() (driver.Value, error) {
	if l == nil {
		return nil, nil
	}
	return json.Marshal(l)
}

// Scan implements sql.Scanner for JSONList.
func (l *JSONList) Scan(value interface{}) error {
	if value == nil {
		*l = make(JSONList, 0)
		return nil
	}
	raw, err := jsonBytes(value)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, l)
}

func jsonBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, fmt.Errorf("unsupported JSON column source type %T", value)
	}
}
