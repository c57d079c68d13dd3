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
	"errors"
	"fmt"
)

// ValidationError reports invalid input detected before any store access:
// nil entities, empty batches, out-of-range paging values, unknown field
// names. The caller can recover by fixing the input.
type ValidationError struct {
	Op     string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("repository: %s: %s", e.Op, e.Reason)
}

// NotFoundError reports that a required single-result lookup matched no
// entity.
type NotFoundError struct {
	Entity string
	ID     interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID == nil {
		return fmt.Sprintf("repository: no %s matches the given criteria", e.Entity)
	}
	return fmt.Sprintf("repository: %s with id %v not found", e.Entity, e.ID)
}

// IsValidationError reports whether err carries a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError reports whether err carries a *NotFoundError.
func IsNotFoundError(err error) bool {
	var ne *NotFoundError
	return errors.As(err, &ne)
}
