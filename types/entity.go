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
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Entity is the base shape shared by every persisted record: identity,
// audit metadata and the active/soft-delete flags. Embed it in a Bun model
// struct to inherit the columns and the append hooks.
//
// The layer does not filter IsDeleted rows out of result sets; callers that
// want "active only" semantics must add the condition themselves.
type Entity struct {
	ID        string     `bun:"id,pk" json:"id"`
	CreatedAt time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt *time.Time `bun:"updated_at" json:"updated_at,omitempty"`
	CreatedBy *string    `bun:"created_by" json:"created_by,omitempty"`
	UpdatedBy *string    `bun:"updated_by" json:"updated_by,omitempty"`
	IsActive  bool       `bun:"is_active,notnull" json:"is_active"`
	IsDeleted bool       `bun:"is_deleted,notnull" json:"is_deleted"`
}

// NewEntity returns an Entity with a fresh identity, the creation timestamp
// set, and the active flag on. The identity is never reassigned afterwards.
func NewEntity() Entity {
	return Entity{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		IsActive:  true,
	}
}

var _ bun.BeforeAppendModelHook = (*Entity)(nil)

// BeforeAppendModel backfills identity and audit timestamps when the model
// is appended to an insert or update query. Identity and CreatedAt are only
// set when still zero, so values chosen at construction win.
func (e *Entity) BeforeAppendModel(ctx context.Context, query bun.Query) error {
	switch query.(type) {
	case *bun.InsertQuery:
		if e.ID == "" {
			e.ID = uuid.NewString()
		}
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
	case *bun.UpdateQuery:
		now := time.Now().UTC()
		e.UpdatedAt = &now
	}
	return nil
}

// MarkDeleted flips the soft-delete flag and deactivates the record.
func (e *Entity) MarkDeleted() {
	e.IsDeleted = true
	e.IsActive = false
}

// Touch records who performed the mutation. The timestamp itself is stamped
// by BeforeAppendModel when the update query is built.
func (e *Entity) Touch(updatedBy string) {
	e.UpdatedBy = &updatedBy
}
