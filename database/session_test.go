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

package database_test

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/openhrcore/sharedkernel/database"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

type note struct {
	bun.BaseModel `bun:"table:notes,alias:n"`

	ID   int64  `bun:"id,pk,autoincrement"`
	Body string `bun:"body,notnull"`
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	dsn := "file:" + filepath.Join(t.TempDir(), "session_test.db")
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() { _ = db.Close() })

	if _, err := db.NewCreateTable().Model((*note)(nil)).IfNotExists().Exec(context.Background()); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}

func newSession(t *testing.T, db *bun.DB) *database.Session {
	t.Helper()
	session, err := database.NewSession(context.Background(), db)
	if err != nil {
		t.Fatalf("open session: %v", err)
	}
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func insertNote(body string) database.PendingOp {
	return func(ctx context.Context, idb bun.IDB) error {
		_, err := idb.NewInsert().Model(&note{Body: body}).Exec(ctx)
		return err
	}
}

func countNotes(t *testing.T, db *bun.DB) int {
	t.Helper()
	n, err := db.NewSelect().Model((*note)(nil)).Count(context.Background())
	if err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

func TestSessionStateTransitions(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	if session.State() != database.NoTransaction {
		t.Fatalf("new session state = %v", session.State())
	}
	if err := session.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if session.State() != database.InTransaction {
		t.Fatalf("state after begin = %v", session.State())
	}
	if err := session.Begin(ctx); !database.IsStateError(err) {
		t.Fatalf("nested begin should be a StateError, got %v", err)
	}
	if err := session.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if session.State() != database.NoTransaction {
		t.Fatalf("state after commit = %v", session.State())
	}
	if err := session.Begin(ctx); err != nil {
		t.Fatalf("begin again: %v", err)
	}
	if err := session.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if session.State() != database.NoTransaction {
		t.Fatalf("state after rollback = %v", session.State())
	}
}

func TestCommitWithoutBegin(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	if err := session.Commit(ctx); !database.IsStateError(err) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if err := session.Rollback(ctx); !database.IsStateError(err) {
		t.Fatalf("expected StateError, got %v", err)
	}
	if session.State() != database.NoTransaction {
		t.Fatalf("failed finalize must not change state, got %v", session.State())
	}
}

func TestSessionDisposed(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if session.State() != database.Disposed {
		t.Fatalf("state after close = %v", session.State())
	}
	if err := session.Close(); err != nil {
		t.Fatalf("second close must be a no-op, got %v", err)
	}

	if err := session.Begin(ctx); !database.IsStateError(err) {
		t.Fatalf("begin after close should be a StateError, got %v", err)
	}
	if err := session.Flush(ctx); !database.IsStateError(err) {
		t.Fatalf("flush after close should be a StateError, got %v", err)
	}
	if err := session.Enqueue(insertNote("x")); !database.IsStateError(err) {
		t.Fatalf("enqueue after close should be a StateError, got %v", err)
	}
	if _, err := session.Executor(); !database.IsStateError(err) {
		t.Fatalf("executor after close should be a StateError, got %v", err)
	}
}

func TestCloseRollsBackOpenTransaction(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	if err := session.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Enqueue(insertNote("doomed")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := session.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := session.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if n := countNotes(t, db); n != 0 {
		t.Fatalf("close must roll back the open transaction, found %d rows", n)
	}
}

func TestFlushOrderAndRepeatability(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	if err := session.Flush(ctx); err != nil {
		t.Fatalf("flush with empty queue: %v", err)
	}

	for _, body := range []string{"first", "second", "third"} {
		if err := session.Enqueue(insertNote(body)); err != nil {
			t.Fatalf("enqueue: %v", err)
		}
	}
	if err := session.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := session.Flush(ctx); err != nil {
		t.Fatalf("repeated flush: %v", err)
	}

	var bodies []string
	err := db.NewSelect().Model((*note)(nil)).Column("body").Order("id ASC").Scan(ctx, &bodies)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(bodies) != 3 || bodies[0] != "first" || bodies[2] != "third" {
		t.Fatalf("mutations not applied in order: %v", bodies)
	}
}

func TestFlushStopsAtFailedOp(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	boom := errors.New("op failed")
	if err := session.Enqueue(insertNote("ok")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := session.Enqueue(func(ctx context.Context, idb bun.IDB) error { return boom }); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := session.Enqueue(insertNote("after")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}

	if err := session.Flush(ctx); !errors.Is(err, boom) {
		t.Fatalf("store error must pass through unchanged, got %v", err)
	}
	if session.PendingCount() != 2 {
		t.Fatalf("failed and later ops must stay queued, pending=%d", session.PendingCount())
	}
	if n := countNotes(t, db); n != 1 {
		t.Fatalf("ops before the failure should have run, found %d rows", n)
	}
}

func TestTransactionIsolatesFlushedMutations(t *testing.T) {
	db := newTestDB(t)
	session := newSession(t, db)
	ctx := context.Background()

	if err := session.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Enqueue(insertNote("provisional")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := session.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := session.Rollback(ctx); err != nil {
		t.Fatalf("rollback: %v", err)
	}
	if n := countNotes(t, db); n != 0 {
		t.Fatalf("rolled back mutation is visible, found %d rows", n)
	}

	if err := session.Begin(ctx); err != nil {
		t.Fatalf("begin: %v", err)
	}
	if err := session.Enqueue(insertNote("durable")); err != nil {
		t.Fatalf("enqueue: %v", err)
	}
	if err := session.Flush(ctx); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if err := session.Commit(ctx); err != nil {
		t.Fatalf("commit: %v", err)
	}
	if n := countNotes(t, db); n != 1 {
		t.Fatalf("committed mutation missing, found %d rows", n)
	}
}

func TestSessionStateEnum(t *testing.T) {
	cases := []struct {
		state database.SessionState
		name  string
	}{
		{database.NoTransaction, "NoTransaction"},
		{database.InTransaction, "InTransaction"},
		{database.Disposed, "Disposed"},
	}
	for _, c := range cases {
		if c.state.String() != c.name {
			t.Fatalf("state %d String() = %q, want %q", c.state.Number(), c.state.String(), c.name)
		}
		if !c.state.IsValid() {
			t.Fatalf("state %s reported invalid", c.name)
		}
	}
	if database.SessionState(99).IsValid() {
		t.Fatal("out-of-range state reported valid")
	}

	err := &database.StateError{Op: "commit transaction", State: database.Disposed}
	want := fmt.Sprintf("database: commit transaction not allowed in session state %s", database.Disposed)
	if err.Error() != want {
		t.Fatalf("StateError message = %q, want %q", err.Error(), want)
	}
}
