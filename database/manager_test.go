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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/openhrcore/sharedkernel/database"
)

func sqliteConfig(t *testing.T) *database.ConnectionConfig {
	t.Helper()
	cfg := database.DefaultConnectionConfig()
	cfg.Type = "sqlite"
	cfg.DBName = filepath.Join(t.TempDir(), "manager_test")
	cfg.HealthCheckInterval = 0
	return cfg
}

func TestManagerConnectAndHealth(t *testing.T) {
	manager := database.NewDatabaseManager(sqliteConfig(t))
	ctx := context.Background()

	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer func() { _ = manager.Disconnect() }()

	if err := manager.Ping(ctx); err != nil {
		t.Fatalf("ping: %v", err)
	}

	status := manager.HealthCheck(ctx)
	if !status.Healthy || !status.Connected {
		t.Fatalf("unexpected health status: %+v", status)
	}

	stats := manager.GetStats()
	if stats == nil || stats.MaxOpenConns == 0 {
		t.Fatalf("unexpected stats: %+v", stats)
	}

	if manager.GetDB() == nil || manager.GetSQLDB() == nil {
		t.Fatal("manager handles not exposed after connect")
	}
}

func TestManagerDisconnect(t *testing.T) {
	manager := database.NewDatabaseManager(sqliteConfig(t))
	ctx := context.Background()

	if err := manager.Connect(ctx); err != nil {
		t.Fatalf("connect: %v", err)
	}
	if err := manager.Disconnect(); err != nil {
		t.Fatalf("disconnect: %v", err)
	}
	if err := manager.Ping(ctx); err == nil {
		t.Fatal("ping after disconnect should fail")
	}
}

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.yaml")
	content := []byte(`
connection:
  type: sqlite
  dbname: testdb
  max_open_conns: 7
migration:
  enable_migrate_on_startup: true
`)
	if err := os.WriteFile(path, content, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := database.LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if cfg.ConnectionConfig.Type != "sqlite" || cfg.ConnectionConfig.DBName != "testdb" {
		t.Fatalf("unexpected connection config: %+v", cfg.ConnectionConfig)
	}
	if cfg.ConnectionConfig.MaxOpenConns != 7 {
		t.Fatalf("file value not applied: %d", cfg.ConnectionConfig.MaxOpenConns)
	}
	if cfg.ConnectionConfig.ConnectTimeout != 10*time.Second {
		t.Fatalf("defaults not preserved: %v", cfg.ConnectionConfig.ConnectTimeout)
	}
	if !cfg.DataMigrateConfig.EnableMigrateOnStartup {
		t.Fatal("migration flag not parsed")
	}

	if _, err := database.LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
