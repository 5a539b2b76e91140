// Package store implements the data access layer for taskengine.
//
// This package provides persistent storage using DuckDB: the journal of tasks that left the
// scheduler, and the final state of file loads.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│                         Store (facade)                          │
//	├─────────────────────────────────────────────────────────────────┤
//	│          HistoryStore          │           LoadStore            │
//	│              ▼                 │               ▼                │
//	│         task_history           │             loads              │
//	├────────────────────────────────┴────────────────────────────────┤
//	│              QueryInterceptor (debug query logging)             │
//	└─────────────────────────────────────────────────────────────────┘
//
// # Tables
//
// Created by the embedded migrations (internal/store/migrations/sql/):
//
//	┌────────────────────┬─────────────────────────────────────────────┐
//	│  Table             │  Purpose                                    │
//	├────────────────────┼─────────────────────────────────────────────┤
//	│  task_history      │  One row per completed/abandoned/panicked   │
//	│                    │  task                                       │
//	│  loads             │  Final state and checksum of file loads     │
//	│  schema_migrations │  Migration version tracking                 │
//	└────────────────────┴─────────────────────────────────────────────┘
//
// # Initialization Flow
//
//	db, err := store.NewDB(cfg.Store.Path)   // ":memory:" for an in-memory database
//	err = migrations.Run(ctx, db)
//	s := store.NewStore(db)
//
// # HistoryStore
//
// Schema:
//
//	task_history (
//	    id VARCHAR PRIMARY KEY,
//	    name VARCHAR NOT NULL,
//	    outcome VARCHAR NOT NULL,        -- completed, abandoned, panicked
//	    worker INTEGER NOT NULL,         -- -1 when no worker was involved
//	    resumes BIGINT NOT NULL,
//	    scheduled_at TIMESTAMP NOT NULL,
//	    finished_at TIMESTAMP NOT NULL,
//	    error VARCHAR
//	)
//
// Methods:
//   - Save(ctx, record) → error
//   - Get(ctx, id) → *models.TaskRecord (ResourceNotFoundError when missing)
//   - List(ctx, ...ListOption) → []models.TaskRecord
//   - Count(ctx, ...ListOption) → int
//
// List Options:
//
// Each ListOption is a function that modifies the squirrel query builder:
//   - ByOutcomes(outcomes ...string): WHERE outcome IN (...)
//   - ByNamePrefix(prefix string): WHERE name LIKE 'prefix%'
//   - FinishedSince(t time.Time): WHERE finished_at >= t
//   - WithLimit(limit uint64), WithOffset(offset uint64): pagination, left out when counting
//   - WithDefaultSort(): most recently finished first, id as tie-breaker
//
// Example:
//
//	records, err := store.History().List(ctx,
//	    store.ByOutcomes("abandoned", "panicked"),
//	    store.ByNamePrefix("load:"),
//	    store.WithDefaultSort(),
//	    store.WithLimit(50),
//	)
//
// # LoadStore
//
// Persists loads once they are finished, so their outcome survives the release of the
// in-memory future. Uses UPSERT: INSERT ... ON CONFLICT (id) DO UPDATE.
//
// Methods:
//   - Save(ctx, status) → error
//   - Get(ctx, id) → *models.LoadStatus (ResourceNotFoundError when missing)
//   - Delete(ctx, id) → error
package store
