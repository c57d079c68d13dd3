// Package repository provides a generic, session-bound repository
// abstraction built on Bun for CRUD operations, predicate queries,
// pagination with search criteria and eager-loading, and aggregates.
// Mutations queue on the owning session and become durable only when the
// unit of work flushes.
package repository
