// Package unitofwork coordinates transaction boundaries over one database
// session. Repositories bound to the same session queue their mutations;
// the unit of work decides when they flush and whether they commit.
package unitofwork
