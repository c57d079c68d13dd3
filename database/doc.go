// Package database provides connection management, session and transaction
// lifecycle, migrations, configuration, logging, health checks, and related
// utilities built on top of Bun.
package database
