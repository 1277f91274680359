// Package repositories implements persistence for the pipeline.
//
// Key Implementations:
//   - [DestinationLoader] : full-refresh writer for the destination table (SQL Server, Postgres, MySQL, SQLite)
//   - [RunRepository] : run history in the local SQLite state database
//
// # Destination
//
// Each supported driver has a [Dialect] describing identifier quoting, bind placeholders, column types and
// connection string layout. A load drops the table, recreates it from [models.TrackColumns] and inserts each
// row with one prepared statement, all inside a single transaction.
//
// # Run History
//
// Sequence numbers provide stable, human-readable ordering (run #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
