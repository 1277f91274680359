package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/shared"
)

// Loader writes a clean record set to a relational destination.
type Loader interface {
	Load(ctx context.Context, rows models.CleanRecordSet, dest shared.DestinationConfig) (int, error)
}

// DestinationLoader implements [Loader] as a full refresh: the destination table is dropped,
// recreated from [models.TrackColumns] and filled inside one transaction.
type DestinationLoader struct {
	logger *log.Logger
}

// NewDestinationLoader creates a DestinationLoader. A nil logger falls back to [log.Default].
func NewDestinationLoader(logger *log.Logger) *DestinationLoader {
	if logger == nil {
		logger = log.Default()
	}
	return &DestinationLoader{logger: logger}
}

// Load replaces the contents of dest.Table with rows and returns the number of rows written.
//
// Every failure is a [shared.LoadError]. On failure the transaction is rolled back.
// The connection is closed before returning.
func (l *DestinationLoader) Load(ctx context.Context, rows models.CleanRecordSet, dest shared.DestinationConfig) (int, error) {
	fail := func(err error) (int, error) {
		return 0, &shared.LoadError{Table: dest.Table, Err: err}
	}

	if err := dest.Validate(); err != nil {
		return fail(err)
	}

	dialect, err := DialectFor(dest.Driver)
	if err != nil {
		return fail(err)
	}

	table, err := dialect.QuoteTable(dest.Table)
	if err != nil {
		return fail(err)
	}

	db, err := sql.Open(dialect.Name, dialect.DSN(dest))
	if err != nil {
		return fail(fmt.Errorf("failed to open database: %w", err))
	}
	defer db.Close()

	logger := shared.WithLogger(l.logger, "destination", dest.Redacted())

	if err := db.PingContext(ctx); err != nil {
		return fail(fmt.Errorf("failed to connect: %w", err))
	}

	n, err := replaceTable(ctx, db, dialect, table, rows)
	if err != nil {
		return fail(err)
	}

	logger.Info("table replaced", "rows", n)
	return n, nil
}

func replaceTable(ctx context.Context, db *sql.DB, dialect *Dialect, table string, rows models.CleanRecordSet) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, dialect.DropTable(table)); err != nil {
		return 0, fmt.Errorf("failed to drop table: %w", err)
	}

	if _, err := tx.ExecContext(ctx, dialect.CreateTable(table, models.TrackColumns)); err != nil {
		return 0, fmt.Errorf("failed to create table: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, dialect.Insert(table, models.TrackColumns))
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range rows {
		if _, err := stmt.ExecContext(ctx, dialect.Args(r)...); err != nil {
			return 0, fmt.Errorf("failed to insert row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return len(rows), nil
}
