package repositories

import (
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/desertthunder/tracketl/internal/models"
	"github.com/desertthunder/tracketl/internal/shared"
)

// setupTestDB creates a temporary state database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenStateDatabase(shared.StateConfig{
		Path:         filepath.Join(t.TempDir(), "state.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return db
}

func TestNextSequence(t *testing.T) {
	db := setupTestDB(t)

	for want := 1; want <= 3; want++ {
		got, err := NextSequence(db, "runs")
		if err != nil {
			t.Fatalf("failed to get sequence: %v", err)
		}
		if got != want {
			t.Errorf("expected sequence %d, got %d", want, got)
		}
	}

	if _, err := NextSequence(db, "missing"); err == nil {
		t.Error("expected error for missing sequence table")
	}
}

func TestRunRepository(t *testing.T) {
	t.Run("Create", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun("playlist", shared.DriverSQLite, "sqlite3:./p.db/T", "T")

		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}
		if run.ID() == "" {
			t.Error("run ID should be set after creation")
		}
		if run.Sequence != 1 {
			t.Errorf("expected sequence 1, got %d", run.Sequence)
		}
	})

	t.Run("Create invalid", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun("", shared.DriverSQLite, "", "T")
		if err := repo.Create(run); err == nil {
			t.Error("expected validation error")
		}
		if run.ID() != "" {
			t.Error("invalid run must not get an ID")
		}
	})

	t.Run("Get", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun("playlist", shared.DriverPostgres, "postgres://etl@db/spotify/T", "T")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.PlaylistID != "playlist" || got.Driver != shared.DriverPostgres || got.Table != "T" {
			t.Errorf("unexpected run %+v", got)
		}
		if got.Destination != "postgres://etl@db/spotify/T" {
			t.Errorf("expected destination to round-trip, got %q", got.Destination)
		}
		if got.Status != models.RunRunning {
			t.Errorf("expected running status, got %s", got.Status)
		}
		if got.FinishedAt != nil {
			t.Error("expected no finish time")
		}

		bySeq, err := repo.GetBySequence(run.Sequence)
		if err != nil {
			t.Fatalf("failed to get run by sequence: %v", err)
		}
		if bySeq.ID() != run.ID() {
			t.Errorf("expected run %s, got %s", run.ID(), bySeq.ID())
		}
	})

	t.Run("Get missing", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		if _, err := repo.Get("nope"); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun("playlist", shared.DriverSQLite, "", "T")
		if err := repo.Create(run); err != nil {
			t.Fatalf("failed to create run: %v", err)
		}

		run.RowsExtracted = 10
		run.RowsCleaned = 8
		run.Finish("load", errors.New("connection refused"))
		if err := repo.Update(run); err != nil {
			t.Fatalf("failed to update run: %v", err)
		}

		got, err := repo.Get(run.ID())
		if err != nil {
			t.Fatalf("failed to get run: %v", err)
		}
		if got.Status != models.RunFailed || got.FailedStage != "load" {
			t.Errorf("unexpected status %s / %s", got.Status, got.FailedStage)
		}
		if got.ErrorMessage != "connection refused" {
			t.Errorf("unexpected error message %q", got.ErrorMessage)
		}
		if got.RowsExtracted != 10 || got.RowsCleaned != 8 || got.RowsLoaded != 0 {
			t.Errorf("unexpected row counts %+v", got)
		}
		if got.FinishedAt == nil {
			t.Error("expected finish time")
		}
	})

	t.Run("Update missing", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))
		run := models.NewRun("playlist", shared.DriverSQLite, "", "T")
		run.SetID("nope")
		if err := repo.Update(run); !errors.Is(err, shared.ErrRunNotFound) {
			t.Errorf("expected ErrRunNotFound, got %v", err)
		}
	})

	t.Run("List", func(t *testing.T) {
		repo := NewRunRepository(setupTestDB(t))

		for _, id := range []string{"a", "b", "a"} {
			run := models.NewRun(id, shared.DriverSQLite, "", "T")
			if err := repo.Create(run); err != nil {
				t.Fatalf("failed to create run: %v", err)
			}
			if id == "b" {
				run.Finish("", nil)
				if err := repo.Update(run); err != nil {
					t.Fatalf("failed to update run: %v", err)
				}
			}
		}

		tt := []struct {
			name     string
			criteria map[string]any
			want     []int
		}{
			{name: "All newest first", criteria: nil, want: []int{3, 2, 1}},
			{name: "By playlist", criteria: map[string]any{"playlist_id": "a"}, want: []int{3, 1}},
			{name: "By status", criteria: map[string]any{"status": string(models.RunSucceeded)}, want: []int{2}},
			{name: "Limit", criteria: map[string]any{"limit": 1}, want: []int{3}},
			{name: "No match", criteria: map[string]any{"playlist_id": "z"}, want: nil},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				runs, err := repo.List(tc.criteria)
				if err != nil {
					t.Fatalf("failed to list runs: %v", err)
				}
				if len(runs) != len(tc.want) {
					t.Fatalf("expected %d runs, got %d", len(tc.want), len(runs))
				}
				for i, seq := range tc.want {
					if runs[i].Sequence != seq {
						t.Errorf("run %d: expected sequence %d, got %d", i, seq, runs[i].Sequence)
					}
				}
			})
		}
	})
}
