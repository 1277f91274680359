package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/tracketl/internal/shared"
	"github.com/desertthunder/tracketl/internal/ui"
	"github.com/urfave/cli/v3"
)

// Setup writes the example config file when none exists and migrates the run history database.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	configPath := cmd.String("config")

	var config *shared.Config
	if _, err := os.Stat(configPath); err == nil {
		if config, err = shared.LoadConfig(configPath); err != nil {
			return err
		}
	} else {
		r.logger.Info("config file not found, creating from template", "path", configPath)
		if err := shared.CreateConfigFile(configPath); err != nil {
			return err
		}
		r.writePlain("%s\n", ui.OK("created "+configPath))
		config = shared.DefaultConfig()
	}

	if err := shared.SetLogLevel(r.logger, config.Log.Level); err != nil {
		return err
	}

	if config.State.Path == "" {
		return r.writePlain("%s\n", ui.Help("run history disabled (state.path is empty), nothing to migrate"))
	}

	r.logger.Info("initializing run history database", "path", config.State.Path)

	db, err := shared.NewDatabase(config.State.Path)
	if err != nil {
		return fmt.Errorf("failed to create database: %w", err)
	}
	defer db.Close()

	shared.ConfigureDatabase(db, config.State.MaxOpenConns, config.State.MaxIdleConns)

	if cmd.Bool("rollback") {
		if err := shared.RollbackMigration(db); err != nil {
			return err
		}
	} else {
		applied, err := shared.ApplyMigrations(db)
		if err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		r.logger.Info("migrations applied", "count", applied)
	}

	version, err := shared.CurrentVersion(db)
	if err != nil {
		return fmt.Errorf("failed to read schema version: %w", err)
	}

	return r.writePlain("%s\n", ui.OK(fmt.Sprintf("run history at %s is at schema version %d", config.State.Path, version)))
}
