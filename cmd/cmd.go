// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/tracketl/internal/formatter"
	"github.com/urfave/cli/v3"
)

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "Path to configuration file",
		Value:   "config.toml",
	}
}

// sourceFlags override the [spotify] section of the config file.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "client-id",
			Usage:   "Spotify application client id",
			Sources: cli.EnvVars("SPOTIFY_CLIENT_ID"),
		},
		&cli.StringFlag{
			Name:    "client-secret",
			Usage:   "Spotify application client secret",
			Sources: cli.EnvVars("SPOTIFY_CLIENT_SECRET"),
		},
		&cli.StringFlag{
			Name:    "playlist",
			Aliases: []string{"p"},
			Usage:   "Playlist ID to extract",
			Sources: cli.EnvVars("SPOTIFY_PLAYLIST_ID"),
		},
		&cli.StringFlag{
			Name:   "token-url",
			Usage:  "Accounts service token endpoint",
			Hidden: true,
		},
		&cli.StringFlag{
			Name:   "api-url",
			Usage:  "Web API base URL",
			Hidden: true,
		},
		&cli.StringFlag{
			Name:  "log-level",
			Usage: "Log level (debug, info, warn, error)",
		},
	}
}

// destinationFlags override the [destination] section of the config file.
func destinationFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "driver",
			Usage:   "Destination driver (sqlserver, postgres, mysql, sqlite3)",
			Sources: cli.EnvVars("DEST_DRIVER"),
		},
		&cli.StringFlag{
			Name:    "server",
			Usage:   "Destination server (host[:port])",
			Sources: cli.EnvVars("DEST_SERVER"),
		},
		&cli.StringFlag{
			Name:    "database",
			Usage:   "Destination database name, or file path for sqlite3",
			Sources: cli.EnvVars("DEST_DATABASE"),
		},
		&cli.StringFlag{
			Name:    "username",
			Usage:   "Destination user",
			Sources: cli.EnvVars("DEST_USERNAME"),
		},
		&cli.StringFlag{
			Name:    "password",
			Usage:   "Destination password",
			Sources: cli.EnvVars("DEST_PASSWORD"),
		},
		&cli.StringFlag{
			Name:    "table",
			Aliases: []string{"t"},
			Usage:   "Destination table, replaced on every run",
			Sources: cli.EnvVars("DEST_TABLE"),
		},
	}
}

// runCommand extracts, cleans and loads the playlist
func runCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{configFlag()}
	flags = append(flags, sourceFlags()...)
	flags = append(flags, destinationFlags()...)
	flags = append(flags,
		&cli.BoolFlag{
			Name:  "no-history",
			Usage: "Do not record this run in the state database",
		},
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output the run summary as JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print JSON output",
			Value: true,
		},
	)

	return &cli.Command{
		Name:   "run",
		Usage:  "Extract a playlist, clean it and replace the destination table",
		Flags:  flags,
		Action: r.Run,
	}
}

// previewCommand runs the pipeline without loading
func previewCommand(r *Runner) *cli.Command {
	flags := []cli.Flag{configFlag()}
	flags = append(flags, sourceFlags()...)
	flags = append(flags,
		&cli.StringFlag{
			Name:    "format",
			Aliases: []string{"f"},
			Usage:   "Output format (" + strings.Join(formatter.Formats, ", ") + ")",
			Value:   "text",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Write the cleaned tracks to a file instead of stdout",
		},
	)

	return &cli.Command{
		Name:   "preview",
		Usage:  "Extract and clean a playlist, then print the tracks without loading them",
		Flags:  flags,
		Action: r.Preview,
	}
}

// historyCommand lists recorded runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "history",
		Usage:     "List recorded runs, or show one run by sequence number",
		ArgsUsage: "[sequence]",
		Flags: []cli.Flag{
			configFlag(),
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.StringFlag{
				Name:    "playlist",
				Aliases: []string{"p"},
				Usage:   "Only list runs for this playlist",
			},
			&cli.StringFlag{
				Name:  "status",
				Usage: "Only list runs with this status (running, succeeded, failed)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print JSON output",
				Value: true,
			},
		},
		Action: r.History,
	}
}

// setupCommand writes a config file and prepares the state database
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create a config file and migrate the state database",
		Flags: []cli.Flag{
			configFlag(),
			&cli.BoolFlag{
				Name:  "rollback",
				Usage: "Roll back the most recent state database migration",
			},
		},
		Action: r.Setup,
	}
}
