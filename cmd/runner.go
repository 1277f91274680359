package main

import (
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/tracketl/internal/shared"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
type Runner struct {
	config     *shared.Config // nil means read --config on every command
	httpClient *http.Client
	logger     *log.Logger
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	return &Runner{
		config:     opts.Config,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, runCommand, previewCommand, historyCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// resolveConfig builds the effective configuration for cmd.
//
// Precedence, lowest first: embedded defaults, the --config file, then flags and their environment variables.
func (r *Runner) resolveConfig(cmd *cli.Command) (*shared.Config, error) {
	var config *shared.Config
	switch {
	case r.config != nil:
		c := *r.config
		config = &c
	default:
		path := cmd.String("config")
		if _, err := os.Stat(path); path != "" && err == nil {
			loaded, err := shared.LoadConfig(path)
			if err != nil {
				return nil, err
			}
			config = loaded
		} else {
			r.logger.Debug("config file not found, using defaults", "path", path)
			config = shared.DefaultConfig()
		}
	}

	overrides := []struct {
		flag   string
		target *string
	}{
		{"client-id", &config.Spotify.ClientID},
		{"client-secret", &config.Spotify.ClientSecret},
		{"playlist", &config.Spotify.PlaylistID},
		{"token-url", &config.Spotify.TokenURL},
		{"api-url", &config.Spotify.APIURL},
		{"driver", &config.Destination.Driver},
		{"server", &config.Destination.Server},
		{"database", &config.Destination.Database},
		{"username", &config.Destination.Username},
		{"password", &config.Destination.Password},
		{"table", &config.Destination.Table},
		{"log-level", &config.Log.Level},
	}
	for _, o := range overrides {
		// an exported but empty environment variable does not clear the file value
		if v := cmd.String(o.flag); cmd.IsSet(o.flag) && v != "" {
			*o.target = v
		}
	}

	return config, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	output, err := shared.MarshalJSON(data, pretty)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(output); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if _, err := r.output.Write([]byte("\n")); err != nil {
		return fmt.Errorf("failed to write newline: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}
