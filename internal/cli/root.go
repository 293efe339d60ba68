// Package cli implements the accounts command line: lookups, creation,
// closure and transfers run directly against the configured store.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/amirasaad/accounts/infra/initializer"
	"github.com/amirasaad/accounts/pkg/app"
	"github.com/amirasaad/accounts/pkg/config"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Builder wires the application the commands run against.
type Builder func(envFile string) (*app.App, error)

func Execute() {
	cmd := newRootCmd(buildApp)
	if err := cmd.Execute(); err != nil {
		_, _ = color.New(color.FgRed).Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func buildApp(envFile string) (*app.App, error) {
	cfg, err := config.Load(envFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load application configuration: %w", err)
	}
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	return app.New(deps, cfg), nil
}

type options struct {
	envFile string
	timeout time.Duration
	asJSON  bool
}

type session struct {
	app  *app.App
	opts *options
	out  io.Writer
}

func newRootCmd(build Builder) *cobra.Command {
	opts := &options{}
	var s *session

	cmd := &cobra.Command{
		Use:           "accounts",
		Short:         "Manage accounts and transfers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			a, err := build(opts.envFile)
			if err != nil {
				return err
			}
			s = &session{app: a, opts: opts, out: cmd.OutOrStdout()}
			return nil
		},
		PersistentPostRunE: func(_ *cobra.Command, _ []string) error {
			if s == nil || s.app.Deps == nil {
				return nil
			}
			return s.app.Deps.Close()
		},
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file, searched upward from the working directory")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "deadline for the whole command")
	cmd.PersistentFlags().BoolVar(&opts.asJSON, "json", false, "print results as JSON")

	current := func() *session { return s }
	cmd.AddCommand(
		getCmd(current),
		createCmd(current),
		closeCmd(current),
		transferCmd(current),
	)
	return cmd
}

func (s *session) context(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if s.opts.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, s.opts.timeout)
}

func (s *session) print(v any, pretty func(w io.Writer)) error {
	if s.opts.asJSON {
		enc := json.NewEncoder(s.out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	}
	pretty(s.out)
	return nil
}
