// Package cli provides the discover command line interface.
package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"content-discovery-service/internal/domain"
)

// Discovery is what the commands need from the discovery service.
// Implementations: internal/app/service.DiscoveryService
type Discovery interface {
	Search(ctx context.Context, q domain.Query) (*domain.QueryResult, error)
	GetDetail(ctx context.Context, id string) (*domain.ContentDetail, error)
	GetVersions(ctx context.Context, id string, filter domain.VersionFilter) ([]*domain.Version, error)
	LoaderVersions(ctx context.Context, loader, gameVersion string) ([]domain.LoaderVersion, error)
	Invalidate(ctx context.Context) error
}

// Runtime is a built service and the function that releases it.
type Runtime struct {
	Service Discovery
	Close   func() error
}

// Options are the global flags a Builder needs.
type Options struct {
	ConfigPath   string
	CacheBackend string
	CachePath    string
}

// Builder creates the runtime for one command invocation.
type Builder func(ctx context.Context, opts Options) (*Runtime, error)

type app struct {
	build      Builder
	opts       Options
	jsonOut    bool
	clearCache bool
	rt         *Runtime
}

// Execute runs the discover command with args. The runtime is released
// whether or not the command failed. defaultCachePath is used for the sqlite
// cache unless --cache-path is given.
func Execute(ctx context.Context, build Builder, defaultCachePath string, args []string, out, errOut io.Writer) error {
	a := &app{build: build}

	root := newRootCmd(a, defaultCachePath)
	root.SetArgs(args)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.ExecuteContext(ctx)
	return errors.Join(err, a.close())
}

func newRootCmd(a *app, defaultCachePath string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "discover",
		Short:         "Search CurseForge and Modrinth from the terminal",
		Long:          `discover runs federated searches across CurseForge and Modrinth and shows project details, versions and mod loader releases.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := a.build(cmd.Context(), a.opts)
			if err != nil {
				return err
			}
			a.rt = rt

			if a.clearCache {
				return rt.Service.Invalidate(cmd.Context())
			}
			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.opts.ConfigPath, "config", "", "config file (default ./config/config.yaml or ./config.yaml)")
	flags.StringVar(&a.opts.CacheBackend, "cache", "sqlite", "cache backend: sqlite, memory, redis or postgres")
	flags.StringVar(&a.opts.CachePath, "cache-path", defaultCachePath, "sqlite cache file")
	flags.BoolVar(&a.jsonOut, "json", false, "print JSON instead of text")
	flags.BoolVar(&a.clearCache, "clear-cache", false, "drop every cached result before running")

	rootCmd.AddCommand(
		newSearchCmd(a),
		newInfoCmd(a),
		newVersionsCmd(a),
		newLoadersCmd(a),
	)

	return rootCmd
}

func (a *app) close() error {
	if a.rt == nil || a.rt.Close == nil {
		return nil
	}
	err := a.rt.Close()
	a.rt = nil
	return err
}

// print writes v as indented JSON when --json is set, otherwise calls render.
func (a *app) print(w io.Writer, v any, render func(io.Writer)) error {
	if !a.jsonOut {
		render(w)
		return nil
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
