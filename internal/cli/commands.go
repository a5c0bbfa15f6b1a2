package cli

import (
	"io"
	"strings"

	"github.com/spf13/cobra"

	"content-discovery-service/internal/domain"
)

func newSearchCmd(a *app) *cobra.Command {
	var (
		source, sort, loader, gameVersion, category, contentType string
		page, pageSize                                           int
	)

	cmd := &cobra.Command{
		Use:   "search [term...]",
		Short: "Search both registries",
		Example: `  discover search sodium --loader fabric --game-version 1.20.1
  discover search --type shader --sort downloads --page 2`,
		RunE: func(cmd *cobra.Command, args []string) error {
			q := domain.DefaultQuery()
			q.Term = strings.Join(args, " ")
			q.Scope = domain.SourceScope(source)
			q.Sort = domain.SortKey(sort)
			q.Loader = domain.Loader(loader)
			q.GameVersion = gameVersion
			q.Category = category
			q.ContentType = domain.ContentType(contentType)
			q.Page = page
			q.PageSize = pageSize

			result, err := a.rt.Service.Search(cmd.Context(), q)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), result, func(w io.Writer) { renderSearch(w, result) })
		},
	}

	f := cmd.Flags()
	f.StringVar(&source, "source", string(domain.ScopeAll), "all, curseforge or modrinth")
	f.StringVar(&sort, "sort", string(domain.SortPopularity), "popularity, updated, downloads or name")
	f.StringVar(&loader, "loader", "", "forge, fabric, quilt or neoforge")
	f.StringVar(&gameVersion, "game-version", "", "game version, e.g. 1.20.1")
	f.StringVar(&category, "category", "", "unified category, e.g. technology")
	f.StringVar(&contentType, "type", string(domain.ContentTypeMod), "mod, modpack, resourcepack or shader")
	f.IntVar(&page, "page", 1, "page number")
	f.IntVar(&pageSize, "page-size", domain.DefaultPageSize, "results per page")

	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "info <id>",
		Short:   "Show a project",
		Example: "  discover info mr-AANobbMI\n  discover info cf-238222",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			detail, err := a.rt.Service.GetDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), detail, func(w io.Writer) { renderDetail(w, detail) })
		},
	}
}

func newVersionsCmd(a *app) *cobra.Command {
	var loader, gameVersion string

	cmd := &cobra.Command{
		Use:     "versions <id>",
		Short:   "List the versions of a project",
		Example: "  discover versions mr-AANobbMI --loader fabric --game-version 1.20.1",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := domain.VersionFilter{Loader: domain.Loader(loader), GameVersion: gameVersion}
			versions, err := a.rt.Service.GetVersions(cmd.Context(), args[0], filter)
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), versions, func(w io.Writer) { renderVersions(w, args[0], versions) })
		},
	}

	cmd.Flags().StringVar(&loader, "loader", "", "only versions for this loader")
	cmd.Flags().StringVar(&gameVersion, "game-version", "", "only versions for this game version")

	return cmd
}

func newLoadersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "loaders <loader> <mc-version>",
		Short:   "List the releases of a mod loader for a game version",
		Example: "  discover loaders neoforge 1.21.1",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			versions, err := a.rt.Service.LoaderVersions(cmd.Context(), args[0], args[1])
			if err != nil {
				return err
			}
			return a.print(cmd.OutOrStdout(), versions, func(w io.Writer) { renderLoaderVersions(w, args[0], args[1], versions) })
		},
	}
}
