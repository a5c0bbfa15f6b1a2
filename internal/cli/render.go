package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"content-discovery-service/internal/domain"
)

// Registry brand colours.
var sourceColors = map[domain.Source]lipgloss.Color{
	domain.SourceCurseForge: lipgloss.Color("#F16436"),
	domain.SourceModrinth:   lipgloss.Color("#1BD96A"),
}

var (
	titleStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle     = lipgloss.NewStyle().Faint(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#E5C07B"))
	stableStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#1BD96A"))
	labelStyle   = lipgloss.NewStyle().Faint(true).Width(14)
	versionStyle = lipgloss.NewStyle().Bold(true).Width(24)
	channelStyle = lipgloss.NewStyle().Width(9)
)

func badge(src domain.Source) string {
	return lipgloss.NewStyle().Foreground(sourceColors[src]).Render(src.Prefix())
}

func renderSearch(w io.Writer, r *domain.QueryResult) {
	if len(r.UnavailableSources) > 0 {
		names := make([]string, len(r.UnavailableSources))
		for i, s := range r.UnavailableSources {
			names[i] = string(s)
		}
		fmt.Fprintln(w, warnStyle.Render("unavailable: "+strings.Join(names, ", ")+" (results are incomplete)"))
	}

	if len(r.Items) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no results"))
		return
	}

	for _, item := range r.Items {
		fmt.Fprintf(w, "%s %s %s\n", badge(item.Source), titleStyle.Render(item.Name), dimStyle.Render(item.ID))
		meta := []string{formatCount(item.Downloads) + " downloads"}
		if len(item.Authors) > 0 {
			meta = append(meta, "by "+strings.Join(item.Authors, ", "))
		}
		if len(item.Loaders) > 0 {
			meta = append(meta, joinLoaders(item.Loaders))
		}
		fmt.Fprintln(w, "   "+dimStyle.Render(strings.Join(meta, " · ")))
		if item.ShortDescription != "" {
			fmt.Fprintln(w, "   "+item.ShortDescription)
		}
	}

	footer := fmt.Sprintf("page %d · %d of %s results", r.Page, len(r.Items), formatCount(r.Total))
	if r.HasMore {
		footer += fmt.Sprintf(" · next: --page %d", r.Page+1)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, dimStyle.Render(footer))
}

func renderDetail(w io.Writer, d *domain.ContentDetail) {
	fmt.Fprintf(w, "%s %s\n", badge(d.Source), titleStyle.Render(d.Name))
	if d.ShortDescription != "" {
		fmt.Fprintln(w, d.ShortDescription)
	}
	fmt.Fprintln(w)

	row := func(label, value string) {
		if value != "" {
			fmt.Fprintln(w, labelStyle.Render(label)+value)
		}
	}
	row("id", d.ID)
	row("slug", d.Slug)
	row("authors", strings.Join(d.Authors, ", "))
	row("downloads", formatCount(d.Downloads))
	if d.Followers != nil {
		row("followers", formatCount(*d.Followers))
	}
	row("categories", strings.Join(d.Categories, ", "))
	row("loaders", joinLoaders(d.Loaders))
	row("game versions", summarizeVersions(d.GameVersions, 8))
	if d.License != nil {
		row("license", d.License.Name)
	}
	if !d.DateUpdated.IsZero() {
		row("updated", d.DateUpdated.Format("2006-01-02"))
	}
	row("website", d.WebsiteURL)
}

func renderVersions(w io.Writer, id string, versions []*domain.Version) {
	if len(versions) == 0 {
		fmt.Fprintln(w, dimStyle.Render("no versions of "+id+" match"))
		return
	}

	for _, v := range versions {
		name := v.VersionNumber
		if name == "" {
			name = v.Name
		}
		line := lipgloss.JoinHorizontal(lipgloss.Top,
			versionStyle.Render(name),
			channelStyle.Render(string(v.ReleaseType)),
			dimStyle.Render(v.DatePublished.Format("2006-01-02")),
		)
		fmt.Fprintln(w, line)

		meta := []string{summarizeVersions(v.GameVersions, 4)}
		if len(v.Loaders) > 0 {
			meta = append(meta, joinLoaders(v.Loaders))
		}
		if v.FileName != "" {
			meta = append(meta, v.FileName)
		}
		fmt.Fprintln(w, "   "+dimStyle.Render(strings.Join(meta, " · ")))
	}
}

func renderLoaderVersions(w io.Writer, loader, gameVersion string, versions []domain.LoaderVersion) {
	if len(versions) == 0 {
		fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("no %s releases for %s", loader, gameVersion)))
		return
	}

	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("%s for %s", loader, gameVersion)))
	for _, v := range versions {
		if v.Stable {
			fmt.Fprintf(w, "  %s %s\n", v.Version, stableStyle.Render("stable"))
		} else {
			fmt.Fprintf(w, "  %s\n", v.Version)
		}
	}
}

func joinLoaders(loaders []domain.Loader) string {
	names := make([]string, len(loaders))
	for i, l := range loaders {
		names[i] = string(l)
	}
	return strings.Join(names, ", ")
}

// summarizeVersions keeps the first n entries and counts the rest.
func summarizeVersions(versions []string, n int) string {
	if len(versions) <= n {
		return strings.Join(versions, ", ")
	}
	return strings.Join(versions[:n], ", ") + fmt.Sprintf(" +%d more", len(versions)-n)
}

// formatCount renders 1234567 as 1.2M.
func formatCount(n int64) string {
	switch {
	case n >= 1_000_000_000:
		return strconv.FormatFloat(float64(n)/1e9, 'f', 1, 64) + "B"
	case n >= 1_000_000:
		return strconv.FormatFloat(float64(n)/1e6, 'f', 1, 64) + "M"
	case n >= 10_000:
		return strconv.FormatFloat(float64(n)/1e3, 'f', 1, 64) + "k"
	default:
		return strconv.FormatInt(n, 10)
	}
}
