package modrinth

import (
	"slices"
	"time"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/vocab"
)

// SearchResponse represents the JSON response of /v2/search.
type SearchResponse struct {
	Hits      []Hit `json:"hits"`
	Offset    int   `json:"offset"`
	Limit     int   `json:"limit"`
	TotalHits int64 `json:"total_hits"`
}

// Hit is one search result.
type Hit struct {
	ProjectID    string    `json:"project_id"`
	ProjectType  string    `json:"project_type"`
	Slug         string    `json:"slug"`
	Author       string    `json:"author"`
	Title        string    `json:"title"`
	Description  string    `json:"description"`
	Categories   []string  `json:"categories"`
	Versions     []string  `json:"versions"`
	Downloads    int64     `json:"downloads"`
	Follows      int64     `json:"follows"`
	IconURL      string    `json:"icon_url"`
	DateCreated  time.Time `json:"date_created"`
	DateModified time.Time `json:"date_modified"`
}

// Project represents the JSON response of /v2/project/{id}.
type Project struct {
	ID                   string         `json:"id"`
	Slug                 string         `json:"slug"`
	ProjectType          string         `json:"project_type"`
	Title                string         `json:"title"`
	Description          string         `json:"description"`
	Body                 string         `json:"body"`
	Categories           []string       `json:"categories"`
	AdditionalCategories []string       `json:"additional_categories"`
	Loaders              []string       `json:"loaders"`
	GameVersions         []string       `json:"game_versions"`
	Downloads            int64          `json:"downloads"`
	Followers            int64          `json:"followers"`
	IconURL              string         `json:"icon_url"`
	Published            time.Time      `json:"published"`
	Updated              time.Time      `json:"updated"`
	License              *License       `json:"license"`
	Gallery              []GalleryImage `json:"gallery"`
}

// License is a project's licence.
type License struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
}

// GalleryImage is a screenshot.
type GalleryImage struct {
	URL         string `json:"url"`
	RawURL      string `json:"raw_url"`
	Featured    bool   `json:"featured"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Ordering    int    `json:"ordering"`
}

// Member is one entry of /v2/project/{id}/members.
type Member struct {
	Role     string `json:"role"`
	Ordering int    `json:"ordering"`
	User     User   `json:"user"`
}

// User is a Modrinth account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Version is one entry of /v2/project/{id}/version.
type Version struct {
	ID            string    `json:"id"`
	ProjectID     string    `json:"project_id"`
	Name          string    `json:"name"`
	VersionNumber string    `json:"version_number"`
	Changelog     string    `json:"changelog"`
	GameVersions  []string  `json:"game_versions"`
	Loaders       []string  `json:"loaders"`
	VersionType   string    `json:"version_type"`
	DatePublished time.Time `json:"date_published"`
	Downloads     int64     `json:"downloads"`
	Files         []File    `json:"files"`
}

// File is a downloadable file of a version.
type File struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
	Primary  bool   `json:"primary"`
	Size     int64  `json:"size"`
}

// ToSummary converts Hit to domain.ContentSummary.
func (h *Hit) ToSummary() *domain.ContentSummary {
	follows := max(h.Follows, 0)
	categories, loaders := vocab.SplitModrinthTags(h.Categories)

	return &domain.ContentSummary{
		ID:               domain.NewContentID(domain.SourceModrinth, h.ProjectID),
		Source:           domain.SourceModrinth,
		Name:             h.Title,
		Slug:             h.Slug,
		ShortDescription: h.Description,
		IconURL:          h.IconURL,
		Downloads:        max(h.Downloads, 0),
		Followers:        &follows,
		Authors:          domain.UniqueStrings(h.Author),
		Categories:       categories,
		GameVersions:     domain.UniqueStrings(h.Versions...),
		Loaders:          loaders,
		DateUpdated:      h.DateModified,
		WebsiteURL:       vocab.ModrinthWebsiteURL(h.ProjectType, h.Slug),
	}
}

// ToDetail converts Project and its team to domain.ContentDetail.
func (p *Project) ToDetail(members []Member) *domain.ContentDetail {
	followers := max(p.Followers, 0)

	tags := make([]string, 0, len(p.Categories)+len(p.AdditionalCategories)+len(p.Loaders))
	tags = append(tags, p.Categories...)
	tags = append(tags, p.AdditionalCategories...)
	tags = append(tags, p.Loaders...)
	categories, loaders := vocab.SplitModrinthTags(tags)

	team := slices.Clone(members)
	slices.SortStableFunc(team, func(a, b Member) int {
		return a.Ordering - b.Ordering
	})
	authors := make([]string, 0, len(team))
	for _, m := range team {
		authors = append(authors, m.User.Username)
	}

	gallery := slices.Clone(p.Gallery)
	slices.SortStableFunc(gallery, func(a, b GalleryImage) int {
		return a.Ordering - b.Ordering
	})
	screenshots := make([]domain.Screenshot, 0, len(gallery))
	for _, g := range gallery {
		url := g.RawURL
		if url == "" {
			url = g.URL
		}
		screenshots = append(screenshots, domain.Screenshot{
			URL:          url,
			ThumbnailURL: g.URL,
			Title:        g.Title,
			Description:  g.Description,
		})
	}

	return &domain.ContentDetail{
		ContentSummary: domain.ContentSummary{
			ID:               domain.NewContentID(domain.SourceModrinth, p.ID),
			Source:           domain.SourceModrinth,
			Name:             p.Title,
			Slug:             p.Slug,
			ShortDescription: p.Description,
			IconURL:          p.IconURL,
			Downloads:        max(p.Downloads, 0),
			Followers:        &followers,
			Authors:          domain.UniqueStrings(authors...),
			Categories:       categories,
			GameVersions:     domain.UniqueStrings(p.GameVersions...),
			Loaders:          loaders,
			DateUpdated:      p.Updated,
			WebsiteURL:       vocab.ModrinthWebsiteURL(p.ProjectType, p.Slug),
		},
		Body:        p.Body,
		DateCreated: p.Published,
		License:     p.License.toDomain(),
		Screenshots: screenshots,
	}
}

func (l *License) toDomain() *domain.License {
	if l == nil {
		return nil
	}
	name := l.Name
	if name == "" {
		name = l.ID
	}
	if name == "" {
		return nil
	}
	return &domain.License{Name: name, URL: l.URL}
}

// ToVersion converts Version to domain.Version. The file flagged primary is
// used; when none is flagged the first file is.
func (v *Version) ToVersion() *domain.Version {
	out := &domain.Version{
		ID:            v.ID,
		Name:          v.Name,
		VersionNumber: v.VersionNumber,
		GameVersions:  domain.UniqueStrings(v.GameVersions...),
		Loaders:       loadersOf(v.Loaders),
		ReleaseType:   vocab.ReleaseTypeFromModrinth(v.VersionType),
		DatePublished: v.DatePublished,
		Downloads:     max(v.Downloads, 0),
		Changelog:     v.Changelog,
	}

	if f := v.primaryFile(); f != nil {
		out.FileURL = f.URL
		out.FileName = f.Filename
		out.FileSize = f.Size
	}

	return out
}

func (v *Version) primaryFile() *File {
	if len(v.Files) == 0 {
		return nil
	}
	for i := range v.Files {
		if v.Files[i].Primary {
			return &v.Files[i]
		}
	}
	return &v.Files[0]
}

func loadersOf(tags []string) []domain.Loader {
	loaders := make([]domain.Loader, 0, len(tags))
	for _, tag := range tags {
		if l, ok := vocab.LoaderFromModrinth(tag); ok {
			loaders = append(loaders, l)
		}
	}
	return domain.UniqueLoaders(loaders...)
}
