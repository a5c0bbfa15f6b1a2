package curseforge

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/vocab"
)

// cdnBaseURL serves files whose authors disabled third-party distribution.
const cdnBaseURL = "https://edge.forgecdn.net/files"

// SearchResponse represents the JSON response of /v1/mods/search.
type SearchResponse struct {
	Data       []Mod      `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ModResponse represents the JSON response of /v1/mods/{modId}.
type ModResponse struct {
	Data Mod `json:"data"`
}

// DescriptionResponse represents the JSON response of /v1/mods/{modId}/description.
type DescriptionResponse struct {
	Data string `json:"data"`
}

// FilesResponse represents the JSON response of /v1/mods/{modId}/files.
type FilesResponse struct {
	Data       []File     `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Pagination holds pagination info.
type Pagination struct {
	Index       int   `json:"index"`
	PageSize    int   `json:"pageSize"`
	ResultCount int   `json:"resultCount"`
	TotalCount  int64 `json:"totalCount"`
}

// Mod represents a single project from CurseForge.
type Mod struct {
	ID                 int64       `json:"id"`
	GameID             int         `json:"gameId"`
	ClassID            int         `json:"classId"`
	Name               string      `json:"name"`
	Slug               string      `json:"slug"`
	Links              Links       `json:"links"`
	Summary            string      `json:"summary"`
	DownloadCount      int64       `json:"downloadCount"`
	ThumbsUpCount      int64       `json:"thumbsUpCount"`
	Categories         []Category  `json:"categories"`
	Authors            []Author    `json:"authors"`
	Logo               *Asset      `json:"logo"`
	Screenshots        []Asset     `json:"screenshots"`
	LatestFilesIndexes []FileIndex `json:"latestFilesIndexes"`
	DateCreated        time.Time   `json:"dateCreated"`
	DateModified       time.Time   `json:"dateModified"`
}

// Links holds the project's external pages.
type Links struct {
	WebsiteURL string `json:"websiteUrl"`
	SourceURL  string `json:"sourceUrl"`
}

// Category is a CurseForge category.
type Category struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	Slug    string `json:"slug"`
	ClassID int    `json:"classId"`
}

// Author is a project member.
type Author struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// Asset is a logo or screenshot.
type Asset struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	ThumbnailURL string `json:"thumbnailUrl"`
	URL          string `json:"url"`
}

// FileIndex summarises the latest file per game version and loader.
type FileIndex struct {
	GameVersion string `json:"gameVersion"`
	FileID      int64  `json:"fileId"`
	ModLoader   *int   `json:"modLoader"`
}

// File is a single uploaded file of a project.
type File struct {
	ID            int64     `json:"id"`
	ModID         int64     `json:"modId"`
	DisplayName   string    `json:"displayName"`
	FileName      string    `json:"fileName"`
	ReleaseType   int       `json:"releaseType"`
	FileDate      time.Time `json:"fileDate"`
	FileLength    int64     `json:"fileLength"`
	DownloadCount int64     `json:"downloadCount"`
	DownloadURL   *string   `json:"downloadUrl"`
	GameVersions  []string  `json:"gameVersions"`
}

// ToSummary converts Mod to domain.ContentSummary.
func (m *Mod) ToSummary() *domain.ContentSummary {
	followers := max(m.ThumbsUpCount, 0)

	authors := make([]string, 0, len(m.Authors))
	for _, a := range m.Authors {
		authors = append(authors, a.Name)
	}

	categories := make([]string, 0, len(m.Categories))
	for _, c := range m.Categories {
		categories = append(categories, vocab.CategoryFromCurseForge(c.ID, c.Slug))
	}

	gameVersions := make([]string, 0, len(m.LatestFilesIndexes))
	loaders := make([]domain.Loader, 0, 2)
	for _, idx := range m.LatestFilesIndexes {
		gameVersions = append(gameVersions, idx.GameVersion)
		if idx.ModLoader == nil {
			continue
		}
		if l, ok := vocab.LoaderFromCurseForge(*idx.ModLoader); ok {
			loaders = append(loaders, l)
		}
	}

	return &domain.ContentSummary{
		ID:               domain.NewContentID(domain.SourceCurseForge, strconv.FormatInt(m.ID, 10)),
		Source:           domain.SourceCurseForge,
		Name:             m.Name,
		Slug:             m.Slug,
		ShortDescription: m.Summary,
		IconURL:          m.iconURL(),
		Downloads:        max(m.DownloadCount, 0),
		Followers:        &followers,
		Authors:          domain.UniqueStrings(authors...),
		Categories:       domain.UniqueStrings(categories...),
		GameVersions:     domain.UniqueStrings(gameVersions...),
		Loaders:          domain.UniqueLoaders(loaders...),
		DateUpdated:      m.DateModified,
		WebsiteURL:       m.Links.WebsiteURL,
	}
}

// ToDetail converts Mod and its HTML description to domain.ContentDetail.
// CurseForge does not expose licence data through this API.
func (m *Mod) ToDetail(body string) *domain.ContentDetail {
	screenshots := make([]domain.Screenshot, 0, len(m.Screenshots))
	for _, s := range m.Screenshots {
		screenshots = append(screenshots, domain.Screenshot{
			URL:          s.URL,
			ThumbnailURL: s.ThumbnailURL,
			Title:        s.Title,
			Description:  s.Description,
		})
	}

	return &domain.ContentDetail{
		ContentSummary: *m.ToSummary(),
		Body:           body,
		DateCreated:    m.DateCreated,
		Screenshots:    screenshots,
	}
}

func (m *Mod) iconURL() string {
	if m.Logo == nil {
		return ""
	}
	if m.Logo.ThumbnailURL != "" {
		return m.Logo.ThumbnailURL
	}
	return m.Logo.URL
}

// ToVersion converts File to domain.Version.
//
// CurseForge lists game versions, loader names and environment tags ("Client",
// "Java 17") in one gameVersions array; only the first two are kept.
func (f *File) ToVersion() *domain.Version {
	gameVersions := make([]string, 0, len(f.GameVersions))
	loaders := make([]domain.Loader, 0, 1)
	for _, tag := range f.GameVersions {
		if l, ok := vocab.LoaderFromCurseForgeTag(tag); ok {
			loaders = append(loaders, l)
			continue
		}
		if isGameVersion(tag) {
			gameVersions = append(gameVersions, tag)
		}
	}

	return &domain.Version{
		ID:            strconv.FormatInt(f.ID, 10),
		Name:          f.DisplayName,
		VersionNumber: strings.TrimSuffix(f.FileName, ".jar"),
		GameVersions:  domain.UniqueStrings(gameVersions...),
		Loaders:       domain.UniqueLoaders(loaders...),
		ReleaseType:   vocab.ReleaseTypeFromCurseForge(f.ReleaseType),
		DatePublished: f.FileDate,
		Downloads:     max(f.DownloadCount, 0),
		FileURL:       f.downloadURL(),
		FileName:      f.FileName,
		FileSize:      f.FileLength,
	}
}

func (f *File) downloadURL() string {
	if f.DownloadURL != nil && *f.DownloadURL != "" {
		return *f.DownloadURL
	}
	return fmt.Sprintf("%s/%d/%d/%s", cdnBaseURL, f.ID/1000, f.ID%1000, f.FileName)
}

func isGameVersion(tag string) bool {
	return tag != "" && tag[0] >= '0' && tag[0] <= '9'
}
