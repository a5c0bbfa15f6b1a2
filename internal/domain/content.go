// Package domain contains the core business logic and entities.
// This package has no external dependencies (only stdlib).
package domain

import (
	"time"
)

// Source identifies the registry a piece of content was discovered on.
type Source string

const (
	SourceCurseForge Source = "curseforge"
	SourceModrinth   Source = "modrinth"
)

// Sources returns every known source in the canonical order (curated first).
func Sources() []Source {
	return []Source{SourceCurseForge, SourceModrinth}
}

// Prefix returns the two-letter id prefix for the source.
func (s Source) Prefix() string {
	switch s {
	case SourceCurseForge:
		return "cf"
	case SourceModrinth:
		return "mr"
	default:
		return ""
	}
}

// ContentSummary is a unified search-result row, independent of the registry it came from.
type ContentSummary struct {
	// Identity
	ID     string `json:"id"` // "cf-<id>" or "mr-<id>"
	Source Source `json:"source"`
	Name   string `json:"name"`
	Slug   string `json:"slug"`

	ShortDescription string `json:"short_description"`
	IconURL          string `json:"icon_url,omitempty"`

	// Metrics
	Downloads int64  `json:"downloads"`
	Followers *int64 `json:"followers,omitempty"` // CurseForge thumbs-up count lands here

	Authors      []string `json:"authors"`
	Categories   []string `json:"categories"`
	GameVersions []string `json:"game_versions"`
	Loaders      []Loader `json:"loaders"`

	DateUpdated time.Time `json:"date_updated"`
	WebsiteURL  string    `json:"website_url"`
}

// NativeID returns the registry-native identifier (the id without its source prefix).
func (c *ContentSummary) NativeID() string {
	_, native, err := ParseContentID(c.ID)
	if err != nil {
		return ""
	}
	return native
}

// License describes the licence a project is published under.
type License struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

// Screenshot is a gallery image attached to a project.
type Screenshot struct {
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnail_url,omitempty"`
	Title        string `json:"title,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ContentDetail is the full project view. Body is markdown for Modrinth and
// sanitized HTML for CurseForge; Source tells the caller which one it holds.
type ContentDetail struct {
	ContentSummary

	Body        string       `json:"body"`
	DateCreated time.Time    `json:"date_created"`
	License     *License     `json:"license,omitempty"`
	Screenshots []Screenshot `json:"screenshots"`
}

// ReleaseType is the release channel of a version.
type ReleaseType string

const (
	ReleaseTypeRelease ReleaseType = "release"
	ReleaseTypeBeta    ReleaseType = "beta"
	ReleaseTypeAlpha   ReleaseType = "alpha"
)

// Version is a single downloadable build of a project.
type Version struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	VersionNumber string      `json:"version_number"`
	GameVersions  []string    `json:"game_versions"`
	Loaders       []Loader    `json:"loaders"` // may be empty when the registry cannot tell
	ReleaseType   ReleaseType `json:"release_type"`
	DatePublished time.Time   `json:"date_published"`
	Downloads     int64       `json:"downloads"`

	// Primary file
	FileURL  string `json:"file_url"`
	FileName string `json:"file_name"`
	FileSize int64  `json:"file_size"`

	Changelog string `json:"changelog,omitempty"`
}

// VersionFilter narrows a version listing. Empty fields mean "any".
type VersionFilter struct {
	Loader      Loader
	GameVersion string
}

// LoaderVersion is one release of a mod loader for a given game version.
type LoaderVersion struct {
	Version string `json:"version"`
	Stable  bool   `json:"stable"`
	Loader  Loader `json:"loader"`
}
