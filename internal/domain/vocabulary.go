package domain

import (
	"fmt"
	"strings"
)

// Loader is a unified mod loader name.
type Loader string

const (
	LoaderForge    Loader = "forge"
	LoaderFabric   Loader = "fabric"
	LoaderQuilt    Loader = "quilt"
	LoaderNeoForge Loader = "neoforge"
)

// Loaders returns the closed loader vocabulary.
func Loaders() []Loader {
	return []Loader{LoaderForge, LoaderFabric, LoaderQuilt, LoaderNeoForge}
}

// ParseLoader accepts a loader name case-insensitively. The empty string is "no loader".
func ParseLoader(s string) (Loader, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return "", nil
	}
	for _, l := range Loaders() {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("%w: unknown loader %q", ErrInvalidQuery, s)
}

// ContentType is the class of project being searched for.
type ContentType string

const (
	ContentTypeMod          ContentType = "mod"
	ContentTypeModpack      ContentType = "modpack"
	ContentTypeResourcePack ContentType = "resourcepack"
	ContentTypeShader       ContentType = "shader"
)

// ContentTypes returns the supported content classes.
func ContentTypes() []ContentType {
	return []ContentType{ContentTypeMod, ContentTypeModpack, ContentTypeResourcePack, ContentTypeShader}
}

// SupportsLoader reports whether projects of this class are built against a mod loader.
func (t ContentType) SupportsLoader() bool {
	return t == ContentTypeMod || t == ContentTypeModpack
}

// SortKey is the unified ordering of a search.
type SortKey string

const (
	SortPopularity SortKey = "popularity"
	SortUpdated    SortKey = "updated"
	SortDownloads  SortKey = "downloads"
	SortName       SortKey = "name"
)

// SortKeys returns the supported sort keys.
func SortKeys() []SortKey {
	return []SortKey{SortPopularity, SortUpdated, SortDownloads, SortName}
}

// SourceScope restricts a search to one registry or fans out to all of them.
type SourceScope string

const (
	ScopeAll        SourceScope = "all"
	ScopeCurseForge SourceScope = "curseforge"
	ScopeModrinth   SourceScope = "modrinth"
)

// Includes reports whether the scope covers the given source.
func (s SourceScope) Includes(src Source) bool {
	switch s {
	case ScopeAll, "":
		return true
	case ScopeCurseForge:
		return src == SourceCurseForge
	case ScopeModrinth:
		return src == SourceModrinth
	default:
		return false
	}
}
