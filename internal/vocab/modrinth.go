package vocab

import (
	"strings"

	"content-discovery-service/internal/domain"
)

var modrinthProjectTypes = map[domain.ContentType]string{
	domain.ContentTypeMod:          "mod",
	domain.ContentTypeModpack:      "modpack",
	domain.ContentTypeResourcePack: "resourcepack",
	domain.ContentTypeShader:       "shader",
}

var modrinthIndexes = map[domain.SortKey]string{
	domain.SortPopularity: "follows",
	domain.SortDownloads:  "downloads",
	domain.SortUpdated:    "updated",
	domain.SortName:       "relevance",
}

// Platform tags Modrinth lists among categories that are neither unified
// categories nor unified loaders.
var modrinthPlatformTags = map[string]struct{}{
	"minecraft":  {},
	"datapack":   {},
	"bukkit":     {},
	"spigot":     {},
	"paper":      {},
	"purpur":     {},
	"folia":      {},
	"sponge":     {},
	"bungeecord": {},
	"velocity":   {},
	"waterfall":  {},
	"liteloader": {},
	"modloader":  {},
	"rift":       {},
	"iris":       {},
	"optifine":   {},
	"canvas":     {},
	"vanilla":    {},
}

// ModrinthLoader returns the loader tag. Loader names are shared with Modrinth.
func ModrinthLoader(l domain.Loader) string {
	return string(l)
}

// LoaderFromModrinth reports whether a Modrinth tag is one of the unified loaders.
func LoaderFromModrinth(tag string) (domain.Loader, bool) {
	l := domain.Loader(strings.ToLower(strings.TrimSpace(tag)))
	_, ok := curseForgeLoaders[l]
	return l, ok
}

// ModrinthProjectType returns the project_type facet value. Unknown types are searched as mods.
func ModrinthProjectType(t domain.ContentType) string {
	if pt, ok := modrinthProjectTypes[t]; ok {
		return pt
	}
	return modrinthProjectTypes[domain.ContentTypeMod]
}

// ContentTypeFromModrinth reverses ModrinthProjectType, defaulting to mod.
func ContentTypeFromModrinth(projectType string) domain.ContentType {
	for t, pt := range modrinthProjectTypes {
		if pt == projectType {
			return t
		}
	}
	return domain.ContentTypeMod
}

// ModrinthCategory passes unified categories through. Modrinth's taxonomy already
// uses the unified tags.
func ModrinthCategory(category string) string {
	return category
}

// ModrinthIndex returns the search index for a sort key.
// Modrinth has no name index; name sorting is done by the merger over relevance results.
func ModrinthIndex(key domain.SortKey) string {
	if idx, ok := modrinthIndexes[key]; ok {
		return idx
	}
	return "relevance"
}

// ReleaseTypeFromModrinth maps version_type. Unknown values are treated as alpha.
func ReleaseTypeFromModrinth(versionType string) domain.ReleaseType {
	switch strings.ToLower(versionType) {
	case "release":
		return domain.ReleaseTypeRelease
	case "beta":
		return domain.ReleaseTypeBeta
	default:
		return domain.ReleaseTypeAlpha
	}
}

// SplitModrinthTags separates a Modrinth category list into unified categories
// and unified loaders, dropping platform tags that are neither.
func SplitModrinthTags(tags []string) ([]string, []domain.Loader) {
	categories := make([]string, 0, len(tags))
	loaders := make([]domain.Loader, 0, 2)

	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if l, ok := LoaderFromModrinth(tag); ok {
			loaders = append(loaders, l)
			continue
		}
		if _, ok := modrinthPlatformTags[tag]; ok {
			continue
		}
		categories = append(categories, ModrinthCategory(tag))
	}

	return domain.UniqueStrings(categories...), domain.UniqueLoaders(loaders...)
}

// ModrinthWebsiteURL builds the public page of a project.
func ModrinthWebsiteURL(projectType, slug string) string {
	if projectType == "" {
		projectType = "mod"
	}
	return "https://modrinth.com/" + projectType + "/" + slug
}
