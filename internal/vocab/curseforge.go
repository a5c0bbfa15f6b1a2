// Package vocab maps the unified vocabulary to and from each registry's native encoding.
//
// Every forward mapping is total: a value outside a table falls back to the
// registry's "unspecified" code instead of failing. Reverse mappings report
// whether the native value was recognised.
package vocab

import (
	"strings"

	"content-discovery-service/internal/domain"
)

// CurseForge game id for Minecraft.
const CurseForgeGameID = 432

// CurseForge "any" codes.
const (
	CurseForgeAnyLoader   = 0
	CurseForgeAnyCategory = 0
)

var curseForgeLoaders = map[domain.Loader]int{
	domain.LoaderForge:    1,
	domain.LoaderFabric:   4,
	domain.LoaderQuilt:    5,
	domain.LoaderNeoForge: 6,
}

var curseForgeClasses = map[domain.ContentType]int{
	domain.ContentTypeMod:          6,
	domain.ContentTypeModpack:      4471,
	domain.ContentTypeResourcePack: 12,
	domain.ContentTypeShader:       6552,
}

// Category tables are per content class; CurseForge category ids are unique across classes.
var curseForgeCategories = map[domain.ContentType]map[string]int{
	domain.ContentTypeMod: {
		"adventure":      422,
		"decoration":     424,
		"equipment":      434,
		"food":           436,
		"library":        421,
		"magic":          419,
		"management":     435,
		"mobs":           411,
		"optimization":   6814,
		"storage":        420,
		"technology":     412,
		"transportation": 414,
		"utility":        5191,
		"worldgen":       406,
	},
	domain.ContentTypeModpack: {
		"adventure":    4475,
		"technology":   4472,
		"magic":        4473,
		"quests":       4478,
		"lightweight":  4481,
		"kitchen-sink": 4482,
		"combat":       4483,
		"multiplayer":  4484,
	},
	domain.ContentTypeResourcePack: {
		"16x":       393,
		"32x":       394,
		"64x":       395,
		"128x":      396,
		"256x":      397,
		"512x+":     398,
		"realistic": 400,
		"modded":    4465,
		"fonts":     5244,
	},
	domain.ContentTypeShader: {
		"realistic":    6553,
		"fantasy":      6554,
		"vanilla-like": 6555,
	},
}

var curseForgeCategoryNames = func() map[int]string {
	out := make(map[int]string)
	for _, table := range curseForgeCategories {
		for name, id := range table {
			out[id] = name
		}
	}
	return out
}()

var curseForgeSortFields = map[domain.SortKey]int{
	domain.SortPopularity: 2,
	domain.SortUpdated:    3,
	domain.SortName:       4,
	domain.SortDownloads:  6,
}

// CurseForgeLoader returns the modLoaderType code. Unknown or empty loaders map to Any (0).
func CurseForgeLoader(l domain.Loader) int {
	if code, ok := curseForgeLoaders[l]; ok {
		return code
	}
	return CurseForgeAnyLoader
}

// LoaderFromCurseForge reverses CurseForgeLoader. Any (0) and unknown codes are not loaders.
func LoaderFromCurseForge(code int) (domain.Loader, bool) {
	for l, c := range curseForgeLoaders {
		if c == code {
			return l, true
		}
	}
	return "", false
}

// LoaderFromCurseForgeTag recognises loader names that CurseForge mixes into a
// file's gameVersions list ("Forge", "NeoForge", ...).
func LoaderFromCurseForgeTag(tag string) (domain.Loader, bool) {
	l := domain.Loader(strings.ToLower(strings.TrimSpace(tag)))
	_, ok := curseForgeLoaders[l]
	return l, ok
}

// CurseForgeClass returns the classId of a content type. Unknown types are searched as mods.
func CurseForgeClass(t domain.ContentType) int {
	if id, ok := curseForgeClasses[t]; ok {
		return id
	}
	return curseForgeClasses[domain.ContentTypeMod]
}

// CurseForgeCategory returns the categoryId for a unified category within a content class.
// Empty and unknown categories map to All (0).
func CurseForgeCategory(t domain.ContentType, category string) int {
	table, ok := curseForgeCategories[t]
	if !ok {
		table = curseForgeCategories[domain.ContentTypeMod]
	}
	if id, ok := table[category]; ok {
		return id
	}
	return CurseForgeAnyCategory
}

// CategoryFromCurseForge returns the unified tag for a CurseForge category.
// Categories outside the table keep their CurseForge slug.
func CategoryFromCurseForge(id int, slug string) string {
	if name, ok := curseForgeCategoryNames[id]; ok {
		return name
	}
	return strings.ToLower(strings.TrimSpace(slug))
}

// CurseForgeSortField returns the sortField code. Unknown keys sort by popularity.
func CurseForgeSortField(key domain.SortKey) int {
	if code, ok := curseForgeSortFields[key]; ok {
		return code
	}
	return curseForgeSortFields[domain.SortPopularity]
}

// CurseForgeSortOrder is ascending for name and descending for every other key.
func CurseForgeSortOrder(key domain.SortKey) string {
	if key == domain.SortName {
		return "asc"
	}
	return "desc"
}

// ReleaseTypeFromCurseForge maps releaseType 1/2/3. Unknown codes are treated as alpha.
func ReleaseTypeFromCurseForge(code int) domain.ReleaseType {
	switch code {
	case 1:
		return domain.ReleaseTypeRelease
	case 2:
		return domain.ReleaseTypeBeta
	default:
		return domain.ReleaseTypeAlpha
	}
}
