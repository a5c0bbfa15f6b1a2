package vocab

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"content-discovery-service/internal/domain"
)

func TestCurseForgeLoader(t *testing.T) {
	tests := []struct {
		loader domain.Loader
		want   int
	}{
		{domain.LoaderForge, 1},
		{domain.LoaderFabric, 4},
		{domain.LoaderQuilt, 5},
		{domain.LoaderNeoForge, 6},
		{"", CurseForgeAnyLoader},
		{"rift", CurseForgeAnyLoader},
	}

	for _, tt := range tests {
		t.Run(string(tt.loader), func(t *testing.T) {
			assert.Equal(t, tt.want, CurseForgeLoader(tt.loader))
		})
	}
}

func TestLoaderFromCurseForge(t *testing.T) {
	for _, l := range domain.Loaders() {
		got, ok := LoaderFromCurseForge(CurseForgeLoader(l))
		assert.True(t, ok)
		assert.Equal(t, l, got)
	}

	_, ok := LoaderFromCurseForge(0)
	assert.False(t, ok)
	_, ok = LoaderFromCurseForge(99)
	assert.False(t, ok)
}

func TestLoaderFromCurseForgeTag(t *testing.T) {
	tests := []struct {
		tag    string
		want   domain.Loader
		wantOK bool
	}{
		{"Forge", domain.LoaderForge, true},
		{"NeoForge", domain.LoaderNeoForge, true},
		{"Fabric", domain.LoaderFabric, true},
		{"Quilt", domain.LoaderQuilt, true},
		{"1.20.1", "", false},
		{"Client", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.tag, func(t *testing.T) {
			got, ok := LoaderFromCurseForgeTag(tt.tag)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestCurseForgeClass(t *testing.T) {
	assert.Equal(t, 6, CurseForgeClass(domain.ContentTypeMod))
	assert.Equal(t, 4471, CurseForgeClass(domain.ContentTypeModpack))
	assert.Equal(t, 12, CurseForgeClass(domain.ContentTypeResourcePack))
	assert.Equal(t, 6552, CurseForgeClass(domain.ContentTypeShader))
	assert.Equal(t, 6, CurseForgeClass("world"))
}

func TestCurseForgeCategory(t *testing.T) {
	tests := []struct {
		name     string
		class    domain.ContentType
		category string
		want     int
	}{
		{"mod storage", domain.ContentTypeMod, "storage", 420},
		{"mod technology", domain.ContentTypeMod, "technology", 412},
		{"mod optimization", domain.ContentTypeMod, "optimization", 6814},
		{"modpack technology", domain.ContentTypeModpack, "technology", 4472},
		{"modpack quests", domain.ContentTypeModpack, "quests", 4478},
		{"resourcepack 16x", domain.ContentTypeResourcePack, "16x", 393},
		{"shader fantasy", domain.ContentTypeShader, "fantasy", 6554},
		{"empty category", domain.ContentTypeMod, "", CurseForgeAnyCategory},
		{"unknown category", domain.ContentTypeMod, "cursed", CurseForgeAnyCategory},
		{"category from another class", domain.ContentTypeShader, "storage", CurseForgeAnyCategory},
		{"unknown class uses mod table", "world", "magic", 419},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CurseForgeCategory(tt.class, tt.category))
		})
	}
}

func TestCategoryFromCurseForge(t *testing.T) {
	assert.Equal(t, "storage", CategoryFromCurseForge(420, "storage-mods"))
	assert.Equal(t, "kitchen-sink", CategoryFromCurseForge(4482, "multiplayer-kitchen-sink"))
	assert.Equal(t, "armor-tools-weapons", CategoryFromCurseForge(99999, " Armor-Tools-Weapons "))
}

func TestCurseForgeSortField(t *testing.T) {
	tests := []struct {
		key       domain.SortKey
		wantField int
		wantOrder string
	}{
		{domain.SortPopularity, 2, "desc"},
		{domain.SortUpdated, 3, "desc"},
		{domain.SortName, 4, "asc"},
		{domain.SortDownloads, 6, "desc"},
		{"rating", 2, "desc"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.wantField, CurseForgeSortField(tt.key))
			assert.Equal(t, tt.wantOrder, CurseForgeSortOrder(tt.key))
		})
	}
}

func TestReleaseTypeFromCurseForge(t *testing.T) {
	assert.Equal(t, domain.ReleaseTypeRelease, ReleaseTypeFromCurseForge(1))
	assert.Equal(t, domain.ReleaseTypeBeta, ReleaseTypeFromCurseForge(2))
	assert.Equal(t, domain.ReleaseTypeAlpha, ReleaseTypeFromCurseForge(3))
	assert.Equal(t, domain.ReleaseTypeAlpha, ReleaseTypeFromCurseForge(0))
	assert.Equal(t, domain.ReleaseTypeAlpha, ReleaseTypeFromCurseForge(42))
}

func TestModrinthLoader(t *testing.T) {
	for _, l := range domain.Loaders() {
		tag := ModrinthLoader(l)
		assert.Equal(t, string(l), tag)

		back, ok := LoaderFromModrinth(tag)
		assert.True(t, ok)
		assert.Equal(t, l, back)
	}

	_, ok := LoaderFromModrinth("bukkit")
	assert.False(t, ok)
}

func TestModrinthProjectType(t *testing.T) {
	for _, ct := range domain.ContentTypes() {
		pt := ModrinthProjectType(ct)
		assert.Equal(t, ct, ContentTypeFromModrinth(pt))
	}
	assert.Equal(t, "mod", ModrinthProjectType("world"))
	assert.Equal(t, domain.ContentTypeMod, ContentTypeFromModrinth("plugin"))
}

func TestModrinthIndex(t *testing.T) {
	tests := []struct {
		key  domain.SortKey
		want string
	}{
		{domain.SortPopularity, "follows"},
		{domain.SortDownloads, "downloads"},
		{domain.SortUpdated, "updated"},
		{domain.SortName, "relevance"},
		{"", "relevance"},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			assert.Equal(t, tt.want, ModrinthIndex(tt.key))
		})
	}
}

func TestReleaseTypeFromModrinth(t *testing.T) {
	assert.Equal(t, domain.ReleaseTypeRelease, ReleaseTypeFromModrinth("release"))
	assert.Equal(t, domain.ReleaseTypeBeta, ReleaseTypeFromModrinth("beta"))
	assert.Equal(t, domain.ReleaseTypeAlpha, ReleaseTypeFromModrinth("alpha"))
	assert.Equal(t, domain.ReleaseTypeAlpha, ReleaseTypeFromModrinth("snapshot"))
}

func TestSplitModrinthTags(t *testing.T) {
	categories, loaders := SplitModrinthTags([]string{
		"storage", "fabric", "Technology", "quilt", "minecraft", "fabric", "", "storage", "paper",
	})

	assert.Equal(t, []string{"storage", "technology"}, categories)
	assert.Equal(t, []domain.Loader{domain.LoaderFabric, domain.LoaderQuilt}, loaders)
}

func TestSplitModrinthTags_Empty(t *testing.T) {
	categories, loaders := SplitModrinthTags(nil)

	assert.NotNil(t, categories)
	assert.Empty(t, categories)
	assert.NotNil(t, loaders)
	assert.Empty(t, loaders)
}

func TestModrinthWebsiteURL(t *testing.T) {
	assert.Equal(t, "https://modrinth.com/mod/sodium", ModrinthWebsiteURL("mod", "sodium"))
	assert.Equal(t, "https://modrinth.com/shader/complementary", ModrinthWebsiteURL("shader", "complementary"))
	assert.Equal(t, "https://modrinth.com/mod/lithium", ModrinthWebsiteURL("", "lithium"))
}
