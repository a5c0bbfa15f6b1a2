package loadermeta

import (
	"encoding/xml"
	"slices"
	"strings"

	"content-discovery-service/internal/domain"
)

// FabricEntry is one element of Fabric's /v2/versions/loader/{game} response.
type FabricEntry struct {
	Loader struct {
		Version string `json:"version"`
		Stable  bool   `json:"stable"`
	} `json:"loader"`
}

// QuiltEntry is one element of Quilt's /v3/versions/loader/{game} response.
type QuiltEntry struct {
	Loader struct {
		Version string `json:"version"`
	} `json:"loader"`
}

// ForgePromotions represents Forge's promotions_slim.json.
type ForgePromotions struct {
	Promos map[string]string `json:"promos"`
}

// MavenMetadata represents a maven-metadata.xml document.
type MavenMetadata struct {
	XMLName    xml.Name   `xml:"metadata"`
	GroupID    string     `xml:"groupId"`
	ArtifactID string     `xml:"artifactId"`
	Versioning Versioning `xml:"versioning"`
}

// Versioning wraps the list of published versions.
type Versioning struct {
	Latest   string   `xml:"latest"`
	Release  string   `xml:"release"`
	Versions []string `xml:"versions>version"`
}

func fabricToDomain(entries []FabricEntry) []domain.LoaderVersion {
	out := make([]domain.LoaderVersion, 0, len(entries))
	for _, e := range entries {
		if e.Loader.Version == "" {
			continue
		}
		out = append(out, domain.LoaderVersion{
			Version: e.Loader.Version,
			Stable:  e.Loader.Stable,
			Loader:  domain.LoaderFabric,
		})
	}
	return out
}

// Quilt publishes no stability flag; pre-releases carry a suffix such as "-beta.3".
func quiltToDomain(entries []QuiltEntry) []domain.LoaderVersion {
	out := make([]domain.LoaderVersion, 0, len(entries))
	for _, e := range entries {
		if e.Loader.Version == "" {
			continue
		}
		out = append(out, domain.LoaderVersion{
			Version: e.Loader.Version,
			Stable:  !strings.Contains(e.Loader.Version, "-"),
			Loader:  domain.LoaderQuilt,
		})
	}
	return out
}

// Forge only promotes a latest and a recommended build per game version.
// The recommended build is the stable one.
func forgeToDomain(p ForgePromotions, gameVersion string) []domain.LoaderVersion {
	latest := p.Promos[gameVersion+"-latest"]
	recommended := p.Promos[gameVersion+"-recommended"]

	out := make([]domain.LoaderVersion, 0, 2)
	if latest != "" && latest != recommended {
		out = append(out, domain.LoaderVersion{Version: latest, Stable: false, Loader: domain.LoaderForge})
	}
	if recommended != "" {
		out = append(out, domain.LoaderVersion{Version: recommended, Stable: true, Loader: domain.LoaderForge})
	}
	return out
}

// NeoForge versions drop the leading "1." of the game version: game 1.20.4 is
// built as 20.4.x and game 1.21 as 21.0.x. The metadata lists oldest first.
func neoForgeToDomain(m MavenMetadata, gameVersion string) []domain.LoaderVersion {
	prefix, ok := neoForgePrefix(gameVersion)
	if !ok {
		return []domain.LoaderVersion{}
	}

	out := make([]domain.LoaderVersion, 0)
	for _, v := range slices.Backward(m.Versioning.Versions) {
		v = strings.TrimSpace(v)
		if !strings.HasPrefix(v, prefix) {
			continue
		}
		out = append(out, domain.LoaderVersion{
			Version: v,
			Stable:  !strings.Contains(v, "beta"),
			Loader:  domain.LoaderNeoForge,
		})
	}
	return out
}

func neoForgePrefix(gameVersion string) (string, bool) {
	rest, ok := strings.CutPrefix(gameVersion, "1.")
	if !ok || rest == "" {
		return "", false
	}
	minor, patch, hasPatch := strings.Cut(rest, ".")
	if !hasPatch {
		patch = "0"
	}
	if minor == "" || patch == "" {
		return "", false
	}
	return minor + "." + patch + ".", true
}
