package modrinth

import (
	"encoding/json"
	"fmt"

	"content-discovery-service/internal/domain"
	"content-discovery-service/internal/vocab"
)

// buildFacets encodes the filters of a query as a Modrinth facet expression.
// Inner arrays are OR-ed and outer arrays AND-ed; every filter here is a
// single-element group.
func buildFacets(q domain.SourceQuery) (string, error) {
	groups := [][]string{
		{"project_type:" + vocab.ModrinthProjectType(q.ContentType)},
	}
	if q.Loader != "" {
		groups = append(groups, []string{"categories:" + vocab.ModrinthLoader(q.Loader)})
	}
	if q.GameVersion != "" {
		groups = append(groups, []string{"versions:" + q.GameVersion})
	}
	if q.Category != "" {
		groups = append(groups, []string{"categories:" + vocab.ModrinthCategory(q.Category)})
	}

	b, err := json.Marshal(groups)
	if err != nil {
		return "", fmt.Errorf("encoding facets: %w", err)
	}
	return string(b), nil
}

// jsonList encodes a single value as a JSON array, the format of the version
// endpoint's loaders and game_versions parameters.
func jsonList(value string) (string, error) {
	b, err := json.Marshal([]string{value})
	if err != nil {
		return "", fmt.Errorf("encoding list parameter: %w", err)
	}
	return string(b), nil
}
