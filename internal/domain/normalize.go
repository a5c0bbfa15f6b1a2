package domain

import (
	"fmt"
	"regexp"
	"strings"
)

// modrinthIDPattern accepts Modrinth base62 ids and project slugs.
var modrinthIDPattern = regexp.MustCompile(`^[A-Za-z0-9_.\-]{1,64}$`)

// NewContentID builds the globally unique id of a project: "<prefix>-<native id>".
func NewContentID(src Source, nativeID string) string {
	return src.Prefix() + "-" + nativeID
}

// ParseContentID splits a unified id into its source and native id.
// Unknown prefixes and native ids that are not syntactically valid for
// their source (e.g. a non-numeric CurseForge id) yield ErrNotFound.
func ParseContentID(id string) (Source, string, error) {
	prefix, native, ok := strings.Cut(id, "-")
	if !ok || native == "" {
		return "", "", fmt.Errorf("%w: malformed id %q", ErrNotFound, id)
	}

	switch prefix {
	case SourceCurseForge.Prefix():
		if !isPositiveDecimal(native) {
			return "", "", fmt.Errorf("%w: curseforge ids are numeric, got %q", ErrNotFound, native)
		}
		return SourceCurseForge, native, nil
	case SourceModrinth.Prefix():
		if !modrinthIDPattern.MatchString(native) {
			return "", "", fmt.Errorf("%w: invalid modrinth id %q", ErrNotFound, native)
		}
		return SourceModrinth, native, nil
	default:
		return "", "", fmt.Errorf("%w: unknown source prefix %q", ErrNotFound, prefix)
	}
}

func isPositiveDecimal(s string) bool {
	if s == "" || len(s) > 18 || s[0] == '0' {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// UniqueStrings trims values, drops empty ones and removes duplicates,
// keeping the first occurrence order. It never returns nil.
func UniqueStrings(values ...string) []string {
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// UniqueLoaders is UniqueStrings for loader names.
func UniqueLoaders(values ...Loader) []Loader {
	out := make([]Loader, 0, len(values))
	seen := make(map[Loader]struct{}, len(values))
	for _, v := range values {
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
