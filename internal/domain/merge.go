package domain

import (
	"cmp"
	"slices"
	"strings"
)

// SourceOutcome is the settled result of one source's branch of a federated search.
// Exactly one of Page and Err is set.
type SourceOutcome struct {
	Source Source
	Page   *SourcePage
	Err    error
}

// MergePages combines the per-source pages of a federated search into one page.
//
// Items from every successful source are concatenated, ordered by SortSummaries
// and truncated to size. Total is the sum of the totals reported by the sources
// that answered; failed sources contribute nothing and are listed in
// UnavailableSources. HasMore is true iff (page-1)*size + size < Total.
func MergePages(outcomes []SourceOutcome, key SortKey, page, size int) *QueryResult {
	result := &QueryResult{
		Items:    make([]*ContentSummary, 0, size),
		Page:     page,
		PageSize: size,
	}

	for _, o := range outcomes {
		if o.Err != nil || o.Page == nil {
			result.UnavailableSources = append(result.UnavailableSources, o.Source)
			continue
		}
		result.Items = append(result.Items, o.Page.Items...)
		result.Total += o.Page.Total
	}

	SortSummaries(result.Items, key)
	if len(result.Items) > size {
		result.Items = result.Items[:size]
	}

	offset := int64((page - 1) * size)
	result.HasMore = offset+int64(size) < result.Total

	return result
}

// SortSummaries orders items in place under a total order:
//
//	downloads  - Downloads descending
//	updated    - DateUpdated descending
//	name       - Name ascending, case-insensitive
//	popularity - same as downloads (there is no cross-registry popularity signal)
//
// Ties fall back to the id, which sorts by source prefix and then native id.
func SortSummaries(items []*ContentSummary, key SortKey) {
	slices.SortStableFunc(items, compareFor(key))
}

func compareFor(key SortKey) func(a, b *ContentSummary) int {
	var primary func(a, b *ContentSummary) int

	switch key {
	case SortUpdated:
		primary = func(a, b *ContentSummary) int {
			return b.DateUpdated.Compare(a.DateUpdated)
		}
	case SortName:
		primary = func(a, b *ContentSummary) int {
			return cmp.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		}
	default:
		primary = func(a, b *ContentSummary) int {
			return cmp.Compare(b.Downloads, a.Downloads)
		}
	}

	return func(a, b *ContentSummary) int {
		if c := primary(a, b); c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	}
}
