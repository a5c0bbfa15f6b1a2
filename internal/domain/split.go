package domain

// SubQuery is the window of its own result list that one source contributes to a page.
type SubQuery struct {
	Source Source
	Offset int
	Limit  int
}

// SplitPage apportions page p (1-based) of size s across the active sources.
//
// A single source gets the whole page. With CurseForge and Modrinth both active,
// CurseForge gets floor(s/2) and Modrinth ceil(s/2), and each source pages through
// its own list with its own page size, so consecutive pages never overlap within a
// source. Offsets are (p-1)*limit per source rather than floor((p-1)*s/2), which
// agrees for even s and would repeat a Modrinth item between pages for odd s.
// The split never borrows: an exhausted source just yields a short page.
//
// Interleaving is approximate. There is no shared ranking index, so the merged
// page is "top half of each source", not the global top s.
func SplitPage(page, size int, sources []Source) []SubQuery {
	if page < 1 {
		page = 1
	}
	if size < 0 {
		size = 0
	}

	switch len(sources) {
	case 0:
		return nil
	case 1:
		return []SubQuery{{Source: sources[0], Offset: (page - 1) * size, Limit: size}}
	}

	floorHalf := size / 2
	ceilHalf := size - floorHalf

	subs := make([]SubQuery, 0, len(sources))
	for _, src := range sources {
		limit := ceilHalf
		if src == SourceCurseForge {
			limit = floorHalf
		}
		subs = append(subs, SubQuery{Source: src, Offset: (page - 1) * limit, Limit: limit})
	}
	return subs
}
