package records

import "strings"

// Search returns the subset of the table whose dog name, address or
// filter tag contains the query, case-insensitively.  An empty query is
// the identity so the caller can pass the search box through untouched.
// Relative order is preserved; matching never errors on empty fields
// because normalization guarantees they are plain strings.
func (t Table) Search(query string) Table {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return t
	}
	matched := make(Table, 0, len(t))
	for _, rec := range t {
		if containsFold(rec.DogName, query) ||
			containsFold(rec.Address, query) ||
			containsFold(rec.Filter, query) {
			matched = append(matched, rec)
		}
	}
	return matched
}

// containsFold reports whether s contains the already-lowercased query.
func containsFold(s, loweredQuery string) bool {
	return strings.Contains(strings.ToLower(s), loweredQuery)
}
