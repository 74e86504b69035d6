package store

import "github.com/iconvault/iconvault/internal/domain"

// BuildTree derives the hierarchical view from a flat category list. Roots
// are categories with no parent; children attach recursively by Parent ID.
// A category whose Parent references a nonexistent ID appears nowhere in the
// forest (neither root nor child) — matching the flat store's tolerance for
// dangling references.
func BuildTree(categories []domain.Category) []*domain.CategoryNode {
	children := make(map[string][]domain.Category, len(categories))
	var roots []domain.Category
	for _, c := range categories {
		if c.IsRoot() {
			roots = append(roots, c)
			continue
		}
		children[c.Parent] = append(children[c.Parent], c)
	}

	var build func(cats []domain.Category) []*domain.CategoryNode
	build = func(cats []domain.Category) []*domain.CategoryNode {
		nodes := make([]*domain.CategoryNode, 0, len(cats))
		for _, c := range cats {
			nodes = append(nodes, &domain.CategoryNode{
				Category: c,
				Children: build(children[c.ID]),
			})
		}
		return nodes
	}
	return build(roots)
}

// Path walks Parent links upward from the given category and returns the
// chain in root-to-node order. A visited set bounds the walk so a cyclic
// Parent chain terminates instead of looping forever; the partial path
// gathered up to the repeated link is returned.
func Path(categories []domain.Category, catID string) []domain.Category {
	byID := make(map[string]domain.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	var path []domain.Category
	visited := make(map[string]bool)
	for current := catID; current != ""; {
		if visited[current] {
			break
		}
		visited[current] = true

		c, ok := byID[current]
		if !ok {
			break
		}
		path = append([]domain.Category{c}, path...)
		current = c.Parent
	}
	return path
}
