package domain

// Category classifies icons. Categories form a tree through Parent, which is
// a weak ID reference: a dangling Parent is tolerated at write time and only
// matters to the tree builder.
type Category struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Parent      string `json:"parent,omitzero"` // Empty for top-level categories
	Timestamps
}

// IsRoot returns true if this category has no parent.
func (c *Category) IsRoot() bool {
	return c.Parent == ""
}

// CategoryNode is a category plus its resolved children, as produced by the
// tree builder.
type CategoryNode struct {
	Category
	Children []*CategoryNode `json:"children"`
}
