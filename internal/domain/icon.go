package domain

// Icon represents a stored SVG icon and its metadata. The SVG bytes live in
// a separate file in the icons storage area, referenced by Filename; only
// metadata is embedded in the collection document.
type Icon struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Filename    string   `json:"filename"`
	Categories  []string `json:"categories"` // Category IDs, many-to-many
	Tags        []string `json:"tags"`       // Insertion order preserved for display
	Colors      []string `json:"colors"`     // Hex values, ordered
	Multicolor  bool     `json:"multicolor"`
	Timestamps
}

// SVGFilename returns the conventional backing filename for an icon ID.
func SVGFilename(iconID string) string {
	return iconID + ".svg"
}

// InCategory reports whether the icon is assigned to the given category.
func (i *Icon) InCategory(categoryID string) bool {
	for _, c := range i.Categories {
		if c == categoryID {
			return true
		}
	}
	return false
}

// DistinctColors returns the number of distinct color values tracked.
func (i *Icon) DistinctColors() int {
	seen := make(map[string]bool, len(i.Colors))
	for _, c := range i.Colors {
		seen[c] = true
	}
	return len(seen)
}
