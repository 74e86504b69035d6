package domain

import "time"

// Timestamps provides common creation/modification fields for stored entities.
// Embedded in every entity that is persisted to a collection document.
type Timestamps struct {
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

// Touch updates the Modified timestamp to the current time.
// Call this whenever the underlying entity changes.
func (t *Timestamps) Touch() {
	t.Modified = time.Now()
}

// Init sets both Created and Modified to now.
// Call this when creating a new entity.
func (t *Timestamps) Init() {
	now := time.Now()
	t.Created = now
	t.Modified = now
}
