package domain

import "time"

// ReadingList is a user-owned, ordered list of books without duplicates.
type ReadingList struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	BookIDs     []string  `json:"book_ids"`
	IsPublic    bool      `json:"is_public"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// IsOwnedBy reports whether userID owns the list.
func (l *ReadingList) IsOwnedBy(userID string) bool {
	return userID != "" && l.UserID == userID
}

// IsVisibleTo reports whether userID may read the list. Anonymous callers pass "".
func (l *ReadingList) IsVisibleTo(userID string) bool {
	return l.IsPublic || l.IsOwnedBy(userID)
}

// ReadingListPatch holds the optional fields of a partial update.
type ReadingListPatch struct {
	Name        *string
	Description *string
	IsPublic    *bool
}

// Apply copies the set fields onto the list. Returns true if anything was set.
func (p ReadingListPatch) Apply(l *ReadingList) bool {
	changed := false
	if p.Name != nil {
		l.Name = *p.Name
		changed = true
	}
	if p.Description != nil {
		l.Description = *p.Description
		changed = true
	}
	if p.IsPublic != nil {
		l.IsPublic = *p.IsPublic
		changed = true
	}
	if changed {
		l.UpdatedAt = time.Now()
	}
	return changed
}
