package domain

import "time"

// Listing is the subset of a marketplace listing the chat needs for
// existence and ownership checks.
type Listing struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Listing) IsOwner(userID string) bool {
	return l.OwnerID == userID
}
