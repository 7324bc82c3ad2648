package domain

import (
	"html"
	"strings"
	"time"
)

// Message is a single chat message between two participants of a listing.
type Message struct {
	ID          int64                  `json:"id"`
	ListingID   int64                  `json:"listing_id"`
	SenderID    string                 `json:"sender_id"`
	ReceiverID  string                 `json:"receiver_id"`
	Content     string                 `json:"content"`
	Timestamp   time.Time              `json:"timestamp"`
	Edited      bool                   `json:"edited"`
	Deleted     bool                   `json:"deleted"`
	MessageType string                 `json:"message_type"`
	Metadata    map[string]interface{} `json:"message_metadata"`
	ReadAt      *time.Time             `json:"read_at"`
	ReplyToID   *int64                 `json:"reply_to_id"`
}

const (
	MessageTypeText   = "text"
	MessageTypeImage  = "image"
	MessageTypeFile   = "file"
	MessageTypeSystem = "system"
)

// IsVisible reports whether the message may be returned by read paths.
// Soft-deleted rows are kept for audit only.
func (m *Message) IsVisible() bool {
	return !m.Deleted
}

// IsParticipant reports whether userID sent or received the message.
func (m *Message) IsParticipant(userID string) bool {
	return m.SenderID == userID || m.ReceiverID == userID
}

// Reaction is a single symbol left on a message by one user. At most one
// reaction per (message, user, symbol) exists.
type Reaction struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	UserID    string    `json:"user_id"`
	Reaction  string    `json:"reaction"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionGroup aggregates the reactions of one symbol on a message.
type ReactionGroup struct {
	Reaction string   `json:"reaction"`
	Count    int      `json:"count"`
	Users    []string `json:"users"`
}

// GroupReactions folds reactions into per-symbol groups, preserving the
// order in which each symbol first appears.
func GroupReactions(reactions []*Reaction) []ReactionGroup {
	groups := make([]ReactionGroup, 0)
	index := make(map[string]int)
	for _, r := range reactions {
		i, ok := index[r.Reaction]
		if !ok {
			i = len(groups)
			index[r.Reaction] = i
			groups = append(groups, ReactionGroup{Reaction: r.Reaction, Users: []string{}})
		}
		groups[i].Count++
		groups[i].Users = append(groups[i].Users, r.UserID)
	}
	return groups
}

// BlockedUser is a directed block edge: BlockedBy blocked UserID.
type BlockedUser struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	BlockedBy string    `json:"blocked_by"`
	Reason    *string   `json:"reason,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type BlockedUserView struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	BlockedAt time.Time `json:"blocked_at"`
	Reason    *string   `json:"reason"`
}

// SanitizeContent trims free text and escapes HTML so that clients which
// render it verbatim cannot be scripted.
func SanitizeContent(s string) string {
	return html.EscapeString(strings.TrimSpace(s))
}
