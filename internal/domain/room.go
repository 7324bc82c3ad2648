package domain

import "time"

// Room is the persisted record of a two-party conversation about one
// listing. Participants are stored in canonical order so that
// (listing, Participant1ID, Participant2ID) is unique per unordered pair.
type Room struct {
	ID             int64      `json:"id"`
	ListingID      int64      `json:"listing_id"`
	Participant1ID string     `json:"participant1_id"`
	Participant2ID string     `json:"participant2_id"`
	CreatedAt      time.Time  `json:"created_at"`
	LastMessageAt  *time.Time `json:"last_message_at"`
	Status         string     `json:"status"`
}

const (
	RoomStatusActive   = "active"
	RoomStatusArchived = "archived"
	RoomStatusBlocked  = "blocked"
)

// OrderParticipants returns a and b with the lower identity first.
func OrderParticipants(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

func NewRoom(listingID int64, a, b string) *Room {
	low, high := OrderParticipants(a, b)
	return &Room{
		ListingID:      listingID,
		Participant1ID: low,
		Participant2ID: high,
		CreatedAt:      time.Now(),
		Status:         RoomStatusActive,
	}
}

func (r *Room) HasParticipant(userID string) bool {
	return r.Participant1ID == userID || r.Participant2ID == userID
}

// Peer returns the other participant of the room.
func (r *Room) Peer(userID string) string {
	if r.Participant1ID == userID {
		return r.Participant2ID
	}
	return r.Participant1ID
}

// Contains reports whether msg belongs to this conversation.
func (r *Room) Contains(msg *Message) bool {
	if msg.ListingID != r.ListingID {
		return false
	}
	low, high := OrderParticipants(msg.SenderID, msg.ReceiverID)
	return low == r.Participant1ID && high == r.Participant2ID
}
