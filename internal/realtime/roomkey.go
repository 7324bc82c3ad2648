// Package realtime holds the live side of chat: the in-memory session
// registry, the frame codec and the per-connection session loop.
package realtime

import (
	"fmt"

	"campus_exchange/internal/domain"
)

// RoomKey names the fan-out group for a listing and an unordered pair of
// participants. Swapping a and b yields the same key. The length prefix
// keeps identities that contain the separator from colliding.
func RoomKey(listingID int64, a, b string) string {
	low, high := domain.OrderParticipants(a, b)
	return fmt.Sprintf("%d:%d:%s:%s", listingID, len(low), low, high)
}

// KeyForRoom is RoomKey for a persisted room.
func KeyForRoom(room *domain.Room) string {
	return RoomKey(room.ListingID, room.Participant1ID, room.Participant2ID)
}
