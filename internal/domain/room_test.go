package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoomOrdersParticipants(t *testing.T) {
	a := NewRoom(7, "zed", "amy")
	b := NewRoom(7, "amy", "zed")

	assert.Equal(t, "amy", a.Participant1ID)
	assert.Equal(t, "zed", a.Participant2ID)
	assert.Equal(t, a.Participant1ID, b.Participant1ID)
	assert.Equal(t, a.Participant2ID, b.Participant2ID)
	assert.Equal(t, RoomStatusActive, a.Status)
	assert.Equal(t, "zed", a.Peer("amy"))
	assert.Equal(t, "amy", a.Peer("zed"))
}

func TestOrderParticipantsIsBytewise(t *testing.T) {
	low, high := OrderParticipants("a", "B")
	assert.Equal(t, "B", low)
	assert.Equal(t, "a", high)

	low, high = OrderParticipants("B", "a")
	assert.Equal(t, "B", low)
	assert.Equal(t, "a", high)
}

func TestRoomContains(t *testing.T) {
	room := NewRoom(7, "amy", "zed")

	assert.True(t, room.Contains(&Message{ListingID: 7, SenderID: "zed", ReceiverID: "amy"}))
	assert.True(t, room.Contains(&Message{ListingID: 7, SenderID: "amy", ReceiverID: "zed"}))
	assert.False(t, room.Contains(&Message{ListingID: 8, SenderID: "amy", ReceiverID: "zed"}))
	assert.False(t, room.Contains(&Message{ListingID: 7, SenderID: "amy", ReceiverID: "bob"}))
}

func TestGroupReactions(t *testing.T) {
	groups := GroupReactions([]*Reaction{
		{Reaction: "👍", UserID: "a"},
		{Reaction: "❤️", UserID: "a"},
		{Reaction: "👍", UserID: "b"},
	})

	assert.Equal(t, []ReactionGroup{
		{Reaction: "👍", Count: 2, Users: []string{"a", "b"}},
		{Reaction: "❤️", Count: 1, Users: []string{"a"}},
	}, groups)
	assert.Empty(t, GroupReactions(nil))
}

func TestSanitizeContent(t *testing.T) {
	assert.Equal(t, "&lt;script&gt;x&lt;/script&gt;", SanitizeContent("  <script>x</script> "))
	assert.Equal(t, "", SanitizeContent(" \n\t "))
}
