package realtime

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_exchange/internal/domain"
	"campus_exchange/internal/repository/repotest"
	"campus_exchange/internal/service"
	apperrors "campus_exchange/pkg/errors"
	"campus_exchange/pkg/logger"
)

type sessionFixture struct {
	store    *repotest.Store
	registry *Registry
	room     *domain.Room
	owner    *Session // "owner" owns listing 1
	buyer    *Session
}

func newSessionFixture(t *testing.T) *sessionFixture {
	t.Helper()
	log := logger.Nop()
	cfg := testChatConfig()

	store := repotest.NewStore()
	store.AddUser("owner", "owner@campus.edu")
	store.AddUser("buyer", "buyer@campus.edu")
	store.AddListing(1, "owner")
	repos := store.Repositories()

	chat := service.NewChatService(repos.Chat, repos.Room, service.NewAuditService(repos.Audit, log), cfg, log)
	room, err := chat.OpenRoom(context.Background(), 1, "buyer", "owner")
	require.NoError(t, err)

	registry := NewRegistry(log)
	owner := NewSession(NewClient(nil, "owner", cfg), room, chat, registry, cfg, log)
	buyer := NewSession(NewClient(nil, "buyer", cfg), room, chat, registry, cfg, log)
	registry.Admit(owner.Key(), owner.client)
	registry.Admit(buyer.Key(), buyer.client)

	return &sessionFixture{store: store, registry: registry, room: room, owner: owner, buyer: buyer}
}

func (f *sessionFixture) send(t *testing.T, s *Session, content string) int64 {
	t.Helper()
	require.NoError(t, s.Handle(context.Background(), SendFrame{Content: content}))
	msgs := f.store.Messages()
	require.NotEmpty(t, msgs)
	drain(t, f.owner.client)
	drain(t, f.buyer.client)
	return msgs[len(msgs)-1].ID
}

func TestSessionSendReachesBothParticipants(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.buyer.Handle(context.Background(), SendFrame{Content: "hi"}))

	// Persisted before anything is read off the queues.
	msgs := f.store.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, "buyer", msgs[0].SenderID)
	assert.Equal(t, "owner", msgs[0].ReceiverID)

	for _, c := range []*Client{f.owner.client, f.buyer.client} {
		frames := drain(t, c)
		require.Len(t, frames, 1)
		assert.Equal(t, "hi", frames[0]["content"])
		assert.Equal(t, false, frames[0]["edited"])
		assert.Equal(t, false, frames[0]["deleted"])
		assert.Equal(t, float64(msgs[0].ID), frames[0]["id"])
	}

	rooms := f.store.Rooms()
	require.Len(t, rooms, 1)
	assert.NotNil(t, rooms[0].LastMessageAt)
}

func TestSessionEditBySender(t *testing.T) {
	f := newSessionFixture(t)
	id := f.send(t, f.buyer, "hi")

	require.NoError(t, f.buyer.Handle(context.Background(), EditFrame{MessageID: id, NewContent: "hi!"}))
	assert.Equal(t, "hi!", f.store.Messages()[0].Content)

	for _, c := range []*Client{f.owner.client, f.buyer.client} {
		frames := drain(t, c)
		require.Len(t, frames, 1)
		edited, ok := frames[0]["edit_message"].(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, true, edited["edited"])
		assert.Equal(t, "hi!", edited["content"])
	}
}

func TestSessionRejectsEditAndDeleteByNonSender(t *testing.T) {
	f := newSessionFixture(t)
	id := f.send(t, f.buyer, "hi")

	err := f.owner.Handle(context.Background(), DeleteFrame{MessageID: id})
	assert.ErrorIs(t, err, apperrors.ErrNotSender)
	assert.True(t, apperrors.IsClientError(err))

	err = f.owner.Handle(context.Background(), EditFrame{MessageID: id, NewContent: "mine now"})
	assert.ErrorIs(t, err, apperrors.ErrNotSender)

	msg := f.store.Messages()[0]
	assert.False(t, msg.Deleted)
	assert.Equal(t, "hi", msg.Content)
	assert.Empty(t, drain(t, f.owner.client))
	assert.Empty(t, drain(t, f.buyer.client))
}

func TestSessionDeleteBySender(t *testing.T) {
	f := newSessionFixture(t)
	id := f.send(t, f.buyer, "oops")

	require.NoError(t, f.buyer.Handle(context.Background(), DeleteFrame{MessageID: id}))
	assert.True(t, f.store.Messages()[0].Deleted)

	frames := drain(t, f.owner.client)
	require.Len(t, frames, 1)
	assert.Equal(t, float64(id), frames[0]["delete_message"])
	assert.Len(t, drain(t, f.buyer.client), 1)

	// A deleted message can no longer be edited or deleted.
	err := f.buyer.Handle(context.Background(), DeleteFrame{MessageID: id})
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	logs := f.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, domain.EventTypeMessageDeleted, logs[0].EventType)
}

func TestSessionTypingGoesToOthersOnly(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.buyer.Handle(context.Background(), TypingFrame{Typing: true}))
	assert.Empty(t, drain(t, f.buyer.client))
	frames := drain(t, f.owner.client)
	require.Len(t, frames, 1)
	assert.Equal(t, "buyer", frames[0]["user"])

	require.NoError(t, f.buyer.Handle(context.Background(), TypingFrame{Typing: false}))
	assert.Empty(t, drain(t, f.owner.client))
}

func TestSessionDeliveryReceipt(t *testing.T) {
	f := newSessionFixture(t)
	id := f.send(t, f.buyer, "hi")

	// Only the receiver may acknowledge.
	err := f.buyer.Handle(context.Background(), ReceiptFrame{MessageID: id})
	assert.True(t, apperrors.IsClientError(err))
	assert.Nil(t, f.store.Messages()[0].ReadAt)
	assert.Empty(t, drain(t, f.owner.client))

	require.NoError(t, f.owner.Handle(context.Background(), ReceiptFrame{MessageID: id}))
	assert.NotNil(t, f.store.Messages()[0].ReadAt)
	assert.Empty(t, drain(t, f.owner.client))
	frames := drain(t, f.buyer.client)
	require.Len(t, frames, 1)
	assert.Equal(t, float64(id), frames[0]["delivery_receipt"])
	assert.Equal(t, "owner", frames[0]["user"])
}

func TestSessionReply(t *testing.T) {
	f := newSessionFixture(t)
	id := f.send(t, f.buyer, "is it available?")

	require.NoError(t, f.owner.Handle(context.Background(), SendFrame{Content: "yes", ReplyTo: &id}))
	msgs := f.store.Messages()
	require.Len(t, msgs, 2)
	require.NotNil(t, msgs[1].ReplyToID)
	assert.Equal(t, id, *msgs[1].ReplyToID)
	assert.Len(t, drain(t, f.buyer.client), 1)

	missing := int64(999)
	err := f.owner.Handle(context.Background(), SendFrame{Content: "yes", ReplyTo: &missing})
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
	assert.Len(t, f.store.Messages(), 2)
}

func TestSessionDropsEmptyContent(t *testing.T) {
	f := newSessionFixture(t)

	err := f.buyer.Handle(context.Background(), SendFrame{Content: "   "})
	assert.ErrorIs(t, err, apperrors.ErrEmptyContent)
	assert.Empty(t, f.store.Messages())
	assert.Empty(t, drain(t, f.owner.client))
}

func TestSessionEscapesContent(t *testing.T) {
	f := newSessionFixture(t)

	require.NoError(t, f.buyer.Handle(context.Background(), SendFrame{Content: "<b>hi</b>"}))
	frames := drain(t, f.owner.client)
	require.Len(t, frames, 1)
	assert.Equal(t, "&lt;b&gt;hi&lt;/b&gt;", frames[0]["content"])
}

func TestSessionPersistenceFailureIsFatalAndSilent(t *testing.T) {
	f := newSessionFixture(t)
	f.store.FailCreateMessage = errors.New("connection refused")

	err := f.buyer.Handle(context.Background(), SendFrame{Content: "hi"})
	require.Error(t, err)
	assert.False(t, apperrors.IsClientError(err))
	assert.Empty(t, drain(t, f.owner.client))
	assert.Empty(t, drain(t, f.buyer.client))
}
