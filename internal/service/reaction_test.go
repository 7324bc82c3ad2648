package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "campus_exchange/pkg/errors"
)

func TestReactionToggle(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	room, err := svc.Chat.OpenRoom(ctx, 1, "buyer", "owner")
	require.NoError(t, err)
	msg, err := svc.Chat.SendMessage(ctx, room, "buyer", "deal?", nil)
	require.NoError(t, err)

	active, err := svc.Reaction.Toggle(ctx, msg.ID, "owner", "👍")
	require.NoError(t, err)
	assert.True(t, active)

	_, err = svc.Reaction.Toggle(ctx, msg.ID, "buyer", "👍")
	require.NoError(t, err)

	groups, err := svc.Reaction.List(ctx, msg.ID, "buyer")
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Equal(t, 2, groups[0].Count)
	assert.ElementsMatch(t, []string{"owner", "buyer"}, groups[0].Users)

	active, err = svc.Reaction.Toggle(ctx, msg.ID, "owner", "👍")
	require.NoError(t, err)
	assert.False(t, active)

	active, err = svc.Reaction.Toggle(ctx, msg.ID, "owner", "👍")
	require.NoError(t, err)
	assert.True(t, active)
}

func TestReactionValidation(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()
	room, err := svc.Chat.OpenRoom(ctx, 1, "buyer", "owner")
	require.NoError(t, err)
	msg, err := svc.Chat.SendMessage(ctx, room, "buyer", "deal?", nil)
	require.NoError(t, err)

	_, err = svc.Reaction.Toggle(ctx, msg.ID, "owner", " ")
	assert.ErrorIs(t, err, apperrors.ErrInvalidReaction)

	_, err = svc.Reaction.Toggle(ctx, msg.ID, "owner", strings.Repeat("x", 11))
	assert.ErrorIs(t, err, apperrors.ErrInvalidReaction)

	_, err = svc.Reaction.Toggle(ctx, msg.ID, "stranger", "👍")
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	_, err = svc.Reaction.List(ctx, msg.ID, "stranger")
	assert.ErrorIs(t, err, apperrors.ErrNotParticipant)

	_, err = svc.Reaction.Toggle(ctx, 9999, "owner", "👍")
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)

	require.NoError(t, svc.Chat.DeleteMessage(ctx, room, "buyer", msg.ID))
	_, err = svc.Reaction.Toggle(ctx, msg.ID, "owner", "👍")
	assert.ErrorIs(t, err, apperrors.ErrMessageNotFound)
}
