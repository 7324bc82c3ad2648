package handler

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_exchange/internal/domain"
)

func TestReactionEndpoints(t *testing.T) {
	env := newTestEnv(t)
	room := openRoom(t, env)
	msg, err := env.services.Chat.SendMessage(context.Background(), room, "buyer", "deal", nil)
	require.NoError(t, err)
	path := "/api/v1/chat/messages/" + strconv.FormatInt(msg.ID, 10) + "/reactions"

	var toggled struct {
		Message string `json:"message"`
		Active  bool   `json:"active"`
	}

	w := env.do(t, http.MethodPost, path, "owner", ToggleReactionRequest{Reaction: "🤝"})
	requireStatus(t, w, http.StatusOK)
	decode(t, w, &toggled)
	assert.True(t, toggled.Active)
	assert.Equal(t, "Reaction added", toggled.Message)

	w = env.do(t, http.MethodGet, path, "buyer", nil)
	requireStatus(t, w, http.StatusOK)
	var groups []domain.ReactionGroup
	decode(t, w, &groups)
	require.Len(t, groups, 1)
	assert.Equal(t, "🤝", groups[0].Reaction)
	assert.Equal(t, []string{"owner"}, groups[0].Users)

	w = env.do(t, http.MethodPost, path+"?reaction="+url.QueryEscape("🤝"), "owner", nil)
	requireStatus(t, w, http.StatusOK)
	decode(t, w, &toggled)
	assert.False(t, toggled.Active)
	assert.Equal(t, "Reaction removed", toggled.Message)

	w = env.do(t, http.MethodPost, path, "stranger", ToggleReactionRequest{Reaction: "👍"})
	requireStatus(t, w, http.StatusForbidden)

	w = env.do(t, http.MethodPost, path, "owner", ToggleReactionRequest{Reaction: "this is far too long"})
	requireStatus(t, w, http.StatusBadRequest)

	w = env.do(t, http.MethodPost, path, "owner", nil)
	requireStatus(t, w, http.StatusBadRequest)
}
