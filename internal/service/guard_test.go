package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campus_exchange/pkg/jwt"
)

func rejectionReason(t *testing.T, err error) string {
	t.Helper()
	var rejection *Rejection
	require.True(t, errors.As(err, &rejection), "expected a rejection, got %v", err)
	return rejection.Reason
}

func TestGuardAdmitsOwnerAndBuyer(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	admission, err := svc.Guard.Admit(ctx, token(t, "buyer"), 1, "owner")
	require.NoError(t, err)
	assert.Equal(t, "buyer", admission.User.ID)
	assert.Equal(t, "owner", admission.PeerID)
	assert.Equal(t, int64(1), admission.Listing.ID)

	_, err = svc.Guard.Admit(ctx, token(t, "owner"), 1, "buyer")
	require.NoError(t, err)
}

func TestGuardRejections(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	expired, err := jwt.GenerateAccessToken("buyer", "", testSecret, "campus-exchange", -time.Minute)
	require.NoError(t, err)

	cases := []struct {
		name      string
		token     string
		listingID int64
		peerID    string
		reason    string
	}{
		{"no token", "", 1, "owner", RejectCredential},
		{"garbage token", "abc", 1, "owner", RejectCredential},
		{"expired token", expired, 1, "owner", RejectCredential},
		{"unknown subject", token(t, "ghost"), 1, "owner", RejectCredential},
		{"self chat", token(t, "owner"), 1, "owner", RejectSelfChat},
		{"unknown listing", token(t, "buyer"), 99, "owner", RejectListing},
		{"unknown peer", token(t, "owner"), 1, "ghost", RejectPeer},
		{"neither is owner", token(t, "buyer"), 1, "stranger", RejectNotParticipant},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Guard.Admit(ctx, tc.token, tc.listingID, tc.peerID)
			assert.Equal(t, tc.reason, rejectionReason(t, err))
		})
	}
}

func TestGuardRejectsBlockInEitherDirection(t *testing.T) {
	svc, _ := newTestServices(t)
	ctx := context.Background()

	_, err := svc.Block.Block(ctx, "owner", "buyer", "spam")
	require.NoError(t, err)

	_, err = svc.Guard.Admit(ctx, token(t, "buyer"), 1, "owner")
	assert.Equal(t, RejectBlocked, rejectionReason(t, err))

	_, err = svc.Guard.Admit(ctx, token(t, "owner"), 1, "buyer")
	assert.Equal(t, RejectBlocked, rejectionReason(t, err))

	require.NoError(t, svc.Block.Unblock(ctx, "owner", "buyer"))
	_, err = svc.Guard.Admit(ctx, token(t, "buyer"), 1, "owner")
	assert.NoError(t, err)
}

func TestGuardChecksSelfChatBeforeListing(t *testing.T) {
	svc, _ := newTestServices(t)

	_, err := svc.Guard.Admit(context.Background(), token(t, "buyer"), 99, "buyer")
	assert.Equal(t, RejectSelfChat, rejectionReason(t, err))
}
