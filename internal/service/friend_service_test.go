package service

import (
	"context"
	"testing"

	"github.com/Mantuja-khan/ChatApplication/internal/model"
	"github.com/Mantuja-khan/ChatApplication/internal/repo"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakePusher struct {
	sent []string // receiver user ids
}

func (p *fakePusher) Send(ctx context.Context, userID string, payload model.PushPayload) error {
	p.sent = append(p.sent, userID)
	return nil
}

func newFriendFixture() (FriendService, *memFriendships, *memProfiles) {
	friendships := newMemFriendships()
	profiles := newMemProfiles()
	svc := NewFriendService(friendships, profiles, nil, zap.NewNop())
	return svc, friendships, profiles
}

func TestSendRequestCreatesPending(t *testing.T) {
	svc, _, _ := newFriendFixture()

	friendship, err := svc.SendRequest(context.Background(), alice, bob)
	require.NoError(t, err)
	require.Equal(t, model.FriendshipPending, friendship.Status)
	require.Equal(t, alice, friendship.SenderID)
}

func TestSendRequestIdempotentAcrossDirections(t *testing.T) {
	svc, _, _ := newFriendFixture()
	ctx := context.Background()

	first, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)

	// The reverse request returns the existing row instead of a second one.
	second, err := svc.SendRequest(ctx, bob, alice)
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
}

func TestSendRequestRejectsSelf(t *testing.T) {
	svc, _, _ := newFriendFixture()

	_, err := svc.SendRequest(context.Background(), alice, alice)
	require.ErrorIs(t, err, ErrSelfRequest)
}

func TestSendRequestBlockedByReceiver(t *testing.T) {
	svc, _, profiles := newFriendFixture()
	ctx := context.Background()

	require.NoError(t, profiles.Block(ctx, bob, alice))

	_, err := svc.SendRequest(ctx, alice, bob)
	require.ErrorIs(t, err, ErrBlocked)
}

func TestAcceptIsIdempotent(t *testing.T) {
	svc, _, _ := newFriendFixture()
	ctx := context.Background()

	request, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)

	accepted, err := svc.Accept(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, model.FriendshipAccepted, accepted.Status)

	again, err := svc.Accept(ctx, request.ID)
	require.NoError(t, err)
	require.Equal(t, model.FriendshipAccepted, again.Status)
}

func TestAcceptNotifiesOriginalSender(t *testing.T) {
	friendships := newMemFriendships()
	profiles := newMemProfiles()
	pusher := &fakePusher{}
	svc := NewFriendService(friendships, profiles, pusher, zap.NewNop())
	ctx := context.Background()

	profiles.rows[bob] = &model.Profile{ID: bob, Name: "Bob"}

	request, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)

	_, err = svc.Accept(ctx, request.ID)
	require.NoError(t, err)

	require.Equal(t, []string{alice}, pusher.sent, "the original sender gets the push")
}

func TestAcceptUnknownRequest(t *testing.T) {
	svc, _, _ := newFriendFixture()

	_, err := svc.Accept(context.Background(), "missing")
	require.ErrorIs(t, err, repo.ErrRequestNotFound)
}

func TestPendingAndContacts(t *testing.T) {
	svc, _, _ := newFriendFixture()
	ctx := context.Background()

	fromAlice, err := svc.SendRequest(ctx, alice, bob)
	require.NoError(t, err)
	_, err = svc.SendRequest(ctx, carol, bob)
	require.NoError(t, err)

	pending, err := svc.Pending(ctx, bob)
	require.NoError(t, err)
	require.Len(t, pending, 2)

	_, err = svc.Accept(ctx, fromAlice.ID)
	require.NoError(t, err)

	pending, err = svc.Pending(ctx, bob)
	require.NoError(t, err)
	require.Len(t, pending, 1)

	contacts, err := svc.Contacts(ctx, bob)
	require.NoError(t, err)
	require.Len(t, contacts, 1)
	require.True(t, contacts[0].Involves(alice, bob))
}

func TestBlockUnblockRoundTrip(t *testing.T) {
	svc, _, profiles := newFriendFixture()
	ctx := context.Background()

	require.NoError(t, svc.Block(ctx, alice, bob))
	blocked, err := profiles.IsBlocked(ctx, alice, bob)
	require.NoError(t, err)
	require.True(t, blocked)

	require.NoError(t, svc.Unblock(ctx, alice, bob))
	blocked, err = profiles.IsBlocked(ctx, alice, bob)
	require.NoError(t, err)
	require.False(t, blocked)
}
