package model

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConversationKeyOrderIndependent(t *testing.T) {
	require.Equal(t, ConversationKey("a", "b"), ConversationKey("b", "a"))
	require.Equal(t, "a:b", ConversationKey("b", "a"))
}

func TestInConversation(t *testing.T) {
	msg := &Message{SenderID: "a", ReceiverID: "b"}

	require.True(t, msg.InConversation("a", "b"))
	require.True(t, msg.InConversation("b", "a"))
	require.False(t, msg.InConversation("a", "c"))
}

func TestPeerOf(t *testing.T) {
	msg := &Message{SenderID: "a", ReceiverID: "b"}

	require.Equal(t, "b", msg.PeerOf("a"))
	require.Equal(t, "a", msg.PeerOf("b"))
}

func TestPreview(t *testing.T) {
	text := &Message{Kind: MessageKindText, Content: strings.Repeat("x", 60)}
	require.Equal(t, strings.Repeat("x", 40)+"...", text.Preview(40))

	short := &Message{Kind: MessageKindText, Content: "hey"}
	require.Equal(t, "hey", short.Preview(40))

	image := &Message{Kind: MessageKindImage}
	require.Equal(t, "\U0001F4F7 Image", image.Preview(40))

	deleted := &Message{Kind: MessageKindText, Content: "gone", DeletedForEveryone: true}
	require.Equal(t, TombstoneText, deleted.Preview(40))
}

func TestTruncateRunesCountsRunesNotBytes(t *testing.T) {
	require.Equal(t, "приве...", TruncateRunes("приветик", 5))
	require.Equal(t, "привет", TruncateRunes("привет", 10))
	require.Equal(t, "no limit", TruncateRunes("no limit", 0))
}

func TestDisplayName(t *testing.T) {
	require.Equal(t, "Someone", (*Profile)(nil).DisplayName())
	require.Equal(t, "Alice", (&Profile{Name: "Alice"}).DisplayName())
	require.Equal(t, "alice", (&Profile{Email: "alice@example.com"}).DisplayName())
	require.Equal(t, "Someone", (&Profile{Email: "@broken"}).DisplayName())
}

func TestHasBlocked(t *testing.T) {
	p := &Profile{BlockedUsers: []string{"x", "y"}}

	require.True(t, p.HasBlocked("x"))
	require.False(t, p.HasBlocked("z"))
	require.False(t, (*Profile)(nil).HasBlocked("x"))
}
